package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ContentRequests   *prometheus.CounterVec
	QuizCompletions   prometheus.Counter
	PointsAwarded     prometheus.Counter
	ReportBuilds      *prometheus.CounterVec
	ReportPages       prometheus.Histogram
	ActiveQuizSession prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ContentRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eduquest",
				Subsystem: "content",
				Name:      "requests_total",
				Help:      "Question set requests by the source that finally served them",
			},
			[]string{"source"},
		),
		QuizCompletions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "eduquest",
			Subsystem: "quiz",
			Name:      "completions_total",
			Help:      "Finished quiz sessions merged into the profile",
		}),
		PointsAwarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "eduquest",
			Subsystem: "quiz",
			Name:      "points_awarded_total",
			Help:      "Points added to profiles by finished sessions",
		}),
		ReportBuilds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eduquest",
				Subsystem: "report",
				Name:      "builds_total",
				Help:      "Report builds by outcome",
			},
			[]string{"status"},
		),
		ReportPages: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eduquest",
			Subsystem: "report",
			Name:      "pages",
			Help:      "Pages per generated report",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		}),
		ActiveQuizSession: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "eduquest",
			Subsystem: "quiz",
			Name:      "active_sessions",
			Help:      "Quiz sessions currently in progress",
		}),
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ContentServed(source string) {
	if m == nil {
		return
	}
	m.ContentRequests.WithLabelValues(source).Inc()
}

func (m *Metrics) QuizCompleted(points int) {
	if m == nil {
		return
	}
	m.QuizCompletions.Inc()
	m.PointsAwarded.Add(float64(points))
}

func (m *Metrics) ReportBuilt(pages int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ReportBuilds.WithLabelValues("error").Inc()
		return
	}
	m.ReportBuilds.WithLabelValues("ok").Inc()
	m.ReportPages.Observe(float64(pages))
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ActiveQuizSession.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.ActiveQuizSession.Dec()
}
