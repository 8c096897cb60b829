package http

import (
	"net/http"
	"time"

	"eduquest-service/internal/app"
	"eduquest-service/internal/metrics"
	"eduquest-service/internal/pkg/logger"
	"eduquest-service/internal/secret"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server wires the quiz use cases to REST and WebSocket endpoints.
type Server struct {
	service *app.QuizService
	keys    secret.Provider
	metrics *metrics.Metrics
	log     *logger.Logger
	ws      *WSHandler
	router  *chi.Mux
}

func NewServer(service *app.QuizService, keys secret.Provider, m *metrics.Metrics, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		service: service,
		keys:    keys,
		metrics: m,
		log:     log.With("component", "http"),
	}
	s.ws = NewWSHandler(service, s.log)
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/ws", s.ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/get-key", s.handleGetKey)

		r.Get("/profile", s.handleProfile)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Get("/activities", s.handleDashboard)
		r.Post("/activities/{id}/sessions", s.handleStartActivity)

		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Get("/", s.handleSession)
			r.Post("/answer", s.handleAnswer)
			r.Post("/advance", s.handleAdvance)
			r.Post("/finish", s.handleFinish)
		})

		r.Get("/report", s.handleReport)
	})

	s.router = r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
