package content

import (
	"context"

	"eduquest-service/internal/domain"
	"eduquest-service/internal/metrics"
	"eduquest-service/internal/pkg/logger"
)

// FallbackSupplier asks the live supplier first and substitutes the fixture
// supplier when it fails or returns data outside the question schema. The
// substitution is never reported to the caller as an error.
type FallbackSupplier struct {
	live    Supplier
	fixture Supplier
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewFallbackSupplier(live, fixture Supplier, log *logger.Logger, m *metrics.Metrics) *FallbackSupplier {
	if log == nil {
		log = logger.Nop()
	}
	return &FallbackSupplier{live: live, fixture: fixture, log: log.With("component", "content"), metrics: m}
}

func (s *FallbackSupplier) Questions(ctx context.Context, req Request) ([]domain.Question, error) {
	if s.live != nil {
		qs, err := s.live.Questions(ctx, req)
		if err == nil {
			err = Validate(qs)
		}
		if err == nil {
			s.metrics.ContentServed("live")
			return qs, nil
		}
		s.log.Warn("live question generation failed, using fixtures", "activity", req.ActivityID, "error", err)
	}
	qs, err := s.fixture.Questions(ctx, req)
	if err != nil {
		return nil, err
	}
	s.metrics.ContentServed("fixture")
	return qs, nil
}
