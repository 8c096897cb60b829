package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"eduquest-service/internal/app"
	"eduquest-service/internal/config"
	"eduquest-service/internal/content"
	"eduquest-service/internal/infra/memory"
	"eduquest-service/internal/infra/postgres"
	redisinfra "eduquest-service/internal/infra/redis"
	"eduquest-service/internal/infra/sqlite"
	"eduquest-service/internal/metrics"
	"eduquest-service/internal/pkg/logger"
	"eduquest-service/internal/report"
	"eduquest-service/internal/report/fonts"
	"eduquest-service/internal/report/pdf"
	"eduquest-service/internal/secret"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// runtime holds the wired service and everything that must be released on exit.
type runtime struct {
	service *app.QuizService
	keys    secret.Provider
	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func buildRuntime(ctx context.Context, cfg config.Config, log *logger.Logger, m *metrics.Metrics) (*runtime, error) {
	rt := &runtime{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	ns := cfg.Storage.Namespace

	var kv app.KV
	switch cfg.Storage.Backend {
	case "", "memory":
		kv = memory.NewKV()
	case "redis":
		if redisClient == nil {
			rt.Close()
			return nil, fmt.Errorf("storage backend redis needs redis.addr")
		}
		kv = redisinfra.NewKV(redisClient)
	case "postgres":
		if _, err := postgres.Migrate(ctx, cfg.Postgres.URL); err != nil {
			rt.Close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		kv = postgres.NewKV(pool)
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = store.Close() })
		kv = store
	default:
		rt.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	var sessions app.SessionRepository = memory.NewSessionStore()
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, ns, redisTTL)
	}

	// The server always owns the key for its relay endpoint; content
	// generation may instead borrow it from a remote relay.
	rt.keys = secret.NewEnvProvider(cfg.Content.APIKeyEnv)
	var liveKeys secret.Provider = rt.keys
	if cfg.Content.RelayURL != "" {
		liveKeys = secret.NewRelayClient(cfg.Content.RelayURL, &http.Client{Timeout: 10 * time.Second})
	}

	fixtures, err := content.NewFixtureSupplier()
	if err != nil {
		rt.Close()
		return nil, err
	}
	live := content.NewGeminiSupplier(liveKeys, cfg.Content.Model, config.TTLDuration(cfg.Content.Timeout, 60*time.Second))
	questions := questionChain(live, fixtures, redisClient, ns, config.TTLDuration(cfg.Content.CacheTTL, time.Hour), log, m)

	measure, err := fonts.NewMetrics()
	if err != nil {
		rt.Close()
		return nil, err
	}
	builder := report.NewBuilder(pdf.New, measure, report.NewAvatarLoader(nil, 256), report.Options{
		AppName:          cfg.Report.AppName,
		Footer:           cfg.Report.Footer,
		Margin:           cfg.Report.Margin,
		PointsPerCorrect: cfg.Game.PointsPerCorrect,
	}, log)

	rt.service = app.NewQuizService(app.NewStore(kv, ns), sessions, questions, builder, app.Options{
		PointsPerCorrect: cfg.Game.PointsPerCorrect,
		PointsToLevelUp:  cfg.Game.PointsToLevelUp,
		Courses:          cfg.Courses,
	}, log, m)

	log.Info("runtime ready", "storage", cfg.Storage.Backend, "redis", redisClient != nil, "model", cfg.Content.Model)
	return rt, nil
}

// questionChain caches only live sets. A fixture substitution is never
// remembered, so the next start retries the live model.
func questionChain(live, fixtures content.Supplier, redisClient *redis.Client, ns string, ttl time.Duration, log *logger.Logger, m *metrics.Metrics) content.Supplier {
	if redisClient != nil {
		live = redisinfra.NewQuestionCache(redisClient, live, ns, ttl, log)
	} else {
		live = memory.NewQuestionCache(live, ttl)
	}
	return content.NewFallbackSupplier(live, fixtures, log, m)
}
