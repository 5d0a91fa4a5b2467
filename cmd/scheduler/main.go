package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/scheduler"
	"github.com/ZionTraffic/zion-flux-sub000/internal/tagmappings"
	"github.com/ZionTraffic/zion-flux-sub000/platform/cache"
	"github.com/ZionTraffic/zion-flux-sub000/platform/config"
	"github.com/ZionTraffic/zion-flux-sub000/platform/db"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"
	"github.com/ZionTraffic/zion-flux-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "refreshSpec", cfg.GetSummaryRefreshSpec())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// The worker writes the summary cache, so Redis is mandatory here.
	redisClient, err := cache.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer func() { _ = redisClient.Close() }()

	catalog, err := domain.LoadCatalogFile(cfg.GetStageRulesFile())
	if err != nil {
		log.Error("failed to load stage rules", "error", err)
		panic("failed to load stage rules: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	m := metrics.NewNop()

	// Worker-side funnel wiring (no HTTP handlers required).
	tagMappingsModule := tagmappings.NewModule(pool, redisClient, catalog, eventBus, val, cfg, log)
	leadsModule := leads.NewModule(leads.Deps{
		Pool:     pool,
		Redis:    redisClient,
		Catalog:  catalog,
		Mappers:  tagMappingsModule.MapperProvider(),
		EventBus: eventBus,
		Config:   cfg,
		Log:      log,
		Metrics:  m,
	}, val)

	worker, err := scheduler.NewWorker(cfg, leadsModule.Service(), leadsModule.Repository(), log, m)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
