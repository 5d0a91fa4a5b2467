package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/adapters/storage"
	"github.com/ZionTraffic/zion-flux-sub000/internal/conversations"
	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	"github.com/ZionTraffic/zion-flux-sub000/internal/exports"
	apphttp "github.com/ZionTraffic/zion-flux-sub000/internal/http"
	"github.com/ZionTraffic/zion-flux-sub000/internal/http/router"
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	if cfg.MigrationsEnabled {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, pool)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	redisClient := initRedis(ctx, cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	catalog, err := domain.LoadCatalogFile(cfg.GetStageRulesFile())
	if err != nil {
		log.Error("failed to load stage rules", "error", err)
		panic("failed to load stage rules: " + err.Error())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	objectStore := initObjectStore(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

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
	conversationsModule := conversations.NewModule(pool, val, cfg, log, m)
	exportsModule := exports.NewModule(pool, leadsModule.Service(), objectStore, cfg.GetMinioBucketLeadExports(), eventBus, val, log)

	refreshClient, closeRefreshClient := initRefreshClient(cfg, log)
	if closeRefreshClient != nil {
		defer closeRefreshClient()
		scheduler.SubscribeTagMappingChanges(eventBus, refreshClient, log)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Metrics:  m,
		Gatherer: registry,
		Modules: []apphttp.Module{
			tagMappingsModule,
			leadsModule,
			conversationsModule,
			exportsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; summary and tag mapping caches disabled")
		return nil
	}

	client, err := cache.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis; caches disabled", "error", err)
		return nil
	}
	return client
}

// initObjectStore returns a nil interface when archiving is disabled so the
// exports module answers 503 instead of dereferencing a nil client.
func initObjectStore(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) storage.ObjectStore {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; export archiving disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketLeadExports()
	if err := withRetry(ctx, log, "ensure lead-exports bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "leadExportsBucket", bucket)
	return storageSvc
}

func initRefreshClient(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.RefreshEnqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; background summary refreshes disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
