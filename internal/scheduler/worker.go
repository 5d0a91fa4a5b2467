package scheduler

import (
	"context"
	"fmt"
	"time"

	leadsrepo "github.com/ZionTraffic/zion-flux-sub000/internal/leads/repository"
	leadsservice "github.com/ZionTraffic/zion-flux-sub000/internal/leads/service"
	"github.com/ZionTraffic/zion-flux-sub000/platform/config"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// SummaryRefresher recomputes and caches a tenant's default-window summary.
type SummaryRefresher interface {
	RefreshDefaultSummary(ctx context.Context, tenantID uuid.UUID) (leadsservice.Summary, error)
}

type Worker struct {
	server    *asynq.Server
	periodic  *asynq.Scheduler
	mux       *asynq.ServeMux
	refresher SummaryRefresher
	tenants   leadsrepo.TenantLister
	log       *logger.Logger
	metrics   *metrics.Metrics
}

func NewWorker(cfg config.SchedulerConfig, refresher SummaryRefresher, tenants leadsrepo.TenantLister, log *logger.Logger, m *metrics.Metrics) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := queueName(cfg)

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 4
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := newWorker(refresher, tenants, log, m)
	w.server = server

	if spec := cfg.GetSummaryRefreshSpec(); spec != "" {
		periodic := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
		if _, err := periodic.Register(spec, NewSummaryRefreshAllTask(), asynq.Queue(queue)); err != nil {
			return nil, fmt.Errorf("register summary refresh %q: %w", spec, err)
		}
		w.periodic = periodic
	}

	return w, nil
}

func newWorker(refresher SummaryRefresher, tenants leadsrepo.TenantLister, log *logger.Logger, m *metrics.Metrics) *Worker {
	if m == nil {
		m = metrics.NewNop()
	}
	w := &Worker{
		mux:       asynq.NewServeMux(),
		refresher: refresher,
		tenants:   tenants,
		log:       log,
		metrics:   m,
	}
	w.mux.HandleFunc(TaskSummaryRefresh, w.handleSummaryRefresh)
	w.mux.HandleFunc(TaskSummaryRefreshAll, w.handleSummaryRefreshAll)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	if w.periodic != nil {
		if err := w.periodic.Start(); err != nil {
			w.log.Error("summary refresh scheduler failed to start", "error", err)
		}
	}

	go func() {
		<-ctx.Done()
		if w.periodic != nil {
			w.periodic.Shutdown()
		}
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleSummaryRefresh(ctx context.Context, task *asynq.Task) error {
	tenantID, err := ParseSummaryRefreshPayload(task)
	if err != nil {
		// Retrying a malformed payload cannot succeed.
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return w.refresh(ctx, tenantID)
}

func (w *Worker) handleSummaryRefreshAll(ctx context.Context, _ *asynq.Task) error {
	tenants, err := w.tenants.ListTenants(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, tenant := range tenants {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.refresh(ctx, tenant.ID); err != nil {
			failed++
		}
	}

	w.log.Info("summary refresh sweep finished", "tenants", len(tenants), "failed", failed)
	return nil
}

func (w *Worker) refresh(ctx context.Context, tenantID uuid.UUID) error {
	summary, err := w.refresher.RefreshDefaultSummary(ctx, tenantID)
	if err != nil {
		w.metrics.SummaryRefreshes.WithLabelValues("error").Inc()
		w.log.WithTenant(tenantID.String()).Warn("summary refresh failed", "error", err)
		return err
	}
	w.metrics.SummaryRefreshes.WithLabelValues("ok").Inc()
	w.log.WithTenant(tenantID.String()).Debug("summary refreshed", "totalLeads", summary.TotalLeads)
	return nil
}
