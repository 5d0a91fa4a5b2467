// Package leads provides the lead funnel bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"

	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	apphttp "github.com/ZionTraffic/zion-flux-sub000/internal/http"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/handler"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/repository"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/service"
	"github.com/ZionTraffic/zion-flux-sub000/platform/config"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"
	"github.com/ZionTraffic/zion-flux-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Deps are the collaborators of the leads module. Redis and Mappers are optional.
type Deps struct {
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Catalog  *domain.Catalog
	Mappers  service.MapperProvider
	EventBus events.Bus
	Config   config.LeadsConfig
	Log      *logger.Logger
	Metrics  *metrics.Metrics
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(deps Deps, val *validator.Validator) *Module {
	repo := repository.New(deps.Pool)

	var cache *service.SummaryCache
	if deps.Redis != nil {
		cache = service.NewSummaryCache(deps.Redis, deps.Config.GetSummaryCacheTTL())
	}

	fetcher := service.NewFetcher(repo, deps.Catalog, deps.Config.GetLeadPageDelay(), deps.Log, deps.Metrics)
	svc := service.New(service.Deps{
		Tenants:    repo,
		Fetcher:    fetcher,
		Catalog:    deps.Catalog,
		Mappers:    deps.Mappers,
		Cache:      cache,
		WindowDays: deps.Config.GetDefaultWindowDays(),
		Log:        deps.Log,
		Metrics:    deps.Metrics,
	})

	// Cached summaries were classified with the old dictionary.
	if deps.EventBus != nil {
		deps.EventBus.Subscribe(events.TagMappingsChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
			e, ok := event.(events.TagMappingsChanged)
			if !ok {
				return nil
			}
			return svc.InvalidateSummaries(ctx, e.TenantID)
		}))
	}

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the funnel service for exports and background jobs.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the tenant and lead reader.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
	m.handler.RegisterTenantRoutes(ctx.Tenant)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
