// Package tagmappings provides the tenant tag dictionary module.
package tagmappings

import (
	"context"

	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	apphttp "github.com/ZionTraffic/zion-flux-sub000/internal/http"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	leadsservice "github.com/ZionTraffic/zion-flux-sub000/internal/leads/service"
	"github.com/ZionTraffic/zion-flux-sub000/internal/tagmappings/handler"
	"github.com/ZionTraffic/zion-flux-sub000/internal/tagmappings/repository"
	"github.com/ZionTraffic/zion-flux-sub000/internal/tagmappings/service"
	"github.com/ZionTraffic/zion-flux-sub000/platform/config"
	"github.com/ZionTraffic/zion-flux-sub000/platform/httpkit"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the tag mappings bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the repository, the Redis-backed service and the handler.
// client may be nil, in which case every lookup reads the database.
func NewModule(pool *pgxpool.Pool, client *redis.Client, catalog *domain.Catalog, eventBus events.Bus, val *validator.Validator, cfg config.TagMappingConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, client, cfg.GetTagMappingCacheTTL(), catalog, eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tagmappings"
}

// Service returns the dictionary service.
func (m *Module) Service() *service.Service {
	return m.service
}

// MapperProvider exposes the dictionaries to the lead fetcher.
func (m *Module) MapperProvider() leadsservice.MapperProvider {
	return leadsservice.MapperProviderFunc(func(ctx context.Context, tenantID uuid.UUID) (leadsservice.TagMapper, error) {
		mapper, err := m.service.Mapper(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return mapper, nil
	})
}

// RegisterRoutes mounts tag mapping routes on the tenant group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant, httpkit.RequireRole(httpkit.RoleAdmin))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
