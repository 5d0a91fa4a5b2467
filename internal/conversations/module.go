// Package conversations provides the conversation analytics module.
package conversations

import (
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/conversations/handler"
	"github.com/ZionTraffic/zion-flux-sub000/internal/conversations/repository"
	"github.com/ZionTraffic/zion-flux-sub000/internal/conversations/service"
	apphttp "github.com/ZionTraffic/zion-flux-sub000/internal/http"
	leadsdomain "github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/platform/config"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"
	"github.com/ZionTraffic/zion-flux-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Conversations before this day predate the current bot and are ignored.
var minDataDate = time.Date(2025, 1, 1, 0, 0, 0, 0, leadsdomain.Location())

// Module is the conversations bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg config.LeadsConfig, log *logger.Logger, m *metrics.Metrics) *Module {
	svc := service.New(repository.New(pool), minDataDate, log, m)
	return &Module{handler: handler.New(svc, val, cfg.GetDefaultWindowDays())}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversations"
}

// RegisterRoutes mounts conversation routes on the tenant group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
