// Package exports renders lead boards as CSV and archives them in object storage.
package exports

import (
	"github.com/ZionTraffic/zion-flux-sub000/internal/adapters/storage"
	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	apphttp "github.com/ZionTraffic/zion-flux-sub000/internal/http"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the exports module. store may be nil,
// in which case archive routes answer 503.
func NewModule(pool *pgxpool.Pool, boards BoardSource, store storage.ObjectStore, bucket string, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(boards, NewRepository(pool), store, bucket, eventBus, log)
	return &Module{
		handler: NewHandler(svc, boards, val, log),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes on the tenant group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant)
}

var _ apphttp.Module = (*Module)(nil)
