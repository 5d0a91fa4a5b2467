package handler

import (
	"net/http"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/service"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/transport"
	"github.com/ZionTraffic/zion-flux-sub000/platform/apperr"
	"github.com/ZionTraffic/zion-flux-sub000/platform/httpkit"
	"github.com/ZionTraffic/zion-flux-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	// TenantParam is the path parameter carrying the tenant ID.
	TenantParam = "tenantId"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterTenantRoutes mounts routes on a group already scoped to /tenants/:tenantId.
func (h *Handler) RegisterTenantRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads/board", h.Board)
	rg.GET("/leads/summary", h.Summary)
	rg.GET("/leads/labels", h.Labels)
}

// RegisterRoutes mounts tenant-independent routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads/classify", h.Classify)
}

func (h *Handler) Board(c *gin.Context) {
	tenantID, window, _, ok := h.bindTenantWindow(c)
	if !ok {
		return
	}

	board, err := h.svc.Board(c.Request.Context(), tenantID, window)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.NewBoardResponse(board))
}

func (h *Handler) Summary(c *gin.Context) {
	tenantID, window, refresh, ok := h.bindTenantWindow(c)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), tenantID, window, refresh)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.NewSummaryResponse(tenantID, summary))
}

func (h *Handler) Labels(c *gin.Context) {
	tenantID, ok := TenantID(c)
	if !ok {
		return
	}

	tenant, labels, err := h.svc.Labels(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.NewLabelsResponse(tenant.Slug, labels))
}

func (h *Handler) Classify(c *gin.Context) {
	var query transport.ClassifyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	stage := h.svc.Classify(query.Tag, query.Tenant)
	label := h.svc.Catalog().Labels(query.Tenant)[stage]

	httpkit.OK(c, transport.ClassifyResponse{
		Tag:    query.Tag,
		Tenant: query.Tenant,
		Stage:  string(stage),
		Label:  transport.NewStageLabelResponse(stage, label),
	})
}

func (h *Handler) bindTenantWindow(c *gin.Context) (uuid.UUID, domain.Window, bool, bool) {
	tenantID, ok := TenantID(c)
	if !ok {
		return uuid.Nil, domain.Window{}, false, false
	}

	var query transport.WindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, domain.Window{}, false, false
	}
	window, err := ResolveWindow(h.val, query, h.svc.DefaultWindow)
	if httpkit.HandleError(c, err) {
		return uuid.Nil, domain.Window{}, false, false
	}
	return tenantID, window, query.Refresh, true
}

// ResolveWindow validates a window query. An empty query selects the
// default window.
func ResolveWindow(val *validator.Validator, query transport.WindowQuery, fallback func() domain.Window) (domain.Window, error) {
	if err := val.Struct(query); err != nil {
		return domain.Window{}, apperr.Validation(msgValidationFailed).WithDetails(validator.Messages(err))
	}
	if query.Start == "" && query.End == "" {
		return fallback(), nil
	}
	if query.Start == "" || query.End == "" {
		return domain.Window{}, apperr.Validation("start and end must be provided together")
	}
	window, err := domain.NewWindow(query.Start, query.End)
	if err != nil {
		return domain.Window{}, apperr.Validation(err.Error())
	}
	return window, nil
}

// TenantID parses the tenant path parameter, writing a 400 when invalid.
func TenantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(TenantParam))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
