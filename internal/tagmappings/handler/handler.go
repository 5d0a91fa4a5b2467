package handler

import (
	"net/http"

	"github.com/ZionTraffic/zion-flux-sub000/internal/tagmappings/repository"
	"github.com/ZionTraffic/zion-flux-sub000/internal/tagmappings/service"
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

type MappingRequest struct {
	ExternalTag   string  `json:"externalTag" validate:"required,max=200"`
	InternalStage string  `json:"internalStage" validate:"required,max=100"`
	DisplayLabel  string  `json:"displayLabel" validate:"max=200"`
	Description   *string `json:"description" validate:"omitempty,max=1000"`
	DisplayOrder  int     `json:"displayOrder" validate:"gte=0"`
}

type ReplaceRequest struct {
	Mappings []MappingRequest `json:"mappings" validate:"max=500,dive"`
}

type MappingResponse struct {
	ExternalTag   string  `json:"externalTag"`
	InternalStage string  `json:"internalStage"`
	Stage         string  `json:"stage,omitempty"`
	DisplayLabel  string  `json:"displayLabel"`
	Description   *string `json:"description,omitempty"`
	DisplayOrder  int     `json:"displayOrder"`
}

type ListResponse struct {
	TenantID uuid.UUID         `json:"tenantId"`
	Mappings []MappingResponse `json:"mappings"`
	Stages   []string          `json:"stages"`
}

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts routes on a group already scoped to /tenants/:tenantId.
// Writes additionally pass through adminOnly.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	rg.GET("/tag-mappings", h.List)
	rg.PUT("/tag-mappings", adminOnly, h.Replace)
}

func (h *Handler) List(c *gin.Context) {
	tenantID, ok := tenantID(c)
	if !ok {
		return
	}

	mapper, err := h.svc.Mapper(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, newListResponse(tenantID, mapper))
}

func (h *Handler) Replace(c *gin.Context) {
	tenantID, ok := tenantID(c)
	if !ok {
		return
	}

	var req ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	mappings := make([]repository.Mapping, 0, len(req.Mappings))
	for _, m := range req.Mappings {
		mappings = append(mappings, repository.Mapping{
			ExternalTag:   m.ExternalTag,
			InternalStage: m.InternalStage,
			DisplayLabel:  m.DisplayLabel,
			Description:   m.Description,
			DisplayOrder:  m.DisplayOrder,
		})
	}

	mapper, err := h.svc.Replace(c.Request.Context(), tenantID, mappings)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, newListResponse(tenantID, mapper))
}

func newListResponse(tenantID uuid.UUID, mapper *service.Mapper) ListResponse {
	items := make([]MappingResponse, 0, mapper.Len())
	for _, m := range mapper.Mappings() {
		resp := MappingResponse{
			ExternalTag:   m.ExternalTag,
			InternalStage: m.InternalStage,
			DisplayLabel:  m.DisplayLabel,
			Description:   m.Description,
			DisplayOrder:  m.DisplayOrder,
		}
		if stage, ok := mapper.StageForTag(m.ExternalTag); ok {
			resp.Stage = string(stage)
		}
		items = append(items, resp)
	}

	stages := make([]string, 0)
	for _, s := range mapper.UniqueStages() {
		stages = append(stages, string(s))
	}
	return ListResponse{TenantID: tenantID, Mappings: items, Stages: stages}
}

func tenantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(TenantParam))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
