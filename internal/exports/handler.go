package exports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/adapters/storage"
	leadsdomain "github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	leadshandler "github.com/ZionTraffic/zion-flux-sub000/internal/leads/handler"
	leadstransport "github.com/ZionTraffic/zion-flux-sub000/internal/leads/transport"
	"github.com/ZionTraffic/zion-flux-sub000/platform/httpkit"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler serves board exports.
type Handler struct {
	svc    *Service
	boards BoardSource
	val    *validator.Validator
	log    *logger.Logger
}

// NewHandler creates a new export handler.
func NewHandler(svc *Service, boards BoardSource, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, boards: boards, val: val, log: log}
}

type ArchiveResponse struct {
	ID        uuid.UUID                     `json:"id"`
	ObjectKey string                        `json:"objectKey"`
	Rows      int                           `json:"rows"`
	Window    leadstransport.WindowResponse `json:"window"`
	CreatedAt time.Time                     `json:"createdAt"`
	Download  *storage.PresignedURL         `json:"download,omitempty"`
}

// RegisterRoutes mounts routes on a group already scoped to /tenants/:tenantId.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads/export.csv", h.ExportCSV)
	rg.POST("/leads/exports", h.CreateArchive)
	rg.GET("/leads/exports", h.ListArchives)
	rg.GET("/leads/exports/:exportId/download", h.DownloadArchive)
}

// ExportCSV streams the board of the requested window.
func (h *Handler) ExportCSV(c *gin.Context) {
	tenantID, window, ok := h.bindWindow(c)
	if !ok {
		return
	}

	board, err := h.boards.Board(c.Request.Context(), tenantID, window)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", FileName(window)))
	c.Status(http.StatusOK)
	// Headers are already sent; a failed write can only be logged.
	if rows, err := WriteBoardCSV(c.Writer, board); err != nil {
		h.log.WithContext(c.Request.Context()).Error("csv export interrupted",
			"tenant_id", tenantID, "window", window.Key(), "rows", rows, "error", err)
	}
}

func (h *Handler) CreateArchive(c *gin.Context) {
	tenantID, window, ok := h.bindWindow(c)
	if !ok {
		return
	}

	var requestedBy *uuid.UUID
	if id := httpkit.GetIdentity(c); id.IsAuthenticated() {
		userID := id.UserID()
		requestedBy = &userID
	}

	archive, err := h.svc.Archive(c.Request.Context(), tenantID, window, requestedBy)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := toArchiveResponse(archive.Record)
	resp.Download = archive.Download
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListArchives(c *gin.Context) {
	tenantID, ok := leadshandler.TenantID(c)
	if !ok {
		return
	}

	records, err := h.svc.History(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]ArchiveResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, toArchiveResponse(rec))
	}
	httpkit.OK(c, gin.H{"exports": items})
}

func (h *Handler) DownloadArchive(c *gin.Context) {
	tenantID, ok := leadshandler.TenantID(c)
	if !ok {
		return
	}
	exportID, err := uuid.Parse(c.Param("exportId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid export id", nil)
		return
	}

	download, err := h.svc.Download(c.Request.Context(), tenantID, exportID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, download)
}

func (h *Handler) bindWindow(c *gin.Context) (uuid.UUID, leadsdomain.Window, bool) {
	tenantID, ok := leadshandler.TenantID(c)
	if !ok {
		return uuid.Nil, leadsdomain.Window{}, false
	}

	var query leadstransport.WindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return uuid.Nil, leadsdomain.Window{}, false
	}
	window, err := leadshandler.ResolveWindow(h.val, query, h.boards.DefaultWindow)
	if httpkit.HandleError(c, err) {
		return uuid.Nil, leadsdomain.Window{}, false
	}
	return tenantID, window, true
}

func toArchiveResponse(rec ArchiveRecord) ArchiveResponse {
	return ArchiveResponse{
		ID:        rec.ID,
		ObjectKey: rec.ObjectKey,
		Rows:      rec.Rows,
		Window:    leadstransport.NewWindowResponse(leadsdomain.Window{Start: rec.WindowStart, EndExclusive: rec.WindowEnd}),
		CreatedAt: rec.CreatedAt,
	}
}
