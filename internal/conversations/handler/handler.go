package handler

import (
	"net/http"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/conversations/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/conversations/service"
	leadsdomain "github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	leadshandler "github.com/ZionTraffic/zion-flux-sub000/internal/leads/handler"
	leadstransport "github.com/ZionTraffic/zion-flux-sub000/internal/leads/transport"
	"github.com/ZionTraffic/zion-flux-sub000/platform/httpkit"
	"github.com/ZionTraffic/zion-flux-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ConversationResponse struct {
	ID                 int64            `json:"id"`
	LeadName           string           `json:"leadName"`
	Phone              string           `json:"phone"`
	Tag                string           `json:"tag,omitempty"`
	Status             string           `json:"status"`
	Qualified          bool             `json:"qualified"`
	Sentiment          string           `json:"sentiment"`
	SentimentScore     int              `json:"sentimentScore"`
	SentimentIntensity string           `json:"sentimentIntensity"`
	Summary            string           `json:"summary"`
	StartedAt          time.Time        `json:"startedAt"`
	EndedAt            *time.Time       `json:"endedAt,omitempty"`
	Duration           int64            `json:"duration"`
	Messages           []domain.Message `json:"messages"`
	CSAT               string           `json:"csat"`
	Analyst            string           `json:"analista,omitempty"`
}

type ListResponse struct {
	TenantID      uuid.UUID                     `json:"tenantId"`
	Window        leadstransport.WindowResponse `json:"window"`
	Conversations []ConversationResponse        `json:"conversations"`
	Stats         domain.Stats                  `json:"stats"`
	Truncated     bool                          `json:"truncated"`
}

type Handler struct {
	svc        *service.Service
	val        *validator.Validator
	windowDays int
	now        func() time.Time
}

func New(svc *service.Service, val *validator.Validator, windowDays int) *Handler {
	return &Handler{svc: svc, val: val, windowDays: windowDays, now: time.Now}
}

// RegisterRoutes mounts routes on a group already scoped to /tenants/:tenantId.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/conversations", h.List)
}

func (h *Handler) List(c *gin.Context) {
	tenantID, ok := leadshandler.TenantID(c)
	if !ok {
		return
	}

	var query leadstransport.WindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	window, err := leadshandler.ResolveWindow(h.val, query, h.defaultWindow)
	if httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.List(c.Request.Context(), tenantID, window)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]ConversationResponse, 0, len(result.Conversations))
	for _, conv := range result.Conversations {
		items = append(items, newConversationResponse(conv))
	}
	httpkit.OK(c, ListResponse{
		TenantID:      tenantID,
		Window:        leadstransport.NewWindowResponse(result.Window),
		Conversations: items,
		Stats:         result.Stats,
		Truncated:     result.Truncated,
	})
}

func (h *Handler) defaultWindow() leadsdomain.Window {
	return leadsdomain.LastDays(h.now(), h.windowDays)
}

func newConversationResponse(conv domain.Conversation) ConversationResponse {
	messages := conv.Messages
	if messages == nil {
		messages = []domain.Message{}
	}
	return ConversationResponse{
		ID:                 conv.ID,
		LeadName:           conv.LeadName,
		Phone:              conv.Phone,
		Tag:                conv.Tag,
		Status:             string(conv.Status),
		Qualified:          conv.Qualified,
		Sentiment:          string(conv.Sentiment.Sentiment),
		SentimentScore:     conv.Sentiment.Score,
		SentimentIntensity: string(conv.Sentiment.Intensity),
		Summary:            conv.Summary,
		StartedAt:          conv.StartedAt,
		EndedAt:            conv.EndedAt,
		Duration:           conv.DurationSeconds,
		Messages:           messages,
		CSAT:               conv.CSAT,
		Analyst:            conv.Analyst,
	}
}
