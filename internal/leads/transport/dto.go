package transport

import (
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/service"

	"github.com/google/uuid"
)

// Request DTOs

// WindowQuery selects inclusive calendar days. Both or neither must be set.
type WindowQuery struct {
	Start   string `form:"start" validate:"omitempty,datetime=2006-01-02"`
	End     string `form:"end" validate:"omitempty,datetime=2006-01-02"`
	Refresh bool   `form:"refresh"`
}

type ClassifyQuery struct {
	Tag    string `form:"tag" validate:"required,max=500"`
	Tenant string `form:"tenant" validate:"omitempty,slug,max=100"`
}

// Response DTOs

type WindowResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type LeadResponse struct {
	ID                     uuid.UUID `json:"id"`
	Name                   string    `json:"name"`
	Phone                  string    `json:"phone"`
	Email                  *string   `json:"email,omitempty"`
	ProductInterest        string    `json:"productInterest,omitempty"`
	OriginChannel          string    `json:"originChannel"`
	Stage                  string    `json:"stage"`
	EnteredAt              time.Time `json:"enteredAt"`
	ReferenceDate          string    `json:"referenceDate"`
	PendingAmount          *string   `json:"pendingAmount,omitempty"`
	RecoveredByAIAmount    *string   `json:"recoveredByAiAmount,omitempty"`
	RecoveredByHumanAmount *string   `json:"recoveredByHumanAmount,omitempty"`
	Tags                   []string  `json:"tags,omitempty"`
	TagSource              string    `json:"tagSource"`
}

type ColumnResponse struct {
	Stage       string         `json:"stage"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Count       int            `json:"count"`
	Leads       []LeadResponse `json:"leads"`
}

type BoardResponse struct {
	TenantID   uuid.UUID        `json:"tenantId"`
	TenantSlug string           `json:"tenantSlug"`
	Window     WindowResponse   `json:"window"`
	Total      int              `json:"total"`
	Columns    []ColumnResponse `json:"columns"`
	Partial    bool             `json:"partial"`
}

type StageLabelResponse struct {
	Stage       string `json:"stage"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type LabelsResponse struct {
	TenantSlug string               `json:"tenantSlug"`
	Labels     []StageLabelResponse `json:"labels"`
}

type ClassifyResponse struct {
	Tag    string             `json:"tag"`
	Tenant string             `json:"tenant,omitempty"`
	Stage  string             `json:"stage"`
	Label  StageLabelResponse `json:"label"`
}

type SummaryResponse struct {
	TenantID uuid.UUID      `json:"tenantId"`
	Window   WindowResponse `json:"window"`
	service.Summary
}

// Mappers

func NewWindowResponse(w domain.Window) WindowResponse {
	return WindowResponse{
		Start: domain.ReferenceDate(w.Start),
		End:   domain.ReferenceDate(w.EndExclusive.AddDate(0, 0, -1)),
	}
}

func NewLeadResponse(lead domain.Lead) LeadResponse {
	return LeadResponse{
		ID:                     lead.ID,
		Name:                   lead.Name,
		Phone:                  lead.Phone,
		Email:                  optional(lead.Email),
		ProductInterest:        lead.ProductInterest,
		OriginChannel:          lead.OriginChannel,
		Stage:                  string(lead.Stage),
		EnteredAt:              lead.EnteredAt,
		ReferenceDate:          lead.ReferenceDate,
		PendingAmount:          optional(lead.PendingAmount),
		RecoveredByAIAmount:    optional(lead.RecoveredByAIAmount),
		RecoveredByHumanAmount: optional(lead.RecoveredByHumanAmount),
		Tags:                   lead.Tags,
		TagSource:              lead.TagSource.String(),
	}
}

func NewBoardResponse(board service.Board) BoardResponse {
	columns := make([]ColumnResponse, 0, 5)
	for _, stage := range domain.Stages() {
		leads := board.LeadsByStage[stage]
		items := make([]LeadResponse, 0, len(leads))
		for _, lead := range leads {
			items = append(items, NewLeadResponse(lead))
		}
		label := board.Labels[stage]
		columns = append(columns, ColumnResponse{
			Stage:       string(stage),
			Title:       label.Title,
			Description: label.Description,
			Count:       len(items),
			Leads:       items,
		})
	}
	return BoardResponse{
		TenantID:   board.Tenant.ID,
		TenantSlug: board.Tenant.Slug,
		Window:     NewWindowResponse(board.Window),
		Total:      board.Len(),
		Columns:    columns,
		Partial:    board.EnrichmentSkipped,
	}
}

func NewLabelsResponse(tenantSlug string, labels map[domain.LeadStage]domain.StageLabel) LabelsResponse {
	items := make([]StageLabelResponse, 0, len(labels))
	for _, stage := range domain.Stages() {
		items = append(items, NewStageLabelResponse(stage, labels[stage]))
	}
	return LabelsResponse{TenantSlug: tenantSlug, Labels: items}
}

func NewStageLabelResponse(stage domain.LeadStage, label domain.StageLabel) StageLabelResponse {
	return StageLabelResponse{Stage: string(stage), Title: label.Title, Description: label.Description}
}

func NewSummaryResponse(tenantID uuid.UUID, summary service.Summary) SummaryResponse {
	return SummaryResponse{
		TenantID: tenantID,
		Window:   NewWindowResponse(summary.Window),
		Summary:  summary,
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
