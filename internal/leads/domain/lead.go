package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lead is one classified lead as shown on a funnel board.
type Lead struct {
	ID              uuid.UUID
	Name            string
	Phone           string
	Email           string
	ProductInterest string
	OriginChannel   string
	Stage           LeadStage
	EnteredAt       time.Time
	// ReferenceDate is the São Paulo calendar day of EnteredAt.
	ReferenceDate          string
	PendingAmount          string
	RecoveredByAIAmount    string
	RecoveredByHumanAmount string
	Tags                   []string
	TagSource              TagSource
}

// ConversationSummary is the per-lead row of a conversation summary table,
// read only as a fallback tag source.
type ConversationSummary struct {
	LeadRef   uuid.UUID
	Tag       string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Board partitions leads by stage and keeps the flat list in fetch order.
type Board struct {
	LeadsByStage map[LeadStage][]Lead
	AllLeads     []Lead
}

// NewBoard returns a board with an empty list for every stage.
func NewBoard() Board {
	byStage := make(map[LeadStage][]Lead, len(funnelOrder))
	for _, stage := range funnelOrder {
		byStage[stage] = []Lead{}
	}
	return Board{LeadsByStage: byStage, AllLeads: []Lead{}}
}

// Add places lead in its stage bucket and in the flat list.
func (b *Board) Add(lead Lead) {
	if !lead.Stage.Valid() {
		lead.Stage = StageNewLead
	}
	b.LeadsByStage[lead.Stage] = append(b.LeadsByStage[lead.Stage], lead)
	b.AllLeads = append(b.AllLeads, lead)
}

// Len returns the number of leads on the board.
func (b Board) Len() int {
	return len(b.AllLeads)
}
