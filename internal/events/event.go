// Package events defines the funnel's domain events. The bus itself lives
// in platform/events.
package events

import (
	"github.com/ZionTraffic/zion-flux-sub000/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Tag Mapping Events
// =============================================================================

// TagMappingsChanged is published after a tenant's tag dictionary is written.
type TagMappingsChanged struct {
	BaseEvent
	TenantID uuid.UUID `json:"tenantId"`
	Count    int       `json:"count"`
}

func (e TagMappingsChanged) EventName() string { return "tagmappings.changed" }

// =============================================================================
// Lead Export Events
// =============================================================================

// LeadExportArchived is published when a board export is stored in object storage.
type LeadExportArchived struct {
	BaseEvent
	TenantID  uuid.UUID `json:"tenantId"`
	ObjectKey string    `json:"objectKey"`
	Rows      int       `json:"rows"`
}

func (e LeadExportArchived) EventName() string { return "leads.export.archived" }
