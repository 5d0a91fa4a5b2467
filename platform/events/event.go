// Package events is the in-process bus that carries funnel notifications,
// such as tag dictionary changes and archived exports, between modules.
package events

import (
	"context"
	"time"
)

// Event is a notification published on the bus. EventName is the
// subscription key, e.g. "tagmappings.changed".
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent stamps an event with its publication time.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to an event, for example by dropping cached summaries or
// enqueueing a refresh task.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans events out to subscribers keyed by event name.
type Bus interface {
	// Publish runs handlers in the background. A failing handler is logged
	// and never reaches the publisher, so a tag dictionary write succeeds
	// even if the summary cache cannot be cleared.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers inline and joins their errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
