package events

import (
	platformevents "github.com/ZionTraffic/zion-flux-sub000/platform/events"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
)

// InMemoryBus is shared by the API, the scheduler and leadctl so that
// TagMappingsChanged reaches both the summary cache and the refresh queue.
type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
