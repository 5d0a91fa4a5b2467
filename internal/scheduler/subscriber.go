package scheduler

import (
	"context"

	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
)

// SubscribeTagMappingChanges warms a tenant's summary after its tag
// dictionary is replaced.
func SubscribeTagMappingChanges(bus events.Bus, enqueuer RefreshEnqueuer, log *logger.Logger) {
	if bus == nil || enqueuer == nil {
		return
	}
	bus.Subscribe(events.TagMappingsChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.TagMappingsChanged)
		if !ok {
			return nil
		}
		if err := enqueuer.EnqueueSummaryRefresh(ctx, e.TenantID); err != nil {
			log.WithTenant(e.TenantID.String()).Warn("summary refresh not queued", "error", err)
			return err
		}
		return nil
	}))
}
