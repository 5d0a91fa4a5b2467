package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	leadsrepo "github.com/ZionTraffic/zion-flux-sub000/internal/leads/repository"
	leadsservice "github.com/ZionTraffic/zion-flux-sub000/internal/leads/service"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	mu      sync.Mutex
	calls   []uuid.UUID
	failFor map[uuid.UUID]bool
}

func (f *fakeRefresher) RefreshDefaultSummary(_ context.Context, tenantID uuid.UUID) (leadsservice.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tenantID)
	if f.failFor[tenantID] {
		return leadsservice.Summary{}, errors.New("primary down")
	}
	return leadsservice.Summary{TotalLeads: 3}, nil
}

type fakeTenants struct {
	tenants []leadsrepo.Tenant
	err     error
}

func (f fakeTenants) ListTenants(context.Context) ([]leadsrepo.Tenant, error) {
	return f.tenants, f.err
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	queue []uuid.UUID
}

func (f *fakeEnqueuer) EnqueueSummaryRefresh(_ context.Context, tenantID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, tenantID)
	return nil
}

func TestSummaryRefreshTaskCarriesTenant(t *testing.T) {
	tenantID := uuid.New()
	task, err := NewSummaryRefreshTask(tenantID)
	require.NoError(t, err)
	assert.Equal(t, TaskSummaryRefresh, task.Type())

	parsed, err := ParseSummaryRefreshPayload(task)
	require.NoError(t, err)
	assert.Equal(t, tenantID, parsed)
}

func TestParseSummaryRefreshPayloadRejectsBadTenant(t *testing.T) {
	_, err := ParseSummaryRefreshPayload(asynq.NewTask(TaskSummaryRefresh, []byte(`{"tenantId":"nope"}`)))
	require.Error(t, err)
}

func TestHandleSummaryRefresh(t *testing.T) {
	refresher := &fakeRefresher{}
	m := metrics.NewNop()
	w := newWorker(refresher, fakeTenants{}, logger.Nop(), m)

	tenantID := uuid.New()
	task, err := NewSummaryRefreshTask(tenantID)
	require.NoError(t, err)

	require.NoError(t, w.handleSummaryRefresh(context.Background(), task))
	assert.Equal(t, []uuid.UUID{tenantID}, refresher.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SummaryRefreshes.WithLabelValues("ok")))
}

func TestHandleSummaryRefreshSkipsRetryOnMalformedPayload(t *testing.T) {
	w := newWorker(&fakeRefresher{}, fakeTenants{}, logger.Nop(), nil)

	err := w.handleSummaryRefresh(context.Background(), asynq.NewTask(TaskSummaryRefresh, []byte(`{`)))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleSummaryRefreshPropagatesFailure(t *testing.T) {
	tenantID := uuid.New()
	m := metrics.NewNop()
	w := newWorker(&fakeRefresher{failFor: map[uuid.UUID]bool{tenantID: true}}, fakeTenants{}, logger.Nop(), m)

	task, err := NewSummaryRefreshTask(tenantID)
	require.NoError(t, err)

	require.Error(t, w.handleSummaryRefresh(context.Background(), task))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SummaryRefreshes.WithLabelValues("error")))
}

func TestHandleSummaryRefreshAllContinuesPastFailures(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	refresher := &fakeRefresher{failFor: map[uuid.UUID]bool{b: true}}
	tenants := fakeTenants{tenants: []leadsrepo.Tenant{{ID: a, Slug: "asf"}, {ID: b, Slug: "sieg"}, {ID: c, Slug: "zion"}}}
	m := metrics.NewNop()
	w := newWorker(refresher, tenants, logger.Nop(), m)

	require.NoError(t, w.handleSummaryRefreshAll(context.Background(), NewSummaryRefreshAllTask()))
	assert.Equal(t, []uuid.UUID{a, b, c}, refresher.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SummaryRefreshes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SummaryRefreshes.WithLabelValues("error")))
}

func TestHandleSummaryRefreshAllFailsWhenTenantsUnavailable(t *testing.T) {
	w := newWorker(&fakeRefresher{}, fakeTenants{err: errors.New("db down")}, logger.Nop(), nil)
	require.Error(t, w.handleSummaryRefreshAll(context.Background(), NewSummaryRefreshAllTask()))
}

func TestSubscribeTagMappingChangesEnqueuesRefresh(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Nop())
	enqueuer := &fakeEnqueuer{}
	SubscribeTagMappingChanges(bus, enqueuer, logger.Nop())

	tenantID := uuid.New()
	require.NoError(t, bus.PublishSync(context.Background(), events.TagMappingsChanged{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenantID,
		Count:     4,
	}))

	assert.Equal(t, []uuid.UUID{tenantID}, enqueuer.queue)
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("rediss://user:pw@cache.internal:6380/2", true)
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opt.Addr)
	assert.Equal(t, "user", opt.Username)
	assert.Equal(t, 2, opt.DB)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)
}

func TestEnqueueOnNilClientIsNoop(t *testing.T) {
	var c *Client
	assert.NoError(t, c.EnqueueSummaryRefresh(context.Background(), uuid.New()))
	assert.NoError(t, c.Close())
}
