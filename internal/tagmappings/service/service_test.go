package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/tagmappings/repository"
	"github.com/ZionTraffic/zion-flux-sub000/platform/apperr"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	rows      map[uuid.UUID][]repository.Mapping
	listCalls int
	err       error
}

func (f *fakeStore) ListActive(_ context.Context, tenantID uuid.UUID) ([]repository.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]repository.Mapping(nil), f.rows[tenantID]...), nil
}

func (f *fakeStore) Replace(_ context.Context, tenantID uuid.UUID, mappings []repository.Mapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows[tenantID] = append([]repository.Mapping(nil), mappings...)
	return nil
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestMapperIsServedFromCache(t *testing.T) {
	tenantID := uuid.New()
	store := &fakeStore{rows: map[uuid.UUID][]repository.Mapping{tenantID: sampleMappings()}}
	svc := New(store, newRedis(t), time.Minute, nil, nil, logger.Nop())

	first, err := svc.Mapper(context.Background(), tenantID)
	require.NoError(t, err)
	second, err := svc.Mapper(context.Background(), tenantID)
	require.NoError(t, err)

	assert.Equal(t, 1, store.listCalls)
	assert.Equal(t, first.Len(), second.Len())
	stage, ok := second.StageForTag("FECHOU")
	assert.True(t, ok)
	assert.Equal(t, domain.StageQualified, stage)
}

func TestMapperWithoutRedisHitsStore(t *testing.T) {
	tenantID := uuid.New()
	store := &fakeStore{rows: map[uuid.UUID][]repository.Mapping{tenantID: sampleMappings()}}
	svc := New(store, nil, time.Minute, nil, nil, logger.Nop())

	for i := 0; i < 2; i++ {
		_, err := svc.Mapper(context.Background(), tenantID)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, store.listCalls)
}

func TestMapperStoreFailure(t *testing.T) {
	store := &fakeStore{rows: map[uuid.UUID][]repository.Mapping{}, err: errors.New("timeout")}
	svc := New(store, nil, time.Minute, nil, nil, logger.Nop())

	_, err := svc.Mapper(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestReplaceInvalidatesCacheAndPublishes(t *testing.T) {
	tenantID := uuid.New()
	store := &fakeStore{rows: map[uuid.UUID][]repository.Mapping{tenantID: sampleMappings()}}
	bus := events.NewInMemoryBus(logger.Nop())

	var (
		mu       sync.Mutex
		received []events.TagMappingsChanged
	)
	bus.Subscribe(events.TagMappingsChanged{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e.(events.TagMappingsChanged))
		return nil
	}))

	svc := New(store, newRedis(t), time.Minute, nil, bus, logger.Nop())
	_, err := svc.Mapper(context.Background(), tenantID)
	require.NoError(t, err)

	updated, err := svc.Replace(context.Background(), tenantID, []repository.Mapping{
		{ExternalTag: "Pagou", InternalStage: "t3", DisplayOrder: 2},
		{ExternalTag: "Chegou", InternalStage: "new_lead", DisplayLabel: "Entrada", DisplayOrder: 1},
	})
	require.NoError(t, err)
	bus.Wait()

	assert.Equal(t, []domain.LeadStage{domain.StageNewLead, domain.StageQualified}, updated.UniqueStages())
	assert.Equal(t, "Pagou", updated.DisplayLabel("pagou"))

	reloaded, err := svc.Mapper(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls)
	stage, ok := reloaded.StageForTag("pagou")
	assert.True(t, ok)
	assert.Equal(t, domain.StageQualified, stage)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, tenantID, received[0].TenantID)
	assert.Equal(t, 2, received[0].Count)
}

func TestReplaceValidation(t *testing.T) {
	svc := New(&fakeStore{rows: map[uuid.UUID][]repository.Mapping{}}, nil, time.Minute, nil, nil, logger.Nop())

	cases := map[string][]repository.Mapping{
		"empty tag":     {{ExternalTag: " ", InternalStage: "qualified"}},
		"unknown stage": {{ExternalTag: "x", InternalStage: "arquivado"}},
		"duplicate":     {{ExternalTag: "Pago", InternalStage: "t3"}, {ExternalTag: "PAGO", InternalStage: "t3"}},
	}
	for name, mappings := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Replace(context.Background(), uuid.New(), mappings)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
}

func TestReplaceStripsMarkup(t *testing.T) {
	tenantID := uuid.New()
	store := &fakeStore{rows: map[uuid.UUID][]repository.Mapping{}}
	svc := New(store, nil, time.Minute, nil, nil, logger.Nop())

	raw := "<p>Pagamento   confirmado</p>"
	blank := " <br> "
	updated, err := svc.Replace(context.Background(), tenantID, []repository.Mapping{
		{ExternalTag: "<b>Pago</b>", InternalStage: "qualified", DisplayLabel: "<i>T3</i> - Pago", Description: &raw},
		{ExternalTag: "Retorno", InternalStage: "followup", Description: &blank},
	})
	require.NoError(t, err)

	assert.Equal(t, "T3 - Pago", updated.DisplayLabel("pago"))
	desc, ok := updated.Description("pago")
	assert.True(t, ok)
	assert.Equal(t, "Pagamento confirmado", desc)
	_, ok = updated.Description("retorno")
	assert.False(t, ok)
}
