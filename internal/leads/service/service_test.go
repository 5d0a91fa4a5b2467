package service

import (
	"context"
	"testing"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/repository"
	"github.com/ZionTraffic/zion-flux-sub000/platform/apperr"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc      *Service
	source   *fakeSource
	metrics  *metrics.Metrics
	tenantID uuid.UUID
}

func newServiceFixture(t *testing.T, slug string, mappers MapperProvider, cache *SummaryCache) serviceFixture {
	t.Helper()
	tenantID := uuid.New()
	source := &fakeSource{leads: []repository.LeadRow{
		{ID: uuid.New(), Status: strPtr("T3 - Qualificado")},
		{ID: uuid.New(), CurrentTags: []string{"quente"}},
	}}
	m := metrics.NewNop()
	svc := New(Deps{
		Tenants: fakeTenants{tenants: map[uuid.UUID]repository.Tenant{
			tenantID: {ID: tenantID, Slug: slug, Name: "Tenant"},
		}},
		Fetcher: newTestFetcher(source, m),
		Mappers: mappers,
		Cache:   cache,
		Log:     logger.Nop(),
		Metrics: m,
	})
	return serviceFixture{svc: svc, source: source, metrics: m, tenantID: tenantID}
}

func TestBoardUnknownTenant(t *testing.T) {
	fx := newServiceFixture(t, "asf", nil, nil)

	_, err := fx.svc.Board(context.Background(), uuid.New(), testWindow(t))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestBoardUsesTenantMapper(t *testing.T) {
	mappers := MapperProviderFunc(func(context.Context, uuid.UUID) (TagMapper, error) {
		return mapTagMapper{"quente": domain.StageFollowup}, nil
	})
	fx := newServiceFixture(t, "asf", mappers, nil)

	board, err := fx.svc.Board(context.Background(), fx.tenantID, testWindow(t))
	require.NoError(t, err)

	assert.Equal(t, "asf", board.Tenant.Slug)
	assert.Len(t, board.LeadsByStage[domain.StageQualified], 1)
	assert.Len(t, board.LeadsByStage[domain.StageFollowup], 1)
	assert.Equal(t, "T3 - Qualificado", board.Labels[domain.StageQualified].Title)
}

func TestBoardFallsBackToHeuristicsWhenMappingsFail(t *testing.T) {
	mappers := MapperProviderFunc(func(context.Context, uuid.UUID) (TagMapper, error) {
		return nil, errBoom
	})
	fx := newServiceFixture(t, "asf", mappers, nil)

	board, err := fx.svc.Board(context.Background(), fx.tenantID, testWindow(t))
	require.NoError(t, err)
	assert.Len(t, board.LeadsByStage[domain.StageNewLead], 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(fx.metrics.EnrichmentFailures.WithLabelValues("tag_mappings")))
}

func TestSummaryServedFromCache(t *testing.T) {
	cache, _ := newTestSummaryCache(t)
	fx := newServiceFixture(t, "asf", nil, cache)
	ctx := context.Background()
	window := testWindow(t)

	first, err := fx.svc.Summary(ctx, fx.tenantID, window, false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalLeads)
	assert.Equal(t, 1, fx.source.leadPageCalls)

	second, err := fx.svc.Summary(ctx, fx.tenantID, window, false)
	require.NoError(t, err)
	assert.Equal(t, first.TotalLeads, second.TotalLeads)
	assert.Equal(t, 1, fx.source.leadPageCalls)
	assert.Equal(t, float64(1), testutil.ToFloat64(fx.metrics.SummaryCacheLookups.WithLabelValues("hit")))

	_, err = fx.svc.Summary(ctx, fx.tenantID, window, true)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.source.leadPageCalls)
}

func TestSummaryWithoutCache(t *testing.T) {
	fx := newServiceFixture(t, "asf", nil, nil)

	summary, err := fx.svc.Summary(context.Background(), fx.tenantID, testWindow(t), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Qualified)
	assert.Equal(t, 50.0, summary.QualificationRate)
}

func TestSummaryPrimaryFailure(t *testing.T) {
	fx := newServiceFixture(t, "asf", nil, nil)
	fx.source.leadsErr = errBoom

	_, err := fx.svc.Summary(context.Background(), fx.tenantID, testWindow(t), false)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
}

func TestInvalidateSummaries(t *testing.T) {
	cache, _ := newTestSummaryCache(t)
	fx := newServiceFixture(t, "asf", nil, cache)
	ctx := context.Background()
	window := testWindow(t)

	_, err := fx.svc.Summary(ctx, fx.tenantID, window, false)
	require.NoError(t, err)
	require.NoError(t, fx.svc.InvalidateSummaries(ctx, fx.tenantID))

	_, err = fx.svc.Summary(ctx, fx.tenantID, window, false)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.source.leadPageCalls)
}

func TestClassify(t *testing.T) {
	fx := newServiceFixture(t, "sieg", nil, nil)

	assert.Equal(t, domain.StageQualified, fx.svc.Classify("T3 - PAGO", "sieg"))
	assert.Equal(t, domain.StageDiscarded, fx.svc.Classify("T5 desqualificado", "sieg"))
}

func TestLabels(t *testing.T) {
	fx := newServiceFixture(t, "sieg", nil, nil)

	tenant, labels, err := fx.svc.Labels(context.Background(), fx.tenantID)
	require.NoError(t, err)
	assert.Equal(t, "sieg", tenant.Slug)
	assert.Contains(t, labels[domain.StageQualified].Title, "Pago")
}
