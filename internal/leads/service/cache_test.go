package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSummaryCache(t *testing.T) (*SummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSummaryCache(client, time.Minute), mr
}

func TestSummaryCacheRoundTrip(t *testing.T) {
	c, _ := newTestSummaryCache(t)
	ctx := context.Background()
	tenantID := uuid.New()
	window := testWindow(t)

	_, ok, err := c.Get(ctx, tenantID, window)
	require.NoError(t, err)
	assert.False(t, ok)

	seq, err := c.NextSequence(ctx, tenantID)
	require.NoError(t, err)
	stored, err := c.Store(ctx, tenantID, window, seq, Summary{TenantSlug: "asf", TotalLeads: 7})
	require.NoError(t, err)
	assert.True(t, stored)

	got, ok, err := c.Get(ctx, tenantID, window)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, got.TotalLeads)
	assert.Equal(t, window.Key(), got.Window.Key())
}

func TestSummaryCacheIgnoresSupersededWrite(t *testing.T) {
	c, _ := newTestSummaryCache(t)
	ctx := context.Background()
	tenantID := uuid.New()
	window := testWindow(t)

	slow, err := c.NextSequence(ctx, tenantID)
	require.NoError(t, err)
	fast, err := c.NextSequence(ctx, tenantID)
	require.NoError(t, err)
	require.Greater(t, fast, slow)

	stored, err := c.Store(ctx, tenantID, window, fast, Summary{TotalLeads: 2})
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = c.Store(ctx, tenantID, window, slow, Summary{TotalLeads: 1})
	require.NoError(t, err)
	assert.False(t, stored)

	got, _, err := c.Get(ctx, tenantID, window)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalLeads)
}

func TestSummaryCacheInvalidate(t *testing.T) {
	c, mr := newTestSummaryCache(t)
	ctx := context.Background()
	tenantID := uuid.New()
	other := uuid.New()
	window := testWindow(t)

	for _, id := range []uuid.UUID{tenantID, other} {
		seq, err := c.NextSequence(ctx, id)
		require.NoError(t, err)
		_, err = c.Store(ctx, id, window, seq, Summary{})
		require.NoError(t, err)
	}

	require.NoError(t, c.Invalidate(ctx, tenantID))

	_, ok, err := c.Get(ctx, tenantID, window)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.Get(ctx, other, window)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists(sequenceKey(tenantID)))
}

func TestSummaryCacheRejectsWriteReservedBeforeInvalidate(t *testing.T) {
	c, _ := newTestSummaryCache(t)
	ctx := context.Background()
	tenantID := uuid.New()
	window := testWindow(t)

	stale, err := c.NextSequence(ctx, tenantID)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, tenantID))

	stored, err := c.Store(ctx, tenantID, window, stale, Summary{TotalLeads: 1})
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, err := c.Get(ctx, tenantID, window)
	require.NoError(t, err)
	assert.False(t, ok)

	fresh, err := c.NextSequence(ctx, tenantID)
	require.NoError(t, err)
	require.Greater(t, fresh, stale)
	stored, err = c.Store(ctx, tenantID, window, fresh, Summary{TotalLeads: 2})
	require.NoError(t, err)
	assert.True(t, stored)

	got, ok, err := c.Get(ctx, tenantID, window)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.TotalLeads)
}
