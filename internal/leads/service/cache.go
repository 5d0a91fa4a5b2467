package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/platform/cache"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	summaryKeyPrefix = "leads:summary:"
	sequenceTTL      = 24 * time.Hour
	maxStoreAttempts = 3
)

// SummaryCache stores computed summaries in Redis. Every computation takes a
// per-tenant sequence number before fetching. A snapshot is only written
// when no snapshot with a higher sequence is stored and no invalidation
// happened after the sequence was taken, so a slow computation never
// replaces a newer one or resurrects data built from stale tag mappings.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

type cachedSummary struct {
	Sequence int64     `json:"seq"`
	StoredAt time.Time `json:"storedAt"`
	Summary  Summary   `json:"summary"`
}

func summaryKey(tenantID uuid.UUID, window domain.Window) string {
	return summaryKeyPrefix + tenantID.String() + ":" + window.Key()
}

func sequenceKey(tenantID uuid.UUID) string {
	return summaryKeyPrefix + "seq:" + tenantID.String()
}

// invalidatedKey holds the sequence reserved by the latest Invalidate.
func invalidatedKey(tenantID uuid.UUID) string {
	return summaryKeyPrefix + "invalidated:" + tenantID.String()
}

// invalidateScript reserves a sequence and records it as the invalidation
// marker in one step, keeping the marker monotonic.
var invalidateScript = redis.NewScript(`
local seq = redis.call("INCR", KEYS[1])
redis.call("EXPIRE", KEYS[1], ARGV[1])
redis.call("SET", KEYS[2], seq, "EX", ARGV[1])
return seq
`)

// Get returns the cached summary for the tenant and window.
func (c *SummaryCache) Get(ctx context.Context, tenantID uuid.UUID, window domain.Window) (Summary, bool, error) {
	var entry cachedSummary
	err := cache.GetJSON(ctx, c.client, summaryKey(tenantID, window), &entry)
	if errors.Is(err, cache.ErrMiss) {
		return Summary{}, false, nil
	}
	if err != nil {
		return Summary{}, false, err
	}
	return entry.Summary, true, nil
}

// NextSequence reserves the sequence number of a new computation.
func (c *SummaryCache) NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	key := sequenceKey(tenantID)
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("reserve summary sequence: %w", err)
	}
	return incr.Val(), nil
}

// Store writes summary computed under seq. It reports false when a newer
// computation already stored its snapshot or the tenant was invalidated
// after seq was reserved.
func (c *SummaryCache) Store(ctx context.Context, tenantID uuid.UUID, window domain.Window, seq int64, summary Summary) (bool, error) {
	key := summaryKey(tenantID, window)
	marker := invalidatedKey(tenantID)
	payload, err := json.Marshal(cachedSummary{Sequence: seq, StoredAt: time.Now().UTC(), Summary: summary})
	if err != nil {
		return false, err
	}

	for attempt := 0; attempt < maxStoreAttempts; attempt++ {
		stored := false
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			invalidatedAt, err := tx.Get(ctx, marker).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if seq <= invalidatedAt {
				return nil
			}

			raw, err := tx.Get(ctx, key).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil {
				var current cachedSummary
				if json.Unmarshal(raw, &current) == nil && current.Sequence > seq {
					return nil
				}
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, c.ttl)
				return nil
			})
			if err == nil {
				stored = true
			}
			return err
		}, key, marker)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("store summary: %w", err)
		}
		return stored, nil
	}
	return false, nil
}

// Invalidate drops every cached summary of the tenant and rejects later
// writes from computations that reserved their sequence before this call.
func (c *SummaryCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	keys := []string{sequenceKey(tenantID), invalidatedKey(tenantID)}
	if err := invalidateScript.Run(ctx, c.client, keys, int(sequenceTTL.Seconds())).Err(); err != nil {
		return fmt.Errorf("mark summaries invalidated: %w", err)
	}
	_, err := cache.DeletePattern(ctx, c.client, summaryKeyPrefix+tenantID.String()+":*")
	return err
}
