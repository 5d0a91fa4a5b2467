// Package service loads tenant tag dictionaries through a Redis cache and
// applies edits.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/tagmappings/repository"
	"github.com/ZionTraffic/zion-flux-sub000/platform/apperr"
	"github.com/ZionTraffic/zion-flux-sub000/platform/cache"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/sanitize"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tagmappings:"

// Store is the persistence the service needs.
type Store interface {
	repository.Reader
	repository.Writer
}

type Service struct {
	store   Store
	redis   *redis.Client
	ttl     time.Duration
	catalog *domain.Catalog
	bus     events.Bus
	log     *logger.Logger
}

// New builds the service. client and bus may be nil.
func New(store Store, client *redis.Client, ttl time.Duration, catalog *domain.Catalog, bus events.Bus, log *logger.Logger) *Service {
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	return &Service{
		store:   store,
		redis:   client,
		ttl:     ttl,
		catalog: catalog,
		bus:     bus,
		log:     log,
	}
}

func cacheKey(tenantID uuid.UUID) string {
	return keyPrefix + tenantID.String()
}

// Mapper returns the tenant's active dictionary.
func (s *Service) Mapper(ctx context.Context, tenantID uuid.UUID) (*Mapper, error) {
	mappings, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return NewMapper(mappings, s.catalog), nil
}

func (s *Service) load(ctx context.Context, tenantID uuid.UUID) ([]repository.Mapping, error) {
	log := s.log.WithContext(ctx)

	if s.redis != nil {
		var cached []repository.Mapping
		err := cache.GetJSON(ctx, s.redis, cacheKey(tenantID), &cached)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, cache.ErrMiss):
			log.Warn("tag mapping cache read failed", "error", err)
		}
	}

	mappings, err := s.store.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tag mappings: %w", err)
	}

	if s.redis != nil {
		if err := cache.SetJSON(ctx, s.redis, cacheKey(tenantID), mappings, s.ttl); err != nil {
			log.Warn("tag mapping cache write failed", "error", err)
		}
	}
	return mappings, nil
}

// Replace validates and stores a tenant's whole dictionary, then announces
// the change.
func (s *Service) Replace(ctx context.Context, tenantID uuid.UUID, mappings []repository.Mapping) (*Mapper, error) {
	seen := make(map[string]struct{}, len(mappings))
	for i := range mappings {
		m := &mappings[i]
		m.ExternalTag = sanitize.Text(m.ExternalTag)
		if m.ExternalTag == "" {
			return nil, apperr.Validation("external tag must not be empty")
		}
		key := tagKey(m.ExternalTag)
		if _, dup := seen[key]; dup {
			return nil, apperr.Validation(fmt.Sprintf("duplicate external tag %q", m.ExternalTag))
		}
		seen[key] = struct{}{}

		stage, ok := s.catalog.ResolveStage(m.InternalStage)
		if !ok {
			return nil, apperr.Validation(fmt.Sprintf("unknown stage %q for tag %q", m.InternalStage, m.ExternalTag))
		}
		m.InternalStage = string(stage)
		m.DisplayLabel = sanitize.Text(m.DisplayLabel)
		m.Description = sanitize.TextPtr(m.Description)
		if m.DisplayLabel == "" {
			m.DisplayLabel = m.ExternalTag
		}
	}

	slices.SortStableFunc(mappings, func(a, b repository.Mapping) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), strings.Compare(a.ExternalTag, b.ExternalTag))
	})

	if err := s.store.Replace(ctx, tenantID, mappings); err != nil {
		return nil, fmt.Errorf("replace tag mappings: %w", err)
	}
	if err := s.Invalidate(ctx, tenantID); err != nil {
		s.log.WithContext(ctx).Warn("tag mapping cache invalidation failed", "error", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.TagMappingsChanged{
			BaseEvent: events.NewBaseEvent(),
			TenantID:  tenantID,
			Count:     len(mappings),
		})
	}
	return NewMapper(mappings, s.catalog), nil
}

// Invalidate drops the cached dictionary of the tenant.
func (s *Service) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, cacheKey(tenantID)).Err()
}
