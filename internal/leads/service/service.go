// Package service builds lead funnel boards and summaries for a tenant.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/repository"
	"github.com/ZionTraffic/zion-flux-sub000/platform/apperr"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"

	"github.com/google/uuid"
)

// MapperProvider returns the tag dictionary of a tenant.
type MapperProvider interface {
	MapperFor(ctx context.Context, tenantID uuid.UUID) (TagMapper, error)
}

// MapperProviderFunc adapts a function to MapperProvider.
type MapperProviderFunc func(ctx context.Context, tenantID uuid.UUID) (TagMapper, error)

func (f MapperProviderFunc) MapperFor(ctx context.Context, tenantID uuid.UUID) (TagMapper, error) {
	return f(ctx, tenantID)
}

// Board is a classified lead set with the tenant it belongs to.
type Board struct {
	Tenant repository.Tenant
	Window domain.Window
	Labels map[domain.LeadStage]domain.StageLabel
	FetchResult
}

type Service struct {
	tenants    repository.TenantReader
	fetcher    *Fetcher
	aggregator *Aggregator
	catalog    *domain.Catalog
	mappers    MapperProvider
	cache      *SummaryCache
	windowDays int
	log        *logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Deps are the collaborators of Service. Mappers and Cache are optional.
type Deps struct {
	Tenants    repository.TenantReader
	Fetcher    *Fetcher
	Catalog    *domain.Catalog
	Mappers    MapperProvider
	Cache      *SummaryCache
	WindowDays int
	Log        *logger.Logger
	Metrics    *metrics.Metrics
}

func New(deps Deps) *Service {
	catalog := deps.Catalog
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	windowDays := deps.WindowDays
	if windowDays < 1 {
		windowDays = 30
	}
	return &Service{
		tenants:    deps.Tenants,
		fetcher:    deps.Fetcher,
		aggregator: NewAggregator(catalog),
		catalog:    catalog,
		mappers:    deps.Mappers,
		cache:      deps.Cache,
		windowDays: windowDays,
		log:        deps.Log,
		metrics:    deps.Metrics,
		now:        time.Now,
	}
}

// DefaultWindow is the window used when a request names no dates.
func (s *Service) DefaultWindow() domain.Window {
	return domain.LastDays(s.now(), s.windowDays)
}

func (s *Service) tenant(ctx context.Context, tenantID uuid.UUID) (repository.Tenant, error) {
	tenant, err := s.tenants.GetTenant(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Tenant{}, apperr.NotFound("tenant not found")
	}
	if err != nil {
		return repository.Tenant{}, apperr.Upstream("failed to load tenant", err)
	}
	return tenant, nil
}

// Board fetches and classifies the tenant's leads in window.
func (s *Service) Board(ctx context.Context, tenantID uuid.UUID, window domain.Window) (Board, error) {
	tenant, err := s.tenant(ctx, tenantID)
	if err != nil {
		return Board{}, err
	}
	result, err := s.fetch(ctx, tenant, window)
	if err != nil {
		return Board{}, err
	}
	return Board{
		Tenant:      tenant,
		Window:      window,
		Labels:      s.catalog.Labels(tenant.Slug),
		FetchResult: result,
	}, nil
}

func (s *Service) fetch(ctx context.Context, tenant repository.Tenant, window domain.Window) (FetchResult, error) {
	params := FetchParams{
		TenantID:        tenant.ID,
		TenantSlug:      tenant.Slug,
		Window:          window,
		MappingsLoading: true,
	}
	if s.mappers != nil {
		mapper, err := s.mappers.MapperFor(ctx, tenant.ID)
		if err != nil {
			s.log.WithContext(ctx).EnrichmentSkipped("tag_mappings", err)
			s.metrics.EnrichmentFailures.WithLabelValues("tag_mappings").Inc()
		} else {
			params.TagMapper = mapper
			params.MappingsLoading = false
		}
	}
	return s.fetcher.Fetch(ctx, params)
}

// Summary returns the aggregate for window, served from cache unless
// refresh is set.
func (s *Service) Summary(ctx context.Context, tenantID uuid.UUID, window domain.Window, refresh bool) (Summary, error) {
	log := s.log.WithContext(ctx)

	if s.cache != nil && !refresh {
		cached, ok, err := s.cache.Get(ctx, tenantID, window)
		switch {
		case err != nil:
			log.Warn("summary cache read failed", "error", err)
			s.metrics.SummaryCacheLookups.WithLabelValues("error").Inc()
		case ok:
			s.metrics.SummaryCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			s.metrics.SummaryCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	tenant, err := s.tenant(ctx, tenantID)
	if err != nil {
		return Summary{}, err
	}

	var seq int64
	if s.cache != nil {
		if seq, err = s.cache.NextSequence(ctx, tenantID); err != nil {
			log.Warn("summary sequence unavailable", "error", err)
		}
	}

	result, err := s.fetch(ctx, tenant, window)
	if err != nil {
		return Summary{}, err
	}
	summary := s.aggregator.Summarize(result, window, tenant.Slug)

	if s.cache != nil && seq > 0 {
		stored, err := s.cache.Store(ctx, tenantID, window, seq, summary)
		switch {
		case err != nil:
			log.Warn("summary cache write failed", "error", err)
		case !stored:
			s.metrics.SummaryStaleDiscards.Inc()
			log.Debug("summary superseded by newer computation", "seq", seq)
		}
	}
	return summary, nil
}

// RefreshDefaultSummary recomputes the default-window summary of a tenant.
func (s *Service) RefreshDefaultSummary(ctx context.Context, tenantID uuid.UUID) (Summary, error) {
	return s.Summary(ctx, tenantID, s.DefaultWindow(), true)
}

// InvalidateSummaries drops every cached summary of the tenant.
func (s *Service) InvalidateSummaries(ctx context.Context, tenantID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, tenantID)
}

// Labels returns the stage labels of the tenant.
func (s *Service) Labels(ctx context.Context, tenantID uuid.UUID) (repository.Tenant, map[domain.LeadStage]domain.StageLabel, error) {
	tenant, err := s.tenant(ctx, tenantID)
	if err != nil {
		return repository.Tenant{}, nil, err
	}
	return tenant, s.catalog.Labels(tenant.Slug), nil
}

// Classify runs the normalizer on a single tag.
func (s *Service) Classify(tag, tenantSlug string) domain.LeadStage {
	return s.catalog.Normalize([]string{tag}, tenantSlug)
}

// Catalog exposes the rule set in use.
func (s *Service) Catalog() *domain.Catalog {
	return s.catalog
}
