// Package service lists and analyzes a tenant's conversations.
package service

import (
	"context"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/conversations/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/conversations/repository"
	leadsdomain "github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/platform/apperr"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Result is an analyzed conversation list.
type Result struct {
	Window        leadsdomain.Window
	Conversations []domain.Conversation
	Stats         domain.Stats
	// Truncated is set when the listing hit the row cap.
	Truncated bool
}

type Service struct {
	repo    repository.Reader
	minDate time.Time
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New builds the service. Conversations created before minDate are never
// returned.
func New(repo repository.Reader, minDate time.Time, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, minDate: minDate, log: log, metrics: m}
}

// List reads the tenant's conversations in window together with the total
// and qualified counts. Only the listing is required; a failed count falls
// back to the listed rows.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, window leadsdomain.Window) (Result, error) {
	rg := repository.Range{TenantID: tenantID, Start: window.Start, EndExclusive: window.EndExclusive}
	if rg.Start.Before(s.minDate) {
		rg.Start = s.minDate
	}
	if !rg.EndExclusive.After(rg.Start) {
		return Result{Window: window, Conversations: []domain.Conversation{}}, nil
	}

	log := s.log.WithContext(ctx)
	var (
		rows           []repository.Row
		total          int
		qualifiedTotal int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx, rg, repository.MaxRows)
		return err
	})
	g.Go(func() error {
		n, err := s.repo.Count(gctx, rg)
		if err != nil {
			log.EnrichmentSkipped("conversation_count", err)
			s.metrics.EnrichmentFailures.WithLabelValues("conversation_count").Inc()
			return nil
		}
		total = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountQualified(gctx, rg)
		if err != nil {
			log.EnrichmentSkipped("conversation_qualified_count", err)
			s.metrics.EnrichmentFailures.WithLabelValues("conversation_qualified_count").Inc()
			return nil
		}
		qualifiedTotal = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, apperr.Upstream("failed to load conversations", err).WithOp("conversations.List")
	}

	conversations := make([]domain.Conversation, 0, len(rows))
	for _, row := range rows {
		if conv, ok := domain.Analyze(toTranscript(row)); ok {
			conversations = append(conversations, conv)
		}
	}

	return Result{
		Window:        window,
		Conversations: conversations,
		Stats:         domain.ComputeStats(conversations, total, qualifiedTotal),
		Truncated:     len(rows) >= repository.MaxRows,
	}, nil
}

func toTranscript(row repository.Row) domain.Transcript {
	return domain.Transcript{
		ID:        row.ID,
		LeadName:  firstNonBlank(deref(row.LeadName), deref(row.Nome)),
		Phone:     deref(row.Phone),
		Tag:       deref(row.Tag),
		Messages:  row.Messages,
		CSAT:      deref(row.CSAT),
		Analyst:   deref(row.Analyst),
		StartedAt: row.StartedAt,
		EndedAt:   row.EndedAt,
		CreatedAt: row.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
