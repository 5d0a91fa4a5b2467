package service

import (
	"context"
	"errors"
	"sync"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/repository"

	"github.com/google/uuid"
)

type fakeSource struct {
	mu sync.Mutex

	leads        []repository.LeadRow
	financeRows  []repository.FinanceSheetRow
	summaries    []repository.ConversationSummaryRow
	leadsErr     error
	summariesErr error

	leadPageCalls    int
	financePageCalls int
	summaryTables    []string
	offsets          []int
}

func (f *fakeSource) ListLeadsPage(_ context.Context, p repository.PageParams) ([]repository.LeadRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leadPageCalls++
	f.offsets = append(f.offsets, p.Offset)
	if f.leadsErr != nil {
		return nil, f.leadsErr
	}
	return pageOf(f.leads, p), nil
}

func (f *fakeSource) ListFinanceSheetPage(_ context.Context, p repository.PageParams) ([]repository.FinanceSheetRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.financePageCalls++
	if f.leadsErr != nil {
		return nil, f.leadsErr
	}
	return pageOf(f.financeRows, p), nil
}

func (f *fakeSource) ListConversationSummaries(_ context.Context, table string, _ uuid.UUID, _ []uuid.UUID) ([]repository.ConversationSummaryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryTables = append(f.summaryTables, table)
	if f.summariesErr != nil {
		return nil, f.summariesErr
	}
	return f.summaries, nil
}

func pageOf[T any](rows []T, p repository.PageParams) []T {
	if p.Offset >= len(rows) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[p.Offset:end]
}

type fakeTenants struct {
	tenants map[uuid.UUID]repository.Tenant
}

func (f fakeTenants) GetTenant(_ context.Context, id uuid.UUID) (repository.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return repository.Tenant{}, repository.ErrNotFound
	}
	return t, nil
}

func (f fakeTenants) GetTenantBySlug(_ context.Context, slug string) (repository.Tenant, error) {
	for _, t := range f.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return repository.Tenant{}, repository.ErrNotFound
}

type mapTagMapper map[string]domain.LeadStage

func (m mapTagMapper) StageForTag(tag string) (domain.LeadStage, bool) {
	stage, ok := m[tag]
	return stage, ok
}

var errBoom = errors.New("connection reset by peer")

func strPtr(s string) *string { return &s }
