package service

import (
	"context"
	"strings"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/repository"
	"github.com/ZionTraffic/zion-flux-sub000/platform/apperr"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// PageSize is the number of rows requested per page.
	PageSize = 1000
	// MaxPages caps pagination at 200k rows per fetch.
	MaxPages = 200

	unknownOrigin = "desconhecido"
	unnamedLead   = "Sem nome"
)

// TagMapper maps an external tag to a stage using a tenant's tag dictionary.
type TagMapper interface {
	StageForTag(tag string) (domain.LeadStage, bool)
}

// LeadSource is the data the fetcher reads.
type LeadSource interface {
	repository.LeadPageReader
	repository.ConversationSummaryReader
	repository.FinanceSheetReader
}

// FetchParams scopes one fetch.
type FetchParams struct {
	TenantID   uuid.UUID
	TenantSlug string
	Window     domain.Window
	// TagMapper is optional. It is ignored while MappingsLoading is set.
	TagMapper       TagMapper
	MappingsLoading bool
}

// FetchResult is the classified lead set of one fetch.
type FetchResult struct {
	domain.Board
	Pages int
	// EnrichmentSkipped is set when conversation tags could not be loaded.
	EnrichmentSkipped bool
}

// Fetcher pages through a tenant's leads and classifies every row.
type Fetcher struct {
	source    LeadSource
	catalog   *domain.Catalog
	pageDelay time.Duration
	log       *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewFetcher(source LeadSource, catalog *domain.Catalog, pageDelay time.Duration, log *logger.Logger, m *metrics.Metrics) *Fetcher {
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	return &Fetcher{
		source:    source,
		catalog:   catalog,
		pageDelay: pageDelay,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

// Fetch loads the tenant's leads created inside the window. A failure while
// paging the primary table fails the fetch; a failed conversation lookup
// only drops the fallback tags.
func (f *Fetcher) Fetch(ctx context.Context, p FetchParams) (FetchResult, error) {
	if domain.IsFinanceSheet(p.TenantSlug) {
		return f.fetchFinanceSheet(ctx, p)
	}

	rows, pages, err := paginate(ctx, f.newThrottle(), func(ctx context.Context, offset int) ([]repository.LeadRow, error) {
		return f.source.ListLeadsPage(ctx, f.pageParams(p, offset))
	})
	f.metrics.LeadPagesFetched.WithLabelValues("leads").Add(float64(pages))
	if err != nil {
		f.metrics.LeadFetchErrors.WithLabelValues("leads").Inc()
		f.log.WithContext(ctx).DatabaseError("list_leads_page", err)
		return FetchResult{}, apperr.Upstream("failed to load leads", err).WithOp("leads.Fetch")
	}

	result := FetchResult{Board: domain.NewBoard(), Pages: pages}
	if len(rows) == 0 {
		return result, nil
	}

	conversations, ok := f.conversationsByLead(ctx, p, rows)
	result.EnrichmentSkipped = !ok

	for _, row := range rows {
		conversation := conversations[row.ID]
		lead := f.buildLead(row, conversation, p)
		f.metrics.LeadsClassified.WithLabelValues(string(lead.Stage)).Inc()
		result.Add(lead)
	}
	return result, nil
}

func (f *Fetcher) pageParams(p FetchParams, offset int) repository.PageParams {
	return repository.PageParams{
		TenantID:     p.TenantID,
		Start:        p.Window.Start,
		EndExclusive: p.Window.EndExclusive,
		Limit:        PageSize,
		Offset:       offset,
	}
}

// newThrottle spaces page requests by pageDelay. The first request is not delayed.
func (f *Fetcher) newThrottle() *rate.Limiter {
	if f.pageDelay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(f.pageDelay), 1)
}

// paginate reads pages until an empty or short page, or MaxPages.
// It returns the rows and the number of page requests issued.
func paginate[T any](ctx context.Context, throttle *rate.Limiter, fetchPage func(ctx context.Context, offset int) ([]T, error)) ([]T, int, error) {
	var all []T
	pages := 0
	for page := 0; page < MaxPages; page++ {
		if err := throttle.Wait(ctx); err != nil {
			return nil, pages, err
		}
		batch, err := fetchPage(ctx, page*PageSize)
		pages++
		if err != nil {
			return nil, pages, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(batch) < PageSize {
			break
		}
	}
	return all, pages, nil
}

func (f *Fetcher) conversationsByLead(ctx context.Context, p FetchParams, rows []repository.LeadRow) (map[uuid.UUID]repository.ConversationSummaryRow, bool) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if row.ID != uuid.Nil {
			ids = append(ids, row.ID)
		}
	}
	if len(ids) == 0 {
		return nil, true
	}

	table := f.catalog.ConversationTable(p.TenantSlug)
	summaries, err := f.source.ListConversationSummaries(ctx, table, p.TenantID, ids)
	if err != nil {
		f.metrics.EnrichmentFailures.WithLabelValues(table).Inc()
		f.log.WithContext(ctx).EnrichmentSkipped(table, err)
		return nil, false
	}

	byLead := make(map[uuid.UUID]repository.ConversationSummaryRow, len(summaries))
	for _, summary := range summaries {
		if _, seen := byLead[summary.LeadID]; !seen {
			byLead[summary.LeadID] = summary
		}
	}
	return byLead, true
}

func (f *Fetcher) buildLead(row repository.LeadRow, conversation repository.ConversationSummaryRow, p FetchParams) domain.Lead {
	meta := domain.Metadata(row.Metadata)
	conversationTag := deref(conversation.Tag)
	tag := domain.ResolveTag(meta, row.CurrentTags, conversationTag)

	mapped := ""
	if tag.Present() && p.TagMapper != nil && !p.MappingsLoading {
		if stage, ok := p.TagMapper.StageForTag(tag.Value); ok {
			mapped = string(stage)
		}
	}
	stage := f.catalog.Normalize([]string{mapped, tag.Value, deref(row.Status), conversationTag}, p.TenantSlug)

	enteredAt := f.now()
	if row.CreatedAt != nil {
		enteredAt = *row.CreatedAt
	}

	return domain.Lead{
		ID:                     row.ID,
		Name:                   firstNonBlank(deref(row.Name), deref(row.CompanyName), unnamedLead),
		Phone:                  deref(row.Phone),
		Email:                  deref(row.Email),
		ProductInterest:        firstNonBlank(meta.String("produto"), meta.String("produto_interesse")),
		OriginChannel:          firstNonBlank(deref(row.Origin), meta.String("origem"), meta.String("canal"), deref(conversation.Source), unknownOrigin),
		Stage:                  stage,
		EnteredAt:              enteredAt,
		ReferenceDate:          domain.ReferenceDate(enteredAt),
		PendingAmount:          domain.FinanceValue(meta, "valor_em_aberto"),
		RecoveredByAIAmount:    domain.FinanceValue(meta, "valor_recuperado_ia"),
		RecoveredByHumanAmount: domain.FinanceValue(meta, "valor_recuperado_humano"),
		Tags:                   row.CurrentTags,
		TagSource:              tag.Source,
	}
}

// fetchFinanceSheet reads the collections spreadsheet table and keeps one
// lead per company.
func (f *Fetcher) fetchFinanceSheet(ctx context.Context, p FetchParams) (FetchResult, error) {
	rows, pages, err := paginate(ctx, f.newThrottle(), func(ctx context.Context, offset int) ([]repository.FinanceSheetRow, error) {
		return f.source.ListFinanceSheetPage(ctx, f.pageParams(p, offset))
	})
	f.metrics.LeadPagesFetched.WithLabelValues("financeiro_sieg").Add(float64(pages))
	if err != nil {
		f.metrics.LeadFetchErrors.WithLabelValues("financeiro_sieg").Inc()
		f.log.WithContext(ctx).DatabaseError("list_finance_sheet_page", err)
		return FetchResult{}, apperr.Upstream("failed to load finance sheet", err).WithOp("leads.Fetch")
	}

	now := f.now()
	deduper := domain.NewCompanyDeduper()
	for _, raw := range rows {
		row := toFinanceSheetRow(raw)
		lead := row.Lead(now)
		f.metrics.LeadsClassified.WithLabelValues(string(lead.Stage)).Inc()
		deduper.Offer(row.CompanyKey(), lead)
	}

	return FetchResult{Board: deduper.Board(), Pages: pages}, nil
}

func toFinanceSheetRow(raw repository.FinanceSheetRow) domain.FinanceSheetRow {
	row := domain.FinanceSheetRow{
		ID:                     raw.ID,
		Name:                   deref(raw.Name),
		CompanyName:            deref(raw.CompanyName),
		CNPJ:                   deref(raw.CNPJ),
		Phone:                  deref(raw.Phone),
		PendingAmount:          deref(raw.PendingAmount),
		RecoveredByAIAmount:    deref(raw.RecoveredByAIAmount),
		RecoveredByHumanAmount: deref(raw.RecoveredByHumanAmount),
		Tag:                    deref(raw.Tag),
		Attendant:              deref(raw.Attendant),
		ConversationHistory:    deref(raw.ConversationHistory),
	}
	if raw.CreatedAt != nil {
		row.CreatedAt = *raw.CreatedAt
	}
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
