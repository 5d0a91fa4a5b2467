package service

import (
	"testing"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardOf(leads ...domain.Lead) FetchResult {
	board := domain.NewBoard()
	for _, lead := range leads {
		board.Add(lead)
	}
	return FetchResult{Board: board}
}

func TestSummarizeDailySeriesIsZeroFilled(t *testing.T) {
	window := testWindow(t)
	result := boardOf(
		domain.Lead{Stage: domain.StageQualified, ReferenceDate: "2025-03-01"},
		domain.Lead{Stage: domain.StageNewLead, ReferenceDate: "2025-03-01"},
		domain.Lead{Stage: domain.StageQualified, ReferenceDate: "2025-03-03"},
		domain.Lead{Stage: domain.StageNewLead, ReferenceDate: "2025-04-01"},
	)

	summary := NewAggregator(nil).Summarize(result, window, "")

	assert.Equal(t, []DailyPoint{
		{Day: "2025-03-01", Leads: 2, Qualified: 1},
		{Day: "2025-03-02", Leads: 0, Qualified: 0},
		{Day: "2025-03-03", Leads: 1, Qualified: 1},
	}, summary.Daily)
	assert.Equal(t, 4, summary.TotalLeads)
	assert.Equal(t, 2, summary.Qualified)
	assert.Equal(t, 50.0, summary.QualificationRate)
}

func TestSummarizeFinance(t *testing.T) {
	result := boardOf(
		domain.Lead{Stage: domain.StageQualified, PendingAmount: "1.601", RecoveredByAIAmount: "1.601,50"},
		domain.Lead{Stage: domain.StageNewLead, PendingAmount: "invalid", RecoveredByHumanAmount: "R$ 100,25"},
	)

	summary := NewAggregator(nil).Summarize(result, testWindow(t), "")

	assert.Equal(t, FinanceTotals{
		Pending:          1601,
		RecoveredByAI:    1601.5,
		RecoveredByHuman: 100.25,
		Recovered:        1701.75,
	}, summary.Finance)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := NewAggregator(nil).Summarize(FetchResult{Board: domain.NewBoard()}, testWindow(t), "")

	assert.Zero(t, summary.TotalLeads)
	assert.Zero(t, summary.QualificationRate)
	assert.Len(t, summary.StageCounts, 5)
	assert.Len(t, summary.Daily, 3)
}

func TestSummarizeFunnelLabels(t *testing.T) {
	result := boardOf(domain.Lead{Stage: domain.StageDiscarded})

	sieg := NewAggregator(nil).Summarize(result, testWindow(t), "sieg")
	require.Len(t, sieg.Funnel, 4)
	for _, step := range sieg.Funnel {
		assert.NotEqual(t, domain.StageDiscarded, step.Stage)
	}
	assert.Equal(t, "T3 - Pago IA", sieg.Funnel[2].Title)

	generic := NewAggregator(nil).Summarize(result, testWindow(t), "")
	require.Len(t, generic.Funnel, 5)
	assert.Equal(t, FunnelStep{Stage: domain.StageDiscarded, Title: "Desqualificados", Count: 1}, generic.Funnel[4])
}

func TestSummarizeMarksPartialResults(t *testing.T) {
	result := boardOf()
	result.EnrichmentSkipped = true

	assert.True(t, NewAggregator(nil).Summarize(result, testWindow(t), "").Partial)
}
