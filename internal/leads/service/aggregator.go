package service

import (
	"math"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
)

// DailyPoint is the number of leads that entered on Day.
type DailyPoint struct {
	Day       string `json:"day"`
	Leads     int    `json:"leads"`
	Qualified int    `json:"qualified"`
}

// FinanceTotals are the parsed monetary sums over a lead set.
type FinanceTotals struct {
	Pending          float64 `json:"pending"`
	RecoveredByAI    float64 `json:"recoveredByAi"`
	RecoveredByHuman float64 `json:"recoveredByHuman"`
	Recovered        float64 `json:"recovered"`
}

// FunnelStep is one labelled column of the funnel chart.
type FunnelStep struct {
	Stage domain.LeadStage `json:"stage"`
	Title string           `json:"title"`
	Count int              `json:"count"`
}

// Summary is the view-ready aggregate of one fetch.
type Summary struct {
	TenantSlug        string                   `json:"tenantSlug"`
	Window            domain.Window            `json:"window"`
	StageCounts       map[domain.LeadStage]int `json:"stageCounts"`
	Daily             []DailyPoint             `json:"daily"`
	Finance           FinanceTotals            `json:"finance"`
	TotalLeads        int                      `json:"totalLeads"`
	Qualified         int                      `json:"qualified"`
	QualificationRate float64                  `json:"qualificationRate"`
	Funnel            []FunnelStep             `json:"funnel"`
	Partial           bool                     `json:"partial"`
}

// Aggregator folds a fetch result into a Summary.
type Aggregator struct {
	catalog *domain.Catalog
}

func NewAggregator(catalog *domain.Catalog) *Aggregator {
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	return &Aggregator{catalog: catalog}
}

// Summarize computes stage counts, a zero-filled daily series over the
// whole window, finance sums and the labelled funnel. Leads whose reference
// day falls outside the window count toward totals but not the series.
func (a *Aggregator) Summarize(result FetchResult, window domain.Window, tenantSlug string) Summary {
	counts := make(map[domain.LeadStage]int, 5)
	for _, stage := range domain.Stages() {
		counts[stage] = 0
	}

	days := window.Days()
	daily := make([]DailyPoint, len(days))
	dayIndex := make(map[string]int, len(days))
	for i, day := range days {
		daily[i] = DailyPoint{Day: day}
		dayIndex[day] = i
	}

	var finance FinanceTotals
	for _, lead := range result.AllLeads {
		counts[lead.Stage]++

		if i, ok := dayIndex[lead.ReferenceDate]; ok {
			daily[i].Leads++
			if lead.Stage == domain.StageQualified {
				daily[i].Qualified++
			}
		}

		finance.Pending += domain.ParseAmount(lead.PendingAmount)
		finance.RecoveredByAI += domain.ParseAmount(lead.RecoveredByAIAmount)
		finance.RecoveredByHuman += domain.ParseAmount(lead.RecoveredByHumanAmount)
	}
	finance.Recovered = finance.RecoveredByAI + finance.RecoveredByHuman

	total := len(result.AllLeads)
	qualified := counts[domain.StageQualified]

	return Summary{
		TenantSlug:        tenantSlug,
		Window:            window,
		StageCounts:       counts,
		Daily:             daily,
		Finance:           roundFinance(finance),
		TotalLeads:        total,
		Qualified:         qualified,
		QualificationRate: percentage(qualified, total),
		Funnel:            a.funnel(counts, tenantSlug),
		Partial:           result.EnrichmentSkipped,
	}
}

func (a *Aggregator) funnel(counts map[domain.LeadStage]int, tenantSlug string) []FunnelStep {
	labels := a.catalog.Labels(tenantSlug)
	hideDiscarded := a.catalog.HidesDiscarded(tenantSlug)

	steps := make([]FunnelStep, 0, 5)
	for _, stage := range domain.Stages() {
		if stage == domain.StageDiscarded && hideDiscarded {
			continue
		}
		steps = append(steps, FunnelStep{Stage: stage, Title: labels[stage].Title, Count: counts[stage]})
	}
	return steps
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

func roundFinance(t FinanceTotals) FinanceTotals {
	return FinanceTotals{
		Pending:          roundCents(t.Pending),
		RecoveredByAI:    roundCents(t.RecoveredByAI),
		RecoveredByHuman: roundCents(t.RecoveredByHuman),
		Recovered:        roundCents(t.Recovered),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
