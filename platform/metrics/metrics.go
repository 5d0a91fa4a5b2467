// Package metrics holds the Prometheus collectors for the application.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LeadPagesFetched     *prometheus.CounterVec
	LeadFetchErrors      *prometheus.CounterVec
	EnrichmentFailures   *prometheus.CounterVec
	LeadsClassified      *prometheus.CounterVec
	SummaryCacheLookups  *prometheus.CounterVec
	SummaryStaleDiscards prometheus.Counter
	SummaryRefreshes     *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadfunnel_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadfunnel_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		LeadPagesFetched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadfunnel_lead_pages_fetched_total",
				Help: "Pages read from lead tables",
			},
			[]string{"table"},
		),
		LeadFetchErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadfunnel_lead_fetch_errors_total",
				Help: "Fatal failures while paginating lead tables",
			},
			[]string{"table"},
		),
		EnrichmentFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadfunnel_enrichment_failures_total",
				Help: "Non-fatal failures of secondary lookups",
			},
			[]string{"source"},
		),
		LeadsClassified: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadfunnel_leads_classified_total",
				Help: "Leads assigned to a funnel stage",
			},
			[]string{"stage"},
		),
		SummaryCacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadfunnel_summary_cache_lookups_total",
				Help: "Summary cache lookups by result",
			},
			[]string{"result"},
		),
		SummaryStaleDiscards: f.NewCounter(
			prometheus.CounterOpts{
				Name: "leadfunnel_summary_stale_discards_total",
				Help: "Summary writes dropped because a newer computation already landed",
			},
		),
		SummaryRefreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadfunnel_summary_refreshes_total",
				Help: "Background summary refreshes by result",
			},
			[]string{"result"},
		),
	}
}

// NewNop returns metrics registered on a private registry. Used by tests and CLIs.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
