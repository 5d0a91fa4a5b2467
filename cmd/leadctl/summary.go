package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads"
	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/tagmappings"
	"github.com/ZionTraffic/zion-flux-sub000/platform/config"
	"github.com/ZionTraffic/zion-flux-sub000/platform/db"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"
	"github.com/ZionTraffic/zion-flux-sub000/platform/validator"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type summaryOptions struct {
	tenantID string
	start    string
	end      string
	timeout  time.Duration
}

// window returns the requested window, or ok=false when the default applies.
func (o summaryOptions) window() (domain.Window, bool, error) {
	if o.start == "" && o.end == "" {
		return domain.Window{}, false, nil
	}
	if o.start == "" || o.end == "" {
		return domain.Window{}, false, fmt.Errorf("--start and --end must be provided together")
	}
	w, err := domain.NewWindow(o.start, o.end)
	if err != nil {
		return domain.Window{}, false, err
	}
	return w, true, nil
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	so := summaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Compute a tenant's funnel summary from the database",
		Long: `Fetch, classify and aggregate a tenant's leads, bypassing the cache.
Reads DATABASE_URL and the other server settings from the environment.

Examples:
  leadctl summary --tenant-id 7d1c... --start 2025-03-01 --end 2025-03-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := uuid.Parse(so.tenantID)
			if err != nil {
				return fmt.Errorf("invalid --tenant-id: %w", err)
			}
			window, explicit, err := so.window()
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			catalog, err := opts.catalog()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if so.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, so.timeout)
				defer cancel()
			}

			pool, err := db.NewPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			log := logger.New(cfg.Env)
			bus := events.NewInMemoryBus(log)
			val := validator.New()
			tagMappingsModule := tagmappings.NewModule(pool, nil, catalog, bus, val, cfg, log)
			leadsModule := leads.NewModule(leads.Deps{
				Pool:     pool,
				Catalog:  catalog,
				Mappers:  tagMappingsModule.MapperProvider(),
				EventBus: bus,
				Config:   cfg,
				Log:      log,
				Metrics:  metrics.NewNop(),
			}, val)

			svc := leadsModule.Service()
			if !explicit {
				window = svc.DefaultWindow()
			}
			summary, err := svc.Summary(ctx, tenantID, window, true)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().StringVar(&so.tenantID, "tenant-id", "", "tenant UUID")
	cmd.Flags().StringVar(&so.start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&so.end, "end", "", "last day inclusive, YYYY-MM-DD")
	cmd.Flags().DurationVar(&so.timeout, "timeout", 2*time.Minute, "overall deadline")
	_ = cmd.MarkFlagRequired("tenant-id")
	return cmd
}
