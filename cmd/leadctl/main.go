// Package main implements leadctl, an operator CLI for checking stage
// classification and running funnel summaries outside the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions are shared by every subcommand.
type rootOptions struct {
	rulesFile string
}

func (o *rootOptions) catalog() (*domain.Catalog, error) {
	path := o.rulesFile
	if path == "" {
		path = os.Getenv("STAGE_RULES_FILE")
	}
	c, err := domain.LoadCatalogFile(path)
	if err != nil {
		return nil, fmt.Errorf("load stage rules: %w", err)
	}
	return c, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "leadctl",
		Short: "Inspect lead funnel classification",
		Long: `leadctl classifies raw tags, prints stage labels, parses currency
amounts and computes funnel summaries against the lead database.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "YAML stage rules file (default: $STAGE_RULES_FILE or built-in rules)")

	root.AddCommand(newClassifyCmd(opts))
	root.AddCommand(newLabelsCmd(opts))
	root.AddCommand(newParseAmountCmd())
	root.AddCommand(newSummaryCmd(opts))

	return root
}
