package main

import (
	"fmt"
	"strings"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"

	"github.com/spf13/cobra"
)

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "classify <tag> [tag...]",
		Short: "Map raw tags to funnel stages",
		Long: `Classify each argument as a single tag for the given tenant.

Examples:
  leadctl classify "T3 - Qualificado" "lead novo"
  leadctl classify --tenant asf "T5 - Desqualificado"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.catalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tag := range args {
				fmt.Fprintf(out, "%s\t%s\n", tag, c.Normalize([]string{tag}, tenant))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant slug whose rules apply")
	return cmd
}

func newLabelsCmd(opts *rootOptions) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Print the stage labels of a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.catalog()
			if err != nil {
				return err
			}
			labels := c.Labels(tenant)
			out := cmd.OutOrStdout()
			for _, stage := range domain.Stages() {
				label := labels[stage]
				fmt.Fprintf(out, "%s\t%s\t%s\n", stage, label.Title, label.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant slug (empty prints the generic set)")
	return cmd
}

func newParseAmountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-amount <value> [value...]",
		Short: "Parse Brazilian currency strings",
		Long: `Parse each argument the way the collections sheet amounts are parsed.

Examples:
  leadctl parse-amount "R$ 1.234,56" "1.234.567"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, raw := range args {
				fmt.Fprintf(out, "%s\t%s\n", strings.TrimSpace(raw), formatAmount(domain.ParseAmount(raw)))
			}
			return nil
		},
	}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
