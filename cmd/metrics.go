package cmd

import (
	"github.com/huangsam/debtlens/core"
	"github.com/spf13/cobra"
)

// metricsCmd displays the definitions of every metric.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the definitions and formulas of every score",
	Long: `Show every sub-metric of a file analysis, the component it feeds and the
formulas behind the three headline scores.

No repository is analyzed. This is purely informational.

Examples:
  # Show the metric table
  debtlens metrics

  # Export definitions as JSON
  debtlens metrics --output json`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteMetrics(rootCtx, cfg, nil, "")
	},
}
