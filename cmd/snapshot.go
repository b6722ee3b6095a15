package cmd

import (
	"github.com/huangsam/debtlens/core"
	"github.com/spf13/cobra"
)

// snapshotCmd scores the current files of a repository.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot <repo>",
	Short: "Score the files of a repository for AI likelihood and debt.",
	Long: `Fetch up to --max-files source files of a repository and score each one.

Every file receives three headline scores in [0,1]:
- AI likelihood from pattern signals
- Technical debt from complexity, nesting, size, duplication and modularity
- Cognitive debt from nesting, branching, naming and abstraction gaps

Debt is then propagated between related files (clones, dependencies, shared
patterns and imports) and the files are ranked by combined debt.

The repository may be a GitHub owner/repo, a GitHub URL or a local path.
When a rollup store is configured, a summary of the snapshot is saved for --actor.

Examples:
  # Analyze a public GitHub repository
  debtlens snapshot golang/example

  # Analyze a local checkout and export the files as CSV
  debtlens snapshot . --output csv --output-file snapshot.csv

  # Save the summary for later comparison
  debtlens snapshot acme/widgets --store-backend sqlite --actor alice`,
	Args:    cobra.ExactArgs(1),
	PreRunE: openStores,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteSnapshot(rootCtx, cfg, cacheManager, args[0])
	},
}

// historyCmd replays recent commits of a repository.
var historyCmd = &cobra.Command{
	Use:   "history <repo>",
	Short: "Replay recent commits and show how debt moved over time.",
	Long: `Replay the last --commits commits of a repository, oldest first, and estimate
the debt added or removed by each one.

Reports:
- Per-commit debt deltas and cumulative debt
- Per-developer impact, sorted by total debt introduced
- Trend, momentum and a short-term prediction of the trajectory

Commits whose details cannot be fetched are marked degraded and carry the
previous cumulative values.

Examples:
  # Replay the last 20 commits of a GitHub repository
  debtlens history golang/example

  # Replay 10 commits of a local repository as JSON
  debtlens history . --commits 10 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: openStores,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteHistory(rootCtx, cfg, cacheManager, args[0])
	},
}
