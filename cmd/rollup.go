package cmd

import (
	"fmt"

	"github.com/huangsam/debtlens/internal/iocache"
	"github.com/huangsam/debtlens/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rollupCmd focused on stored snapshot summaries.
var rollupCmd = &cobra.Command{
	Use:   "rollup",
	Short: "Manage stored snapshot rollups",
	Long: `Manage the repository-level summaries saved after each snapshot.

Rollups are owned by --actor and never visible to other actors. They require
--store-backend to be sqlite, mysql or postgresql.

Subcommands:
  list    - Show the most recent rollups of the actor
  status  - Show rollup store statistics
  export  - Export rollups to Parquet for analytics
  clear   - Remove every rollup of the actor
  migrate - Run database schema migrations`,
}

var rollupListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the most recent rollups of the actor",
	PreRunE: requireRollupStore,
	RunE: func(_ *cobra.Command, _ []string) error {
		records, err := cacheManager.GetRollupStore().ListRollups(rootCtx, cfg.Actor, viper.GetInt("limit"))
		if err != nil {
			return fmt.Errorf("failed to list rollups: %w", err)
		}
		return outwriter.PrintRollups(records, cfg)
	},
}

var rollupStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display rollup store statistics and connection details",
	PreRunE: requireRollupStore,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := cacheManager.GetRollupStore().GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get rollup status: %w", err)
		}
		return outwriter.PrintRollupStatus(status, cfg)
	},
}

var rollupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the rollups of the actor to a Parquet file",
	Long: `Write every rollup of the actor to --output-file in Parquet format.

Examples:
  # Export for analysis in pandas/DuckDB
  debtlens rollup export --store-backend sqlite --output-file rollups.parquet`,
	PreRunE: requireRollupStore,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := iocache.ExportRollups(rootCtx, cacheManager.GetRollupStore(), cfg.Actor, cfg.OutputFile)
		if err != nil {
			return err
		}
		cmd.Printf("Exported %d rollups to %s\n", n, cfg.OutputFile)
		return nil
	},
}

var rollupClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every rollup of the actor",
	Long: `Delete every stored rollup of the actor. Other actors are untouched.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: requireRollupStore,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := cacheManager.GetRollupStore().ClearRollups(rootCtx, cfg.Actor)
		if err != nil {
			return fmt.Errorf("failed to clear rollups: %w", err)
		}
		cmd.Printf("Removed %d rollups of %s.\n", n, cfg.Actor)
		return nil
	},
}

var rollupMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run rollup store schema migrations",
	Long: `Migrate the rollup store schema without opening the store.

Examples:
  # Migrate to the latest version
  debtlens rollup migrate --store-backend postgresql --store-db-connect "host=... dbname=..."

  # Roll back every migration
  debtlens rollup migrate --store-backend sqlite --target-version 0`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := iocache.MigrateRollups(cfg.StoreBackend, cfg.StoreDBConnect, viper.GetInt("target-version"))
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if !result.Changed {
			cmd.Printf("Rollup schema already at version %d.\n", result.To)
			return nil
		}
		cmd.Printf("Migrated rollup schema from version %d to %d.\n", result.From, result.To)
		return nil
	},
}
