package cmd

import (
	"fmt"

	"github.com/huangsam/debtlens/internal/iocache"
	"github.com/huangsam/debtlens/internal/outwriter"
	"github.com/spf13/cobra"
)

// cacheCmd focused on cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis result cache",
	Long: `Manage the cache of snapshot and history results.

Results are kept in memory and in the configured backend for --cache-ttl, so
repeated analyses of the same repository skip fetching.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (memory only)

Examples:
  # Check cache status
  debtlens cache status

  # Clear cached results
  debtlens cache clear`,
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display cache statistics and connection details",
	PreRunE: openStores,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := cacheManager.GetResultStore().GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get cache status: %w", err)
		}
		return outwriter.PrintCacheStatus(status, cfg)
	},
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached results",
	Long: `Delete all cached results from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Deletes every cached row

Examples:
  # Clear MySQL cache (set connection string via env variable)
  DEBTLENS_CACHE_BACKEND=mysql DEBTLENS_CACHE_DB_CONNECT="..." debtlens cache clear`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := iocache.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		cmd.Println("Cache cleared successfully.")
		return nil
	},
}
