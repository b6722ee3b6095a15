// Package cmd defines the command-line interface for debtlens.
package cmd

import (
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(opinionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(rollupCmd)

	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rollupCmd.AddCommand(rollupListCmd)
	rollupCmd.AddCommand(rollupStatusCmd)
	rollupCmd.AddCommand(rollupExportCmd)
	rollupCmd.AddCommand(rollupClearCmd)
	rollupCmd.AddCommand(rollupMigrateCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("source", string(schema.AutoSource), "Repository source: auto or local or github")
	flags.String("github-token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	flags.String("github-api", contract.DefaultGitHubAPI, "GitHub REST API base URL")
	flags.Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	flags.Int("max-files", contract.DefaultMaxFiles, "Maximum number of files fetched per snapshot")
	flags.Int64("max-file-size", contract.DefaultMaxFileSize, "Maximum size in bytes of a fetched file")
	flags.String("timeout", contract.DefaultTimeout.String(), "Deadline of one analysis (e.g. 90s, 2m)")
	flags.String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	flags.String("cache-db-connect", "", "Database connection string for the cache (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("cache-ttl", contract.DefaultCacheTTL.String(), "Lifetime of cached results")
	flags.Int("cache-size", contract.DefaultCacheSize, "Number of results kept in memory")
	flags.String("store-backend", string(schema.NoneBackend), "Rollup store backend: sqlite or mysql or postgresql or none")
	flags.String("store-db-connect", "", "Database connection string for rollups (must differ from cache-db-connect)")
	flags.String("actor", "", "Owner of saved rollups (defaults to $USER)")
	flags.String("llm-model", contract.DefaultLLMModel, "Model used for secondary opinions")
	flags.String("llm-api-key", "", "API key of the secondary opinion model (defaults to GEMINI_API_KEY)")
	flags.Int("llm-char-budget", contract.DefaultCharBudget, "Maximum characters sent for one secondary opinion")
	flags.String("config", "", "Path to config file")
	flags.StringVar(&profilePrefix, "profile", "", "Enable profiling and write profiles to files with this prefix")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	historyCmd.Flags().Int("commits", contract.DefaultCommits, "Number of recent commits to replay (max 30)")
	if err := viper.BindPFlags(historyCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history flags", err)
	}

	serveCmd.Flags().String("addr", contract.DefaultAddr, "Listen address of the HTTP API")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	rollupListCmd.Flags().Int("limit", 20, "Number of rollups to list (0 = all)")
	if err := viper.BindPFlags(rollupListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding rollup list flags", err)
	}

	rollupMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(rollupMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding rollup migrate flags", err)
	}
}
