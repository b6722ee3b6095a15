package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/iocache"
	"github.com/huangsam/debtlens/schema"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// cacheManager is opened by the commands that analyze or read stored data.
var cacheManager *iocache.CacheStoreManager

// profilePrefix enables CPU and heap profiling when set.
var profilePrefix string

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "debtlens",
	Short: "Estimate AI likelihood, technical debt and cognitive debt of a codebase.",
	Long: `DebtLens scores the source files of a GitHub or local repository with lexical
heuristics and replays recent commits to show how debt moves over time.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PersistentPreRunE:  sharedSetup,
	PersistentPostRunE: sharedTeardown,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".debtlens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("DEBTLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("source", schema.AutoSource)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("commits", contract.DefaultCommits)
	viper.SetDefault("max-files", contract.DefaultMaxFiles)
	viper.SetDefault("max-file-size", contract.DefaultMaxFileSize)
	viper.SetDefault("timeout", contract.DefaultTimeout.String())
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-ttl", contract.DefaultCacheTTL.String())
	viper.SetDefault("cache-size", contract.DefaultCacheSize)
	viper.SetDefault("store-backend", schema.NoneBackend)
	viper.SetDefault("addr", contract.DefaultAddr)
	viper.SetDefault("github-api", contract.DefaultGitHubAPI)
	viper.SetDefault("llm-model", contract.DefaultLLMModel)
	viper.SetDefault("llm-char-budget", contract.DefaultCharBudget)
}

// sharedSetup merges defaults, config file, env and flags, then validates them.
func sharedSetup(_ *cobra.Command, _ []string) error {
	if err := startProfiling(); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	contract.SetVerbose(cfg.Verbose)
	color.NoColor = !cfg.UseColors
	return nil
}

// openStores opens the result cache and rollup store for commands that need them.
func openStores(_ *cobra.Command, _ []string) error {
	mgr, err := iocache.NewCacheStoreManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	cacheManager = mgr
	return nil
}

// requireRollupStore rejects rollup commands when no store backend is configured.
func requireRollupStore(cmd *cobra.Command, args []string) error {
	if cfg.StoreBackend == schema.NoneBackend {
		return fmt.Errorf("%w: set --store-backend to use rollup commands", contract.ErrInvalidInput)
	}
	return openStores(cmd, args)
}

// sharedTeardown closes the stores and stops profiling.
func sharedTeardown(_ *cobra.Command, _ []string) error {
	var errs []error
	if cacheManager != nil {
		errs = append(errs, cacheManager.Close())
		cacheManager = nil
	}
	errs = append(errs, stopProfiling())
	return errors.Join(errs...)
}

// startProfiling starts CPU profiling if enabled.
func startProfiling() error {
	if profilePrefix == "" {
		return nil
	}
	cpuFile, err := os.Create(profilePrefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}
	contract.LogInfo("Profiling enabled", logrus.Fields{"cpu": profilePrefix + ".cpu.prof", "mem": profilePrefix + ".mem.prof"})
	return nil
}

// stopProfiling stops profiling and writes the heap profile.
func stopProfiling() error {
	if profilePrefix == "" {
		return nil
	}
	pprof.StopCPUProfile()

	memFile, err := os.Create(profilePrefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}

// Execute runs the root command. Stores opened by a failed command are still closed.
func Execute() error {
	err := rootCmd.Execute()
	if cacheManager != nil {
		_ = cacheManager.Close()
		cacheManager = nil
	}
	return err
}
