// Package core has the orchestration for snapshot and history analysis.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/github"
	"github.com/huangsam/debtlens/internal/outwriter"
	"github.com/huangsam/debtlens/schema"
)

// ExecutorFunc defines the function signature for executing a repository analysis command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, repoArg string) error

// newFetcher is swapped by tests.
var newFetcher = NewFetcher

// NewFetcher returns the fetcher matching the kind of repository.
func NewFetcher(cfg *contract.Config, repo contract.RepoRef) contract.Fetcher {
	if repo.Kind == schema.LocalSource {
		return contract.NewLocalGit(cfg)
	}
	return github.NewClient(cfg)
}

// ExecuteSnapshot runs the snapshot analysis, records a rollup and prints the report.
// It serves as the main entry point for the 'snapshot' command.
func ExecuteSnapshot(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, repoArg string) error {
	start := time.Now()
	report, err := GetSnapshotResults(ctx, cfg, mgr, repoArg)
	if err != nil {
		return err
	}
	if mgr != nil && cfg.StoreBackend != schema.NoneBackend {
		if _, err := RecordRollup(ctx, cfg, mgr.GetRollupStore(), report); err != nil {
			contract.LogWarn("Failed to save rollup", err)
		}
	}
	return outwriter.PrintSnapshot(report, cfg, time.Since(start))
}

// ExecuteHistory runs the history analysis over cfg.Commits commits and prints the report.
// It serves as the main entry point for the 'history' command.
func ExecuteHistory(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, repoArg string) error {
	start := time.Now()
	report, err := GetHistoryResults(ctx, cfg, mgr, repoArg, cfg.Commits)
	if err != nil {
		return err
	}
	return outwriter.PrintHistory(report, cfg, time.Since(start))
}

// ExecuteMetrics prints the definition of every metric.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.CacheManager, _ string) error {
	return outwriter.PrintMetricsDefinitions(cfg)
}

// GetSnapshotResults parses the repository identifier and returns its snapshot report.
// Shared by the CLI, the HTTP API and the MCP server.
func GetSnapshotResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, repoArg string) (*schema.SnapshotReport, error) {
	repo, err := contract.ParseRepoRef(repoArg, cfg.Source)
	if err != nil {
		return nil, err
	}
	return AnalyzeSnapshot(ctx, cfg, newFetcher(cfg, repo), resultCache(mgr), repo)
}

// GetHistoryResults parses the repository identifier and returns the history report of n commits.
func GetHistoryResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, repoArg string, n int) (*schema.HistoryReport, error) {
	repo, err := contract.ParseRepoRef(repoArg, cfg.Source)
	if err != nil {
		return nil, err
	}
	return AnalyzeHistory(ctx, cfg, newFetcher(cfg, repo), resultCache(mgr), repo, n)
}

// RecordRollup saves the repository-level outcome of a snapshot for the current actor.
// The actor comes from the context when set, otherwise from the configuration.
// A nil store records nothing.
func RecordRollup(ctx context.Context, cfg *contract.Config, store contract.RollupStore, report *schema.SnapshotReport) (int64, error) {
	if store == nil || report == nil {
		return 0, nil
	}
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = cfg.Actor
	}
	if actor == "" {
		return 0, fmt.Errorf("%w: an actor is required to save rollups", contract.ErrInvalidInput)
	}
	record := schema.NewRollupRecord(actor, report.Repo, report.Summary, time.Now().UTC())
	return store.SaveRollup(ctx, record)
}

func resultCache(mgr contract.CacheManager) contract.ResultCache {
	if mgr == nil {
		return nil
	}
	return mgr.GetResultCache()
}
