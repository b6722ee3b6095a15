package core

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/huangsam/debtlens/core/graph"
	"github.com/huangsam/debtlens/core/heuristic"
	"github.com/huangsam/debtlens/core/timeline"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// topFilesCount is the number of files named in a snapshot summary.
const topFilesCount = 3

// AnalyzeSnapshot fetches every listed file of repo, scores it and links the results.
// Files that cannot be fetched are skipped. A failed listing, a timeout or a
// repository without analyzable files fail the whole analysis.
func AnalyzeSnapshot(ctx context.Context, cfg *contract.Config, fetcher contract.SourceFetcher, cache contract.ResultCache, repo contract.RepoRef) (*schema.SnapshotReport, error) {
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	return cached(cacheFor(cache, repo), snapshotKey(repo), func() (*schema.SnapshotReport, error) {
		entries, err := fetcher.ListFiles(ctx, repo)
		if err != nil {
			return nil, upstreamError(fmt.Sprintf("failed to list files of %s", repo), err)
		}

		files := fetchFiles(ctx, cfg.Workers, fetcher, repo, entries)
		if err := ctx.Err(); err != nil {
			return nil, upstreamError(fmt.Sprintf("snapshot of %s did not finish", repo), err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: no analyzable files found in %s", contract.ErrEmptyResult, repo)
		}

		analyses := scoreFiles(cfg.Workers, files)
		contents := make(map[string]string, len(files))
		for _, f := range files {
			contents[f.Path] = f.Content
		}
		edges := graph.Build(analyses, contents)

		rankFiles(analyses)
		return &schema.SnapshotReport{
			Repo:    repo.String(),
			Files:   analyses,
			Edges:   edges,
			Summary: SummarizeSnapshot(analyses),
		}, nil
	})
}

// fetchFiles downloads the listed files in parallel and keeps the listing order.
func fetchFiles(ctx context.Context, workers int, fetcher contract.SourceFetcher, repo contract.RepoRef, entries []contract.FileEntry) []schema.FileRecord {
	fetched := make([]*schema.FileRecord, len(entries))
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, entry := range entries {
		g.Go(func() error {
			text, err := fetcher.FetchFile(ctx, repo, entry)
			if err != nil {
				contract.LogWarn("Skipping file", err, logrus.Fields{"path": entry.Path})
				return nil
			}
			fetched[i] = &schema.FileRecord{Path: entry.Path, Content: text}
			return nil
		})
	}
	_ = g.Wait()

	files := make([]schema.FileRecord, 0, len(fetched))
	for _, f := range fetched {
		if f != nil {
			files = append(files, *f)
		}
	}
	return files
}

// scoreFiles runs the per-file estimators in parallel against the shared corpus.
func scoreFiles(workers int, files []schema.FileRecord) []schema.FileAnalysis {
	corpus := heuristic.NewCorpus(files)
	analyses := make([]schema.FileAnalysis, len(files))
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, f := range files {
		g.Go(func() error {
			analyses[i] = heuristic.AnalyzeFile(f, corpus)
			return nil
		})
	}
	_ = g.Wait()
	return analyses
}

// rankFiles orders files by combined debt, highest first. Ties break by path.
func rankFiles(files []schema.FileAnalysis) {
	slices.SortStableFunc(files, func(a, b schema.FileAnalysis) int {
		if c := cmp.Compare(b.CombinedDebt(), a.CombinedDebt()); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
}

// SummarizeSnapshot aggregates file results at the repository level.
func SummarizeSnapshot(files []schema.FileAnalysis) schema.SnapshotSummary {
	s := schema.SnapshotSummary{FileCount: len(files), TopFiles: []string{}}
	if len(files) == 0 {
		return s
	}
	for _, f := range files {
		s.AvgAILikelihood += f.AILikelihood
		s.AvgTechnicalDebt += f.TechnicalDebt
		s.AvgCognitiveDebt += f.CognitiveDebt
		s.TotalIssues += len(f.Issues)
		if f.IsHighRisk() {
			s.HighRiskCount++
		}
	}
	n := float64(len(files))
	s.AvgAILikelihood /= n
	s.AvgTechnicalDebt /= n
	s.AvgCognitiveDebt /= n

	ranked := slices.Clone(files)
	rankFiles(ranked)
	for _, f := range ranked[:min(topFilesCount, len(ranked))] {
		s.TopFiles = append(s.TopFiles, f.Path)
	}
	return s
}

// AnalyzeHistory replays up to n commits of repo, oldest first, through the
// debt accumulator. A commit whose detail cannot be fetched still produces a
// record, marked as degraded.
func AnalyzeHistory(ctx context.Context, cfg *contract.Config, fetcher contract.HistoryFetcher, cache contract.ResultCache, repo contract.RepoRef, n int) (*schema.HistoryReport, error) {
	n = clampCommits(n)
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	return cached(cacheFor(cache, repo), historyKey(repo, n), func() (*schema.HistoryReport, error) {
		commits, err := fetcher.ListCommits(ctx, repo, n)
		if err != nil {
			return nil, upstreamError(fmt.Sprintf("failed to list commits of %s", repo), err)
		}
		if len(commits) > n {
			commits = commits[:n]
		}
		if len(commits) == 0 {
			return nil, fmt.Errorf("%w: no commits found in %s", contract.ErrEmptyResult, repo)
		}

		details := fetchCommits(ctx, cfg.Workers, fetcher, repo, commits)
		if err := ctx.Err(); err != nil {
			return nil, upstreamError(fmt.Sprintf("history of %s did not finish", repo), err)
		}

		records, developers, summary := timeline.Analyze(details)
		return &schema.HistoryReport{
			Repo:       repo.String(),
			Commits:    records,
			Developers: developers,
			Summary:    summary,
		}, nil
	})
}

// fetchCommits downloads commit details in parallel and returns them oldest first.
// Commits are listed newest first.
func fetchCommits(ctx context.Context, workers int, fetcher contract.HistoryFetcher, repo contract.RepoRef, commits []schema.CommitInfo) []schema.CommitDetail {
	details := make([]schema.CommitDetail, len(commits))
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, info := range commits {
		g.Go(func() error {
			detail, err := fetcher.FetchCommit(ctx, repo, info)
			if err != nil {
				contract.LogWarn("Commit detail unavailable", err, logrus.Fields{"commit": schema.ShortHash(info.Hash)})
				detail = schema.CommitDetail{CommitInfo: info, Degraded: true}
			}
			details[len(commits)-1-i] = detail
			return nil
		})
	}
	_ = g.Wait()
	return details
}

func clampCommits(n int) int {
	if n <= 0 {
		return contract.DefaultCommits
	}
	return min(n, contract.MaxCommits)
}

func withTimeout(ctx context.Context, cfg *contract.Config) (context.Context, context.CancelFunc) {
	if cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.Timeout)
}

// upstreamError keeps classified errors as they are and files everything else,
// including timeouts, under ErrUpstreamUnavailable.
func upstreamError(msg string, err error) error {
	if errors.Is(err, contract.ErrUpstreamUnavailable) || errors.Is(err, contract.ErrInvalidInput) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %v", msg, contract.ErrUpstreamUnavailable, err)
}
