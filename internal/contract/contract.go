// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/debtlens/schema"
)

// FileEntry describes one code file found by a SourceFetcher listing.
type FileEntry struct {
	Path string // Path relative to the repository root
	Size int64  // Size in bytes as reported by the listing
	URL  string // Download location for remote sources
}

// SourceFetcher lists and reads the code files of a repository.
type SourceFetcher interface {
	// ListFiles returns a bounded breadth-first listing of code files.
	// A failed top-level listing wraps ErrUpstreamUnavailable.
	ListFiles(ctx context.Context, repo RepoRef) ([]FileEntry, error)

	// FetchFile returns the raw text of one listed file.
	FetchFile(ctx context.Context, repo RepoRef, entry FileEntry) (string, error)
}

// HistoryFetcher reads commit history with per-file patches.
type HistoryFetcher interface {
	// ListCommits returns up to n commits ordered newest first.
	ListCommits(ctx context.Context, repo RepoRef, n int) ([]schema.CommitInfo, error)

	// FetchCommit returns the changed files and line counts of one commit.
	FetchCommit(ctx context.Context, repo RepoRef, info schema.CommitInfo) (schema.CommitDetail, error)
}

// Fetcher is a source that supports both snapshot and history analysis.
type Fetcher interface {
	SourceFetcher
	HistoryFetcher
}

// ResultCache holds encoded analysis results keyed by a request identity.
// Implementations must be safe for concurrent use.
type ResultCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultCache() ResultCache
	GetResultStore() CacheStore
	GetRollupStore() RollupStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RollupStore persists repository rollups scoped to the actor that produced them.
type RollupStore interface {
	// SaveRollup stores one rollup and returns its ID.
	SaveRollup(ctx context.Context, record schema.RollupRecord) (int64, error)

	// ListRollups returns the newest rollups of one actor, at most limit rows when limit > 0.
	ListRollups(ctx context.Context, actor string, limit int) ([]schema.RollupRecord, error)

	// ClearRollups deletes every rollup of one actor and returns the number removed.
	ClearRollups(ctx context.Context, actor string) (int64, error)

	// GetStatus returns status information about the rollup store.
	GetStatus() (schema.RollupStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// OpinionProvider asks an external model for a secondary authorship verdict.
// Rate limits and exhausted quotas wrap ErrRateLimited and ErrQuotaExhausted.
type OpinionProvider interface {
	Opinion(ctx context.Context, filename, content string) (schema.OpinionVerdict, error)
}
