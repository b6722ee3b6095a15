package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RollupStatus represents the status of the rollup store.
type RollupStatus struct {
	Backend        string    `json:"backend"`
	Connected      bool      `json:"connected"`
	TotalRollups   int       `json:"total_rollups"`
	TotalActors    int       `json:"total_actors"`
	LastRollupTime time.Time `json:"last_rollup_time"`
	OldestRollup   time.Time `json:"oldest_rollup_time"`
	TableSizeBytes int64     `json:"table_size_bytes"`
}
