package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) (*CacheStoreImpl, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(resultTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"simple", "results", false},
		{"underscores", "_debtlens_results_2", false},
		{"empty", "", true},
		{"leading digit", "1results", true},
		{"injection", "results; DROP TABLE x", true},
		{"hyphen", "debt-lens", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`results`", quoteTableName("results", schema.MySQLBackend))
	assert.Equal(t, `"results"`, quoteTableName("results", schema.PostgreSQLBackend))
	assert.Equal(t, `"results"`, quoteTableName("results", schema.SQLiteBackend))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$3", placeholder(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "?", placeholder(schema.MySQLBackend, 3))
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 1))
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery("r", schema.MySQLBackend), "LONGBLOB")
	assert.Contains(t, getCreateTableQuery("r", schema.PostgreSQLBackend), "BYTEA")
	assert.Contains(t, getCreateTableQuery("r", schema.SQLiteBackend), "cache_timestamp INTEGER")
}

func TestGetUpsertQuery(t *testing.T) {
	cases := map[schema.DatabaseBackend]string{
		schema.MySQLBackend:      "ON DUPLICATE KEY UPDATE",
		schema.PostgreSQLBackend: "ON CONFLICT (cache_key)",
		schema.SQLiteBackend:     "INSERT OR REPLACE",
	}
	for backend, want := range cases {
		store := &CacheStoreImpl{tableName: resultTable, backend: backend}
		assert.Contains(t, store.getUpsertQuery(), want, backend)
	}
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad name", schema.SQLiteBackend, "")
	assert.Error(t, err)

	_, err = NewCacheStore(resultTable, schema.DatabaseBackend("redis"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

func TestSQLiteBackendOperations(t *testing.T) {
	store, path := newSQLiteStore(t)

	_, _, _, err := store.Get("snapshot:acme/widgets")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("snapshot:acme/widgets", []byte(`{"a":1}`), 1, 1700000000))
	value, version, ts, err := store.Get("snapshot:acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1700000000), ts)

	// Upsert replaces the row
	require.NoError(t, store.Set("snapshot:acme/widgets", []byte(`{"a":2}`), 2, 1700000100))
	value, version, _, err = store.Get("snapshot:acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), value)
	assert.Equal(t, 2, version)

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file should be created")
}

func TestCacheStoreGetStatus(t *testing.T) {
	store, _ := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	require.NoError(t, store.Set("a", []byte("1"), 1, 1700000000))
	require.NoError(t, store.Set("b", []byte("2"), 1, 1700000500))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(1700000500, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(1700000000, 0), status.OldestEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestNoneBackendStore(t *testing.T) {
	store, err := NewCacheStore(resultTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		store, path := newSQLiteStore(t)
		require.NoError(t, store.Set("k", []byte("v"), 1, 1))
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, path))
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db")))
	})

	t.Run("none", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, ""))
	})

	t.Run("unsupported", func(t *testing.T) {
		err := ClearCache(schema.DatabaseBackend("redis"), "")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "unsupported"))
	})
}

func TestClearRows(t *testing.T) {
	store, _ := newSQLiteStore(t)
	require.NoError(t, store.Set("k", []byte("v"), 1, 1))
	require.NoError(t, store.clear())

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TotalEntries)
}
