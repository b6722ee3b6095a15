package iocache

import (
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCacheMemoryOnly(t *testing.T) {
	rc := NewResultCache(nil, 2, time.Hour)

	_, ok := rc.Get("a")
	assert.False(t, ok)

	require.NoError(t, rc.Set("a", []byte("1")))
	require.NoError(t, rc.Set("b", []byte("2")))
	require.NoError(t, rc.Set("c", []byte("3")))

	_, ok = rc.Get("a")
	assert.False(t, ok, "oldest entry is evicted beyond the size bound")
	value, ok := rc.Get("c")
	assert.True(t, ok)
	assert.Equal(t, []byte("3"), value)
	assert.Equal(t, 2, rc.memory.Len())
}

func TestResultCacheDefaults(t *testing.T) {
	rc := NewResultCache(nil, 0, 0)
	assert.Equal(t, 24*time.Hour, rc.ttl)
}

func TestResultCacheMemoryExpiry(t *testing.T) {
	rc := NewResultCache(nil, 4, 20*time.Millisecond)
	require.NoError(t, rc.Set("a", []byte("1")))
	assert.Eventually(t, func() bool {
		_, ok := rc.Get("a")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestResultCacheWritesThrough(t *testing.T) {
	store := &MockCacheStore{}
	now := time.Unix(1700000000, 0)
	store.On("Set", "k", []byte("v"), currentCacheVersion, now.Unix()).Return(nil).Once()

	rc := NewResultCache(store, 4, time.Hour)
	rc.now = func() time.Time { return now }
	require.NoError(t, rc.Set("k", []byte("v")))
	store.AssertExpectations(t)
}

func TestResultCacheStoreHitPromotes(t *testing.T) {
	store := &MockCacheStore{}
	now := time.Unix(1700000000, 0)
	store.On("Get", "k").Return([]byte("v"), currentCacheVersion, now.Add(-time.Minute).Unix(), nil).Once()

	rc := NewResultCache(store, 4, time.Hour)
	rc.now = func() time.Time { return now }

	value, ok := rc.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	// Second read is served from memory
	value, ok = rc.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)
	store.AssertExpectations(t)
}

func TestResultCacheStoreMisses(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tests := []struct {
		name    string
		version int
		ts      int64
		err     error
	}{
		{"not found", 0, 0, sql.ErrNoRows},
		{"read error", 0, 0, errors.New("disk I/O error")},
		{"stale", currentCacheVersion, now.Add(-2 * time.Hour).Unix(), nil},
		{"version mismatch", currentCacheVersion + 1, now.Unix(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockCacheStore{}
			store.On("Get", "k").Return([]byte(nil), tt.version, tt.ts, tt.err)

			rc := NewResultCache(store, 4, time.Hour)
			rc.now = func() time.Time { return now }
			_, ok := rc.Get("k")
			assert.False(t, ok)
			assert.Zero(t, rc.memory.Len())
		})
	}
}

func TestResultCacheWithSQLiteStore(t *testing.T) {
	store, _ := newSQLiteStore(t)
	first := NewResultCache(store, 4, time.Hour)
	require.NoError(t, first.Set("history:acme/widgets:20", []byte("payload")))

	// A fresh process sees the durable row
	second := NewResultCache(store, 4, time.Hour)
	value, ok := second.Get("history:acme/widgets:20")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), value)
}

func TestResultCacheConcurrency(t *testing.T) {
	rc := NewResultCache(nil, 64, time.Hour)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := string(rune('a' + i))
			_ = rc.Set(key, []byte(key))
			_, _ = rc.Get(key)
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, rc.memory.Len())
}
