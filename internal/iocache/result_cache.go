package iocache

import (
	"database/sql"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/sirupsen/logrus"
)

// currentCacheVersion defines the version of the cached result encoding.
// Rows written under another version are treated as misses.
const currentCacheVersion = 1

// ResultCache is a bounded in-memory LRU with TTL placed in front of an
// optional durable CacheStore.
type ResultCache struct {
	memory *expirable.LRU[string, []byte]
	store  contract.CacheStore
	ttl    time.Duration
	now    func() time.Time
}

var _ contract.ResultCache = &ResultCache{} // Compile-time check

// NewResultCache creates a cache holding at most size entries in memory for ttl.
// A nil store keeps results in memory only.
func NewResultCache(store contract.CacheStore, size int, ttl time.Duration) *ResultCache {
	if size <= 0 {
		size = contract.DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = contract.DefaultCacheTTL
	}
	return &ResultCache{
		memory: expirable.NewLRU[string, []byte](size, nil, ttl),
		store:  store,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the cached value for key. Durable hits are promoted to memory.
func (rc *ResultCache) Get(key string) ([]byte, bool) {
	if value, ok := rc.memory.Get(key); ok {
		return value, true
	}
	if rc.store == nil {
		return nil, false
	}

	value, version, ts, err := rc.store.Get(key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			contract.LogDebug("Result cache read failed", logrus.Fields{"key": key, "error": err.Error()})
		}
		return nil, false
	}
	if version != currentCacheVersion || rc.now().Sub(time.Unix(ts, 0)) > rc.ttl {
		return nil, false
	}
	rc.memory.Add(key, value)
	return value, true
}

// Set stores value in memory and in the durable store.
func (rc *ResultCache) Set(key string, value []byte) error {
	rc.memory.Add(key, value)
	if rc.store == nil {
		return nil
	}
	return rc.store.Set(key, value, currentCacheVersion, rc.now().Unix())
}
