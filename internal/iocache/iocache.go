package iocache

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
)

// CacheStoreManager owns the durable result store, the memory cache in front
// of it and the rollup store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        *ResultCache
	results      contract.CacheStore
	rollups      contract.RollupStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager opens both stores. Either backend may be none.
func NewCacheStoreManager(cfg *contract.Config) (*CacheStoreManager, error) {
	results, err := NewCacheStore(resultTable, cfg.CacheBackend, cfg.CacheDBConnect)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize result caching: %w", err)
	}
	rollups, err := NewRollupStore(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		_ = results.Close()
		return nil, fmt.Errorf("failed to initialize rollup store: %w", err)
	}
	return &CacheStoreManager{
		cache:   NewResultCache(results, cfg.CacheSize, cfg.CacheTTL),
		results: results,
		rollups: rollups,
	}, nil
}

// GetResultCache returns the layered result cache.
func (mgr *CacheStoreManager) GetResultCache() contract.ResultCache {
	mgr.RLock()
	defer mgr.RUnlock()
	if mgr.cache == nil {
		return nil
	}
	return mgr.cache
}

// GetResultStore returns the durable result CacheStore.
func (mgr *CacheStoreManager) GetResultStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}

// GetRollupStore returns the RollupStore.
func (mgr *CacheStoreManager) GetRollupStore() contract.RollupStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.rollups
}

// Close closes both stores and reports every failure.
func (mgr *CacheStoreManager) Close() error {
	mgr.Lock()
	defer mgr.Unlock()
	var errs []error
	if mgr.results != nil {
		errs = append(errs, mgr.results.Close())
	}
	if mgr.rollups != nil {
		errs = append(errs, mgr.rollups.Close())
	}
	mgr.cache, mgr.results, mgr.rollups = nil, nil, nil
	return errors.Join(errs...)
}

// ClearCache clears the result cache for the specified backend.
// For SQLite, it deletes the database file.
// For MySQL and PostgreSQL, it deletes every cached row.
// For the none backend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.NoneBackend:
		return nil

	case schema.SQLiteBackend:
		path := connStr
		if path == "" {
			path = contract.GetCacheDBFilePath()
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", path, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		store, err := NewCacheStore(resultTable, backend, connStr)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return store.clear()

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}
