package core

import (
	"encoding/json"
	"fmt"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"github.com/sirupsen/logrus"
)

// cacheFor drops the cache for local repositories. Their working tree can change
// between runs without any new commit.
func cacheFor(cache contract.ResultCache, repo contract.RepoRef) contract.ResultCache {
	if repo.Kind == schema.LocalSource {
		return nil
	}
	return cache
}

func snapshotKey(repo contract.RepoRef) string {
	return "snapshot:" + repo.String()
}

func historyKey(repo contract.RepoRef, n int) string {
	return fmt.Sprintf("history:%s:%d", repo, n)
}

// cached returns the decoded value stored under key, or computes and stores it.
// Failed computations are never cached. A nil cache always computes.
func cached[T any](cache contract.ResultCache, key string, compute func() (*T, error)) (*T, error) {
	if cache != nil {
		if data, ok := cache.Get(key); ok {
			var result T
			if err := json.Unmarshal(data, &result); err == nil {
				contract.LogDebug("Result cache hit", logrus.Fields{"key": key})
				return &result, nil
			}
		}
	}

	result, err := compute()
	if err != nil {
		return nil, err
	}

	if cache != nil {
		data, err := json.Marshal(result)
		if err == nil {
			err = cache.Set(key, data)
		}
		if err != nil {
			contract.LogWarn("Failed to cache result", err, logrus.Fields{"key": key})
		}
	}
	return result, nil
}
