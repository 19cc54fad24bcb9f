package oracle

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/matzehuels/tarper/pkg/cache"
	"github.com/matzehuels/tarper/pkg/observability"
)

// cacheKeyType labels cost entries in cache hooks.
const cacheKeyType = "cost"

// Cached memoizes the costs of an inner oracle in a [cache.Cache].
//
// Keys cover the scheme, the ordering and each file's size and modification
// time, so an entry is reused only while none of its files changed. Files
// are fingerprinted once per Cached value; create a new one when the source
// tree may have changed. Cache errors never fail a measurement: the inner
// oracle is consulted instead.
type Cached struct {
	inner  Oracle
	cache  cache.Cache
	keyer  cache.Keyer
	root   string
	scheme Scheme
	ttl    time.Duration

	mu     sync.Mutex
	prints map[string]cache.Fingerprint
}

// NewCached wraps inner. A nil cache disables memoization and a nil keyer is
// replaced by [cache.NewDefaultKeyer].
func NewCached(inner Oracle, c cache.Cache, keyer cache.Keyer, root string, scheme Scheme, ttl time.Duration) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{
		inner:  inner,
		cache:  c,
		keyer:  keyer,
		root:   root,
		scheme: scheme,
		ttl:    ttl,
		prints: make(map[string]cache.Fingerprint),
	}
}

// Cost returns the memoized cost of files or measures and stores it.
func (c *Cached) Cost(ctx context.Context, files []string) (int64, error) {
	key, ok := c.key(files)
	if !ok {
		return c.inner.Cost(ctx, files)
	}

	hooks := observability.Cache()
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		if cost, err := strconv.ParseInt(string(data), 10, 64); err == nil {
			hooks.OnCacheHit(ctx, cacheKeyType)
			return cost, nil
		}
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	cost, err := c.inner.Cost(ctx, files)
	if err != nil {
		return 0, err
	}
	data := strconv.AppendInt(nil, cost, 10)
	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		hooks.OnCacheSet(ctx, cacheKeyType, len(data))
	}
	return cost, nil
}

// key returns the cache key for files, or false when a file cannot be
// fingerprinted.
func (c *Cached) key(files []string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prints := make([]cache.Fingerprint, len(files))
	for i, f := range files {
		fp, ok := c.prints[f]
		if !ok {
			info, err := os.Stat(filepath.Join(c.root, filepath.FromSlash(f)))
			if err != nil {
				return "", false
			}
			fp = cache.Fingerprint{Path: f, Size: info.Size(), ModTime: info.ModTime().UnixNano()}
			c.prints[f] = fp
		}
		prints[i] = fp
	}
	return c.keyer.CostKey(string(c.scheme), prints), true
}

var _ Oracle = (*Cached)(nil)
