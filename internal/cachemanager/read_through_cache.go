package cachemanager

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/brezhnevtusks/Unidork-sub000/internal/log"
)

// Loader fetches the value for key from the backing store on a cache miss.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Stats counts lookups served by a ReadThroughCache.
type Stats struct {
	Hits   uint64
	Misses uint64
	Loads  uint64
}

// ReadThroughCache serves values from cache and falls back to load on a miss,
// storing what it loaded. With bypass set every call goes to load and writes
// are ignored.
type ReadThroughCache[K comparable, V any] struct {
	cache  CacheManager[K, V]
	load   Loader[K, V]
	bypass bool

	hits, misses, loads atomic.Uint64
}

// NewReadThroughCache wraps cache with load.
func NewReadThroughCache[K comparable, V any](cache CacheManager[K, V], load Loader[K, V], bypass bool) *ReadThroughCache[K, V] {
	return &ReadThroughCache[K, V]{cache: cache, load: load, bypass: bypass}
}

// Get returns the value for key, loading and caching it for ttl on a miss.
func (r *ReadThroughCache[K, V]) Get(ctx context.Context, key K, ttl time.Duration) (V, error) {
	return r.get(ctx, key, ttl, r.cache.Get)
}

// GetWithRefresh is Get, but a hit also extends the entry's lifetime to ttl.
func (r *ReadThroughCache[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, error) {
	return r.get(ctx, key, ttl, func(ctx context.Context, key K) (V, bool) {
		return r.cache.GetWithRefresh(ctx, key, ttl)
	})
}

func (r *ReadThroughCache[K, V]) get(ctx context.Context, key K, ttl time.Duration, lookup func(context.Context, K) (V, bool)) (V, error) {
	if !r.bypass {
		if value, ok := lookup(ctx, key); ok {
			r.hits.Add(1)
			return value, nil
		}
		r.misses.Add(1)
	}

	r.loads.Add(1)
	value, err := r.load(ctx, key)
	if err != nil {
		log.Debug(log.CatCache, "load failed", "key", key, "error", err)
		return value, err
	}
	if !r.bypass {
		r.cache.Set(ctx, key, value, ttl)
	}
	return value, nil
}

// Put stores a freshly written value so the next Get skips the loader.
func (r *ReadThroughCache[K, V]) Put(ctx context.Context, key K, value V, ttl time.Duration) {
	if r.bypass {
		return
	}
	r.cache.Set(ctx, key, value, ttl)
}

// Invalidate drops keys.
func (r *ReadThroughCache[K, V]) Invalidate(ctx context.Context, keys ...K) error {
	if r.bypass {
		return nil
	}
	return r.cache.Delete(ctx, keys...)
}

// InvalidateAll drops every cached value.
func (r *ReadThroughCache[K, V]) InvalidateAll(ctx context.Context) error {
	if r.bypass {
		return nil
	}
	return r.cache.Flush(ctx)
}

// Stats returns the lookup counters.
func (r *ReadThroughCache[K, V]) Stats() Stats {
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load(), Loads: r.loads.Load()}
}
