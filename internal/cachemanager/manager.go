// Package cachemanager provides a typed in-memory cache and a read-through
// wrapper used to memoise entity lookups.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value cache with per-entry TTLs.
// Implementations must be safe for concurrent use.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	// GetWithRefresh returns the value and pushes its expiry out to ttl.
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
