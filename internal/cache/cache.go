package cache

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache is a key-value cache with time-based expiry. Values are opaque byte
// payloads (callers serialize); keys are namespaced by prefix ("wishlist:",
// "product:"). Get treats expired entries as absent. Implementations must be
// safe for concurrent use.
//
// The cache is never the source of truth; callers populate it on read and
// invalidate on write.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// WishlistKey returns the cache key for a user's wishlist document.
func WishlistKey(userID string) string {
	return "wishlist:" + userID
}

// ProductKey returns the cache key for a product details entry.
func ProductKey(productID string) string {
	return "product:" + productID
}

// namespace extracts the key prefix for metrics labeling.
func namespace(key string) string {
	if idx := strings.IndexByte(key, ':'); idx > 0 {
		return key[:idx]
	}
	return "unknown"
}

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_cache_hits_total",
			Help: "Total number of cache hits by key namespace",
		},
		[]string{"namespace"},
	)

	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_cache_misses_total",
			Help: "Total number of cache misses (including expired entries) by key namespace",
		},
		[]string{"namespace"},
	)
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses)
}

func recordHit(key string) {
	cacheHits.WithLabelValues(namespace(key)).Inc()
}

func recordMiss(key string) {
	cacheMisses.WithLabelValues(namespace(key)).Inc()
}
