package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix scopes all cache entries in Redis so Clear only touches keys
// owned by this service.
const keyPrefix = "wishlist-svc:"

// Redis is a distributed cache backend satisfying the Cache interface.
// Expiry is delegated to Redis via per-key TTLs. Redis errors degrade to
// cache misses rather than failing the request; the store remains the
// source of truth.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis creates a Redis-backed cache.
func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the value for key if present and not expired.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.WarnContext(ctx, "redis cache get failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		recordMiss(key)
		return nil, false
	}

	recordHit(key)
	return val, true
}

// Set stores value under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := r.client.Set(ctx, keyPrefix+key, value, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "redis cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Delete evicts the entry for key.
func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		r.logger.WarnContext(ctx, "redis cache delete failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Clear evicts all entries owned by this service using a cursor scan.
func (r *Redis) Clear(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.WarnContext(ctx, "redis cache clear: delete failed",
				slog.String("key", iter.Val()),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.WarnContext(ctx, "redis cache clear: scan failed",
			slog.String("error", err.Error()),
		)
	}
}
