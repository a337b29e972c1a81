// Package cache provides caching backends for derived data.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"stockpos/pkg/logger"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Redis is a Redis-backed cache. Failures degrade to cache misses:
// the store stays the source of truth.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis cache and verifies connectivity.
func NewRedis(ctx context.Context, cfg Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client}, nil
}

// Get returns a cached value, reporting whether it exists.
func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn(ctx, "cache get failed", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

// Set stores a value with a TTL.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Warn(ctx, "cache set failed", "key", key, "error", err)
	}
}

// Delete removes keys.
func (r *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn(ctx, "cache delete failed", "error", err)
	}
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
