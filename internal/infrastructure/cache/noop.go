package cache

import (
	"context"
	"time"
)

// Noop is a cache that stores nothing. Used when Redis is not
// configured and in tests.
type Noop struct{}

// NewNoop creates a no-op cache.
func NewNoop() *Noop {
	return &Noop{}
}

// Get always misses.
func (Noop) Get(ctx context.Context, key string) (string, bool) {
	return "", false
}

// Set discards the value.
func (Noop) Set(ctx context.Context, key, value string, ttl time.Duration) {}

// Delete does nothing.
func (Noop) Delete(ctx context.Context, keys ...string) {}
