// Package cache provides TTL caches for pipeline results.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-value TTL cache. Keys are opaque strings; values are
// serialized by the caller so memory and redis backends behave identically.
type Cache interface {
	// Get returns the value for key, or false when absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Put stores value under key for ttl. A non-positive ttl stores
	// the value without expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a cache backend.
type Config struct {
	// Type is "memory" or "redis".
	Type string

	// RedisURL is the redis connection URL (redis backend only).
	RedisURL string
}

// New creates a cache backend from config.
func New(cfg Config) (Cache, error) {
	if cfg.Type == "redis" {
		return NewRedis(cfg.RedisURL)
	}
	return NewMemory(time.Now), nil
}
