// Package cache implements the service cache: an in-process TTL map with a
// periodic sweep, optionally backed by Redis when REDIS_URL is configured.
package cache

import (
	"context"
	"time"
)

// Store is the JSON key/value contract shared by the memory and Redis backends.
type Store interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

const DefaultTTL = 5 * time.Minute
