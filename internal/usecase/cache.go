package usecase

import (
	"context"
	"time"
)

// Cache is the subset of the unified cache the usecases rely on.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, out any, load func(ctx context.Context) (any, error)) error
}

const (
	listCacheTTL   = 5 * time.Minute
	detailCacheTTL = 10 * time.Minute
	indexCacheTTL  = time.Hour
)

// loadCached goes through the cache when one is configured and straight to
// load otherwise.
func loadCached[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	var out T
	err := c.GetOrLoad(ctx, key, ttl, &out, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	return out, err
}
