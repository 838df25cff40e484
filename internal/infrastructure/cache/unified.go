package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

// Unified routes calls to Redis when it is available and to the in-process
// map otherwise. A failing Redis call is retried against memory so a flaky
// backend only costs a cache miss.
type Unified struct {
	remote *Redis
	memory *Memory
	logger *log.Logger
	group  singleflight.Group
}

type Options struct {
	RedisURL      string
	DefaultTTL    time.Duration
	SweepInterval time.Duration
}

func NewUnified(opts Options, logger *log.Logger) *Unified {
	return &Unified{
		remote: NewRedis(opts.RedisURL, opts.DefaultTTL, logger),
		memory: NewMemory(opts.DefaultTTL, opts.SweepInterval, logger),
		logger: logger,
	}
}

// NewWithStores builds a Unified from explicit backends; remote may be nil.
func NewWithStores(remote *Redis, memory *Memory, logger *log.Logger) *Unified {
	if memory == nil {
		memory = NewMemory(DefaultTTL, time.Minute, logger)
	}
	return &Unified{remote: remote, memory: memory, logger: logger}
}

func (u *Unified) Backend() string {
	if u.remote.Available() {
		return "redis"
	}
	return "memory"
}

// Start launches the memory sweeper. It is harmless with Redis configured:
// the memory map still serves fallbacks.
func (u *Unified) Start(ctx context.Context) {
	u.memory.Start(ctx)
}

func (u *Unified) Close() error {
	u.memory.Stop()
	return u.remote.Close()
}

func (u *Unified) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if u.remote.Available() {
		hit, err := u.remote.GetJSON(ctx, key, out)
		if err == nil {
			return hit, nil
		}
	}
	return u.memory.GetJSON(ctx, key, out)
}

func (u *Unified) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if u.remote.Available() {
		if err := u.remote.SetJSON(ctx, key, value, ttl); err == nil {
			return nil
		}
	}
	return u.memory.SetJSON(ctx, key, value, ttl)
}

func (u *Unified) Delete(ctx context.Context, key string) error {
	if u.remote.Available() {
		_ = u.remote.Delete(ctx, key)
	}
	return u.memory.Delete(ctx, key)
}

func (u *Unified) DeleteByPrefix(ctx context.Context, prefix string) error {
	if u.remote.Available() {
		_ = u.remote.DeleteByPrefix(ctx, prefix)
	}
	return u.memory.DeleteByPrefix(ctx, prefix)
}

func (u *Unified) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if u.remote.Available() {
		ok, err := u.remote.SetIfNotExists(ctx, key, value, ttl)
		if err == nil {
			return ok, nil
		}
	}
	return u.memory.SetIfNotExists(ctx, key, value, ttl)
}

// GetOrLoad decodes the cached value for key into out, or runs load, caches
// its result for ttl and decodes that. Concurrent misses for the same key in
// this process share one load. Load errors are returned and never cached.
func (u *Unified) GetOrLoad(ctx context.Context, key string, ttl time.Duration, out any, load func(ctx context.Context) (any, error)) error {
	if load == nil {
		return errors.New("nil loader")
	}
	if hit, err := u.GetJSON(ctx, key, out); err == nil && hit {
		return nil
	}

	v, err, _ := u.group.Do(key, func() (any, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		var raw json.RawMessage = b
		if err := u.SetJSON(ctx, key, raw, ttl); err != nil && u.logger != nil {
			u.logger.Printf("[Cache] Set failed key=%s err=%v", key, err)
		}
		return b, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), out)
}
