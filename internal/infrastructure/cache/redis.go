package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

var errRedisUnavailable = errors.New("redis unavailable")

type Redis struct {
	client     *redis.Client
	logger     *log.Logger
	defaultTTL time.Duration

	warnedUnavailable atomic.Bool
}

// NewRedis connects to rawURL. An empty URL or a failed ping yields a Redis
// whose operations report unavailability, so callers can fall back.
func NewRedis(rawURL string, defaultTTL time.Duration, logger *log.Logger) *Redis {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return &Redis{logger: logger, defaultTTL: defaultTTL}
	}

	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		if logger != nil {
			logger.Printf("[Cache] Invalid REDIS_URL, using memory cache: %v", err)
		}
		return &Redis{logger: logger, defaultTTL: defaultTTL}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if logger != nil {
			logger.Printf("[Cache] Redis unavailable, using memory cache: %v", err)
		}
		_ = client.Close()
		return &Redis{logger: logger, defaultTTL: defaultTTL}
	}

	if logger != nil {
		logger.Printf("[Cache] Redis connected addr=%s db=%d", opts.Addr, opts.DB)
	}
	return &Redis{client: client, logger: logger, defaultTTL: defaultTTL}
}

func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Printf("[Cache] Redis error, falling back to memory: %v", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return errRedisUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if !r.Available() {
		return false, errRedisUnavailable
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !r.Available() {
		return errRedisUnavailable
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if !r.Available() {
		return errRedisUnavailable
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) DeleteByPrefix(ctx context.Context, prefix string) error {
	if !r.Available() {
		return errRedisUnavailable
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}
	return deleteByPattern(ctx, r.client, r.logger, prefix+"*")
}

func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if !r.Available() {
		return false, errRedisUnavailable
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return ok, nil
}

func deleteByPattern(ctx context.Context, rdb *redis.Client, logger *log.Logger, pattern string) error {
	iter := rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := rdb.Del(ctx, k).Err(); err != nil {
			if logger != nil {
				logger.Printf("[Cache] Redis delete error key=%s pattern=%s err=%v", k, pattern, err)
			}
		}
	}
	return iter.Err()
}
