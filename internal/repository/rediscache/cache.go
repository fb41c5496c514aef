// Package rediscache provides a small JSON read cache for the heavy
// actuals listing. Misses are deduplicated with singleflight so one
// loader run serves concurrent readers.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/itaybar/barops/internal/config"
	"github.com/itaybar/barops/internal/domain/models"
)

const defaultTTL = 60 * time.Second

// Cache is a redis-backed implementation of the actuals list cache.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
	ttl time.Duration
}

// New connects to redis and verifies the connection.
func New(ctx context.Context, cfg config.RedisConfig) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Cache{rdb: rdb, ttl: defaultTTL}, nil
}

// GetOrLoad returns the cached listing, or runs the loader and caches
// its result. Cache write failures are swallowed; the loaded value is
// still returned.
func (c *Cache) GetOrLoad(ctx context.Context, key string, loader func(context.Context) ([]models.EventActual, error)) ([]models.EventActual, error) {
	if cached, ok, err := c.get(ctx, key); err == nil && ok {
		return cached, nil
	}

	value, err, _ := c.sf.Do(key, func() (any, error) {
		if cached, ok, err := c.get(ctx, key); err == nil && ok {
			return cached, nil
		}

		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(loaded); err == nil {
			_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]models.EventActual), nil
}

// Invalidate drops the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func (c *Cache) get(ctx context.Context, key string) ([]models.EventActual, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var out []models.EventActual
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}
