package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/cache"
)

// RedisCache implements cache.RateCache using Redis. Every key is stored
// under prefix so Clear never touches foreign data.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

var _ cache.RateCache = (*RedisCache)(nil)

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, prefix string, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, prefix: prefix, logger: logger.With("cache", "redis")}
}

func (r *RedisCache) key(key string) string {
	return r.prefix + key
}

func (r *RedisCache) Get(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", key)
		return decimal.Zero, false, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", key, "error", err)
		return decimal.Zero, false, err
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		r.logger.Error("Redis cache parse error", "key", key, "value", val, "error", err)
		return decimal.Zero, false, err
	}
	r.logger.Debug("Redis cache hit", "key", key, "rate", rate)
	return rate, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, rate decimal.Decimal, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), rate.String(), ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "key", key, "rate", rate, "ttl", ttl)
	return nil
}

// Clear deletes every key under the prefix using SCAN so large keyspaces do
// not block the server.
func (r *RedisCache) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	batch := make([]string, 0, 100)
	deleted := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return err
		}
		deleted += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				r.logger.Error("Redis cache clear error", "error", err)
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Error("Redis cache scan error", "error", err)
		return err
	}
	if err := flush(); err != nil {
		r.logger.Error("Redis cache clear error", "error", err)
		return err
	}
	r.logger.Info("Redis cache cleared", "prefix", r.prefix, "keys", deleted)
	return nil
}
