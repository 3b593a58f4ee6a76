package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the minimal TTL key-value surface services depend on. The redis
// client satisfies it in production; tests use in-memory fakes.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache adapts a go-redis client to the Cache interface.
func NewRedisCache(r *Redis) Cache {
	if r == nil || r.Client == nil {
		return nil
	}
	return &redisCache{client: r.Client}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
