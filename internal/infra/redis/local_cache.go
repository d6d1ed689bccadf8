package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// LocalCache stores app.LocalCache entries as plain strings under quiz:cache:.
type LocalCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocalCache(client *redis.Client, ttl time.Duration) *LocalCache {
	return &LocalCache{client: client, ttl: ttl}
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *LocalCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, c.key(key), value, c.ttl).Err()
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

func (c *LocalCache) key(key string) string {
	return "quiz:cache:" + key
}
