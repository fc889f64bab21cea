package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tallerpos/internal/model"

	"github.com/redis/go-redis/v9"
)

type RedisLookupCache struct {
	client *redis.Client
}

func NewRedisLookupCache(client *redis.Client) *RedisLookupCache {
	return &RedisLookupCache{client: client}
}

func (c *RedisLookupCache) Get(ctx context.Context, key string) (*model.ItemCatalogo, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var item model.ItemCatalogo
	if err := json.Unmarshal(val, &item); err != nil {
		// Corrupt entry: drop it and treat as a miss.
		_ = c.client.Del(ctx, key).Err()
		return nil, false, nil
	}
	return &item, true, nil
}

func (c *RedisLookupCache) Set(ctx context.Context, key string, item model.ItemCatalogo, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}
