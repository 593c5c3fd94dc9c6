package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/HSouheill/matrix_backend/matrix"
)

// ProgressCache stores computed progress keyed by schedule and member
type ProgressCache interface {
	Get(ctx context.Context, key string) (matrix.Progress, bool)
	Set(ctx context.Context, key string, p matrix.Progress)
	Delete(ctx context.Context, keys ...string)
}

func progressKey(fingerprint, memberID string) string {
	return "matrix:progress:" + fingerprint + ":" + memberID
}

// RedisProgressCache is a ProgressCache backed by Redis. Failures are
// logged and treated as cache misses.
type RedisProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProgressCache returns a Redis cache, or a no-op cache when client is nil
func NewProgressCache(client *redis.Client, ttl time.Duration) ProgressCache {
	if client == nil {
		return noopCache{}
	}
	return &RedisProgressCache{client: client, ttl: ttl}
}

func (c *RedisProgressCache) Get(ctx context.Context, key string) (matrix.Progress, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("progress cache get %s: %v", key, err)
		}
		return matrix.Progress{}, false
	}
	var p matrix.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("progress cache decode %s: %v", key, err)
		return matrix.Progress{}, false
	}
	return p, true
}

func (c *RedisProgressCache) Set(ctx context.Context, key string, p matrix.Progress) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Printf("progress cache encode %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("progress cache set %s: %v", key, err)
	}
}

func (c *RedisProgressCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("progress cache delete: %v", err)
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (matrix.Progress, bool) {
	return matrix.Progress{}, false
}
func (noopCache) Set(context.Context, string, matrix.Progress) {}
func (noopCache) Delete(context.Context, ...string)            {}
