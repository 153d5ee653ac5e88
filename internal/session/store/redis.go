package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"unibuild/pkg/platform/sentinel"
)

const redisKeyPrefix = "unibuild:device:"

// Redis stores each namespace as one hash so a namespace expires as a unit.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed storage.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func redisKey(namespace string) string {
	return redisKeyPrefix + namespace
}

func (r *Redis) Get(ctx context.Context, namespace, key string) (string, error) {
	v, err := r.client.HGet(ctx, redisKey(namespace), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis hget: %w: %w", sentinel.ErrUnavailable, err)
	}
	return v, nil
}

// SetMany writes all values and refreshes the TTL in one MULTI/EXEC.
func (r *Redis) SetMany(ctx context.Context, namespace string, values map[string]string, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}
	key := redisKey(namespace)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, redisKey(namespace), keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
