package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a Redis-backed store client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// wrap tags every transport failure with ErrUnavailable so the engine
// can catch degraded-store conditions at a single boundary.
func wrap(op string, err error) error {
	return fmt.Errorf("store: %s failed: %v: %w", op, err, ErrUnavailable)
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil // not found
	}
	if err != nil {
		return "", false, wrap("get", err)
	}
	return val, true, nil
}

func (r *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, wrap("increment", err)
	}
	return n, nil
}

func (r *RedisStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("store: ttl must be positive")
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return wrap("set", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return wrap("delete", err)
	}
	return nil
}

func (r *RedisStore) AddToSet(ctx context.Context, key, member string) error {
	if err := r.client.SAdd(ctx, key, member).Err(); err != nil {
		return wrap("add to set", err)
	}
	return nil
}

func (r *RedisStore) RemoveFromSet(ctx context.Context, key, member string) error {
	if err := r.client.SRem(ctx, key, member).Err(); err != nil {
		return wrap("remove from set", err)
	}
	return nil
}

func (r *RedisStore) ListSet(ctx context.Context, key string) ([]string, error) {
	members, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, wrap("list set", err)
	}
	return members, nil
}
