package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/playsight/backend/internal/storage"
)

// RedisStore is the shared CounterStore. Atomicity comes from redis INCR, so
// many process instances can enforce against the same counters.
type RedisStore struct {
	redis *storage.RedisClient
}

func NewRedisStore(redis *storage.RedisClient) *RedisStore {
	return &RedisStore{redis: redis}
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.redis.Incr(ctx, key)
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.redis.Expire(ctx, key, ttl)
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	val, err := s.redis.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if val == "" {
		return 0, nil
	}
	return strconv.ParseInt(val, 10, 64)
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.redis.Exists(ctx, key)
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return s.redis.TTL(ctx, key)
}

func (s *RedisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.redis.Set(ctx, key, value, ttl)
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	return s.redis.Del(ctx, keys...)
}

func (s *RedisStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	return s.redis.Scan(ctx, pattern)
}
