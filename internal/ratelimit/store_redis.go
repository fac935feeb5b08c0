package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore implements CounterStore on Redis INCR/EXPIRE.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore creates a counter store over the given client.
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Increment atomically increments the bucket. The expiry is attached only on
// the first increment; INCR and EXPIRE run in a pipeline so the bucket can
// never stick around without a TTL under concurrent first increments
// (EXPIRE NX keeps the earliest deadline).
func (s *RedisCounterStore) Increment(ctx context.Context, bucket string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.ExpireNX(ctx, bucket, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment rate limit bucket: %w", err)
	}
	return incr.Val(), nil
}

// TTL returns the bucket's remaining lifetime.
func (s *RedisCounterStore) TTL(ctx context.Context, bucket string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, bucket).Result()
	if err != nil {
		return 0, fmt.Errorf("read rate limit bucket ttl: %w", err)
	}
	if ttl < 0 {
		// -1 no expiry, -2 missing key; either way the caller falls back.
		return 0, nil
	}
	return ttl, nil
}

var _ CounterStore = (*RedisCounterStore)(nil)
