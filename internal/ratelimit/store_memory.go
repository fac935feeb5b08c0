package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounterStore implements CounterStore in process memory.
// For production deployments use the Redis store so limits hold across
// replicas.
type MemoryCounterStore struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
	now     func() time.Time
}

type memoryBucket struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryCounterStore creates an empty in-memory counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		buckets: make(map[string]*memoryBucket),
		now:     time.Now,
	}
}

// Increment atomically increments the bucket, creating it with ttl on first use.
func (s *MemoryCounterStore) Increment(_ context.Context, bucket string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[bucket]
	if !ok || now.After(b.expiresAt) {
		b = &memoryBucket{expiresAt: now.Add(ttl)}
		s.buckets[bucket] = b
	}
	b.count++
	return b.count, nil
}

// TTL returns the bucket's remaining lifetime.
func (s *MemoryCounterStore) TTL(_ context.Context, bucket string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucket]
	if !ok {
		return 0, nil
	}
	remaining := time.Until(b.expiresAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Sweep drops expired buckets. Called periodically by the owner; the limiter
// itself never reads expired buckets, so sweeping only bounds memory.
func (s *MemoryCounterStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, b := range s.buckets {
		if now.After(b.expiresAt) {
			delete(s.buckets, key)
		}
	}
}

var _ CounterStore = (*MemoryCounterStore)(nil)
