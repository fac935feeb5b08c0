package replayguard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "scoregate/pkg/domain-errors"
)

// RedisGuard is a Guard shared across replicas. SET NX with a TTL gives the
// atomic first-writer-wins semantics; Redis expiry handles retention.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard creates a guard over the given client with the given
// retention window.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

// Claim attempts the atomic first claim of nonce. Store unavailability is a
// transient error, not a verdict.
func (g *RedisGuard) Claim(ctx context.Context, nonce string) (bool, error) {
	if nonce == "" {
		return false, fmt.Errorf("nonce is required")
	}

	won, err := g.client.SetNX(ctx, "replay:"+nonce, 1, g.ttl).Result()
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeTransient, "replay guard unavailable")
	}
	return won, nil
}

var _ Guard = (*RedisGuard)(nil)
