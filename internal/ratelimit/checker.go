// Package ratelimit implements fixed-window request limiting keyed by caller
// identity. A bucket is the pair (key, window index); counters expire with
// the window. The window is fixed, not sliding: a caller near a window
// boundary can briefly reach up to twice the limit. Accepted trade-off.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	dErrors "scoregate/pkg/domain-errors"
)

const (
	// KeyPrefixAddr buckets by source network address.
	KeyPrefixAddr = "addr"
	// KeyPrefixAccount buckets by account id.
	KeyPrefixAccount = "account"
)

// Result reports the outcome of a single limit check.
type Result struct {
	Limited bool
	// RetryAfter is the suggested client wait when limited; zero otherwise.
	RetryAfter time.Duration
}

// CounterStore is the expiring counter primitive behind the limiter.
type CounterStore interface {
	// Increment atomically increments the bucket and returns the new count.
	// The first increment of a bucket sets its expiry to ttl.
	Increment(ctx context.Context, bucket string, ttl time.Duration) (int64, error)

	// TTL returns the bucket's remaining lifetime. Zero or negative means
	// unknown/expired; callers fall back to the full window.
	TTL(ctx context.Context, bucket string) (time.Duration, error)
}

// Checker evaluates fixed-window limits against a CounterStore.
type Checker struct {
	store  CounterStore
	logger *slog.Logger
	// now is injectable for deterministic window-index tests.
	now func() time.Time
}

// Option configures the Checker.
type Option func(*Checker)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// New creates a Checker.
func New(store CounterStore, opts ...Option) (*Checker, error) {
	if store == nil {
		return nil, fmt.Errorf("counter store is required")
	}
	c := &Checker{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Check increments the caller's bucket for the current window and reports
// whether the post-increment count exceeds maxCount. Callers check each
// distinguishing key independently (address, then account); limiting is the
// logical OR of those checks.
func (c *Checker) Check(ctx context.Context, prefix, identifier string, window time.Duration, maxCount int) (*Result, error) {
	if identifier == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "rate limit identifier is required")
	}
	if window <= 0 || maxCount <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "rate limit window and count must be positive")
	}

	windowSec := int64(window / time.Second)
	windowIndex := c.now().Unix() / windowSec
	bucket := fmt.Sprintf("rl:%s:%s:%d", prefix, identifier, windowIndex)

	count, err := c.store.Increment(ctx, bucket, window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransient, "rate limit store unavailable")
	}

	if count <= int64(maxCount) {
		return &Result{}, nil
	}

	retryAfter := window
	if ttl, err := c.store.TTL(ctx, bucket); err == nil && ttl > 0 {
		retryAfter = ttl
	} else if err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "rate limit ttl read failed, using full window",
			"bucket_prefix", prefix,
			"error", err,
		)
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "rate limit exceeded",
			"bucket_prefix", prefix,
			"count", count,
			"max", maxCount,
			"retry_after_s", int(retryAfter.Seconds()),
		)
	}

	return &Result{Limited: true, RetryAfter: retryAfter}, nil
}
