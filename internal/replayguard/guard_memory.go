package replayguard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryGuard is an in-process Guard for single-node deployments and tests.
type MemoryGuard struct {
	mu       sync.Mutex
	claimed  map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
	lastSwep time.Time
}

// NewMemoryGuard creates a guard that remembers claims for ttl. The ttl must
// exceed the token lifetime so a replayed nonce cannot outlive its record.
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		claimed: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Claim marks the nonce as spent. The check-and-set runs under one lock so
// concurrent claims of the same nonce resolve to exactly one winner.
func (g *MemoryGuard) Claim(_ context.Context, nonce string) (bool, error) {
	if nonce == "" {
		return false, fmt.Errorf("nonce is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweepLocked(now)

	if expiry, ok := g.claimed[nonce]; ok && now.Before(expiry) {
		return false, nil
	}
	g.claimed[nonce] = now.Add(g.ttl)
	return true, nil
}

// sweepLocked drops expired records, at most once per ttl to keep Claim cheap.
func (g *MemoryGuard) sweepLocked(now time.Time) {
	if now.Sub(g.lastSwep) < g.ttl {
		return
	}
	g.lastSwep = now
	for nonce, expiry := range g.claimed {
		if !now.Before(expiry) {
			delete(g.claimed, nonce)
		}
	}
}

var _ Guard = (*MemoryGuard)(nil)
