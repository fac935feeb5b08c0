package replayguard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimFirstUseWins(t *testing.T) {
	guard := NewMemoryGuard(time.Minute)
	ctx := context.Background()

	won, err := guard.Claim(ctx, "nonce-a")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = guard.Claim(ctx, "nonce-a")
	require.NoError(t, err)
	assert.False(t, won, "second claim of the same nonce must lose")

	won, err = guard.Claim(ctx, "nonce-b")
	require.NoError(t, err)
	assert.True(t, won, "distinct nonce gets its own claim")
}

func TestClaimRejectsEmptyNonce(t *testing.T) {
	guard := NewMemoryGuard(time.Minute)
	_, err := guard.Claim(context.Background(), "")
	assert.Error(t, err)
}

func TestClaimExpiredRecordIsForgotten(t *testing.T) {
	guard := NewMemoryGuard(time.Minute)
	now := time.Now()
	guard.now = func() time.Time { return now }
	ctx := context.Background()

	won, err := guard.Claim(ctx, "nonce-a")
	require.NoError(t, err)
	require.True(t, won)

	now = now.Add(2 * time.Minute)

	won, err = guard.Claim(ctx, "nonce-a")
	require.NoError(t, err)
	assert.True(t, won, "record past retention no longer blocks")
}

func TestClaimConcurrentExactlyOneWinner(t *testing.T) {
	guard := NewMemoryGuard(time.Minute)
	ctx := context.Background()

	const racers = 32
	var winners atomic.Int32
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			won, err := guard.Claim(ctx, "contested")
			require.NoError(t, err)
			if won {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
