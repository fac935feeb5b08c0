// Package replayguard enforces single use of token nonces. A nonce is claimed
// atomically the first time it is spent; any later claim within the retention
// window fails, which the pipeline treats as a replay.
package replayguard

import "context"

// Guard records nonce claims. Claim returns true exactly once per nonce
// within its retention window; every subsequent call returns false.
type Guard interface {
	Claim(ctx context.Context, nonce string) (bool, error)
}
