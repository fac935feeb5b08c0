package service

import (
	"context"
	"time"

	"scoregate/internal/audit"
	"scoregate/internal/identity"
	"scoregate/internal/leaderboard"
	"scoregate/internal/metadata"
	"scoregate/internal/ratelimit"
	"scoregate/internal/stats"
	"scoregate/internal/submission/models"
	"scoregate/internal/token"
)

// RateChecker evaluates one fixed-window limit per distinguishing key.
type RateChecker interface {
	Check(ctx context.Context, prefix, identifier string, window time.Duration, maxCount int) (*ratelimit.Result, error)
}

// TokenVerifier checks a capability token's structure, signature, and expiry.
type TokenVerifier interface {
	Verify(ctx context.Context, tok string) (*token.Claims, error)
}

// TicketValidator confirms a session ticket against the identity provider.
type TicketValidator interface {
	Validate(ctx context.Context, accountID, ticket string) (identity.Verdict, error)
}

// BanPolicy gates banned accounts and applies new bans.
type BanPolicy interface {
	IsBanned(ctx context.Context, accountID string) bool
	Ban(ctx context.Context, accountID, reason string) error
}

// ReplayGuard claims token nonces, first claimer wins.
type ReplayGuard interface {
	Claim(ctx context.Context, nonce string) (bool, error)
}

// StatsValidator judges a submission's numbers for plausibility.
type StatsValidator interface {
	Validate(sub *models.Submission) stats.Result
}

// ScoreForwarder stores an accepted score on the external leaderboard.
type ScoreForwarder interface {
	Submit(ctx context.Context, difficulty models.Difficulty, accountID string, scoreMs int32, packed *[metadata.Slots]int32) (leaderboard.Outcome, error)
}

// AuditRecorder persists one audit entry per submission attempt.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}
