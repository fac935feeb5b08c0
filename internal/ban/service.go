package ban

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"scoregate/internal/submission/models"
	dErrors "scoregate/pkg/domain-errors"
	"scoregate/pkg/requestcontext"
)

// EntryDeleter removes an account's entry from one leaderboard bracket.
type EntryDeleter interface {
	DeleteEntry(ctx context.Context, difficulty models.Difficulty, accountID string) error
}

// Service applies and lifts bans.
type Service struct {
	store       Store
	leaderboard EntryDeleter
	logger      *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a ban service. The leaderboard deleter may be nil when
// no leaderboard is configured; bans then only gate submissions.
func NewService(store Store, leaderboard EntryDeleter, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("ban store is required")
	}
	s := &Service{
		store:       store,
		leaderboard: leaderboard,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ban records the ban and wipes the account from every leaderboard bracket.
// Banning an already banned account is a no-op for the record and re-runs the
// wipe, so a previously failed wipe heals on the next offense. The ban is
// effective once the record persists; wipe failures are logged, not fatal.
func (s *Service) Ban(ctx context.Context, accountID, reason string) error {
	if accountID == "" {
		return fmt.Errorf("account id is required")
	}

	record := Record{
		AccountID: accountID,
		Reason:    reason,
		BannedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "record ban")
	}

	s.logger.InfoContext(ctx, "account banned", "account_id", accountID, "reason", reason)

	if s.leaderboard == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, difficulty := range models.Difficulties {
		g.Go(func() error {
			if err := s.leaderboard.DeleteEntry(gctx, difficulty, accountID); err != nil {
				return fmt.Errorf("wipe %s leaderboard: %w", difficulty, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "leaderboard wipe incomplete",
			"account_id", accountID, "error", err)
	}
	return nil
}

// Unban lifts a ban. Lifting an absent ban succeeds.
func (s *Service) Unban(ctx context.Context, accountID string) error {
	if accountID == "" {
		return fmt.Errorf("account id is required")
	}
	if err := s.store.Delete(ctx, accountID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "lift ban")
	}
	s.logger.InfoContext(ctx, "ban lifted", "account_id", accountID)
	return nil
}

// IsBanned reports whether the account is banned. A ban store outage fails
// open: a brief window where a banned account slips through is preferable to
// rejecting every honest submission, and the record still stands once the
// store recovers.
func (s *Service) IsBanned(ctx context.Context, accountID string) bool {
	_, err := s.store.Get(ctx, accountID)
	if err == nil {
		return true
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		s.logger.ErrorContext(ctx, "ban lookup failed", "account_id", accountID, "error", err)
	}
	return false
}

// Lookup returns the ban record for accountID, or a not-found error.
func (s *Service) Lookup(ctx context.Context, accountID string) (Record, error) {
	return s.store.Get(ctx, accountID)
}
