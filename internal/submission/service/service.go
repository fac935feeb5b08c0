// Package service sequences the submission pipeline: a strictly ordered chain
// of gates where any gate may short-circuit with a classified rejection, and
// where tamper-proof violations trigger the auto-ban policy.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"scoregate/internal/audit"
	"scoregate/internal/leaderboard"
	"scoregate/internal/metadata"
	"scoregate/internal/platform/tracing"
	"scoregate/internal/ratelimit"
	"scoregate/internal/submission/metrics"
	"scoregate/internal/submission/models"
	"scoregate/internal/token"
	dErrors "scoregate/pkg/domain-errors"
	"scoregate/pkg/requestcontext"
)

// Config holds the pipeline's policy tunables.
type Config struct {
	RateWindow     time.Duration
	RatePerAddress int
	RatePerAccount int
	// BanOnImplausible escalates plausibility rejections to bans. Off by
	// default: the stats bounds are conservative estimates and a false
	// positive ban is far costlier than a flagged-for-review score.
	BanOnImplausible bool
}

// Result is the structured outcome surfaced to the caller.
type Result struct {
	Accepted     bool
	ScoreChanged bool
	PreviousRank int
	NewRank      int
	Banned       bool
	Outcome      models.Outcome
	Reason       string
	RetryAfter   time.Duration
}

// Service orchestrates the gates.
type Service struct {
	cfg     Config
	rate    RateChecker
	tokens  TokenVerifier
	tickets TicketValidator
	bans    BanPolicy
	replay  ReplayGuard
	stats   StatsValidator
	board   ScoreForwarder
	auditor AuditRecorder

	logger  *slog.Logger
	tracer  tracing.Tracer
	metrics *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithTracer enables span emission per pipeline gate.
func WithTracer(t tracing.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates the orchestrator. Every collaborator is required; observability
// options are not.
func New(
	cfg Config,
	rate RateChecker,
	tokens TokenVerifier,
	tickets TicketValidator,
	bans BanPolicy,
	replay ReplayGuard,
	statsValidator StatsValidator,
	board ScoreForwarder,
	auditor AuditRecorder,
	opts ...Option,
) (*Service, error) {
	if rate == nil || tokens == nil || tickets == nil || bans == nil ||
		replay == nil || statsValidator == nil || board == nil || auditor == nil {
		return nil, fmt.Errorf("all pipeline collaborators are required")
	}
	if cfg.RateWindow <= 0 || cfg.RatePerAddress <= 0 || cfg.RatePerAccount <= 0 {
		return nil, fmt.Errorf("rate limit configuration must be positive")
	}

	s := &Service{
		cfg:     cfg,
		rate:    rate,
		tokens:  tokens,
		tickets: tickets,
		bans:    bans,
		replay:  replay,
		stats:   statsValidator,
		board:   board,
		auditor: auditor,
		logger:  slog.Default(),
		tracer:  tracing.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// rejection is the internal terminal state of a failed gate.
type rejection struct {
	outcome     models.Outcome
	code        dErrors.Code
	message     string
	reason      string
	banned      bool
	rateLimited bool
	retryAfter  time.Duration
}

// Submit runs the full pipeline for one submission. The returned Result is
// always populated; err is nil only for an accepted score, and otherwise
// carries the failure classification for transport mapping. Exactly one audit
// entry is recorded per call, whatever the path.
func (s *Service) Submit(ctx context.Context, sub *models.Submission) (*Result, error) {
	start := requestcontext.Now(ctx)
	ctx, span := s.tracer.Start(ctx, tracing.SpanSubmit,
		tracing.String("account_id", sub.AccountID),
		tracing.String("difficulty", string(sub.Difficulty)),
	)

	res, rej, err := s.run(ctx, sub)
	if rej != nil {
		err = dErrors.New(rej.code, rej.message)
		res = &Result{
			Outcome:    rej.outcome,
			Reason:     rej.reason,
			Banned:     rej.banned,
			RetryAfter: rej.retryAfter,
		}
	} else if err != nil {
		res = &Result{Outcome: models.OutcomeTransient, Reason: "internal"}
	}
	span.End(err)

	s.finish(ctx, sub, res, rej, start)
	return res, err
}

// RejectStructural applies the hard-failure policy to a request the transport
// layer could not decode into the domain shape. The classification happened at
// the boundary; the ban and the audit entry still happen here, so a malformed
// body costs its sender exactly what an in-pipeline structural failure does.
// accountID may be empty when the body did not carry one.
func (s *Service) RejectStructural(ctx context.Context, accountID, reason string) (*Result, error) {
	start := requestcontext.Now(ctx)
	ctx, span := s.tracer.Start(ctx, tracing.SpanSubmit,
		tracing.String("account_id", accountID),
	)

	rej := structuralRejection(reason)
	s.applyBan(ctx, accountID, rej)

	err := dErrors.New(rej.code, rej.message)
	res := &Result{
		Outcome: rej.outcome,
		Reason:  rej.reason,
		Banned:  rej.banned,
	}
	span.End(err)

	s.finish(ctx, &models.Submission{AccountID: accountID}, res, rej, start)
	return res, err
}

// run walks the gates in order and stops at the first terminal state.
func (s *Service) run(ctx context.Context, sub *models.Submission) (*Result, *rejection, error) {
	if rej := s.rateCheck(ctx, sub); rej != nil {
		return nil, rej, nil
	}
	if rej := s.structuralCheck(sub); rej != nil {
		s.applyBan(ctx, sub.AccountID, rej)
		return nil, rej, nil
	}
	if rej := s.identityCheck(ctx, sub); rej != nil {
		s.applyBan(ctx, sub.AccountID, rej)
		return nil, rej, nil
	}
	if rej := s.banCheck(ctx, sub); rej != nil {
		return nil, rej, nil
	}
	if rej := s.fieldCompletenessCheck(sub); rej != nil {
		s.applyBan(ctx, sub.AccountID, rej)
		return nil, rej, nil
	}
	claims, rej := s.tokenCheck(ctx, sub)
	if rej != nil {
		s.applyBan(ctx, sub.AccountID, rej)
		return nil, rej, nil
	}
	if rej := s.replayCheck(ctx, claims); rej != nil {
		s.applyBan(ctx, sub.AccountID, rej)
		return nil, rej, nil
	}
	if rej := s.statsCheck(ctx, sub); rej != nil {
		s.applyBan(ctx, sub.AccountID, rej)
		return nil, rej, nil
	}
	return s.packAndForward(ctx, sub)
}

// rateCheck limits by source address and account id independently; tripping
// either bucket rejects. Reported before any deeper check runs.
func (s *Service) rateCheck(ctx context.Context, sub *models.Submission) *rejection {
	ctx, span := s.tracer.Start(ctx, tracing.SpanRateCheck)
	defer span.End(nil)

	type bucket struct {
		prefix     string
		identifier string
		max        int
	}
	buckets := []bucket{
		{ratelimit.KeyPrefixAddr, requestcontext.ClientIP(ctx), s.cfg.RatePerAddress},
		{ratelimit.KeyPrefixAccount, sub.AccountID, s.cfg.RatePerAccount},
	}

	for _, b := range buckets {
		if b.identifier == "" {
			continue
		}
		res, err := s.rate.Check(ctx, b.prefix, b.identifier, s.cfg.RateWindow, b.max)
		if err != nil {
			return transientRejection("rate limit check failed", err)
		}
		if res.Limited {
			if s.metrics != nil {
				s.metrics.RateLimitedTotal.WithLabelValues(b.prefix).Inc()
			}
			return &rejection{
				outcome:     models.OutcomeRateLimited,
				code:        dErrors.CodeRateLimited,
				message:     "submission rate limit exceeded",
				reason:      "rate_limited:" + b.prefix,
				rateLimited: true,
				retryAfter:  res.RetryAfter,
			}
		}
	}
	return nil
}

// structuralCheck rejects requests missing the credentials every legitimate
// client always sends. An unmodified client cannot produce these, so they are
// hard failures.
func (s *Service) structuralCheck(sub *models.Submission) *rejection {
	switch {
	case sub.AccountID == "":
		return structuralRejection("missing_account_id")
	case sub.Ticket == "":
		return structuralRejection("missing_ticket")
	case sub.Token == "":
		return structuralRejection("missing_token")
	}
	return nil
}

func (s *Service) identityCheck(ctx context.Context, sub *models.Submission) *rejection {
	ctx, span := s.tracer.Start(ctx, tracing.SpanIdentity)

	verdict, err := s.tickets.Validate(ctx, sub.AccountID, sub.Ticket)
	span.End(err)
	if err != nil {
		// Provider unreachable: inconclusive, never ban on it.
		return transientRejection("identity provider unavailable", err)
	}
	if verdict.Valid {
		return nil
	}
	return &rejection{
		outcome: models.OutcomeAuthentication,
		code:    dErrors.CodeAuthentication,
		message: "session ticket rejected",
		reason:  "ticket:" + string(verdict.Reason),
		banned:  true,
	}
}

func (s *Service) banCheck(ctx context.Context, sub *models.Submission) *rejection {
	ctx, span := s.tracer.Start(ctx, tracing.SpanBanCheck)
	defer span.End(nil)

	if !s.bans.IsBanned(ctx, sub.AccountID) {
		return nil
	}
	return &rejection{
		outcome: models.OutcomeBanned,
		code:    dErrors.CodeBanned,
		message: "account is banned",
		reason:  "already_banned",
		banned:  true,
	}
}

// fieldCompletenessCheck rejects submissions whose stat payload is absent or
// empty. Shape details beyond presence belong to the stats validator.
func (s *Service) fieldCompletenessCheck(sub *models.Submission) *rejection {
	switch {
	case len(sub.RoundTimesMs) == 0:
		return structuralRejection("missing_round_times")
	case len(sub.RoundKills) == 0:
		return structuralRejection("missing_round_kills")
	case len(sub.Weapons) == 0:
		return structuralRejection("missing_weapon_stats")
	case len(sub.Abilities) == 0:
		return structuralRejection("missing_ability_stats")
	case sub.ScoreMs <= 0:
		return structuralRejection("missing_score")
	}
	return nil
}

// tokenCheck covers signature verification and owner matching. An expired
// token is the one authentication failure a slow legitimate client can
// produce, so it rejects without banning.
func (s *Service) tokenCheck(ctx context.Context, sub *models.Submission) (*token.Claims, *rejection) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanTokenCheck)

	claims, err := s.tokens.Verify(ctx, sub.Token)
	span.End(err)
	switch {
	case errors.Is(err, token.ErrExpired):
		return nil, &rejection{
			outcome: models.OutcomeAuthentication,
			code:    dErrors.CodeAuthentication,
			message: "capability token expired",
			reason:  "token_expired",
		}
	case errors.Is(err, token.ErrMalformed), errors.Is(err, token.ErrBadSignature):
		return nil, &rejection{
			outcome: models.OutcomeAuthentication,
			code:    dErrors.CodeAuthentication,
			message: "capability token rejected",
			reason:  "token_invalid",
			banned:  true,
		}
	case err != nil:
		return nil, transientRejection("token verification failed", err)
	}

	if claims.AccountID != sub.AccountID {
		return nil, &rejection{
			outcome: models.OutcomeAuthentication,
			code:    dErrors.CodeAuthentication,
			message: "capability token owner mismatch",
			reason:  "token_owner_mismatch",
			banned:  true,
		}
	}
	return claims, nil
}

// replayCheck atomically claims the token nonce before the forward step, so
// two racers on one nonce resolve to a single winner no matter how their I/O
// interleaves.
func (s *Service) replayCheck(ctx context.Context, claims *token.Claims) *rejection {
	ctx, span := s.tracer.Start(ctx, tracing.SpanReplay)

	won, err := s.replay.Claim(ctx, claims.Nonce)
	span.End(err)
	if err != nil {
		return transientRejection("replay guard unavailable", err)
	}
	if !won {
		return &rejection{
			outcome: models.OutcomeAuthentication,
			code:    dErrors.CodeAuthentication,
			message: "capability token already used",
			reason:  "token_replayed",
			banned:  true,
		}
	}
	return nil
}

func (s *Service) statsCheck(ctx context.Context, sub *models.Submission) *rejection {
	_, span := s.tracer.Start(ctx, tracing.SpanStats)
	defer span.End(nil)

	result := s.stats.Validate(sub)
	if result.Valid {
		return nil
	}

	if s.metrics != nil {
		rule, _, _ := strings.Cut(result.Reason, ":")
		s.metrics.StatsRejections.WithLabelValues(rule).Inc()
	}
	return &rejection{
		outcome: models.OutcomeImplausible,
		code:    dErrors.CodePlausibility,
		message: "submission statistics are implausible",
		reason:  result.Reason,
		banned:  s.cfg.BanOnImplausible,
	}
}

// packAndForward stores the score on the external leaderboard. If the board
// rejects the metadata payload specifically, the forward is retried once
// without it: the score survives even when the stat side-channel cannot.
func (s *Service) packAndForward(ctx context.Context, sub *models.Submission) (*Result, *rejection, error) {
	packed, err := metadata.Pack(sub)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "pack metadata")
	}

	ctx, span := s.tracer.Start(ctx, tracing.SpanForward)
	forwardStart := requestcontext.Now(ctx)

	outcome, err := s.board.Submit(ctx, sub.Difficulty, sub.AccountID, sub.ScoreMs, &packed)
	if errors.Is(err, leaderboard.ErrMetadataRejected) {
		if s.metrics != nil {
			s.metrics.MetadataRetries.Inc()
		}
		s.logger.WarnContext(ctx, "leaderboard rejected metadata, retrying without",
			"account_id", sub.AccountID,
			"difficulty", sub.Difficulty,
		)
		outcome, err = s.board.Submit(ctx, sub.Difficulty, sub.AccountID, sub.ScoreMs, nil)
	}
	span.End(err)
	if s.metrics != nil {
		s.metrics.ForwardDurationMs.Observe(float64(time.Since(forwardStart).Milliseconds()))
	}
	if err != nil {
		return nil, transientRejection("leaderboard forward failed", err), nil
	}

	return &Result{
		Accepted:     true,
		ScoreChanged: outcome.ScoreChanged,
		PreviousRank: outcome.PreviousRank,
		NewRank:      outcome.NewRank,
		Outcome:      models.OutcomeAccepted,
	}, nil, nil
}

// applyBan invokes the ban policy for a hard failure. Ban write failures are
// logged, never surfaced: the rejection already stands on its own.
func (s *Service) applyBan(ctx context.Context, accountID string, rej *rejection) {
	if !rej.banned || accountID == "" {
		return
	}
	if s.metrics != nil {
		s.metrics.AutoBansTotal.WithLabelValues(rej.reason).Inc()
	}
	if err := s.bans.Ban(ctx, accountID, rej.reason); err != nil {
		s.logger.ErrorContext(ctx, "auto-ban failed",
			"account_id", accountID,
			"reason", rej.reason,
			"error", err,
		)
	}
}

// finish emits the single audit entry and the terminal metrics for this call.
func (s *Service) finish(ctx context.Context, sub *models.Submission, res *Result, rej *rejection, start time.Time) {
	outcome := models.OutcomeTransient
	success := false
	rateLimited := false
	if res != nil {
		outcome = res.Outcome
		success = res.Accepted
	}
	if rej != nil {
		rateLimited = rej.rateLimited
	}

	s.auditor.Record(ctx, audit.Entry{
		AccountID:   sub.AccountID,
		Difficulty:  string(sub.Difficulty),
		ScoreMs:     int64(sub.ScoreMs),
		RateLimited: rateLimited,
		Success:     success,
		Outcome:     string(outcome),
	})

	if s.metrics != nil {
		s.metrics.SubmissionsTotal.WithLabelValues(string(outcome)).Inc()
		s.metrics.PipelineDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}
}

func structuralRejection(reason string) *rejection {
	return &rejection{
		outcome: models.OutcomeStructural,
		code:    dErrors.CodeStructural,
		message: "submission is structurally invalid",
		reason:  reason,
		banned:  true,
	}
}

func transientRejection(message string, err error) *rejection {
	return &rejection{
		outcome: models.OutcomeTransient,
		code:    dErrors.CodeTransient,
		message: message,
		reason:  "transient:" + err.Error(),
	}
}
