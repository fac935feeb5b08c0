package token

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"scoregate/internal/identity"
	"scoregate/internal/ratelimit"
	"scoregate/internal/submission/metrics"
	dErrors "scoregate/pkg/domain-errors"
	"scoregate/pkg/platform/httputil"
	"scoregate/pkg/requestcontext"
)

// RateChecker evaluates one fixed-window limit per distinguishing key.
type RateChecker interface {
	Check(ctx context.Context, prefix, identifier string, window time.Duration, maxCount int) (*ratelimit.Result, error)
}

// TicketValidator confirms a session ticket against the identity provider.
type TicketValidator interface {
	Validate(ctx context.Context, accountID, ticket string) (identity.Verdict, error)
}

// BanChecker reports whether an account is banned.
type BanChecker interface {
	IsBanned(ctx context.Context, accountID string) bool
}

// HandlerConfig holds the issuance endpoint's rate limits.
type HandlerConfig struct {
	RateWindow     time.Duration
	RatePerAddress int
	RatePerAccount int
}

// Handler exposes capability token issuance. Issuance is gated the same way
// as submission: rate limits, a live identity check, and the ban list. A
// token in hand proves the holder passed those gates moments ago.
type Handler struct {
	cfg     HandlerConfig
	service *Service
	rate    RateChecker
	tickets TicketValidator
	bans    BanChecker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithMetrics attaches issuance metrics.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler creates the token issuance handler.
func NewHandler(cfg HandlerConfig, svc *Service, rate RateChecker, tickets TicketValidator, bans BanChecker, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		cfg:     cfg,
		service: svc,
		rate:    rate,
		tickets: tickets,
		bans:    bans,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the token routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/tokens", h.handleIssueToken)
}

type issueRequest struct {
	AccountID string `json:"account_id"`
	Ticket    string `json:"ticket"`
}

type issueResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func (h *Handler) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeStructural, "request body is not valid JSON"))
		return
	}
	if req.AccountID == "" || req.Ticket == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeStructural, "account_id and ticket are required"))
		return
	}

	if err := h.rateCheck(ctx, w, req.AccountID); err != nil {
		return
	}

	if h.bans.IsBanned(ctx, req.AccountID) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBanned, "account is banned"))
		return
	}

	verdict, err := h.tickets.Validate(ctx, req.AccountID, req.Ticket)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeTransient, "identity provider unavailable"))
		return
	}
	if !verdict.Valid {
		h.logger.InfoContext(ctx, "token issuance refused",
			"account_id", req.AccountID,
			"reason", verdict.Reason,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeAuthentication, "session ticket rejected"))
		return
	}

	encoded, claims, err := h.service.Issue(ctx, req.AccountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "token issuance failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "issue token"))
		return
	}

	if h.metrics != nil {
		h.metrics.TokensIssuedTotal.Inc()
	}
	httputil.WriteJSON(w, http.StatusOK, issueResponse{
		Token:     encoded,
		ExpiresAt: claims.ExpiresAt,
	})
}

// Issuance keeps its own buckets so a full token-then-submit flow costs one
// count in each, not two in the submission buckets.
const (
	issueKeyPrefixAddr    = "token_" + ratelimit.KeyPrefixAddr
	issueKeyPrefixAccount = "token_" + ratelimit.KeyPrefixAccount
)

// rateCheck writes the rejection itself and reports whether it did.
func (h *Handler) rateCheck(ctx context.Context, w http.ResponseWriter, accountID string) error {
	type bucket struct {
		prefix     string
		identifier string
		max        int
	}
	buckets := []bucket{
		{issueKeyPrefixAddr, requestcontext.ClientIP(ctx), h.cfg.RatePerAddress},
		{issueKeyPrefixAccount, accountID, h.cfg.RatePerAccount},
	}

	for _, b := range buckets {
		if b.identifier == "" {
			continue
		}
		res, err := h.rate.Check(ctx, b.prefix, b.identifier, h.cfg.RateWindow, b.max)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeTransient, "rate limit check failed"))
			return err
		}
		if res.Limited {
			w.Header().Set("Retry-After", retryAfterSeconds(res.RetryAfter))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "token issuance rate limit exceeded"))
			return dErrors.New(dErrors.CodeRateLimited, "rate limited")
		}
	}
	return nil
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
