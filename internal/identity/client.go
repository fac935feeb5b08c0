// Package identity talks to the platform identity provider to validate the
// session ticket presented with a submission. The provider is authoritative
// for whether a ticket is genuine, belongs to the claimed account, and the
// account owns the game.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	dErrors "scoregate/pkg/domain-errors"
)

// Reason classifies a definitive rejection from the provider.
type Reason string

const (
	ReasonInvalidTicket    Reason = "invalid_ticket"
	ReasonIdentityMismatch Reason = "identity_mismatch"
	ReasonNotEntitled      Reason = "not_entitled"
)

// Verdict is the provider's answer for one ticket. Reason is set only when
// Valid is false.
type Verdict struct {
	Valid  bool
	Reason Reason
}

// Validator is what the submission pipeline depends on.
type Validator interface {
	Validate(ctx context.Context, accountID, ticket string) (Verdict, error)
}

// Client validates tickets against the provider's HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithAPIKey authenticates every request with an X-Api-Key header. Empty
// leaves the header off.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// NewClient creates a provider client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("identity provider url is required")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type validateRequest struct {
	AccountID string `json:"account_id"`
	Ticket    string `json:"ticket"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Validate asks the provider about one (account, ticket) pair. A definitive
// rejection comes back as a Verdict; provider unavailability, timeouts, and
// unparseable answers come back as a transient error so the caller can tell
// "the ticket is bad" apart from "we could not find out".
func (c *Client) Validate(ctx context.Context, accountID, ticket string) (Verdict, error) {
	body, err := json.Marshal(validateRequest{AccountID: accountID, Ticket: ticket})
	if err != nil {
		return Verdict{}, fmt.Errorf("marshal ticket validation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tickets/validate", bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("build ticket validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "identity provider unreachable", "error", err)
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeTransient, "identity provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "identity provider returned non-200", "status", resp.StatusCode)
		return Verdict{}, dErrors.Wrap(
			fmt.Errorf("identity provider status %d", resp.StatusCode),
			dErrors.CodeTransient, "identity provider error",
		)
	}

	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeTransient, "decode identity provider response")
	}

	if out.Valid {
		return Verdict{Valid: true}, nil
	}

	reason, err := parseReason(out.Reason)
	if err != nil {
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeTransient, "identity provider response")
	}
	return Verdict{Valid: false, Reason: reason}, nil
}

func parseReason(raw string) (Reason, error) {
	switch r := Reason(raw); r {
	case ReasonInvalidTicket, ReasonIdentityMismatch, ReasonNotEntitled:
		return r, nil
	default:
		return "", fmt.Errorf("unknown rejection reason %q", raw)
	}
}

var _ Validator = (*Client)(nil)
