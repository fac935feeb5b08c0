// Package leaderboard wraps the external leaderboard service: keep-best score
// submission with opaque packed metadata, and entry deletion for the ban
// policy.
package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"scoregate/internal/metadata"
	"scoregate/internal/submission/models"
	dErrors "scoregate/pkg/domain-errors"
)

// ErrMetadataRejected reports the service's "payload too large or malformed"
// answer for the metadata field. The caller may retry the submission without
// metadata; the score itself is still storable.
var ErrMetadataRejected = errors.New("leaderboard rejected metadata payload")

// Outcome is the service's answer to an accepted submission.
type Outcome struct {
	Accepted     bool `json:"accepted"`
	ScoreChanged bool `json:"score_changed"`
	PreviousRank int  `json:"previous_rank"`
	NewRank      int  `json:"new_rank"`
}

// Submitter is what the submission pipeline depends on.
type Submitter interface {
	Submit(ctx context.Context, difficulty models.Difficulty, accountID string, scoreMs int32, packed *[metadata.Slots]int32) (Outcome, error)
}

// Client talks to the leaderboard service's HTTP API.
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

// NewClient creates a leaderboard client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("leaderboard url is required")
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

type submitRequest struct {
	AccountID string  `json:"account_id"`
	ScoreMs   int32   `json:"score_ms"`
	Method    string  `json:"method"`
	Metadata  []int32 `json:"metadata,omitempty"`
}

type errorResponse struct {
	Code string `json:"code"`
}

// Submit stores a score on one difficulty's board with keep-best semantics.
// packed may be nil for a metadata-free retry. The service's metadata
// rejection code maps to ErrMetadataRejected; every other failure is
// transient.
func (c *Client) Submit(ctx context.Context, difficulty models.Difficulty, accountID string, scoreMs int32, packed *[metadata.Slots]int32) (Outcome, error) {
	payload := submitRequest{
		AccountID: accountID,
		ScoreMs:   scoreMs,
		Method:    "keep_best",
	}
	if packed != nil {
		payload.Metadata = packed[:]
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal leaderboard submission: %w", err)
	}

	url := fmt.Sprintf("%s/v1/leaderboards/%s/scores", c.baseURL, difficulty)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("build leaderboard submission: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "leaderboard unreachable", "error", err)
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeTransient, "leaderboard unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out Outcome
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return Outcome{}, dErrors.Wrap(err, dErrors.CodeTransient, "decode leaderboard response")
		}
		return out, nil
	case http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if resp.StatusCode == http.StatusRequestEntityTooLarge || errResp.Code == "metadata_rejected" {
			return Outcome{}, ErrMetadataRejected
		}
		return Outcome{}, dErrors.Wrap(
			fmt.Errorf("leaderboard status %d code %q", resp.StatusCode, errResp.Code),
			dErrors.CodeTransient, "leaderboard error",
		)
	default:
		c.logger.WarnContext(ctx, "leaderboard returned non-200", "status", resp.StatusCode)
		return Outcome{}, dErrors.Wrap(
			fmt.Errorf("leaderboard status %d", resp.StatusCode),
			dErrors.CodeTransient, "leaderboard error",
		)
	}
}

// DeleteEntry removes the account's entry from one difficulty's board. A
// missing entry deletes cleanly.
func (c *Client) DeleteEntry(ctx context.Context, difficulty models.Difficulty, accountID string) error {
	url := fmt.Sprintf("%s/v1/leaderboards/%s/entries/%s", c.baseURL, difficulty, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build leaderboard deletion: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransient, "leaderboard unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return dErrors.Wrap(
			fmt.Errorf("leaderboard status %d", resp.StatusCode),
			dErrors.CodeTransient, "leaderboard entry deletion",
		)
	}
}

var _ Submitter = (*Client)(nil)
