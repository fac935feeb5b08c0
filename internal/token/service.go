// Package token implements the short-lived, single-use capability token
// bridging the issue call and the score submission. A token binds an account
// id to a narrow time window; the HMAC stops forgery, the nonce (consumed via
// the replay guard) stops capture-replay.
package token

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"scoregate/pkg/requestcontext"
)

// Verification failure reasons. Callers translate these into the pipeline's
// failure taxonomy; the service itself stays transport-agnostic.
var (
	ErrMalformed    = errors.New("malformed token")
	ErrBadSignature = errors.New("bad token signature")
	ErrExpired      = errors.New("token expired")
)

// Claims is the signed token payload. Immutable once issued.
type Claims struct {
	AccountID string `json:"account_id"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	Nonce     string `json:"nonce"`
}

// RemainingLifetime returns the time left until expiry at now.
func (c *Claims) RemainingLifetime(now time.Time) time.Duration {
	return time.Unix(c.ExpiresAt, 0).Sub(now)
}

// Service issues and verifies capability tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service. The secret keys the MAC and must be
// identical across replicas serving the same player population.
func NewService(secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// Issue mints a token for accountID: payload {account, iat, exp, nonce},
// HMAC-SHA256 over the serialized payload, transported as
// base64url(payload) + "." + base64url(mac).
func (s *Service) Issue(ctx context.Context, accountID string) (string, *Claims, error) {
	if accountID == "" {
		return "", nil, fmt.Errorf("account id is required")
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", nil, fmt.Errorf("generate nonce: %w", err)
	}

	now := requestcontext.Now(ctx)
	claims := &Claims{
		AccountID: accountID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
		Nonce:     hex.EncodeToString(nonce),
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", nil, fmt.Errorf("marshal claims: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString(s.sign(payload))
	return encoded, claims, nil
}

// Verify checks structure, signature, and expiry, in that order, and returns
// the claims on success. Verification does not consume the token; the caller
// enforces single use through the replay guard.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	payloadSeg, macSeg, ok := strings.Cut(token, ".")
	if !ok || payloadSeg == "" || macSeg == "" || strings.Contains(macSeg, ".") {
		return nil, ErrMalformed
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadSeg)
	if err != nil {
		return nil, ErrMalformed
	}
	mac, err := base64.RawURLEncoding.DecodeString(macSeg)
	if err != nil {
		return nil, ErrMalformed
	}

	if !hmac.Equal(mac, s.sign(payload)) {
		return nil, ErrBadSignature
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrMalformed
	}
	if claims.AccountID == "" || claims.Nonce == "" {
		return nil, ErrMalformed
	}

	if claims.ExpiresAt < requestcontext.Now(ctx).Unix() {
		return nil, ErrExpired
	}

	return &claims, nil
}

func (s *Service) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
