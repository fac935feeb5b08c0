package token

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoregate/pkg/requestcontext"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService("test-secret", 30*time.Second)
	require.NoError(t, err)
	return svc
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	encoded, claims, err := svc.Issue(ctx, "7656119000000001")
	require.NoError(t, err)
	assert.Equal(t, "7656119000000001", claims.AccountID)
	assert.Len(t, claims.Nonce, 32, "128-bit nonce hex encoded")
	assert.Equal(t, claims.IssuedAt+30, claims.ExpiresAt)

	verified, err := svc.Verify(ctx, encoded)
	require.NoError(t, err)
	assert.Equal(t, claims, verified)
}

func TestVerifyIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	encoded, _, err := svc.Issue(ctx, "acct")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Verify(ctx, encoded)
		require.NoError(t, err, "verify alone must not consume the token")
	}
}

func TestVerifyMalformed(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, tc := range []string{
		"",
		"no-delimiter",
		".only-mac",
		"only-payload.",
		"a.b.c",
		"!!!.###",
	} {
		_, err := svc.Verify(ctx, tc)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tc)
	}
}

func TestVerifyBadSignature(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	encoded, _, err := svc.Issue(ctx, "acct")
	require.NoError(t, err)

	// Signature from a different key.
	other, err := NewService("other-secret", 30*time.Second)
	require.NoError(t, err)
	_, err = other.Verify(ctx, encoded)
	assert.ErrorIs(t, err, ErrBadSignature)

	// Tampered payload keeps the mac segment of the original token.
	payloadSeg, macSeg, _ := strings.Cut(encoded, ".")
	payload, err := base64.RawURLEncoding.DecodeString(payloadSeg)
	require.NoError(t, err)
	tampered := strings.Replace(string(payload), "acct", "evil", 1)
	forged := base64.RawURLEncoding.EncodeToString([]byte(tampered)) + "." + macSeg
	_, err = svc.Verify(ctx, forged)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyExpiredEvenWithValidSignature(t *testing.T) {
	svc := newTestService(t)

	issued := time.Unix(1_700_000_000, 0)
	issueCtx := requestcontext.WithNow(context.Background(), issued)

	encoded, _, err := svc.Issue(issueCtx, "acct")
	require.NoError(t, err)

	verifyCtx := requestcontext.WithNow(context.Background(), issued.Add(31*time.Second))
	_, err = svc.Verify(verifyCtx, encoded)
	assert.ErrorIs(t, err, ErrExpired)

	// One second before expiry it is still good.
	verifyCtx = requestcontext.WithNow(context.Background(), issued.Add(29*time.Second))
	_, err = svc.Verify(verifyCtx, encoded)
	assert.NoError(t, err)
}

func TestNoncesAreUnique(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		_, claims, err := svc.Issue(ctx, "acct")
		require.NoError(t, err)
		assert.False(t, seen[claims.Nonce], "nonce reused")
		seen[claims.Nonce] = true
	}
}

func TestRemainingLifetime(t *testing.T) {
	claims := &Claims{ExpiresAt: 1_700_000_030}
	now := time.Unix(1_700_000_000, 0)
	assert.Equal(t, 30*time.Second, claims.RemainingLifetime(now))
}
