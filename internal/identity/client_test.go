package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "scoregate/pkg/domain-errors"
)

func newProvider(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, 2*time.Second)
	require.NoError(t, err)
	return client
}

func TestValidateAccepted(t *testing.T) {
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/tickets/validate", r.URL.Path)

		var req validateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "acct-1", req.AccountID)
		assert.Equal(t, "ticket-bytes", req.Ticket)

		json.NewEncoder(w).Encode(validateResponse{Valid: true})
	})

	verdict, err := client.Validate(context.Background(), "acct-1", "ticket-bytes")
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.Empty(t, verdict.Reason)
}

func TestValidateSendsAPIKey(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Api-Key")
		json.NewEncoder(w).Encode(validateResponse{Valid: true})
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, time.Second, WithAPIKey("provider-key"))
	require.NoError(t, err)

	_, err = client.Validate(context.Background(), "acct-1", "ticket")
	require.NoError(t, err)
	assert.Equal(t, "provider-key", got)
}

func TestValidateOmitsAPIKeyWhenUnset(t *testing.T) {
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["X-Api-Key"]
		assert.False(t, present)
		json.NewEncoder(w).Encode(validateResponse{Valid: true})
	})

	_, err := client.Validate(context.Background(), "acct-1", "ticket")
	require.NoError(t, err)
}

func TestValidateRejectionReasons(t *testing.T) {
	for _, reason := range []Reason{ReasonInvalidTicket, ReasonIdentityMismatch, ReasonNotEntitled} {
		t.Run(string(reason), func(t *testing.T) {
			client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(validateResponse{Valid: false, Reason: string(reason)})
			})

			verdict, err := client.Validate(context.Background(), "acct-1", "ticket")
			require.NoError(t, err)
			assert.False(t, verdict.Valid)
			assert.Equal(t, reason, verdict.Reason)
		})
	}
}

func TestValidateProviderDownIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(url, time.Second)
	require.NoError(t, err)

	_, err = client.Validate(context.Background(), "acct-1", "ticket")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTransient))
}

func TestValidateNon200IsTransient(t *testing.T) {
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Validate(context.Background(), "acct-1", "ticket")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTransient))
}

func TestValidateGarbageBodyIsTransient(t *testing.T) {
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Validate(context.Background(), "acct-1", "ticket")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTransient))
}

func TestValidateUnknownReasonIsTransient(t *testing.T) {
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(validateResponse{Valid: false, Reason: "future_reason"})
	})

	_, err := client.Validate(context.Background(), "acct-1", "ticket")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTransient))
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient("", time.Second)
	assert.Error(t, err)
}
