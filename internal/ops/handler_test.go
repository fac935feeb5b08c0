package ops

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoregate/internal/ban"
	"scoregate/pkg/requestcontext"
)

func newOpsRouter(t *testing.T) (*chi.Mux, *ban.Service, *ban.MemoryStore) {
	t.Helper()
	store := ban.NewMemoryStore()
	svc, err := ban.NewService(store, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r, svc, store
}

func TestManualBan(t *testing.T) {
	router, svc, _ := newOpsRouter(t)

	body := bytes.NewBufferString(`{"account_id":"acct-1","reason":"support escalation"}`)
	req := httptest.NewRequest(http.MethodPost, "/ops/bans", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, svc.IsBanned(req.Context(), "acct-1"))
}

func TestManualBanDefaultsReason(t *testing.T) {
	router, svc, _ := newOpsRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/ops/bans", bytes.NewBufferString(`{"account_id":"acct-2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	record, err := svc.Lookup(req.Context(), "acct-2")
	require.NoError(t, err)
	assert.Equal(t, "manual_operator_ban", record.Reason)
}

func TestManualBanRequiresAccountID(t *testing.T) {
	router, _, _ := newOpsRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/ops/bans", bytes.NewBufferString(`{"reason":"no target"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnban(t *testing.T) {
	router, svc, _ := newOpsRouter(t)
	ctx := requestcontext.WithNow(httptest.NewRequest(http.MethodGet, "/", nil).Context(), time.Now())
	require.NoError(t, svc.Ban(ctx, "acct-1", "mistake"))

	req := httptest.NewRequest(http.MethodDelete, "/ops/bans/acct-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, svc.IsBanned(req.Context(), "acct-1"))
}

func TestLookup(t *testing.T) {
	router, svc, _ := newOpsRouter(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	require.NoError(t, svc.Ban(ctx, "acct-1", "replayed token"))

	req := httptest.NewRequest(http.MethodGet, "/ops/bans/acct-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var record ban.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "acct-1", record.AccountID)
	assert.Equal(t, "replayed token", record.Reason)
}

func TestLookupMissingIs404(t *testing.T) {
	router, _, _ := newOpsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ops/bans/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
