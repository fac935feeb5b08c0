// Package ops exposes the operator surface: manual ban management behind
// operator authentication.
package ops

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scoregate/internal/ban"
	dErrors "scoregate/pkg/domain-errors"
	"scoregate/pkg/platform/httputil"
)

// BanService is the slice of the ban service operators drive.
type BanService interface {
	Ban(ctx context.Context, accountID, reason string) error
	Unban(ctx context.Context, accountID string) error
	Lookup(ctx context.Context, accountID string) (ban.Record, error)
}

// Handler handles operator requests.
type Handler struct {
	bans   BanService
	logger *slog.Logger
}

// New creates an ops Handler.
func New(bans BanService, logger *slog.Logger) *Handler {
	return &Handler{bans: bans, logger: logger}
}

// Register registers the ops routes. The caller wraps them in operator auth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/ops/bans", h.handleBan)
	r.Delete("/ops/bans/{accountID}", h.handleUnban)
	r.Get("/ops/bans/{accountID}", h.handleLookup)
}

type banRequest struct {
	AccountID string `json:"account_id"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleBan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req banRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return
	}
	if req.AccountID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "account_id is required"))
		return
	}
	if req.Reason == "" {
		req.Reason = "manual_operator_ban"
	}

	if err := h.bans.Ban(ctx, req.AccountID, req.Reason); err != nil {
		h.logger.ErrorContext(ctx, "manual ban failed", "account_id", req.AccountID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"account_id": req.AccountID,
		"status":     "banned",
	})
}

func (h *Handler) handleUnban(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := chi.URLParam(r, "accountID")

	if err := h.bans.Unban(ctx, accountID); err != nil {
		h.logger.ErrorContext(ctx, "unban failed", "account_id", accountID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	record, err := h.bans.Lookup(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}
