// Package handler exposes the score submission endpoint.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"scoregate/internal/submission/models"
	"scoregate/internal/submission/service"
	dErrors "scoregate/pkg/domain-errors"
	"scoregate/pkg/platform/httputil"
)

// Service runs the submission pipeline. RejectStructural covers bodies that
// never decode into the domain shape: the pipeline's ban and audit policy
// still applies to them.
type Service interface {
	Submit(ctx context.Context, sub *models.Submission) (*service.Result, error)
	RejectStructural(ctx context.Context, accountID, reason string) (*service.Result, error)
}

// Handler handles score submission requests.
type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a submission Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	v := validator.New()
	// Rejection reasons carry wire field names, not Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		service:  svc,
		validate: v,
		logger:   logger,
	}
}

// Register registers the submission routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/scores", h.handleSubmitScore)
}

type submitResponse struct {
	Accepted     bool   `json:"accepted"`
	ScoreChanged bool   `json:"score_changed"`
	PreviousRank int    `json:"previous_rank"`
	NewRank      int    `json:"new_rank"`
	Banned       bool   `json:"banned"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason,omitempty"`
}

func (h *Handler) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.InfoContext(ctx, "undecodable submission body", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeStructural, "request body is not valid JSON"))
		return
	}

	sub, err := req.ToSubmission(h.validate)
	if err != nil {
		h.logger.InfoContext(ctx, "structurally invalid submission",
			"account_id", req.AccountID,
			"error", err,
		)
		result, rejErr := h.service.RejectStructural(ctx, req.AccountID, models.StructuralReason(err))
		h.writeRejection(w, result, rejErr)
		return
	}

	result, err := h.service.Submit(ctx, sub)
	if err != nil {
		h.writeRejection(w, result, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, submitResponse{
		Accepted:     result.Accepted,
		ScoreChanged: result.ScoreChanged,
		PreviousRank: result.PreviousRank,
		NewRank:      result.NewRank,
		Outcome:      string(result.Outcome),
	})
}

// writeRejection keeps the structured result body on failure paths: the
// client learns the classification, the ban flag, and the retry hint.
func (h *Handler) writeRejection(w http.ResponseWriter, result *service.Result, err error) {
	status := httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err))

	if result == nil {
		httputil.WriteError(w, err)
		return
	}
	if result.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
	}
	httputil.WriteJSON(w, status, submitResponse{
		Banned:  result.Banned,
		Outcome: string(result.Outcome),
		Reason:  result.Reason,
	})
}
