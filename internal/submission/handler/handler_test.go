package handler

import (
	"bytes"
	"context"
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

	"scoregate/internal/submission/models"
	"scoregate/internal/submission/service"
	dErrors "scoregate/pkg/domain-errors"
)

type stubService struct {
	result *service.Result
	err    error
	called bool
	got    *models.Submission

	rejectedAccount string
	rejectedReason  string
}

func (s *stubService) Submit(_ context.Context, sub *models.Submission) (*service.Result, error) {
	s.called = true
	s.got = sub
	return s.result, s.err
}

func (s *stubService) RejectStructural(_ context.Context, accountID, reason string) (*service.Result, error) {
	s.rejectedAccount = accountID
	s.rejectedReason = reason
	res := &service.Result{
		Outcome: models.OutcomeStructural,
		Reason:  reason,
		Banned:  true,
	}
	return res, dErrors.New(dErrors.CodeStructural, "submission is structurally invalid")
}

func newRouter(svc Service) *chi.Mux {
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func validBody(t *testing.T) []byte {
	t.Helper()
	req := models.SubmitScoreRequest{
		AccountID:  "acct-1",
		Ticket:     "ticket",
		Token:      "payload.mac",
		Difficulty: "warmage",
		ScoreMs:    261000,
		RoundTimesMs: []int32{
			24000, 24500, 25000, 25500, 26000, 26500, 27000, 27500, 28000, 27000,
		},
		RoundKills: []int32{18, 20, 22, 24, 26, 28, 30, 32, 34, 36},
		Weapons: []models.WeaponEntry{
			{Tag: "crossbow", Kills: 270, Damage: 100000},
		},
		Abilities: []models.AbilityEntry{
			{Tag: "combustion", Uses: 10, Utility: 15, Kills: 15},
		},
		TotalKills:       270,
		TotalDamage:      100000,
		TotalAbilityUses: 10,
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return body
}

func post(t *testing.T, router http.Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/scores", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitScoreAccepted(t *testing.T) {
	svc := &stubService{result: &service.Result{
		Accepted:     true,
		ScoreChanged: true,
		PreviousRank: 40,
		NewRank:      11,
		Outcome:      models.OutcomeAccepted,
	}}
	rec := post(t, newRouter(svc), validBody(t))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["accepted"])
	assert.Equal(t, true, resp["score_changed"])
	assert.Equal(t, float64(40), resp["previous_rank"])
	assert.Equal(t, float64(11), resp["new_rank"])
	assert.Equal(t, false, resp["banned"])

	require.NotNil(t, svc.got)
	assert.Equal(t, models.DifficultyWarmage, svc.got.Difficulty)
	assert.Equal(t, int32(270), svc.got.Weapons[models.WeaponCrossbow].Kills)
}

func TestSubmitScoreBadJSONIsStructural(t *testing.T) {
	svc := &stubService{}
	rec := post(t, newRouter(svc), []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, svc.called, "undecodable bodies never reach the pipeline")
}

// A decodable body with a required field absent never builds a Submission,
// but the hard-failure policy must still reach the account it named.
func TestSubmitScoreMissingTokenStillHitsBanPolicy(t *testing.T) {
	svc := &stubService{}

	var req map[string]any
	require.NoError(t, json.Unmarshal(validBody(t), &req))
	delete(req, "token")
	body, err := json.Marshal(req)
	require.NoError(t, err)

	rec := post(t, newRouter(svc), body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, svc.called, "no Submission exists to run the pipeline on")
	assert.Equal(t, "acct-1", svc.rejectedAccount)
	assert.Equal(t, "missing_token", svc.rejectedReason)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["banned"])
	assert.Equal(t, string(models.OutcomeStructural), resp["outcome"])
}

func TestSubmitScoreUnknownTagIsStructural(t *testing.T) {
	svc := &stubService{}

	var req map[string]any
	require.NoError(t, json.Unmarshal(validBody(t), &req))
	req["weapons"] = []map[string]any{{"tag": "laser", "kills": 1}}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	rec := post(t, newRouter(svc), body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "acct-1", svc.rejectedAccount)
	assert.Equal(t, "malformed_payload", svc.rejectedReason)
}

func TestSubmitScoreReplayRejection(t *testing.T) {
	svc := &stubService{
		result: &service.Result{
			Banned:  true,
			Outcome: models.OutcomeAuthentication,
			Reason:  "token_replayed",
		},
		err: dErrors.New(dErrors.CodeAuthentication, "capability token already used"),
	}
	rec := post(t, newRouter(svc), validBody(t))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["accepted"])
	assert.Equal(t, true, resp["banned"])
	assert.Equal(t, "token_replayed", resp["reason"])
}

func TestSubmitScoreRateLimitedSetsRetryAfter(t *testing.T) {
	svc := &stubService{
		result: &service.Result{
			Outcome:    models.OutcomeRateLimited,
			RetryAfter: 42 * time.Second,
		},
		err: dErrors.New(dErrors.CodeRateLimited, "submission rate limit exceeded"),
	}
	rec := post(t, newRouter(svc), validBody(t))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))
}

func TestSubmitScoreTransientIs503(t *testing.T) {
	svc := &stubService{
		result: &service.Result{Outcome: models.OutcomeTransient},
		err:    dErrors.New(dErrors.CodeTransient, "leaderboard unreachable"),
	}
	rec := post(t, newRouter(svc), validBody(t))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSubmitScoreImplausibleIs400(t *testing.T) {
	svc := &stubService{
		result: &service.Result{
			Outcome: models.OutcomeImplausible,
			Reason:  "round_time_below_spawn_floor:round=1",
		},
		err: dErrors.New(dErrors.CodePlausibility, "submission statistics are implausible"),
	}
	rec := post(t, newRouter(svc), validBody(t))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "round_time_below_spawn_floor:round=1", resp["reason"])
}
