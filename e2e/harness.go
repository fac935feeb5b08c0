package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"scoregate/internal/audit"
	"scoregate/internal/ban"
	"scoregate/internal/identity"
	"scoregate/internal/leaderboard"
	"scoregate/internal/ops"
	"scoregate/internal/platform/config"
	"scoregate/internal/platform/health"
	"scoregate/internal/ratelimit"
	"scoregate/internal/replayguard"
	"scoregate/internal/stats"
	subhandler "scoregate/internal/submission/handler"
	"scoregate/internal/submission/service"
	"scoregate/internal/token"
	httptransport "scoregate/internal/transport/http"
	"scoregate/pkg/secrets"
)

// OpsKey is the static operator credential the harness accepts.
const OpsKey = "e2e-operator-key"

// Harness runs the whole gateway in-process against in-memory stores, with
// stub identity and leaderboard services. Each scenario gets a fresh one, so
// rate limit buckets, bans, and replay state never leak between scenarios.
type Harness struct {
	Server   *httptest.Server
	identity *httptest.Server
	board    *httptest.Server
}

// NewHarness assembles the gateway and starts listening.
func NewHarness() (*Harness, error) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	identitySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AccountID string `json:"account_id"`
			Ticket    string `json:"ticket"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if req.Ticket == "stolen-ticket" {
			fmt.Fprint(w, `{"valid":false,"reason":"invalid_ticket"}`)
			return
		}
		fmt.Fprint(w, `{"valid":true}`)
	}))

	boardSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"accepted":true,"score_changed":true,"previous_rank":0,"new_rank":1}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	opsKeyHash, err := secrets.Hash(OpsKey)
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	cfg.Environment = "e2e"
	cfg.IdentityServiceURL = identitySrv.URL
	cfg.LeaderboardServiceURL = boardSrv.URL
	cfg.OpsKeyHash = opsKeyHash
	// All scenario traffic shares one source address; only the per-account
	// bucket should ever trip.
	cfg.RatePerAddress = 100
	cfg.GlobalRatePerSecond = 0

	identityClient, err := identity.NewClient(cfg.IdentityServiceURL, cfg.IdentityTimeout, identity.WithLogger(log))
	if err != nil {
		return nil, err
	}
	boardClient, err := leaderboard.NewClient(cfg.LeaderboardServiceURL, cfg.LeaderboardTimeout, leaderboard.WithLogger(log))
	if err != nil {
		return nil, err
	}

	rateChecker, err := ratelimit.New(ratelimit.NewMemoryCounterStore(), ratelimit.WithLogger(log))
	if err != nil {
		return nil, err
	}
	banService, err := ban.NewService(ban.NewMemoryStore(), boardClient, ban.WithLogger(log))
	if err != nil {
		return nil, err
	}
	tokenService, err := token.NewService(cfg.TokenSigningSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	statsValidator, err := stats.NewValidator(cfg.Stats)
	if err != nil {
		return nil, err
	}

	submissionService, err := service.New(
		service.Config{
			RateWindow:     cfg.RateWindow,
			RatePerAddress: cfg.RatePerAddress,
			RatePerAccount: cfg.RatePerAccount,
		},
		rateChecker,
		tokenService,
		identityClient,
		banService,
		replayguard.NewMemoryGuard(cfg.TokenTTL+cfg.ReplayGraceTTL),
		statsValidator,
		boardClient,
		audit.NewLogger(audit.NewMemoryStore(), log),
		service.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:      log,
		Config:      cfg,
		Submissions: subhandler.New(submissionService, log),
		Tokens: token.NewHandler(
			token.HandlerConfig{
				RateWindow:     cfg.RateWindow,
				RatePerAddress: cfg.RatePerAddress,
				RatePerAccount: cfg.RatePerAccount,
			},
			tokenService, rateChecker, identityClient, banService, log,
		),
		Ops:    ops.New(banService, log),
		Health: health.New(cfg.Environment),
	})

	return &Harness{
		Server:   httptest.NewServer(router),
		identity: identitySrv,
		board:    boardSrv,
	}, nil
}

// Close stops the gateway and its stub collaborators.
func (h *Harness) Close() {
	h.Server.Close()
	h.identity.Close()
	h.board.Close()
}

// Client returns an HTTP client suitable for driving the harness.
func (h *Harness) Client() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
