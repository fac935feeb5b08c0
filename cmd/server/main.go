// Command server runs the score submission gateway.
//
// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scoregate/internal/audit"
	"scoregate/internal/ban"
	"scoregate/internal/identity"
	"scoregate/internal/leaderboard"
	"scoregate/internal/ops"
	"scoregate/internal/platform/config"
	"scoregate/internal/platform/database"
	"scoregate/internal/platform/health"
	"scoregate/internal/platform/kafka/producer"
	"scoregate/internal/platform/logger"
	platformredis "scoregate/internal/platform/redis"
	"scoregate/internal/platform/tracing"
	"scoregate/internal/ratelimit"
	"scoregate/internal/replayguard"
	"scoregate/internal/stats"
	subhandler "scoregate/internal/submission/handler"
	"scoregate/internal/submission/metrics"
	"scoregate/internal/submission/service"
	"scoregate/internal/token"
	httptransport "scoregate/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("initializing scoregate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Shared stores. Every one of them degrades to an in-process
	// implementation when unconfigured, so a single binary serves both
	// development and production.
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Rate limiting and replay protection share the Redis deployment; both
	// fall back to memory for single-node runs.
	var counters ratelimit.CounterStore
	var replayGuard replayguard.Guard
	if redisClient != nil {
		counters = ratelimit.NewRedisCounterStore(redisClient.Client)
		replayGuard = replayguard.NewRedisGuard(redisClient.Client, cfg.TokenTTL+cfg.ReplayGraceTTL)
	} else {
		log.Warn("redis not configured, using in-memory rate limit and replay stores")
		memCounters := ratelimit.NewMemoryCounterStore()
		go sweepLoop(memCounters)
		counters = memCounters
		replayGuard = replayguard.NewMemoryGuard(cfg.TokenTTL + cfg.ReplayGraceTTL)
	}

	rateChecker, err := ratelimit.New(counters, ratelimit.WithLogger(log))
	if err != nil {
		return err
	}

	// External collaborators.
	identityClient, err := identity.NewClient(cfg.IdentityServiceURL, cfg.IdentityTimeout,
		identity.WithLogger(log), identity.WithAPIKey(cfg.IdentityAPIKey))
	if err != nil {
		return err
	}
	boardClient, err := leaderboard.NewClient(cfg.LeaderboardServiceURL, cfg.LeaderboardTimeout,
		leaderboard.WithLogger(log), leaderboard.WithAPIKey(cfg.LeaderboardAPIKey))
	if err != nil {
		return err
	}

	// Ban policy.
	var banStore ban.Store
	if pool != nil {
		banStore = ban.NewPostgres(pool.DB())
	} else {
		log.Warn("database not configured, using in-memory ban store")
		banStore = ban.NewMemoryStore()
	}
	banService, err := ban.NewService(banStore, boardClient, ban.WithLogger(log))
	if err != nil {
		return err
	}

	// Audit trail: structured log always, table when the database is up,
	// Kafka fan-out when brokers are configured.
	var auditStore audit.Store
	if pool != nil {
		auditStore = audit.NewPostgres(pool.DB())
	} else {
		auditStore = audit.NewMemoryStore()
	}
	var auditOpts []audit.Option
	var kafkaProducer *producer.Producer
	if cfg.KafkaBrokers != "" {
		kafkaProducer, err = producer.New(producer.Config{Brokers: cfg.KafkaBrokers}, log)
		if err != nil {
			return err
		}
		defer kafkaProducer.Close()
		auditOpts = append(auditOpts, audit.WithPublisher(audit.NewKafkaPublisher(kafkaProducer, cfg.KafkaAuditTopic)))
	}
	auditor := audit.NewLogger(auditStore, log, auditOpts...)

	// Pipeline pieces.
	tokenService, err := token.NewService(cfg.TokenSigningSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	statsValidator, err := stats.NewValidator(cfg.Stats)
	if err != nil {
		return err
	}

	var tracer tracing.Tracer = tracing.NewNoop()
	if cfg.TracingEnabled {
		tracer = tracing.NewOTel()
	}

	pipelineMetrics := metrics.New()

	submissionService, err := service.New(
		service.Config{
			RateWindow:       cfg.RateWindow,
			RatePerAddress:   cfg.RatePerAddress,
			RatePerAccount:   cfg.RatePerAccount,
			BanOnImplausible: cfg.BanOnImplausible,
		},
		rateChecker,
		tokenService,
		identityClient,
		banService,
		replayGuard,
		statsValidator,
		boardClient,
		auditor,
		service.WithLogger(log),
		service.WithTracer(tracer),
		service.WithMetrics(pipelineMetrics),
	)
	if err != nil {
		return err
	}

	// HTTP surface.
	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("postgres", probe(pool.Health))
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", probe(redisClient.Health))
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger: log,
		Config: cfg,
		Submissions: subhandler.New(submissionService, log),
		Tokens: token.NewHandler(
			token.HandlerConfig{
				RateWindow:     cfg.RateWindow,
				RatePerAddress: cfg.RatePerAddress,
				RatePerAccount: cfg.RatePerAccount,
			},
			tokenService, rateChecker, identityClient, banService, log,
			token.WithMetrics(pipelineMetrics),
		),
		Ops:    ops.New(banService, log),
		Health: healthHandler,
	})

	go poolStatsLoop(pool, redisClient)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}

// probe bounds a context-aware health check for the readiness endpoint.
func probe(check func(context.Context) error) health.CheckFunc {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return check(ctx)
	}
}

// sweepLoop keeps the in-memory counter store from accumulating dead buckets.
func sweepLoop(store *ratelimit.MemoryCounterStore) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		store.Sweep()
	}
}

// poolStatsLoop exports connection pool gauges for whichever stores are
// configured.
func poolStatsLoop(pool *database.Pool, redisClient *platformredis.Client) {
	if pool == nil && redisClient == nil {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		if pool != nil {
			pool.RecordStats()
		}
		if redisClient != nil {
			redisClient.RecordPoolStats()
		}
	}
}
