// Package config defines process configuration and its loading order.
//
// Layering (low -> high precedence):
//  1. struct defaults (Default())
//  2. optional YAML file pointed at by SCOREGATE_CONFIG
//  3. environment variables with the SCOREGATE_ prefix
//
// A .env file in the working directory is loaded into the environment first.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"scoregate/internal/stats"
)

// Config contains all operator-tunable settings for the submission pipeline.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Environment names the deployment environment for health reporting.
	Environment string `koanf:"environment"`

	// TokenSigningSecret keys the capability-token MAC. Must be overridden
	// outside development.
	TokenSigningSecret string `koanf:"token_signing_secret"`

	// TokenTTL bounds the capability token validity window.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// ReplayGraceTTL is added to the token's remaining lifetime when the
	// nonce is recorded in the replay guard.
	ReplayGraceTTL time.Duration `koanf:"replay_grace_ttl"`

	// Rate limiting, checked independently per source address and account.
	RateWindow     time.Duration `koanf:"rate_window"`
	RatePerAddress int           `koanf:"rate_per_address"`
	RatePerAccount int           `koanf:"rate_per_account"`

	// GlobalRatePerSecond caps process-wide request intake (0 disables).
	GlobalRatePerSecond int `koanf:"global_rate_per_second"`
	GlobalRateBurst     int `koanf:"global_rate_burst"`

	// BanOnImplausible escalates plausibility rejections to the hard-failure
	// path. Off by default: the stats bounds are conservative estimates and
	// false positives are costly.
	BanOnImplausible bool `koanf:"ban_on_implausible"`

	// External collaborators.
	IdentityServiceURL string        `koanf:"identity_service_url"`
	IdentityAPIKey     string        `koanf:"identity_api_key"`
	IdentityTimeout    time.Duration `koanf:"identity_timeout"`

	LeaderboardServiceURL string        `koanf:"leaderboard_service_url"`
	LeaderboardAPIKey     string        `koanf:"leaderboard_api_key"`
	LeaderboardTimeout    time.Duration `koanf:"leaderboard_timeout"`

	// Stores. Empty URLs fall back to in-memory implementations.
	DatabaseURL string `koanf:"database_url"`
	RedisURL    string `koanf:"redis_url"`

	// KafkaBrokers enables the audit event fan-out when non-empty.
	KafkaBrokers    string `koanf:"kafka_brokers"`
	KafkaAuditTopic string `koanf:"kafka_audit_topic"`

	// Operator API authentication: an HS256 signing key for operator JWTs
	// and/or a bcrypt hash of the static ops key.
	OpsJWTSigningKey string `koanf:"ops_jwt_signing_key"`
	OpsKeyHash       string `koanf:"ops_key_hash"`

	// Stats holds the plausibility ceilings, floors, and the per-round spawn
	// profile table. Balance patches tune these without a rebuild; the
	// validation algorithm itself never changes.
	Stats stats.Bounds `koanf:"stats"`

	// TracingEnabled switches the pipeline tracer from noop to OpenTelemetry.
	TracingEnabled bool `koanf:"tracing_enabled"`

	// Request handling.
	RequestTimeout time.Duration `koanf:"request_timeout"`
	CORSOrigins    []string      `koanf:"cors_origins"`
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		Addr:                  ":8080",
		LogLevel:              "info",
		Environment:           "development",
		TokenSigningSecret:    "dev-secret-change-in-production",
		TokenTTL:              30 * time.Second,
		ReplayGraceTTL:        60 * time.Second,
		RateWindow:            time.Minute,
		RatePerAddress:        10,
		RatePerAccount:        3,
		GlobalRatePerSecond:   200,
		GlobalRateBurst:       400,
		BanOnImplausible:      false,
		IdentityServiceURL:    "http://localhost:9100",
		IdentityTimeout:       5 * time.Second,
		LeaderboardServiceURL: "http://localhost:9200",
		LeaderboardTimeout:    5 * time.Second,
		KafkaAuditTopic:       "scoregate.audit",
		Stats:                 stats.DefaultBounds(),
		RequestTimeout:        30 * time.Second,
		CORSOrigins:           []string{"*"},
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
func Load() (*Config, error) {
	// Best effort: absence of a .env file is the normal case.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv("SCOREGATE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// SCOREGATE_RATE_WINDOW -> rate_window (flat keys, underscores preserved
	// to match the koanf tags above). A double underscore descends into a
	// nested section: SCOREGATE_STATS__TOLERANCE_MS -> stats.tolerance_ms.
	envProvider := env.Provider("SCOREGATE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "scoregate_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.TokenSigningSecret == "" {
		return errors.New("token_signing_secret must not be empty")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if c.RateWindow <= 0 || c.RatePerAddress <= 0 || c.RatePerAccount <= 0 {
		return errors.New("rate limit window and counts must be positive")
	}
	return nil
}
