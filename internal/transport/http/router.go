// Package http assembles the public HTTP surface: the submission and token
// endpoints, the operator API, health probes, and Prometheus metrics.
package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"scoregate/internal/ops"
	"scoregate/internal/platform/config"
	"scoregate/internal/platform/health"
	"scoregate/internal/platform/middleware"
	subhandler "scoregate/internal/submission/handler"
	"scoregate/internal/token"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger      *slog.Logger
	Config      *config.Config
	Submissions *subhandler.Handler
	Tokens      *token.Handler
	Ops         *ops.Handler
	Health      *health.Handler
}

// NewRouter builds the chi router with the standard middleware stack. Order
// matters: recovery outermost, then identity capture so every later layer and
// handler sees request id, client address, and platform in the context.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientIP)
	r.Use(middleware.DeviceCapture)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(d.Config.RequestTimeout))
	if d.Config.GlobalRatePerSecond > 0 {
		r.Use(middleware.GlobalThrottle(d.Config.GlobalRatePerSecond, d.Config.GlobalRateBurst))
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins: d.Config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}).Handler)

	d.Health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	// Player-facing endpoints take JSON bodies only.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		d.Tokens.Register(r)
		d.Submissions.Register(r)
	})

	// Operator surface sits behind operator authentication.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OpsAuth(d.Config.OpsJWTSigningKey, d.Config.OpsKeyHash))
		d.Ops.Register(r)
	})

	return r
}
