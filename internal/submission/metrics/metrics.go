package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the submission pipeline.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec
	AutoBansTotal      *prometheus.CounterVec
	RateLimitedTotal   *prometheus.CounterVec
	StatsRejections    *prometheus.CounterVec
	TokensIssuedTotal  prometheus.Counter
	MetadataRetries    prometheus.Counter
	PipelineDurationMs prometheus.Histogram
	ForwardDurationMs  prometheus.Histogram
}

// New registers and returns submission metrics collectors.
func New() *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoregate_submissions_total",
			Help: "Total score submissions by terminal outcome",
		}, []string{"outcome"}),
		AutoBansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoregate_auto_bans_total",
			Help: "Total automatic bans by triggering reason",
		}, []string{"reason"}),
		RateLimitedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoregate_rate_limited_total",
			Help: "Total rate-limited submissions by bucket key kind",
		}, []string{"key"}),
		StatsRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoregate_stats_rejections_total",
			Help: "Total plausibility rejections by rule label",
		}, []string{"rule"}),
		TokensIssuedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scoregate_tokens_issued_total",
			Help: "Total capability tokens issued",
		}),
		MetadataRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scoregate_metadata_retries_total",
			Help: "Total leaderboard forwards retried without metadata",
		}),
		PipelineDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoregate_pipeline_duration_ms",
			Help:    "Duration of the full submission pipeline in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		ForwardDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoregate_forward_duration_ms",
			Help:    "Duration of the leaderboard forward call in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
	}
}
