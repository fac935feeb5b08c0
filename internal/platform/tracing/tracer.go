// Package tracing provides a lightweight tracing abstraction for the
// submission pipeline. The orchestrator opens a span per gate without
// depending on OpenTelemetry APIs directly; the otel adapter is wired in
// production, the noop tracer in tests.
package tracing

import "context"

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes. The
	// returned context carries the span and should flow to child operations.
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names used by the submission pipeline.
const (
	SpanSubmit     = "submission.submit"
	SpanRateCheck  = "submission.rate_check"
	SpanIdentity   = "submission.identity_check"
	SpanBanCheck   = "submission.ban_check"
	SpanTokenCheck = "submission.token_check"
	SpanReplay     = "submission.replay_check"
	SpanStats      = "submission.stats_check"
	SpanForward    = "submission.forward"
)
