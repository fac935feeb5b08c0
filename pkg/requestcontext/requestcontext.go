// Package requestcontext carries per-request metadata (correlation ID, client
// address, client platform) and an injectable clock through context.Context.
package requestcontext

import (
	"context"
	"time"
)

type contextKey string

const (
	requestIDKey      contextKey = "request_id"
	clientIPKey       contextKey = "client_ip"
	clientPlatformKey contextKey = "client_platform"
	nowKey            contextKey = "now"
)

// WithRequestID stores the request correlation ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request correlation ID, or "" when absent.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithClientIP stores the caller's network address in the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the caller's network address, or "" when absent.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}

// WithClientPlatform stores a short client platform description (derived from
// the User-Agent header) for audit enrichment.
func WithClientPlatform(ctx context.Context, platform string) context.Context {
	return context.WithValue(ctx, clientPlatformKey, platform)
}

// ClientPlatform returns the client platform description, or "" when absent.
func ClientPlatform(ctx context.Context) string {
	v, _ := ctx.Value(clientPlatformKey).(string)
	return v
}

// WithNow pins the clock for the request. Tests use this to make token expiry
// and window arithmetic deterministic.
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, nowKey, now)
}

// Now returns the pinned clock if set, otherwise time.Now().
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(nowKey).(time.Time); ok {
		return v
	}
	return time.Now()
}
