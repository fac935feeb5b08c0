package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	dErrors "scoregate/pkg/domain-errors"
	"scoregate/pkg/platform/httputil"
)

// GlobalThrottle rejects requests above a process-wide rate. This is a blunt
// overload guard in front of the per-identity limiter; per-identity limits
// are enforced inside the pipeline where they produce audit entries.
func GlobalThrottle(perSecond, burst int) func(http.Handler) http.Handler {
	if perSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = perSecond
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "server is busy, retry later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
