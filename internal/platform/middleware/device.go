package middleware

import (
	"fmt"
	"net/http"

	"github.com/mssola/useragent"

	"scoregate/pkg/requestcontext"
)

// DeviceCapture derives a short client platform description from the
// User-Agent header and stores it in the request context. Audit entries use
// it to correlate submissions from the same client build.
func DeviceCapture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("User-Agent")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		ua := useragent.New(raw)
		name, version := ua.Browser()
		platform := ua.OS()
		if platform == "" {
			platform = ua.Platform()
		}

		summary := name
		if version != "" {
			summary = fmt.Sprintf("%s/%s", name, version)
		}
		if platform != "" {
			summary = fmt.Sprintf("%s (%s)", summary, platform)
		}

		ctx := requestcontext.WithClientPlatform(r.Context(), summary)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
