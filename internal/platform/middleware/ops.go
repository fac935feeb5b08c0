package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "scoregate/pkg/domain-errors"
	"scoregate/pkg/platform/httputil"
	"scoregate/pkg/secrets"
)

// OpsClaims are the JWT claims carried by operator tokens minted with
// cmd/opstoken.
type OpsClaims struct {
	Operator string `json:"operator"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// OpsAuth guards the operator API. Two credentials are accepted: a bearer JWT
// signed with signingKey (role must be "operator"), or a static key in
// X-Ops-Key matched against a bcrypt hash. Either mechanism can be disabled
// by leaving its config empty; with both empty the API is unreachable.
func OpsAuth(signingKey, opsKeyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opsKeyHash != "" {
				if key := r.Header.Get("X-Ops-Key"); key != "" {
					if err := secrets.Verify(key, opsKeyHash); err == nil {
						next.ServeHTTP(w, r)
						return
					}
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid ops key"))
					return
				}
			}

			if signingKey != "" {
				auth := r.Header.Get("Authorization")
				if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
					if err := verifyOpsToken(token, signingKey); err != nil {
						httputil.WriteError(w, err)
						return
					}
					next.ServeHTTP(w, r)
					return
				}
			}

			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "operator credentials required"))
		})
	}
}

func verifyOpsToken(token, signingKey string) error {
	parsed, err := jwt.ParseWithClaims(token, &OpsClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(signingKey), nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid operator token")
	}
	claims, ok := parsed.Claims.(*OpsClaims)
	if !ok || claims.Role != "operator" {
		return dErrors.New(dErrors.CodeForbidden, "operator role required")
	}
	return nil
}
