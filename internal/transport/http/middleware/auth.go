package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/go-signup-recorder/internal/infrastructure/jwt"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

type contextKey string

const claimsKey contextKey = "claims"

type claimsVerifier interface {
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

// Session returns middleware that validates the session JWT, taken from the
// session cookie or a Bearer header, and injects its claims into context.
func Session(provider claimsVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := sessionToken(r)
			if tokenStr == "" {
				writeJSONError(w, r, http.StatusUnauthorized, "missing session")
				return
			}
			claims, err := provider.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, r, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// ClaimsFromContext extracts session claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}
