// Package auth provides HTTP middleware for bearer token authentication.
package auth

import (
	"net/http"
	"strings"
)

// NewAuthMiddleware returns an HTTP middleware enforcing bearer token
// authentication on the MCP endpoint. An empty configured token disables
// authentication entirely; every request passes through.
//
// When enabled, the request must carry exactly:
//
//	Authorization: Bearer <token>
//
// The "Bearer" prefix is case-sensitive and followed by a single space. A
// missing header, wrong token, or empty token value yields 401 Unauthorized
// without invoking the next handler.
func NewAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, prefix) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			provided := authHeader[len(prefix):]
			if provided == "" || provided != token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
