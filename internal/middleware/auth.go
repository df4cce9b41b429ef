// Package middleware provides HTTP middleware for credential checks.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/smarterbot/smartermcp/internal/domain/action"
	"github.com/smarterbot/smartermcp/internal/domain/credential"
	"github.com/smarterbot/smartermcp/internal/service"
)

type claimsCtxKey struct{}

// Auth returns middleware that validates the bearer credential and attaches
// its claims to the request context. Failures answer 401 with state
// UNAUTHORIZED.
func Auth(tokens *service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, action.StateUnauthorized, "authorization required")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				writeAuthError(w, http.StatusUnauthorized, action.StateUnauthorized, "invalid authorization header")
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, action.StateUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermissions returns middleware rejecting requests whose claims do
// not carry every listed permission. Runs after Auth.
func RequirePermissions(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeAuthError(w, http.StatusUnauthorized, action.StateUnauthorized, "authorization required")
				return
			}
			if !claims.HasPermissions(perms) {
				writeAuthError(w, http.StatusForbidden, action.StateForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the validated claims from the request context,
// or nil when the request did not pass Auth.
func ClaimsFromContext(ctx context.Context) *credential.Claims {
	claims, _ := ctx.Value(claimsCtxKey{}).(*credential.Claims)
	return claims
}

func writeAuthError(w http.ResponseWriter, status int, state action.State, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"state":   state,
		"error":   msg,
	})
}
