// Package middleware provides HTTP middlewares for session authentication,
// request logging and rate limiting.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey string

const (
	userKey  ctxKey = "user"
	tokenKey ctxKey = "token"
)

// TokenResolver maps a session token to the logged-in user id.
type TokenResolver interface {
	LoggedUserID(ctx context.Context, token string) (int64, bool)
}

// TokenFromRequest extracts the bearer token from the Authorization header.
func TokenFromRequest(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// SessionAuth rejects requests whose bearer token does not resolve to a user.
//
// On success the user id and the token are stored in the request context, so
// handlers can read them with GetUserIDFromContext and GetTokenFromContext.
func SessionAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				unauthorized(w)
				return
			}
			userID, ok := resolver.LoggedUserID(r.Context(), token)
			if !ok {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, userID)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": "Please log in",
	})
}

// GetUserIDFromContext returns the authenticated user id, or 0 if absent.
func GetUserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userKey).(int64); ok {
		return id
	}
	return 0
}

// GetTokenFromContext returns the session token of the request, or "".
func GetTokenFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(tokenKey).(string); ok {
		return s
	}
	return ""
}
