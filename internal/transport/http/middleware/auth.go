package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const AccountIDKey contextKey = "account_id"

// SessionVerifier resolves a session token to its account id.
type SessionVerifier interface {
	VerifySession(tokenStr string) (string, error)
}

// Auth returns middleware that validates the Bearer session token and puts the
// account id into the request context. Missing or bad tokens get 403.
func Auth(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenStr) == "" {
				writeJSONError(w, http.StatusForbidden, "missing or invalid authorization header")
				return
			}
			accountID, err := verifier.VerifySession(strings.TrimSpace(tokenStr))
			if err != nil {
				slog.DebugContext(r.Context(), "rejected session token", "err", err)
				writeJSONError(w, http.StatusForbidden, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), AccountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountIDFromContext returns the authenticated account id.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AccountIDKey).(string)
	return id, ok && id != ""
}
