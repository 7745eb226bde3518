package middleware

import (
	"context"
	"net/http"

	"admission-service/internal/visitor"
)

// unexported, collision-proof context key
type sessionTokenContextKeyType struct{}

var sessionTokenKey = sessionTokenContextKeyType{}

// SessionTokenFromContext extracts the client's session token from context.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenKey).(string)
	return token, ok
}

// RequireSession gates heartbeat/leave behind the session token cookie.
// A client without a token holds no slot, so there is nothing for those
// endpoints to refresh or vacate.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Read session token cookie
		cookie, err := r.Cookie(visitor.SessionCookie)
		if err != nil || cookie.Value == "" {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}

		// 2. Attach token to context
		ctx := context.WithValue(r.Context(), sessionTokenKey, cookie.Value)

		// 3. Continue request
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
