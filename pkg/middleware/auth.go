package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKeyType string

const (
	callerKey contextKeyType = "caller"
	roleKey   contextKeyType = "role"
)

// Claims is what a TokenValidator extracts from a bearer token. UserID is
// the raw caller identity exactly as the token carried it (a string or a
// JSON number); services normalize it before use.
type Claims struct {
	UserID any
	Email  string
	Role   string
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth rejects requests without a valid bearer token and stores the
// caller's raw identity in the request context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			claims, err := validate(strings.TrimSpace(token))
			if err != nil || claims == nil || claims.UserID == nil {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, claims.UserID)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromContext returns the raw identity stored by Auth.
func CallerFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(callerKey)
	return v, v != nil
}

// RoleFromContext returns the caller's role claim.
func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}

// WithCaller stores a raw caller identity in ctx. Used by tests and by
// internal callers that act on behalf of a user.
func WithCaller(ctx context.Context, raw any) context.Context {
	return context.WithValue(ctx, callerKey, raw)
}
