package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/maxcasase/BDPW-Back-End/pkg/logger"
)

// RequestLogger stores a request-scoped logger carrying correlation_id,
// user_id, role and trace ids in the context, for logger.FromContext. Mount it
// after RequestLogging, Tracing and Auth.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if raw, ok := CallerFromContext(ctx); ok {
				ctx = logger.WithUserID(ctx, fmt.Sprint(raw))
			}
			l := logger.WithContext(ctx, base)
			if role := RoleFromContext(ctx); role != "" {
				l = l.With(slog.String("role", role))
			}
			ctx = logger.NewContext(ctx, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
