package middleware

import "net/http"

// NoStore marks responses as uncacheable. Mounted on routes that return data
// private to the caller.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
