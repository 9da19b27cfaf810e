// Package middleware holds ambient HTTP concerns for the optional
// metrics listener — the cache/pipeline fast path never imports it.
package middleware

import (
	"net/http"
	"os"
	"strings"
)

// CORS wraps a handler with cross-origin headers for the metrics
// endpoint, so a browser-based dashboard on another origin can poll it
// directly. If allowedOrigins is nil or empty, it falls back to
// originsFromEnv(). Only GET is ever meaningful on /metrics, so the
// preflight response never advertises POST/DELETE.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = originsFromEnv()
	}

	// Explicitly disabled.
	if allowedOrigins == nil {
		return next
	}

	allowAll := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"
	allowedSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowedSet[o] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && (allowAll || originAllowed(origin, allowedSet)) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		if r.Method == http.MethodOptions {
			if origin == "" || !(allowAll || originAllowed(origin, allowedSet)) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET")
			w.Header().Set("Access-Control-Allow-Headers", "*")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowedSet map[string]struct{}) bool {
	_, ok := allowedSet[origin]
	return ok
}

// originsFromEnv reads CACHEPROXY_METRICS_ORIGINS, a comma-separated
// allowlist. Unset means CORS stays off.
func originsFromEnv() (origins []string) {
	raw := os.Getenv("CACHEPROXY_METRICS_ORIGINS")
	if raw == "" {
		return nil
	}

	for _, o := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	if len(origins) == 0 {
		return nil
	}

	return origins
}
