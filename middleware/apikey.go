package middleware

import (
	"crypto/subtle"
	"music-api-go/logcolors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

// APIKeyMiddleware requires a matching X-API-Key header on protected paths.
// Paths ending in "*" match by prefix. When required is false every request passes;
// when required is true but no key is configured, protected paths are refused.
func APIKeyMiddleware(apiKey string, required bool, protectedPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required || !isProtected(r.URL.Path, protectedPaths) {
				next.ServeHTTP(w, r)
				return
			}

			if apiKey == "" {
				log.Errorf("%s API key required but not configured, refusing %s", logcolors.LogAPIKey, r.URL.Path)
				writeAuthError(w, http.StatusServiceUnavailable, "API key not configured")
				return
			}

			providedKey := r.Header.Get("X-API-Key")
			if providedKey == "" {
				log.Warnf("%s Missing API key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				writeAuthError(w, http.StatusUnauthorized, "API key required")
				return
			}

			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				log.Warnf("%s Invalid API key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				writeAuthError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isProtected(path string, protectedPaths []string) bool {
	for _, p := range protectedPaths {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		} else if path == p {
			return true
		}
	}
	return false
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
