package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"
)

const apiKeyHeader = "X-API-Key"

// APIKeyMiddleware admits requests whose X-API-Key header matches apiKey.
// An empty apiKey disables the check.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	if apiKey == "" {
		log.Warn().Msg("API key check disabled")
		return func(next http.Handler) http.Handler { return next }
	}
	want := []byte(apiKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(apiKeyHeader)
			if key != "" && subtle.ConstantTimeCompare([]byte(key), want) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			reason := "invalid API key"
			if key == "" {
				reason = "missing API key"
			}
			log.Warn().
				Str("request_id", RequestID(r.Context())).
				Str("ip", clientIP(r)).
				Str("path", r.URL.Path).
				Msg(reason)
			writeError(w, http.StatusForbidden, reason)
		})
	}
}
