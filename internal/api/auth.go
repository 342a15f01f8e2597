package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// BearerAuth rejects requests whose Authorization header does not carry
// token. An empty token disables the check.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || subtle.ConstantTimeCompare([]byte(auth[len(prefix):]), []byte(token)) != 1 {
				zap.L().Warn("api: unauthorized request",
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr),
				)
				writeStatus(w, http.StatusUnauthorized, "error", "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
