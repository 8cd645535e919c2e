package middleware

import (
	"net/http"
	"strings"

	"booking-payments/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// APIKey guards the admin payment operations (capture, void, refund,
// cancel). The configured value is a bcrypt hash so the key itself never
// lands in config files or logs.
func APIKey(keyHash string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				logger.Error("Admin API key hash not configured",
					zap.String("path", r.URL.Path))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			key := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if key == "" {
				utils.ResponseUnauthorized(w, "Missing API key")
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
				logger.Warn("Rejected API key",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr))
				utils.ResponseUnauthorized(w, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
