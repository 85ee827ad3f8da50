package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Verifier checks admin session tokens.
type Verifier interface {
	Enabled() bool
	Verify(token string) (string, error)
}

// cronUser is recorded as the caller of requests authorized by the cron secret.
const cronUser = "cron"

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireAdmin rejects requests without a valid admin token. When admin login
// is not configured the routes are left open.
func RequireAdmin(v Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return RequireAdminOrCron(v, "", log)
}

// RequireAdminOrCron is RequireAdmin that also accepts the cron secret as a
// bearer token.
func RequireAdminOrCron(v Verifier, cronSecret string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.Enabled() && cronSecret == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := bearer(r)
			if token == "" {
				writeError(w, "인증이 필요합니다.", http.StatusUnauthorized)
				return
			}
			if cronSecret != "" && subtle.ConstantTimeCompare([]byte(token), []byte(cronSecret)) == 1 {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, cronUser)))
				return
			}
			if !v.Enabled() {
				writeError(w, "인증이 필요합니다.", http.StatusUnauthorized)
				return
			}

			user, err := v.Verify(token)
			if err != nil {
				log.Warn("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		})
	}
}
