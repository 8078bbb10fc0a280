package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"catalogadmin/internal/metrics"
	"catalogadmin/pkg/logger"
)

type contextKey string

// AdminIDKey holds the int64 admin id resolved by JWTAuth.
const AdminIDKey contextKey = "admin_id"

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "token"

type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// JWTAuth gates protected routes. A request without a valid session token is
// redirected to /login and never reaches the handler.
func JWTAuth(tokens TokenVerifier, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil || c.Value == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing").Inc()
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			adminID, err := tokens.Verify(c.Value)
			if err != nil {
				logger.FromContext(r.Context()).Debug("session token rejected", "error", err)
				metrics.AuthRejectionsTotal.WithLabelValues("invalid").Inc()
				ClearSessionCookie(w, secureCookie)
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), AdminIDKey, adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminIDFromContext returns the id attached by JWTAuth.
func AdminIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(AdminIDKey).(int64)
	return id, ok
}

func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// BasicAuth protects operational endpoints such as /metrics.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !constantTimeEqual(user, username) || !constantTimeEqual(pass, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="metrics"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
