package middleware

import (
	"net/http"
	"strings"
)

// MaxBodySize caps form and upload bodies (10MB).
const MaxBodySize = 10 << 20

// ValidateRequest rejects write requests that are not form posts and caps
// the body size for everything that passes.
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" &&
				!strings.HasPrefix(contentType, "application/x-www-form-urlencoded") &&
				!strings.HasPrefix(contentType, "multipart/form-data") {
				http.Error(w, "Unsupported Content-Type", http.StatusUnsupportedMediaType)
				return
			}
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
		}

		next.ServeHTTP(w, r)
	})
}
