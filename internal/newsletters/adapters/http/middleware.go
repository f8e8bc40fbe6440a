package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const principalKey contextKey = "principal"

// RequirePrincipal extracts the authenticated principal from the
// X-Principal-ID header, set by the gateway in front of this service.
// Credential verification happens there; this service only trusts and parses.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Principal-ID")
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "X-Principal-ID header required")
			return
		}

		principalID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "X-Principal-ID must be a valid UUID")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principalID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromContext returns the principal set by RequirePrincipal.
func PrincipalFromContext(ctx context.Context) (uuid.UUID, bool) {
	principalID, ok := ctx.Value(principalKey).(uuid.UUID)
	return principalID, ok
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func WithMetrics(next http.Handler, metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		metrics.RecordRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, duration)
	})
}
