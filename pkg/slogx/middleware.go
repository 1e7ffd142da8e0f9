package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/moltenlabs/credvault/pkg/idx"
)

// HTTPMiddleware logs requests and attaches a contextual logger into request
// context. Every request gets an id, taken from the X-Request-ID header when
// the caller supplies one, and the id is echoed back on the response so
// clients can correlate log lines with their calls.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = idx.New().String()
			}
			rw.Header().Set("X-Request-ID", reqID)

			logger := base.With(
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			ctx := WithContext(r.Context(), logger)
			r = r.WithContext(ctx)

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Milliseconds()
			logger.Info("http_request",
				"status", rw.status,
				"duration_ms", duration,
				"user_agent", r.UserAgent(),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter

	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
