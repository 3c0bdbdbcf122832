package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/msb418/it-asset-tracker/internal/httputil"
)

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request. It sits outside the auth
// middleware, which reports the authenticated owner back through the context.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			var owner string
			next.ServeHTTP(rec, r.WithContext(withOwnerSink(r.Context(), &owner)))

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"owner", owner,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// recordOwner copies the authenticated owner into the logger's sink.
func recordOwner(r *http.Request) {
	if sink := ownerSink(r.Context()); sink != nil {
		*sink = httputil.GetOwner(r)
	}
}
