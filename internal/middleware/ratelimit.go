package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/msb418/it-asset-tracker/internal/httputil"
)

// Counter is the atomic counter store behind RateLimit.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RateLimit allows each owner at most limit requests per window using fixed
// windows. Anonymous requests are not counted. Counter failures let the
// request through. A non-positive limit disables the middleware.
func RateLimit(counter Counter, limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	now := time.Now

	return func(next http.Handler) http.Handler {
		if limit <= 0 || counter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := httputil.GetOwner(r)
			if owner == "" {
				next.ServeHTTP(w, r)
				return
			}

			t := now()
			start := t.Truncate(window)
			key := fmt.Sprintf("ratelimit:%s:%d", owner, start.Unix())

			n, err := counter.Incr(r.Context(), key)
			if err != nil {
				logger.Warn("rate limit counter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if n == 1 {
				if _, err := counter.Expire(r.Context(), key, window); err != nil {
					logger.Warn("rate limit expiry failed", "key", key, "error", err)
				}
			}

			if n > int64(limit) {
				retry := int(start.Add(window).Sub(t).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				httputil.RespondErrorWithExtras(w, http.StatusTooManyRequests, "Too many requests",
					map[string]interface{}{"retry_after": retry})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
