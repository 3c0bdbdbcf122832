package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/msb418/it-asset-tracker/internal/auth"
	"github.com/msb418/it-asset-tracker/internal/httputil"
)

// AuthMiddleware requires a valid bearer token on every request except the
// listed public paths and CORS preflights. The verified identity is stored
// on the request context for handlers to scope by.
func AuthMiddleware(verifier auth.TokenVerifier, logger *slog.Logger, publicPaths ...string) func(http.Handler) http.Handler {
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			r = httputil.WithIdentity(r, claims)
			recordOwner(r)
			next.ServeHTTP(w, r)
		})
	}
}
