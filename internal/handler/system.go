package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/msb418/it-asset-tracker/internal/httputil"
)

// PingFunc checks that the store is reachable.
type PingFunc func(ctx context.Context) error

// SystemHandler serves health and identity endpoints
type SystemHandler struct {
	backend string
	ping    PingFunc
	logger  *slog.Logger
}

// NewSystemHandler creates a new system handler. ping may be nil.
func NewSystemHandler(backend string, ping PingFunc, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{backend: backend, ping: ping, logger: logger}
}

// HealthCheck reports liveness and the store backend
// GET /health
func (h *SystemHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.Warn("health check: store unreachable", "backend", h.backend, "error", err)
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	httputil.RespondJSON(w, code, map[string]interface{}{
		"status":  status,
		"backend": h.backend,
		"time":    time.Now().UTC(),
	})
}

// Me returns the caller's identity
// GET /api/me
func (h *SystemHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := httputil.GetIdentity(r)
	if claims == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"email": claims.GetOwner(),
		"name":  claims.Name,
	})
}
