package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msb418/it-asset-tracker/internal/domain"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "Forbidden")
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireOwner returns the authenticated owner, answering 401 when absent.
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := httputil.GetOwner(r)
	if owner == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return owner, true
}

// pathID returns the {id} path value, answering 400 when blank.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Asset ID is required")
		return "", false
	}
	return id, true
}

// listOptions reads q, status, sort, order, page and pageSize from the query
// string. Clamping and defaults are applied by the service.
func listOptions(r *http.Request, owner string, state models.DeletionState) *models.ListOptions {
	q := r.URL.Query()
	return &models.ListOptions{
		Owner:    owner,
		State:    state,
		Query:    q.Get("q"),
		Status:   models.ParseStatusFilter(q.Get("status")),
		Sort:     models.ParseSortField(q.Get("sort")),
		Order:    models.ParseSortOrder(q.Get("order")),
		Page:     httputil.QueryInt(r, "page"),
		PageSize: httputil.QueryInt(r, "pageSize"),
	}
}
