package handler

import (
	"net/http"

	"github.com/msb418/it-asset-tracker/internal/catalog"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/httputil"
)

// CatalogHandler exposes the asset type catalog and status values
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

type catalogResponse struct {
	Types    []catalog.AssetType  `json:"types"`
	Statuses []models.AssetStatus `json:"statuses"`
}

// ListTypes returns the catalog
// GET /api/asset-types
func (h *CatalogHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, catalogResponse{
		Types:    h.catalog.Types(),
		Statuses: models.AssetStatuses,
	})
}
