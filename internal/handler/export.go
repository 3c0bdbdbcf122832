package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/domain/services"
	"github.com/msb418/it-asset-tracker/internal/export"
	"github.com/msb418/it-asset-tracker/internal/httputil"
)

// ExportHandler downloads the filtered active listing as a file
type ExportHandler struct {
	assetService services.AssetService
	logger       *slog.Logger
	now          func() time.Time
}

// NewExportHandler creates a new export handler
func NewExportHandler(assetService services.AssetService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		assetService: assetService,
		logger:       logger,
		now:          time.Now,
	}
}

// Export writes every matching active asset
// GET /api/assets/export?format=xlsx|csv&q&status&sort&order
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	assets, err := h.assetService.ExportAssets(r.Context(), listOptions(r, owner, models.Active))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, assets); err != nil {
		handleError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(h.now())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
