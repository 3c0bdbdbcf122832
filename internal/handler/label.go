package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msb418/it-asset-tracker/internal/config"
	"github.com/msb418/it-asset-tracker/internal/domain"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/domain/services"
	"github.com/msb418/it-asset-tracker/internal/httputil"
	"github.com/msb418/it-asset-tracker/internal/label"
)

// LabelHandler serves QR codes and printable labels
type LabelHandler struct {
	assetService services.AssetService
	renderer     *label.Renderer
	logger       *slog.Logger
}

// NewLabelHandler creates a new label handler
func NewLabelHandler(assetService services.AssetService, renderer *label.Renderer, logger *slog.Logger) *LabelHandler {
	return &LabelHandler{
		assetService: assetService,
		renderer:     renderer,
		logger:       logger,
	}
}

// QRCode returns a PNG QR code linking to the asset
// GET /api/assets/{id}/qr.png?size=N
func (h *LabelHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.assetService.GetAsset(r.Context(), id, owner); err != nil {
		handleError(w, err, h.logger)
		return
	}

	png, err := label.QRCode(label.AssetURL(h.renderer.BaseURL(), id), httputil.QueryInt(r, "size"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// Label renders a printable label for one asset
// GET /api/assets/{id}/label
func (h *LabelHandler) Label(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	asset, err := h.assetService.GetAsset(r.Context(), id, owner)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	h.render(w, []models.Asset{*asset})
}

// Labels renders one label per page for a selection
// POST /api/assets/labels {ids}
// Unknown ids are skipped; 404 when none remain
func (h *LabelHandler) Labels(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var body idsBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ids := make([]string, 0, len(body.IDs))
	seen := make(map[string]bool, len(body.IDs))
	for _, id := range body.allIDs() {
		id = strings.TrimSpace(id)
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "No ids provided")
		return
	}
	if len(ids) > config.MaxLabelsPerPrint {
		httputil.RespondError(w, http.StatusBadRequest,
			fmt.Sprintf("at most %d labels per print", config.MaxLabelsPerPrint))
		return
	}

	assets := make([]models.Asset, 0, len(ids))
	for _, id := range ids {
		asset, err := h.assetService.GetAsset(r.Context(), id, owner)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			handleError(w, err, h.logger)
			return
		}
		assets = append(assets, *asset)
	}
	if len(assets) == 0 {
		httputil.RespondError(w, http.StatusNotFound, "Not found")
		return
	}

	h.render(w, assets)
}

// render buffers the page so template errors can still become a 500.
func (h *LabelHandler) render(w http.ResponseWriter, assets []models.Asset) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, assets); err != nil {
		handleError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
