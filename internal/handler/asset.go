package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/domain/services"
	"github.com/msb418/it-asset-tracker/internal/httputil"
)

// AssetHandler handles the asset lifecycle endpoints
type AssetHandler struct {
	assetService services.AssetService
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService services.AssetService, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		logger:       logger,
	}
}

// updateAssetBody is the PATCH payload. Every field is tri-state.
type updateAssetBody struct {
	Name           httputil.OptionalString `json:"name"`
	AssetType      httputil.OptionalString `json:"assetType"`
	Type           httputil.OptionalString `json:"type"`
	Status         httputil.OptionalString `json:"status"`
	SerialNumber   httputil.OptionalString `json:"serialNumber"`
	Location       httputil.OptionalString `json:"location"`
	AssignedTo     httputil.OptionalString `json:"assignedTo"`
	Description    httputil.OptionalString `json:"description"`
	Notes          httputil.OptionalString `json:"notes"`
	PurchaseDate   httputil.OptionalString `json:"purchaseDate"`
	WarrantyExpiry httputil.OptionalString `json:"warrantyExpiry"`
}

// toRequest keeps only the keys that were present. "type" is used when
// "assetType" is absent, null or blank.
func (b *updateAssetBody) toRequest() *services.UpdateAssetRequest {
	assetType := b.AssetType
	if b.Type.Present && blank(assetType) {
		assetType = b.Type
	}

	fields := make(map[models.AssetField]*string)
	for f, v := range map[models.AssetField]httputil.OptionalString{
		models.FieldName:           b.Name,
		models.FieldAssetType:      assetType,
		models.FieldStatus:         b.Status,
		models.FieldSerialNumber:   b.SerialNumber,
		models.FieldLocation:       b.Location,
		models.FieldAssignedTo:     b.AssignedTo,
		models.FieldDescription:    b.Description,
		models.FieldNotes:          b.Notes,
		models.FieldPurchaseDate:   b.PurchaseDate,
		models.FieldWarrantyExpiry: b.WarrantyExpiry,
	} {
		if v.Present {
			fields[f] = v.Value
		}
	}
	return &services.UpdateAssetRequest{Fields: fields}
}

func blank(v httputil.OptionalString) bool {
	return v.Value == nil || strings.TrimSpace(*v.Value) == ""
}

type idsBody struct {
	IDs    []string `json:"ids"`
	ID     string   `json:"id,omitempty"`
	Action string   `json:"action,omitempty"`
}

func (b *idsBody) allIDs() []string {
	if b.ID != "" {
		return append(b.IDs, b.ID)
	}
	return b.IDs
}

type createdResponse struct {
	ID string `json:"id"`
}

type deletedResponse struct {
	OK      bool  `json:"ok"`
	Deleted int64 `json:"deleted"`
}

// ListAssets returns a page of active assets
// GET /api/assets?q&status&sort&order&page&pageSize
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.Active)
}

// ListTrash returns a page of trashed assets
// GET /api/assets/trash
func (h *AssetHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.Trashed)
}

func (h *AssetHandler) list(w http.ResponseWriter, r *http.Request, state models.DeletionState) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	page, err := h.assetService.ListAssets(r.Context(), listOptions(r, owner, state))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// CreateAsset creates an asset
// POST /api/assets
// Returns 201 with the new id
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req services.CreateAssetRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Owner = owner

	asset, err := h.assetService.CreateAsset(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, createdResponse{ID: asset.ID})
}

// GetAsset returns one active asset
// GET /api/assets/{id}
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
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

	httputil.RespondJSON(w, http.StatusOK, asset)
}

// UpdateAsset applies a partial update
// PATCH /api/assets/{id}
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body updateAssetBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	asset, err := h.assetService.UpdateAsset(r.Context(), id, owner, body.toRequest())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, asset)
}

// DeleteAsset moves an active asset to the trash
// DELETE /api/assets/{id}
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	h.mutateOne(w, r, h.assetService.TrashAsset)
}

// RestoreAsset brings a trashed asset back
// POST /api/assets/{id}/restore
func (h *AssetHandler) RestoreAsset(w http.ResponseWriter, r *http.Request) {
	h.mutateOne(w, r, h.assetService.RestoreAsset)
}

// DestroyAsset permanently removes a trashed asset
// DELETE /api/assets/{id}/permanent
func (h *AssetHandler) DestroyAsset(w http.ResponseWriter, r *http.Request) {
	h.mutateOne(w, r, h.assetService.DestroyAsset)
}

type mutateOneFn func(ctx context.Context, id, owner string) error

func (h *AssetHandler) mutateOne(w http.ResponseWriter, r *http.Request, fn mutateOneFn) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := fn(r.Context(), id, owner); err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.MutationResult{OK: true, Affected: 1})
}

// PermanentDelete removes trashed assets by id
// POST /api/assets/permanent {ids} or {id}
// Active ids are skipped; an empty list is a 400
func (h *AssetHandler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var body idsBody
	if err := httputil.ParseOptionalJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	n, err := h.assetService.DestroyMany(r.Context(), owner, body.allIDs())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, deletedResponse{OK: true, Deleted: n})
}

// BulkAction applies delete, restore or destroy to a list of ids
// POST|DELETE /api/assets/bulk {ids, action}
// DELETE without an action means delete
func (h *AssetHandler) BulkAction(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var body idsBody
	if err := httputil.ParseOptionalJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	action := models.BulkAction(body.Action)
	if action == "" && r.Method == http.MethodDelete {
		action = models.BulkDelete
	}

	result, err := h.assetService.Bulk(r.Context(), owner, &services.BulkRequest{
		IDs:    body.allIDs(),
		Action: action,
	})
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
