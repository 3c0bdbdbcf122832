package services

import (
	"context"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

// CreateAssetRequest represents a request to create an asset. Dates are kept
// as strings so that unparseable input can be dropped instead of rejected.
type CreateAssetRequest struct {
	Owner          string `json:"-"`
	Name           string `json:"name"`
	AssetType      string `json:"assetType"`
	Type           string `json:"type"` // alias of assetType
	Status         string `json:"status"`
	SerialNumber   string `json:"serialNumber"`
	Location       string `json:"location"`
	AssignedTo     string `json:"assignedTo"`
	Description    string `json:"description"`
	Notes          string `json:"notes"`
	PurchaseDate   string `json:"purchaseDate"`
	WarrantyExpiry string `json:"warrantyExpiry"`
}

// UpdateAssetRequest carries only the fields present in the request.
// A nil value means the field was sent as null.
// This is transport-agnostic - the handler maps from httputil.OptionalString.
type UpdateAssetRequest struct {
	Fields map[models.AssetField]*string
}

// BulkRequest applies one action to a list of ids.
type BulkRequest struct {
	IDs    []string
	Action models.BulkAction
}

// AssetService defines the asset lifecycle.
type AssetService interface {
	// CreateAsset validates, tags and stores a new asset
	CreateAsset(ctx context.Context, req *CreateAssetRequest) (*models.Asset, error)

	// GetAsset retrieves an active asset
	GetAsset(ctx context.Context, id, owner string) (*models.Asset, error)

	// ListAssets returns a page of active or trashed assets, depending on opts.State
	ListAssets(ctx context.Context, opts *models.ListOptions) (*models.AssetPage, error)

	// ExportAssets returns every asset matching opts, ignoring its paging
	ExportAssets(ctx context.Context, opts *models.ListOptions) ([]models.Asset, error)

	// UpdateAsset applies a partial update to an active asset
	UpdateAsset(ctx context.Context, id, owner string, req *UpdateAssetRequest) (*models.Asset, error)

	// TrashAsset soft-deletes one active asset
	TrashAsset(ctx context.Context, id, owner string) error

	// RestoreAsset brings one trashed asset back
	RestoreAsset(ctx context.Context, id, owner string) error

	// DestroyAsset permanently removes one trashed asset
	DestroyAsset(ctx context.Context, id, owner string) error

	// Bulk applies an action to many ids; ids in the wrong state are skipped
	Bulk(ctx context.Context, owner string, req *BulkRequest) (*models.MutationResult, error)

	// DestroyMany permanently removes trashed assets, failing on an empty id list
	DestroyMany(ctx context.Context, owner string, ids []string) (int64, error)
}
