package repositories

import (
	"context"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

// AssetRepository defines data access operations for assets. Every method is
// scoped to an owner; a record owned by someone else behaves as if absent.
type AssetRepository interface {
	// Create persists a new asset, filling in ID, CreatedAt and UpdatedAt.
	// Returns a *domain.ConflictError if the asset tag is already taken.
	Create(ctx context.Context, asset *models.Asset) error

	// List returns one page of assets in opts.State plus the total match count.
	List(ctx context.Context, opts *models.ListOptions) ([]models.Asset, int64, error)

	// GetByID retrieves an active asset.
	GetByID(ctx context.Context, id, owner string) (*models.Asset, error)

	// Update applies a partial update to an active asset and returns the result.
	Update(ctx context.Context, id, owner string, patch models.AssetPatch) (*models.Asset, error)

	// SoftDelete moves active assets to the trash. Returns the number moved.
	SoftDelete(ctx context.Context, owner string, ids []string) (int64, error)

	// Restore moves trashed assets back to active. Returns the number restored.
	Restore(ctx context.Context, owner string, ids []string) (int64, error)

	// DeletePermanently removes trashed assets. Active ids are skipped.
	DeletePermanently(ctx context.Context, owner string, ids []string) (int64, error)
}

// OwnerClearer is implemented by stores that can wipe every asset of one
// owner, active and trashed. Only tooling uses it.
type OwnerClearer interface {
	Clear(ctx context.Context, owner string) (int64, error)
}
