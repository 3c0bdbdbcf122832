package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/msb418/it-asset-tracker/internal/domain"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/domain/repositories"
)

// assetDocument is the stored layout of an asset.
type assetDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	AssetType      string             `bson:"assetType"`
	Status         string             `bson:"status"`
	SerialNumber   *string            `bson:"serialNumber,omitempty"`
	Location       *string            `bson:"location,omitempty"`
	AssignedTo     *string            `bson:"assignedTo,omitempty"`
	Description    *string            `bson:"description,omitempty"`
	Notes          *string            `bson:"notes,omitempty"`
	PurchaseDate   *time.Time         `bson:"purchaseDate,omitempty"`
	WarrantyExpiry *time.Time         `bson:"warrantyExpiry,omitempty"`
	AssetTag       string             `bson:"assetTag"`
	CreatedByEmail string             `bson:"createdByEmail"`
	DeletedAt      *time.Time         `bson:"deletedAt"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toDocument(a *models.Asset) *assetDocument {
	return &assetDocument{
		Name:           a.Name,
		AssetType:      a.AssetType,
		Status:         string(a.Status),
		SerialNumber:   a.SerialNumber,
		Location:       a.Location,
		AssignedTo:     a.AssignedTo,
		Description:    a.Description,
		Notes:          a.Notes,
		PurchaseDate:   a.PurchaseDate,
		WarrantyExpiry: a.WarrantyExpiry,
		AssetTag:       a.AssetTag,
		CreatedByEmail: a.CreatedByEmail,
		DeletedAt:      a.DeletedAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (d *assetDocument) toModel() models.Asset {
	return models.Asset{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		AssetType:      d.AssetType,
		Status:         models.AssetStatus(d.Status),
		SerialNumber:   d.SerialNumber,
		Location:       d.Location,
		AssignedTo:     d.AssignedTo,
		Description:    d.Description,
		Notes:          d.Notes,
		PurchaseDate:   d.PurchaseDate,
		WarrantyExpiry: d.WarrantyExpiry,
		AssetTag:       d.AssetTag,
		CreatedByEmail: d.CreatedByEmail,
		DeletedAt:      d.DeletedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// AssetRepository implements repositories.AssetRepository on MongoDB
type AssetRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *RepositoryConfig) *AssetRepository {
	return &AssetRepository{
		coll:   config.Database.Collection(config.Collections.Assets),
		logger: config.Logger,
	}
}

var _ repositories.AssetRepository = (*AssetRepository)(nil)

// Create inserts a new asset
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	doc := toDocument(asset)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.ConflictError{
				Message:      "Duplicate key on assetTag",
				ResourceType: "asset",
				ResourceID:   asset.AssetTag,
			}
		}
		return fmt.Errorf("insert asset: %w", err)
	}

	asset.ID = doc.ID.Hex()
	return nil
}

// List runs the page query and the count concurrently.
func (r *AssetRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Asset, int64, error) {
	filter := listFilter(opts)
	findOpts := options.Find().
		SetSort(listSort(opts)).
		SetSkip(int64(opts.Skip())).
		SetLimit(int64(opts.PageSize))

	var (
		items []models.Asset
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cursor, err := r.coll.Find(gctx, filter, findOpts)
		if err != nil {
			return fmt.Errorf("find assets: %w", err)
		}
		defer cursor.Close(gctx)

		var docs []assetDocument
		if err := cursor.All(gctx, &docs); err != nil {
			return fmt.Errorf("decode assets: %w", err)
		}
		items = make([]models.Asset, 0, len(docs))
		for i := range docs {
			items = append(items, docs[i].toModel())
		}
		return nil
	})
	g.Go(func() error {
		n, err := r.coll.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count assets: %w", err)
		}
		total = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	r.logger.Debug("assets listed",
		"owner", opts.Owner,
		"state", opts.State.String(),
		"returned", len(items),
		"total", total,
	)
	return items, total, nil
}

// GetByID retrieves an active asset
func (r *AssetRepository) GetByID(ctx context.Context, id, owner string) (*models.Asset, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	var doc assetDocument
	err = r.coll.FindOne(ctx, scopedFilter([]primitive.ObjectID{oid}, owner, models.Active)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}

	asset := doc.toModel()
	return &asset, nil
}

// Update applies a patch in a single conditional update
func (r *AssetRepository) Update(ctx context.Context, id, owner string, patch models.AssetPatch) (*models.Asset, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc assetDocument
	err = r.coll.FindOneAndUpdate(ctx,
		scopedFilter([]primitive.ObjectID{oid}, owner, models.Active),
		patchUpdate(patch, time.Now().UTC()),
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update asset: %w", err)
	}

	asset := doc.toModel()
	return &asset, nil
}

// SoftDelete stamps deletedAt on active assets
func (r *AssetRepository) SoftDelete(ctx context.Context, owner string, ids []string) (int64, error) {
	now := time.Now().UTC()
	return r.updateMany(ctx, owner, ids, models.Active, bson.M{
		"$set": bson.M{"deletedAt": now, "updatedAt": now},
	})
}

// Restore clears deletedAt on trashed assets
func (r *AssetRepository) Restore(ctx context.Context, owner string, ids []string) (int64, error) {
	return r.updateMany(ctx, owner, ids, models.Trashed, bson.M{
		"$set": bson.M{"deletedAt": nil, "updatedAt": time.Now().UTC()},
	})
}

func (r *AssetRepository) updateMany(ctx context.Context, owner string, ids []string, state models.DeletionState, update bson.M) (int64, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := r.coll.UpdateMany(ctx, scopedFilter(oids, owner, state), update)
	if err != nil {
		return 0, fmt.Errorf("update assets: %w", err)
	}
	return res.MatchedCount, nil
}

// DeletePermanently removes trashed assets
func (r *AssetRepository) DeletePermanently(ctx context.Context, owner string, ids []string) (int64, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := r.coll.DeleteMany(ctx, scopedFilter(oids, owner, models.Trashed))
	if err != nil {
		return 0, fmt.Errorf("delete assets: %w", err)
	}
	return res.DeletedCount, nil
}

// Clear removes every asset owned by owner, in any state
func (r *AssetRepository) Clear(ctx context.Context, owner string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"createdByEmail": owner})
	if err != nil {
		return 0, fmt.Errorf("clear assets: %w", err)
	}
	return res.DeletedCount, nil
}
