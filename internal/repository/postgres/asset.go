package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/msb418/it-asset-tracker/internal/domain"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/domain/repositories"
)

// AssetRepository implements repositories.AssetRepository on PostgreSQL
type AssetRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *RepositoryConfig) *AssetRepository {
	return &AssetRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

var _ repositories.AssetRepository = (*AssetRepository)(nil)

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var a models.Asset
	var status string
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.AssetType,
		&status,
		&a.SerialNumber,
		&a.Location,
		&a.AssignedTo,
		&a.Description,
		&a.Notes,
		&a.PurchaseDate,
		&a.WarrantyExpiry,
		&a.AssetTag,
		&a.CreatedByEmail,
		&a.DeletedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = models.AssetStatus(status)
	return &a, nil
}

// Create inserts a new asset
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	query, args, err := psql.Insert(r.tables.Assets).
		Columns(
			"name", "asset_type", "status",
			"serial_number", "location", "assigned_to", "description", "notes",
			"purchase_date", "warranty_expiry",
			"asset_tag", "created_by_email", "deleted_at",
		).
		Values(
			asset.Name, asset.AssetType, string(asset.Status),
			asset.SerialNumber, asset.Location, asset.AssignedTo, asset.Description, asset.Notes,
			asset.PurchaseDate, asset.WarrantyExpiry,
			asset.AssetTag, asset.CreatedByEmail, asset.DeletedAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query, args...).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "Duplicate key on assetTag",
				ResourceType: "asset",
				ResourceID:   asset.AssetTag,
			}
		}
		return fmt.Errorf("create asset: %w", err)
	}

	return nil
}

// List runs the page query and the count concurrently
func (r *AssetRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Asset, int64, error) {
	pageSQL, pageArgs, err := selectPage(r.tables.Assets, opts).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	countSQL, countArgs, err := selectCount(r.tables.Assets, opts).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	if txFromContext(ctx) != nil {
		// A transaction cannot serve two queries at once.
		items, err := r.queryAssets(ctx, executor, pageSQL, pageArgs)
		if err != nil {
			return nil, 0, err
		}
		var total int64
		if err := executor.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count assets: %w", err)
		}
		return items, total, nil
	}

	var (
		items []models.Asset
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = r.queryAssets(gctx, r.pool, pageSQL, pageArgs)
		return err
	})
	g.Go(func() error {
		if err := r.pool.QueryRow(gctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count assets: %w", err)
		}
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

func (r *AssetRepository) queryAssets(ctx context.Context, executor DBTX, query string, args []interface{}) ([]models.Asset, error) {
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	items := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return items, nil
}

// GetByID retrieves an active asset
func (r *AssetRepository) GetByID(ctx context.Context, id, owner string) (*models.Asset, error) {
	if len(validUUIDs([]string{id})) == 0 {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	query, args, err := psql.Select(assetColumns...).
		From(r.tables.Assets).
		Where(scopedWhere([]string{id}, owner, models.Active)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	asset, err := scanAsset(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return asset, nil
}

// Update applies a patch in a single conditional UPDATE
func (r *AssetRepository) Update(ctx context.Context, id, owner string, patch models.AssetPatch) (*models.Asset, error) {
	if len(validUUIDs([]string{id})) == 0 {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	query, args, err := updateFromPatch(r.tables.Assets, id, owner, patch).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	asset, err := scanAsset(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update asset: %w", err)
	}
	return asset, nil
}

// SoftDelete stamps deleted_at on active assets
func (r *AssetRepository) SoftDelete(ctx context.Context, owner string, ids []string) (int64, error) {
	return r.setDeletedAt(ctx, owner, ids, models.Active, sq.Expr("NOW()"))
}

// Restore clears deleted_at on trashed assets
func (r *AssetRepository) Restore(ctx context.Context, owner string, ids []string) (int64, error) {
	return r.setDeletedAt(ctx, owner, ids, models.Trashed, nil)
}

func (r *AssetRepository) setDeletedAt(ctx context.Context, owner string, ids []string, state models.DeletionState, value interface{}) (int64, error) {
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := psql.Update(r.tables.Assets).
		Set("deleted_at", value).
		Set("updated_at", sq.Expr("NOW()")).
		Where(scopedWhere(ids, owner, state)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update assets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeletePermanently removes trashed assets
func (r *AssetRepository) DeletePermanently(ctx context.Context, owner string, ids []string) (int64, error) {
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := psql.Delete(r.tables.Assets).
		Where(scopedWhere(ids, owner, models.Trashed)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete assets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Clear removes every asset owned by owner, in any state
func (r *AssetRepository) Clear(ctx context.Context, owner string) (int64, error) {
	query := "DELETE FROM " + r.tables.Assets + " WHERE created_by_email = $1"

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, owner)
	if err != nil {
		return 0, fmt.Errorf("clear assets: %w", err)
	}
	return tag.RowsAffected(), nil
}
