package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/msb418/it-asset-tracker/internal/catalog"
	"github.com/msb418/it-asset-tracker/internal/config"
	"github.com/msb418/it-asset-tracker/internal/domain"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/domain/repositories"
	"github.com/msb418/it-asset-tracker/internal/domain/services"
)

// assetService implements the AssetService interface
type assetService struct {
	repo    repositories.AssetRepository
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewAssetService creates a new asset service. catalog may be nil, in which
// case tag prefixes come from the type or name alone.
func NewAssetService(
	repo repositories.AssetRepository,
	catalog *catalog.Catalog,
	logger *slog.Logger,
) services.AssetService {
	return &assetService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// CreateAsset creates a new asset with a freshly generated tag
func (s *assetService) CreateAsset(ctx context.Context, req *services.CreateAssetRequest) (*models.Asset, error) {
	if req.Owner == "" {
		return nil, domain.ErrUnauthorized
	}

	normalizeCreateRequest(req)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	assetType := req.AssetType
	if assetType == "" {
		assetType = req.Type
	}
	if assetType == "" {
		assetType = models.DefaultAssetType
	}

	status := models.AssetStatus(req.Status)
	if status == "" {
		status = models.StatusInStock
	}

	asset := &models.Asset{
		Name:           req.Name,
		AssetType:      assetType,
		Status:         status,
		SerialNumber:   optionalText(req.SerialNumber),
		Location:       optionalText(req.Location),
		AssignedTo:     optionalText(req.AssignedTo),
		Description:    optionalText(req.Description),
		Notes:          optionalText(req.Notes),
		PurchaseDate:   parseDate(req.PurchaseDate),
		WarrantyExpiry: parseDate(req.WarrantyExpiry),
		CreatedByEmail: req.Owner,
	}

	prefix := s.catalog.TagPrefix(asset.AssetType, asset.Name)

	var err error
	for attempt := 1; attempt <= maxTagAttempts; attempt++ {
		asset.AssetTag = newAssetTag(prefix)
		err = s.repo.Create(ctx, asset)
		if err == nil {
			s.logger.Info("asset created",
				"id", asset.ID,
				"asset_tag", asset.AssetTag,
				"owner", asset.CreatedByEmail,
			)
			return asset, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		s.logger.Warn("asset tag collision",
			"asset_tag", asset.AssetTag,
			"attempt", attempt,
		)
	}

	return nil, err
}

func normalizeCreateRequest(req *services.CreateAssetRequest) {
	for _, p := range []*string{
		&req.Name, &req.AssetType, &req.Type, &req.Status,
		&req.SerialNumber, &req.Location, &req.AssignedTo,
		&req.Description, &req.Notes,
	} {
		*p = strings.TrimSpace(*p)
	}
}

func (s *assetService) validateCreateRequest(req *services.CreateAssetRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required.Error("is required"),
			validation.RuneLength(1, config.MaxAssetNameLength),
		),
		validation.Field(&req.AssetType, validation.RuneLength(0, config.MaxShortTextLength)),
		validation.Field(&req.Type, validation.RuneLength(0, config.MaxShortTextLength)),
		validation.Field(&req.Status, validation.In(models.StatusStrings()...)),
		validation.Field(&req.SerialNumber, validation.RuneLength(0, config.MaxShortTextLength)),
		validation.Field(&req.Location, validation.RuneLength(0, config.MaxShortTextLength)),
		validation.Field(&req.AssignedTo, validation.RuneLength(0, config.MaxShortTextLength)),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxLongTextLength)),
		validation.Field(&req.Notes, validation.RuneLength(0, config.MaxLongTextLength)),
	)
}

// GetAsset retrieves an active asset
func (s *assetService) GetAsset(ctx context.Context, id, owner string) (*models.Asset, error) {
	if owner == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.GetByID(ctx, id, owner)
}

// ListAssets returns one page of assets
func (s *assetService) ListAssets(ctx context.Context, opts *models.ListOptions) (*models.AssetPage, error) {
	if opts.Owner == "" {
		return nil, domain.ErrUnauthorized
	}

	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	items, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	return models.NewAssetPage(items, total, opts), nil
}

// ExportAssets walks every page of the listing, up to MaxExportRows
func (s *assetService) ExportAssets(ctx context.Context, opts *models.ListOptions) ([]models.Asset, error) {
	if opts.Owner == "" {
		return nil, domain.ErrUnauthorized
	}

	opts.Page = 1
	opts.PageSize = models.MaxPageSize
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var all []models.Asset
	for {
		items, total, err := s.repo.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if len(items) == 0 || int64(len(all)) >= total || len(all) >= config.MaxExportRows {
			break
		}
		opts.Page++
	}

	if len(all) > config.MaxExportRows {
		all = all[:config.MaxExportRows]
	}

	s.logger.Info("assets exported",
		"owner", opts.Owner,
		"rows", len(all),
	)
	return all, nil
}

// UpdateAsset applies only the fields present in the request
func (s *assetService) UpdateAsset(ctx context.Context, id, owner string, req *services.UpdateAssetRequest) (*models.Asset, error) {
	if owner == "" {
		return nil, domain.ErrUnauthorized
	}

	patch, err := buildPatch(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	asset, err := s.repo.Update(ctx, id, owner, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("asset updated",
		"id", id,
		"fields", len(patch),
		"owner", owner,
	)
	return asset, nil
}

// buildPatch validates and normalizes the present fields.
func buildPatch(req *services.UpdateAssetRequest) (models.AssetPatch, error) {
	patch := models.AssetPatch{}
	if req == nil {
		return patch, nil
	}

	for field, raw := range req.Fields {
		switch {
		case field.IsDate():
			if raw == nil {
				patch.SetDate(field, nil)
			} else {
				patch.SetDate(field, parseDate(*raw))
			}

		case field == models.FieldName:
			name := ""
			if raw != nil {
				name = strings.TrimSpace(*raw)
			}
			if err := validation.Validate(name,
				validation.Required.Error("cannot be empty"),
				validation.RuneLength(1, config.MaxAssetNameLength),
			); err != nil {
				return nil, fmt.Errorf("name: %w", err)
			}
			patch.SetText(field, &name)

		case field == models.FieldAssetType:
			// A blank type leaves the current one in place.
			if v := optionalText(deref(raw)); v != nil {
				if err := validation.Validate(*v, validation.RuneLength(1, config.MaxShortTextLength)); err != nil {
					return nil, fmt.Errorf("assetType: %w", err)
				}
				patch.SetText(field, v)
			}

		case field == models.FieldStatus:
			status := strings.TrimSpace(deref(raw))
			if err := validation.Validate(status,
				validation.Required.Error("cannot be empty"),
				validation.In(models.StatusStrings()...),
			); err != nil {
				return nil, fmt.Errorf("status: %w", err)
			}
			patch.SetText(field, &status)

		default:
			v := optionalText(deref(raw))
			limit := config.MaxShortTextLength
			if field == models.FieldDescription || field == models.FieldNotes {
				limit = config.MaxLongTextLength
			}
			if v != nil {
				if err := validation.Validate(*v, validation.RuneLength(0, limit)); err != nil {
					return nil, fmt.Errorf("%s: %w", field, err)
				}
			}
			patch.SetText(field, v)
		}
	}

	return patch, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TrashAsset soft-deletes one active asset
func (s *assetService) TrashAsset(ctx context.Context, id, owner string) error {
	return s.single(ctx, id, owner, "asset trashed", s.repo.SoftDelete)
}

// RestoreAsset restores one trashed asset
func (s *assetService) RestoreAsset(ctx context.Context, id, owner string) error {
	return s.single(ctx, id, owner, "asset restored", s.repo.Restore)
}

// DestroyAsset permanently removes one trashed asset
func (s *assetService) DestroyAsset(ctx context.Context, id, owner string) error {
	return s.single(ctx, id, owner, "asset destroyed", s.repo.DeletePermanently)
}

type mutateFn func(ctx context.Context, owner string, ids []string) (int64, error)

func (s *assetService) single(ctx context.Context, id, owner, msg string, fn mutateFn) error {
	if owner == "" {
		return domain.ErrUnauthorized
	}

	n, err := fn(ctx, owner, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	s.logger.Info(msg, "id", id, "owner", owner)
	return nil
}

// Bulk applies one action to every id. Ids in the wrong state, owned by
// someone else, or unknown are skipped.
func (s *assetService) Bulk(ctx context.Context, owner string, req *services.BulkRequest) (*models.MutationResult, error) {
	if owner == "" {
		return nil, domain.ErrUnauthorized
	}

	ids := cleanIDs(req.IDs)
	if len(ids) == 0 {
		return &models.MutationResult{OK: true}, nil
	}
	if len(ids) > config.MaxBulkIDs {
		return nil, &domain.BadRequestError{Message: fmt.Sprintf("at most %d ids per request", config.MaxBulkIDs)}
	}

	var fn mutateFn
	switch req.Action {
	case models.BulkDelete:
		fn = s.repo.SoftDelete
	case models.BulkRestore:
		fn = s.repo.Restore
	case models.BulkDestroy:
		fn = s.repo.DeletePermanently
	default:
		return nil, &domain.BadRequestError{Message: fmt.Sprintf("Unsupported action %q", req.Action)}
	}

	n, err := fn(ctx, owner, ids)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bulk action applied",
		"action", string(req.Action),
		"requested", len(ids),
		"affected", n,
		"owner", owner,
	)
	return &models.MutationResult{OK: true, Affected: n}, nil
}

// DestroyMany permanently removes trashed assets
func (s *assetService) DestroyMany(ctx context.Context, owner string, ids []string) (int64, error) {
	if owner == "" {
		return 0, domain.ErrUnauthorized
	}

	ids = cleanIDs(ids)
	if len(ids) == 0 {
		return 0, &domain.BadRequestError{Message: "No ids provided"}
	}
	if len(ids) > config.MaxBulkIDs {
		return 0, &domain.BadRequestError{Message: fmt.Sprintf("at most %d ids per request", config.MaxBulkIDs)}
	}

	n, err := s.repo.DeletePermanently(ctx, owner, ids)
	if err != nil {
		return 0, err
	}

	s.logger.Info("assets destroyed",
		"requested", len(ids),
		"deleted", n,
		"owner", owner,
	)
	return n, nil
}

// cleanIDs trims ids and drops blanks and duplicates, keeping order.
func cleanIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
