package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msb418/it-asset-tracker/internal/domain"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/domain/repositories"
)

// AssetRepository keeps assets in process memory. It is used for local
// development and for handler and service tests.
type AssetRepository struct {
	mu     sync.RWMutex
	assets map[string]*models.Asset
	tags   map[string]string // assetTag -> id
	now    func() time.Time
	logger *slog.Logger
}

// NewAssetRepository creates an empty in-memory store
func NewAssetRepository(logger *slog.Logger) *AssetRepository {
	return &AssetRepository{
		assets: make(map[string]*models.Asset),
		tags:   make(map[string]string),
		now:    time.Now,
		logger: logger,
	}
}

var _ repositories.AssetRepository = (*AssetRepository)(nil)

// SetClock replaces the time source. Tests use it to get distinct timestamps.
func (r *AssetRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.tags[asset.AssetTag]; taken {
		return &domain.ConflictError{
			Message:      "Duplicate key on assetTag",
			ResourceType: "asset",
			ResourceID:   asset.AssetTag,
		}
	}

	now := r.now().UTC()
	asset.ID = uuid.NewString()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	stored := *asset
	r.assets[stored.ID] = &stored
	r.tags[stored.AssetTag] = stored.ID
	return nil
}

func (r *AssetRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Asset, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(opts.Query)
	var matched []models.Asset
	for _, a := range r.assets {
		if a.CreatedByEmail != opts.Owner {
			continue
		}
		if a.IsTrashed() != (opts.State == models.Trashed) {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		if needle != "" && !matchesText(a, needle) {
			continue
		}
		matched = append(matched, *a)
	}

	sortAssets(matched, opts.Sort, opts.Order)

	total := int64(len(matched))
	start := opts.Skip()
	if start < 0 || start >= len(matched) {
		return []models.Asset{}, total, nil
	}
	end := start + opts.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// matchesText reports whether any searchable field contains needle, which
// must already be lower-cased. Matching is literal.
func matchesText(a *models.Asset, needle string) bool {
	fields := []string{a.Name, a.AssetType, string(a.Status)}
	for _, p := range []*string{a.SerialNumber, a.Location, a.AssignedTo} {
		if p != nil {
			fields = append(fields, *p)
		}
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// sortAssets orders by the requested key with id ascending as tie-break.
func sortAssets(list []models.Asset, field models.SortField, order models.SortOrder) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		var cmp int
		switch field {
		case models.SortByName:
			cmp = strings.Compare(a.Name, b.Name)
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if order == models.SortDesc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
		return a.ID < b.ID
	})
}

func (r *AssetRepository) GetByID(ctx context.Context, id, owner string) (*models.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.find(id, owner, models.Active)
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	out := *a
	return &out, nil
}

func (r *AssetRepository) Update(ctx context.Context, id, owner string, patch models.AssetPatch) (*models.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.find(id, owner, models.Active)
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	patch.Apply(a)
	a.UpdatedAt = r.now().UTC()

	out := *a
	return &out, nil
}

func (r *AssetRepository) SoftDelete(ctx context.Context, owner string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	var n int64
	for _, id := range ids {
		if a, ok := r.find(id, owner, models.Active); ok {
			a.DeletedAt = &now
			a.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *AssetRepository) Restore(ctx context.Context, owner string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	var n int64
	for _, id := range ids {
		if a, ok := r.find(id, owner, models.Trashed); ok {
			a.DeletedAt = nil
			a.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *AssetRepository) DeletePermanently(ctx context.Context, owner string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range ids {
		if a, ok := r.find(id, owner, models.Trashed); ok {
			delete(r.tags, a.AssetTag)
			delete(r.assets, id)
			n++
		}
	}
	return n, nil
}

// Clear removes every asset owned by owner, in any state.
func (r *AssetRepository) Clear(ctx context.Context, owner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, a := range r.assets {
		if a.CreatedByEmail == owner {
			delete(r.tags, a.AssetTag)
			delete(r.assets, id)
			n++
		}
	}
	return n, nil
}

// find must be called with the lock held.
func (r *AssetRepository) find(id, owner string, state models.DeletionState) (*models.Asset, bool) {
	a, ok := r.assets[id]
	if !ok || a.CreatedByEmail != owner {
		return nil, false
	}
	if a.IsTrashed() != (state == models.Trashed) {
		return nil, false
	}
	return a, true
}
