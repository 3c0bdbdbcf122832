package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msb418/it-asset-tracker/internal/catalog"
	"github.com/msb418/it-asset-tracker/internal/domain"
	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/domain/services"
	"github.com/msb418/it-asset-tracker/internal/repository/memory"
)

const owner = "alice@example.com"

var tagPattern = regexp.MustCompile(`^[A-Z0-9]{2,4}-\d{6}$`)

func newTestService(t *testing.T) (services.AssetService, *memory.AssetRepository) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewAssetRepository(logger)

	var mu sync.Mutex
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	})

	cat, err := catalog.New()
	require.NoError(t, err)

	return NewAssetService(repo, cat, logger), repo
}

func mustCreate(t *testing.T, svc services.AssetService, req services.CreateAssetRequest) *models.Asset {
	t.Helper()
	if req.Owner == "" {
		req.Owner = owner
	}
	asset, err := svc.CreateAsset(context.Background(), &req)
	require.NoError(t, err)
	return asset
}

func listIDs(t *testing.T, svc services.AssetService, state models.DeletionState) []string {
	t.Helper()
	page, err := svc.ListAssets(context.Background(), &models.ListOptions{Owner: owner, State: state, PageSize: 100})
	require.NoError(t, err)
	ids := make([]string, 0, len(page.Items))
	for _, a := range page.Items {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestCreateAsset_Defaults(t *testing.T) {
	svc, _ := newTestService(t)

	asset := mustCreate(t, svc, services.CreateAssetRequest{
		Name:         "  MacBook Pro 14  ",
		SerialNumber: "   ",
		Location:     "HQ",
		PurchaseDate: "not a date",
	})

	assert.NotEmpty(t, asset.ID)
	assert.Equal(t, "MacBook Pro 14", asset.Name)
	assert.Equal(t, models.DefaultAssetType, asset.AssetType)
	assert.Equal(t, models.StatusInStock, asset.Status)
	assert.Nil(t, asset.SerialNumber)
	require.NotNil(t, asset.Location)
	assert.Equal(t, "HQ", *asset.Location)
	assert.Nil(t, asset.PurchaseDate)
	assert.Nil(t, asset.DeletedAt)
	assert.Equal(t, owner, asset.CreatedByEmail)
	assert.Regexp(t, tagPattern, asset.AssetTag)
	assert.Equal(t, "LT-", asset.AssetTag[:3])
}

func TestCreateAsset_Fields(t *testing.T) {
	tests := []struct {
		name      string
		req       services.CreateAssetRequest
		wantType  string
		wantTag   string
		wantDate  *time.Time
		wantError error
	}{
		{
			name:     "type alias",
			req:      services.CreateAssetRequest{Name: "Dell U2720Q", Type: "Monitor"},
			wantType: "Monitor",
			wantTag:  "MN-",
		},
		{
			name:     "assetType wins over alias",
			req:      services.CreateAssetRequest{Name: "x", AssetType: "Phone", Type: "Monitor"},
			wantType: "Phone",
			wantTag:  "PH-",
		},
		{
			name:     "unknown type uses its letters",
			req:      services.CreateAssetRequest{Name: "Epson", AssetType: "projector"},
			wantType: "projector",
			wantTag:  "PR-",
		},
		{
			name:     "date only",
			req:      services.CreateAssetRequest{Name: "x", PurchaseDate: "2024-05-17"},
			wantType: models.DefaultAssetType,
			wantTag:  "LT-",
			wantDate: ptrTime(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:      "missing name",
			req:       services.CreateAssetRequest{Name: "   "},
			wantError: domain.ErrValidation,
		},
		{
			name:      "unknown status",
			req:       services.CreateAssetRequest{Name: "x", Status: "Lost"},
			wantError: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			tt.req.Owner = owner

			asset, err := svc.CreateAsset(context.Background(), &tt.req)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, asset.AssetType)
			assert.Equal(t, tt.wantTag, asset.AssetTag[:3])
			assert.Equal(t, tt.wantDate, asset.PurchaseDate)
		})
	}
}

func TestCreateAsset_RequiresOwner(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateAsset(context.Background(), &services.CreateAssetRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateAsset_TagsAreUnique(t *testing.T) {
	svc, _ := newTestService(t)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		a := mustCreate(t, svc, services.CreateAssetRequest{Name: fmt.Sprintf("asset %d", i)})
		assert.False(t, seen[a.AssetTag], "duplicate tag %s", a.AssetTag)
		seen[a.AssetTag] = true
	}
}

func TestCreateAsset_RetriesOnTagCollision(t *testing.T) {
	svc, _ := newTestService(t)

	numbers := []int{123456, 123456, 654321}
	orig := tagNumber
	t.Cleanup(func() { tagNumber = orig })
	tagNumber = func() int {
		n := numbers[0]
		numbers = numbers[1:]
		return n
	}

	first := mustCreate(t, svc, services.CreateAssetRequest{Name: "one"})
	second := mustCreate(t, svc, services.CreateAssetRequest{Name: "two"})

	assert.Equal(t, "LT-123456", first.AssetTag)
	assert.Equal(t, "LT-654321", second.AssetTag)
}

func TestCreateAsset_GivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, _ := newTestService(t)

	orig := tagNumber
	t.Cleanup(func() { tagNumber = orig })
	tagNumber = func() int { return 111111 }

	mustCreate(t, svc, services.CreateAssetRequest{Name: "one"})
	_, err := svc.CreateAsset(context.Background(), &services.CreateAssetRequest{Owner: owner, Name: "two"})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateAsset_OnlyTouchesPresentFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	orig := mustCreate(t, svc, services.CreateAssetRequest{
		Name:       "ThinkPad",
		Location:   "Floor 3",
		AssignedTo: "bob",
		Notes:      "spare charger",
	})

	repair := "Repair"
	updated, err := svc.UpdateAsset(ctx, orig.ID, owner, &services.UpdateAssetRequest{
		Fields: map[models.AssetField]*string{models.FieldStatus: &repair},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusRepair, updated.Status)
	assert.True(t, updated.UpdatedAt.After(orig.UpdatedAt))

	// everything else is unchanged
	want := *orig
	want.Status = models.StatusRepair
	want.UpdatedAt = updated.UpdatedAt
	assert.Equal(t, want, *updated)
}

func TestUpdateAsset_ClearsAndValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	orig := mustCreate(t, svc, services.CreateAssetRequest{Name: "ThinkPad", Location: "Floor 3", PurchaseDate: "2024-01-01"})

	blank := "  "
	updated, err := svc.UpdateAsset(ctx, orig.ID, owner, &services.UpdateAssetRequest{
		Fields: map[models.AssetField]*string{
			models.FieldLocation:     nil,
			models.FieldPurchaseDate: nil,
			models.FieldAssetType:    &blank,
		},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Location)
	assert.Nil(t, updated.PurchaseDate)
	assert.Equal(t, orig.AssetType, updated.AssetType)

	tests := []struct {
		name   string
		fields map[models.AssetField]*string
	}{
		{name: "blank name", fields: map[models.AssetField]*string{models.FieldName: &blank}},
		{name: "null name", fields: map[models.AssetField]*string{models.FieldName: nil}},
		{name: "null status", fields: map[models.AssetField]*string{models.FieldStatus: nil}},
		{name: "unknown status", fields: map[models.AssetField]*string{models.FieldStatus: ptrString("Lost")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateAsset(ctx, orig.ID, owner, &services.UpdateAssetRequest{Fields: tt.fields})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUpdateAsset_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, services.CreateAssetRequest{Name: "x"})
	name := "y"
	req := &services.UpdateAssetRequest{Fields: map[models.AssetField]*string{models.FieldName: &name}}

	_, err := svc.UpdateAsset(ctx, a.ID, "mallory@example.com", req)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.TrashAsset(ctx, a.ID, owner))
	_, err = svc.UpdateAsset(ctx, a.ID, owner, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.UpdateAsset(ctx, "missing", owner, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLifecycle_TrashRestoreDestroy(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, services.CreateAssetRequest{Name: "x"})

	require.NoError(t, svc.TrashAsset(ctx, a.ID, owner))
	assert.NotContains(t, listIDs(t, svc, models.Active), a.ID)
	assert.Contains(t, listIDs(t, svc, models.Trashed), a.ID)

	_, err := svc.GetAsset(ctx, a.ID, owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.TrashAsset(ctx, a.ID, owner), domain.ErrNotFound)

	require.NoError(t, svc.RestoreAsset(ctx, a.ID, owner))
	assert.Contains(t, listIDs(t, svc, models.Active), a.ID)
	assert.NotContains(t, listIDs(t, svc, models.Trashed), a.ID)
	assert.ErrorIs(t, svc.RestoreAsset(ctx, a.ID, owner), domain.ErrNotFound)

	// destroy only works from the trash
	assert.ErrorIs(t, svc.DestroyAsset(ctx, a.ID, owner), domain.ErrNotFound)
	require.NoError(t, svc.TrashAsset(ctx, a.ID, owner))
	require.NoError(t, svc.DestroyAsset(ctx, a.ID, owner))

	assert.NotContains(t, listIDs(t, svc, models.Active), a.ID)
	assert.NotContains(t, listIDs(t, svc, models.Trashed), a.ID)
	assert.ErrorIs(t, svc.DestroyAsset(ctx, a.ID, owner), domain.ErrNotFound)
}

func TestDestroyMany(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	trashed := mustCreate(t, svc, services.CreateAssetRequest{Name: "old"})
	active := mustCreate(t, svc, services.CreateAssetRequest{Name: "current"})
	require.NoError(t, svc.TrashAsset(ctx, trashed.ID, owner))

	n, err := svc.DestroyMany(ctx, owner, []string{trashed.ID, active.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, listIDs(t, svc, models.Active), active.ID)

	// repeating is a no-op
	n, err = svc.DestroyMany(ctx, owner, []string{trashed.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.DestroyMany(ctx, owner, []string{" ", ""})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestBulk(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, services.CreateAssetRequest{Name: "a"})
	b := mustCreate(t, svc, services.CreateAssetRequest{Name: "b"})
	require.NoError(t, svc.TrashAsset(ctx, a.ID, owner))

	// one already trashed, one active: only the active one moves
	res, err := svc.Bulk(ctx, owner, &services.BulkRequest{IDs: []string{a.ID, b.ID}, Action: models.BulkDelete})
	require.NoError(t, err)
	assert.Equal(t, &models.MutationResult{OK: true, Affected: 1}, res)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, listIDs(t, svc, models.Trashed))

	res, err = svc.Bulk(ctx, owner, &services.BulkRequest{IDs: []string{a.ID}, Action: models.BulkRestore})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Affected)

	res, err = svc.Bulk(ctx, owner, &services.BulkRequest{IDs: []string{a.ID, b.ID, "unknown"}, Action: models.BulkDestroy})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Affected)
	assert.Equal(t, []string{a.ID}, listIDs(t, svc, models.Active))
}

func TestBulk_EmptyAndInvalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Bulk(ctx, owner, &services.BulkRequest{IDs: nil, Action: "explode"})
	require.NoError(t, err)
	assert.Equal(t, &models.MutationResult{OK: true}, res)

	_, err = svc.Bulk(ctx, owner, &services.BulkRequest{IDs: []string{"x"}, Action: "explode"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestOwnerScoping(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	other := "mallory@example.com"

	a := mustCreate(t, svc, services.CreateAssetRequest{Name: "x"})

	_, err := svc.GetAsset(ctx, a.ID, other)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.TrashAsset(ctx, a.ID, other), domain.ErrNotFound)

	res, err := svc.Bulk(ctx, other, &services.BulkRequest{IDs: []string{a.ID}, Action: models.BulkDelete})
	require.NoError(t, err)
	assert.Zero(t, res.Affected)

	page, err := svc.ListAssets(ctx, &models.ListOptions{Owner: other})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)

	_, err = svc.ListAssets(ctx, &models.ListOptions{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListAssets_Pagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		mustCreate(t, svc, services.CreateAssetRequest{Name: fmt.Sprintf("asset %02d", i)})
	}

	page, err := svc.ListAssets(ctx, &models.ListOptions{
		Owner: owner, Sort: models.SortByName, Order: models.SortAsc, Page: 2, PageSize: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(15), page.Total)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "asset 11", page.Items[0].Name)
	assert.Equal(t, "asset 15", page.Items[4].Name)

	// default is newest first
	page, err = svc.ListAssets(ctx, &models.ListOptions{Owner: owner})
	require.NoError(t, err)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, "asset 15", page.Items[0].Name)

	// out-of-range paging is clamped
	page, err = svc.ListAssets(ctx, &models.ListOptions{Owner: owner, Page: -3, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, models.MaxPageSize, page.PageSize)
	assert.Len(t, page.Items, 15)
}

func TestListAssets_Search(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, services.CreateAssetRequest{Name: "Finance laptop"})
	mustCreate(t, svc, services.CreateAssetRequest{Name: "Printer", Location: "FINANCE floor"})
	mustCreate(t, svc, services.CreateAssetRequest{Name: "Dock", AssignedTo: "refinanced team"})
	mustCreate(t, svc, services.CreateAssetRequest{Name: "Monitor", Location: "Sales"})
	mustCreate(t, svc, services.CreateAssetRequest{Name: "a.b* literal"})
	mustCreate(t, svc, services.CreateAssetRequest{Name: "aXbbb"})

	tests := []struct {
		name  string
		query string
		want  int64
	}{
		{name: "case-insensitive across fields", query: "finance", want: 3},
		{name: "regex metacharacters are literal", query: "a.b*", want: 1},
		{name: "status is searchable", query: "in stock", want: 6},
		{name: "no match", query: "zzz", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListAssets(ctx, &models.ListOptions{Owner: owner, Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Total)
		})
	}
}

func TestListAssets_StatusFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, services.CreateAssetRequest{Name: "a", Status: "Repair"})
	mustCreate(t, svc, services.CreateAssetRequest{Name: "b"})

	page, err := svc.ListAssets(ctx, &models.ListOptions{Owner: owner, Status: "Repair"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = svc.ListAssets(ctx, &models.ListOptions{Owner: owner, Status: "All"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = svc.ListAssets(ctx, &models.ListOptions{Owner: owner, Status: "Lost"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExportAssets_WalksAllPages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 230; i++ {
		mustCreate(t, svc, services.CreateAssetRequest{Name: fmt.Sprintf("asset %03d", i)})
	}

	all, err := svc.ExportAssets(ctx, &models.ListOptions{Owner: owner, Sort: models.SortByName, Order: models.SortAsc})
	require.NoError(t, err)
	require.Len(t, all, 230)
	assert.Equal(t, "asset 000", all[0].Name)
	assert.Equal(t, "asset 229", all[229].Name)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  *time.Time
	}{
		{input: "", want: nil},
		{input: "garbage", want: nil},
		{input: "2024-02-30", want: nil},
		{input: "2024-02-03", want: ptrTime(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))},
		{input: "2024-02-03T10:30", want: ptrTime(time.Date(2024, 2, 3, 10, 30, 0, 0, time.UTC))},
		{input: "2024-02-03T10:30:00+02:00", want: ptrTime(time.Date(2024, 2, 3, 8, 30, 0, 0, time.UTC))},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDate(tt.input))
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrString(s string) *string     { return &s }
