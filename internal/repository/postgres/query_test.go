package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "finance", want: "%finance%"},
		{name: "percent", input: "50%", want: `%50\%%`},
		{name: "underscore", input: "a_b", want: `%a\_b%`},
		{name: "backslash", input: `c:\tmp`, want: `%c:\\tmp%`},
		{name: "regex metacharacters are literal already", input: "a.b*", want: "%a.b*%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.input))
		})
	}
}

func TestSelectPage(t *testing.T) {
	opts := &models.ListOptions{
		Owner:    "owner@example.com",
		Query:    "dell",
		Status:   models.StatusAssigned,
		Sort:     models.SortByName,
		Order:    models.SortAsc,
		Page:     2,
		PageSize: 10,
	}

	sql, args, err := selectPage("test_assets", opts).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM test_assets")
	assert.Contains(t, sql, "created_by_email = $1")
	assert.Contains(t, sql, "deleted_at IS NULL")
	assert.Contains(t, sql, "status = $2")
	assert.Contains(t, sql, "name ILIKE $3")
	assert.Contains(t, sql, "status ILIKE $8")
	assert.Contains(t, sql, "ORDER BY name ASC, id ASC")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Contains(t, sql, "OFFSET 10")

	require.Len(t, args, 8)
	assert.Equal(t, "owner@example.com", args[0])
	assert.Equal(t, "Assigned", args[1])
	for _, a := range args[2:] {
		assert.Equal(t, "%dell%", a)
	}
}

func TestSelectCount_Trashed(t *testing.T) {
	opts := &models.ListOptions{Owner: "owner@example.com", State: models.Trashed}

	sql, args, err := selectCount("dev_assets", opts).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "SELECT COUNT(*) FROM dev_assets")
	assert.Contains(t, sql, "deleted_at IS NOT NULL")
	assert.NotContains(t, sql, "ILIKE")
	assert.Equal(t, []interface{}{"owner@example.com"}, args)
}

func TestListOrderBy_DefaultsToCreatedDesc(t *testing.T) {
	opts := &models.ListOptions{}
	opts.ApplyDefaults()
	assert.Equal(t, []string{"created_at DESC", "id ASC"}, listOrderBy(opts))
}

func TestUpdateFromPatch(t *testing.T) {
	id := uuid.NewString()
	repair := "Repair"
	bought := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	patch := models.AssetPatch{}
	patch.SetText(models.FieldStatus, &repair)
	patch.SetText(models.FieldNotes, nil)
	patch.SetDate(models.FieldPurchaseDate, &bought)

	sql, args, err := updateFromPatch("dev_assets", id, "owner@example.com", patch).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "UPDATE dev_assets SET status = $1, notes = $2, purchase_date = $3, updated_at = NOW()")
	assert.Contains(t, sql, "id IN ($4)")
	assert.Contains(t, sql, "created_by_email = $5")
	assert.Contains(t, sql, "deleted_at IS NULL")
	assert.Contains(t, sql, "RETURNING id, name, asset_type")
	assert.NotContains(t, sql, "name = ")

	require.Len(t, args, 5)
	assert.Equal(t, &repair, args[0])
	assert.Nil(t, args[1])
	assert.Equal(t, &bought, args[2])
}

func TestValidUUIDs(t *testing.T) {
	good := uuid.NewString()
	assert.Equal(t, []string{good}, validUUIDs([]string{"abc", good, ""}))
	assert.Empty(t, validUUIDs(nil))
}
