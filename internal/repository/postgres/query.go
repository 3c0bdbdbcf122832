package postgres

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

// assetColumns is the select list, in scan order.
var assetColumns = []string{
	"id", "name", "asset_type", "status",
	"serial_number", "location", "assigned_to", "description", "notes",
	"purchase_date", "warranty_expiry",
	"asset_tag", "created_by_email", "deleted_at", "created_at", "updated_at",
}

// searchColumns are matched by free-text queries.
var searchColumns = []string{"name", "serial_number", "location", "assigned_to", "asset_type", "status"}

var fieldColumns = map[models.AssetField]string{
	models.FieldName:           "name",
	models.FieldAssetType:      "asset_type",
	models.FieldStatus:         "status",
	models.FieldSerialNumber:   "serial_number",
	models.FieldLocation:       "location",
	models.FieldAssignedTo:     "assigned_to",
	models.FieldDescription:    "description",
	models.FieldNotes:          "notes",
	models.FieldPurchaseDate:   "purchase_date",
	models.FieldWarrantyExpiry: "warranty_expiry",
}

// likeEscaper escapes LIKE wildcards so user text matches literally.
// Backslash is the default LIKE escape character in PostgreSQL.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func stateCondition(state models.DeletionState) sq.Sqlizer {
	if state == models.Trashed {
		return sq.NotEq{"deleted_at": nil}
	}
	return sq.Eq{"deleted_at": nil}
}

// listWhere is shared by the page query and the count query.
func listWhere(opts *models.ListOptions) sq.And {
	where := sq.And{
		sq.Eq{"created_by_email": opts.Owner},
		stateCondition(opts.State),
	}
	if opts.Status != "" {
		where = append(where, sq.Eq{"status": string(opts.Status)})
	}
	if opts.Query != "" {
		pattern := containsPattern(opts.Query)
		or := make(sq.Or, 0, len(searchColumns))
		for _, col := range searchColumns {
			or = append(or, sq.ILike{col: pattern})
		}
		where = append(where, or)
	}
	return where
}

func listOrderBy(opts *models.ListOptions) []string {
	col := "created_at"
	if opts.Sort == models.SortByName {
		col = "name"
	}
	dir := "DESC"
	if opts.Order == models.SortAsc {
		dir = "ASC"
	}
	return []string{col + " " + dir, "id ASC"}
}

func selectPage(table string, opts *models.ListOptions) sq.SelectBuilder {
	return psql.Select(assetColumns...).
		From(table).
		Where(listWhere(opts)).
		OrderBy(listOrderBy(opts)...).
		Limit(uint64(opts.PageSize)).
		Offset(uint64(opts.Skip()))
}

func selectCount(table string, opts *models.ListOptions) sq.SelectBuilder {
	return psql.Select("COUNT(*)").From(table).Where(listWhere(opts))
}

// scopedWhere targets ids owned by owner in the given state.
func scopedWhere(ids []string, owner string, state models.DeletionState) sq.And {
	return sq.And{
		sq.Eq{"id": ids},
		sq.Eq{"created_by_email": owner},
		stateCondition(state),
	}
}

// updateFromPatch builds a conditional UPDATE ... RETURNING for one asset.
func updateFromPatch(table, id, owner string, patch models.AssetPatch) sq.UpdateBuilder {
	b := psql.Update(table)
	for _, field := range models.UpdatableFields {
		col := fieldColumns[field]
		if field.IsDate() {
			if t, ok := patch.Date(field); ok {
				b = b.Set(col, t)
			}
			continue
		}
		if s, ok := patch.Text(field); ok {
			b = b.Set(col, s)
		}
	}
	return b.
		Set("updated_at", sq.Expr("NOW()")).
		Where(scopedWhere([]string{id}, owner, models.Active)).
		Suffix("RETURNING " + strings.Join(assetColumns, ", "))
}

// validUUIDs drops ids that are not uuids. They cannot match a row.
func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}
