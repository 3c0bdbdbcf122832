package listview

import (
	"sort"
	"strings"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

// DisplayRows returns rows in display order. When sorting by status, the
// page is re-sorted by status rank (In Stock, Assigned, Repair, Retired,
// then unknown) with name as the tie-break, both in the selected direction.
// Other columns keep the server's order.
func DisplayRows(rows []models.Asset, s State) []models.Asset {
	if s.Sort != ColumnStatus {
		return rows
	}

	dir := 1
	if s.Order == models.SortDesc {
		dir = -1
	}

	out := make([]models.Asset, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if d := (out[i].Status.Rank() - out[j].Status.Rank()) * dir; d != 0 {
			return d < 0
		}
		return compareNames(out[i].Name, out[j].Name)*dir < 0
	})
	return out
}

func compareNames(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
