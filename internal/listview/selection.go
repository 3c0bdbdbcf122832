package listview

import "github.com/msb418/it-asset-tracker/internal/domain/models"

// Selection tracks checked rows. Only ids of currently displayed rows count,
// so rows that left the page through filtering are never acted on.
type Selection struct {
	checked map[string]bool
}

func NewSelection() *Selection {
	return &Selection{checked: make(map[string]bool)}
}

// Toggle flips one row.
func (s *Selection) Toggle(id string) {
	if s.checked[id] {
		delete(s.checked, id)
		return
	}
	s.checked[id] = true
}

func (s *Selection) IsSelected(id string) bool {
	return s.checked[id]
}

// AllSelected reports whether rows is non-empty and every row is checked.
func (s *Selection) AllSelected(rows []models.Asset) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if !s.checked[r.ID] {
			return false
		}
	}
	return true
}

// ToggleAll clears everything when all rows are checked, otherwise checks
// exactly the displayed rows.
func (s *Selection) ToggleAll(rows []models.Asset) {
	if s.AllSelected(rows) {
		s.Clear()
		return
	}
	s.checked = make(map[string]bool, len(rows))
	for _, r := range rows {
		s.checked[r.ID] = true
	}
}

// IDs returns the checked ids among rows, in display order.
func (s *Selection) IDs(rows []models.Asset) []string {
	ids := make([]string, 0, len(s.checked))
	for _, r := range rows {
		if s.checked[r.ID] {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Clear empties the selection, as after a bulk action.
func (s *Selection) Clear() {
	s.checked = make(map[string]bool)
}
