// Package listview holds the client-side state of the asset table: filters,
// sort column, paging and row selection. It serializes to the same query
// string the API accepts, so a State can be shared as a link.
package listview

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

// Column is a sortable table column.
type Column string

const (
	ColumnCreated Column = "created"
	ColumnName    Column = "name"
	ColumnType    Column = "type"
	ColumnStatus  Column = "status"
)

func parseColumn(s string) Column {
	switch c := Column(s); c {
	case ColumnName, ColumnType, ColumnStatus:
		return c
	}
	return ColumnCreated
}

// State is the table's filter, sort and paging state.
type State struct {
	Query    string
	Status   models.AssetStatus // empty means all
	Sort     Column
	Order    models.SortOrder
	Page     int
	PageSize int
}

// DefaultState is newest first, page 1.
func DefaultState() State {
	return State{
		Sort:     ColumnCreated,
		Order:    models.SortDesc,
		Page:     models.DefaultPage,
		PageSize: models.DefaultPageSize,
	}
}

// FromValues reads a State from query parameters, falling back to defaults
// for anything missing or malformed.
func FromValues(v url.Values) State {
	s := DefaultState()
	s.Query = v.Get("q")
	s.Status = models.ParseStatusFilter(v.Get("status"))
	s.Sort = parseColumn(v.Get("sort"))
	if v.Has("order") {
		s.Order = models.ParseSortOrder(v.Get("order"))
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n >= 1 {
		s.Page = n
	}
	if n, err := strconv.Atoi(v.Get("pageSize")); err == nil && n >= 1 {
		s.PageSize = min(n, models.MaxPageSize)
	}
	return s
}

// Values encodes the state, omitting parameters that hold their default.
// The sort column is sent as-is; the server maps what it cannot sort by.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Query != "" {
		v.Set("q", s.Query)
	}
	if s.Status != "" {
		v.Set("status", string(s.Status))
	}
	if s.Sort != "" && s.Sort != ColumnCreated {
		v.Set("sort", string(s.Sort))
	}
	if s.Order != "" && s.Order != models.SortDesc {
		v.Set("order", string(s.Order))
	}
	if s.Page > 1 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize != 0 && s.PageSize != models.DefaultPageSize {
		v.Set("pageSize", strconv.Itoa(s.PageSize))
	}
	return v
}

// SetSearch changes the free-text query. Any filter change returns to page 1.
// It reports whether the state changed.
func (s *State) SetSearch(q string) bool {
	if s.Query == q {
		return false
	}
	s.Query = q
	s.Page = 1
	return true
}

// SetStatus changes the status filter; "all" clears it.
func (s *State) SetStatus(status string) bool {
	next := models.ParseStatusFilter(status)
	if s.Status == next {
		return false
	}
	s.Status = next
	s.Page = 1
	return true
}

// ToggleSort handles a click on a column header. Clicking the current
// column flips the direction; a new column starts descending for created
// and ascending otherwise.
func (s *State) ToggleSort(col Column) {
	switch {
	case s.Sort == col && s.Order == models.SortAsc:
		s.Order = models.SortDesc
	case s.Sort == col:
		s.Order = models.SortAsc
	case col == ColumnCreated:
		s.Order = models.SortDesc
	default:
		s.Order = models.SortAsc
	}
	s.Sort = col
	s.Page = 1
}

// SortIndicator is the header glyph for col.
func (s State) SortIndicator(col Column) string {
	switch {
	case s.Sort != col:
		return "↕"
	case s.Order == models.SortAsc:
		return "▲"
	default:
		return "▼"
	}
}

// ServerSort is the sort the API applies. Only name is sortable on the
// server; other columns fetch by creation time and type/status ordering is
// handled on the client where needed.
func (s State) ServerSort() (models.SortField, models.SortOrder) {
	order := s.Order
	if order == "" {
		order = models.SortDesc
	}
	if s.Sort == ColumnName {
		return models.SortByName, order
	}
	return models.SortByCreatedAt, order
}

// TotalPages is at least 1.
func (s State) TotalPages(total int64) int {
	size := int64(s.PageSize)
	if size < 1 {
		size = models.DefaultPageSize
	}
	pages := int((total + size - 1) / size)
	return max(pages, 1)
}

// GoPage moves to page p clamped to [1, TotalPages(total)] and reports
// whether the page changed.
func (s *State) GoPage(p int, total int64) bool {
	p = min(max(p, 1), s.TotalPages(total))
	if p == s.Page {
		return false
	}
	s.Page = p
	return true
}

// Summary is a one-line description of the active filters.
func (s State) Summary() string {
	var parts []string
	if s.Query != "" {
		parts = append(parts, strconv.Quote(s.Query))
	}
	if s.Status != "" {
		parts = append(parts, "status="+string(s.Status))
	}
	parts = append(parts, "sort="+string(s.Sort)+" "+string(s.Order))
	return strings.Join(parts, ", ")
}
