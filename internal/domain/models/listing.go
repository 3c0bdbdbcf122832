package models

import (
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SortField is a server-side sort key.
type SortField string

const (
	SortByName      SortField = "name"
	SortByCreatedAt SortField = "createdAt"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DeletionState selects active or trashed assets.
type DeletionState int

const (
	Active DeletionState = iota
	Trashed
)

func (s DeletionState) String() string {
	if s == Trashed {
		return "trashed"
	}
	return "active"
}

// Default list configuration values
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps (Page-1)*PageSize inside an int32 offset.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// ListOptions configures a paged asset listing. Owner is always required;
// every query is scoped to it.
type ListOptions struct {
	Owner    string
	State    DeletionState
	Query    string
	Status   AssetStatus // empty = any status
	Sort     SortField
	Order    SortOrder
	Page     int
	PageSize int
}

// ParseSortField maps a query value to a sort key. Anything unrecognized
// falls back to creation time.
func ParseSortField(s string) SortField {
	switch s {
	case "name":
		return SortByName
	default:
		return SortByCreatedAt
	}
}

// ParseSortOrder maps a query value to a direction, descending unless "asc".
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, "asc") {
		return SortAsc
	}
	return SortDesc
}

// ParseStatusFilter treats "", "All" and "all" as no filter.
func ParseStatusFilter(s string) AssetStatus {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return ""
	}
	return AssetStatus(s)
}

// ApplyDefaults fills in defaults and clamps paging to valid ranges.
func (o *ListOptions) ApplyDefaults() {
	o.Query = strings.TrimSpace(o.Query)
	o.Status = ParseStatusFilter(string(o.Status))
	if o.Sort == "" {
		o.Sort = SortByCreatedAt
	}
	if o.Order == "" {
		o.Order = SortDesc
	}
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Page > MaxPage {
		o.Page = MaxPage
	}
	if o.PageSize == 0 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize < 1 {
		o.PageSize = 1
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
}

// Validate checks the options after ApplyDefaults.
func (o *ListOptions) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Owner, validation.Required),
		validation.Field(&o.Sort, validation.In(SortByName, SortByCreatedAt)),
		validation.Field(&o.Order, validation.In(SortAsc, SortDesc)),
		validation.Field(&o.Status, validation.In(StatusInStock, StatusAssigned, StatusRepair, StatusRetired)),
		validation.Field(&o.Page, validation.Min(1), validation.Max(MaxPage)),
		validation.Field(&o.PageSize, validation.Min(1), validation.Max(MaxPageSize)),
	)
}

// Skip is the number of records before the requested page.
func (o *ListOptions) Skip() int {
	return (o.Page - 1) * o.PageSize
}

// AssetPage is one page of a listing plus the full matching count.
type AssetPage struct {
	Items    []Asset `json:"items"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// NewAssetPage builds a page, never returning a nil item slice.
func NewAssetPage(items []Asset, total int64, opts *ListOptions) *AssetPage {
	if items == nil {
		items = []Asset{}
	}
	return &AssetPage{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.PageSize,
	}
}

// BulkAction selects what a bulk request does to its ids.
type BulkAction string

const (
	BulkDelete  BulkAction = "delete"
	BulkRestore BulkAction = "restore"
	BulkDestroy BulkAction = "destroy"
)

// Valid reports whether a is a known action.
func (a BulkAction) Valid() bool {
	switch a {
	case BulkDelete, BulkRestore, BulkDestroy:
		return true
	}
	return false
}
