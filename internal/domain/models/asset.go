package models

import (
	"time"
)

// AssetStatus is the lifecycle state of a physical asset. It is unrelated to
// soft deletion, which is tracked by DeletedAt.
type AssetStatus string

const (
	StatusInStock  AssetStatus = "In Stock"
	StatusAssigned AssetStatus = "Assigned"
	StatusRepair   AssetStatus = "Repair"
	StatusRetired  AssetStatus = "Retired"
)

// DefaultAssetType is used when a create request names no type.
const DefaultAssetType = "Laptop"

// AssetStatuses lists every status in display order.
var AssetStatuses = []AssetStatus{StatusInStock, StatusAssigned, StatusRepair, StatusRetired}

// statusRank is the semantic order used when sorting by status.
var statusRank = map[AssetStatus]int{
	StatusInStock:  0,
	StatusAssigned: 1,
	StatusRepair:   2,
	StatusRetired:  3,
}

// Rank returns the position of s in the semantic status order. Unknown
// statuses rank after all known ones.
func (s AssetStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return 99
}

// Valid reports whether s is one of the known statuses.
func (s AssetStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// StatusStrings returns the known statuses as plain strings, for validation rules.
func StatusStrings() []interface{} {
	out := make([]interface{}, len(AssetStatuses))
	for i, s := range AssetStatuses {
		out[i] = string(s)
	}
	return out
}

type Asset struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	AssetType      string      `json:"assetType"`
	Status         AssetStatus `json:"status"`
	SerialNumber   *string     `json:"serialNumber,omitempty"`
	Location       *string     `json:"location,omitempty"`
	AssignedTo     *string     `json:"assignedTo,omitempty"`
	Description    *string     `json:"description,omitempty"`
	Notes          *string     `json:"notes,omitempty"`
	PurchaseDate   *time.Time  `json:"purchaseDate,omitempty"`
	WarrantyExpiry *time.Time  `json:"warrantyExpiry,omitempty"`
	AssetTag       string      `json:"assetTag"`
	CreatedByEmail string      `json:"createdByEmail"`
	DeletedAt      *time.Time  `json:"deletedAt"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// IsTrashed reports whether the asset has been soft-deleted.
func (a *Asset) IsTrashed() bool {
	return a.DeletedAt != nil
}

// MutationResult is returned by lifecycle operations that act on ids.
type MutationResult struct {
	OK       bool  `json:"ok"`
	Affected int64 `json:"affected"`
}
