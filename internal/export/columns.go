package export

import (
	"time"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
)

// Headers are the export columns, in order.
var Headers = []string{
	"Asset Tag",
	"Name",
	"Type",
	"Status",
	"Serial Number",
	"Location",
	"Assigned To",
	"Purchase Date",
	"Warranty Expiry",
	"Description",
	"Notes",
	"Created At",
	"Updated At",
	"ID",
}

// Row flattens an asset into column values matching Headers.
func Row(a *models.Asset) []string {
	return []string{
		a.AssetTag,
		a.Name,
		a.AssetType,
		string(a.Status),
		text(a.SerialNumber),
		text(a.Location),
		text(a.AssignedTo),
		date(a.PurchaseDate),
		date(a.WarrantyExpiry),
		text(a.Description),
		text(a.Notes),
		a.CreatedAt.UTC().Format(time.RFC3339),
		a.UpdatedAt.UTC().Format(time.RFC3339),
		a.ID,
	}
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
