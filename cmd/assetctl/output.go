package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/listview"
)

const dateLayout = "2006-01-02"

// printAssets writes rows as a table. When sel is non-nil a checkbox column
// and row numbers are added for the interactive browser.
func printAssets(w io.Writer, rows []models.Asset, st listview.State, sel *listview.Selection) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if sel != nil {
		box := "[ ]"
		if sel.AllSelected(rows) {
			box = "[x]"
		}
		fmt.Fprintf(tw, "%s\t#\t", box)
	}
	fmt.Fprintf(tw, "TAG\tNAME %s\tTYPE %s\tSTATUS %s\tLOCATION\tASSIGNED TO\tCREATED %s\n",
		st.SortIndicator(listview.ColumnName),
		st.SortIndicator(listview.ColumnType),
		st.SortIndicator(listview.ColumnStatus),
		st.SortIndicator(listview.ColumnCreated),
	)

	if len(rows) == 0 {
		fmt.Fprintln(tw, "No assets found.")
		return
	}

	for i, a := range rows {
		if sel != nil {
			box := "[ ]"
			if sel.IsSelected(a.ID) {
				box = "[x]"
			}
			fmt.Fprintf(tw, "%s\t%d\t", box, i+1)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			dash(a.AssetTag), a.Name, dash(a.AssetType), a.Status,
			dashPtr(a.Location), dashPtr(a.AssignedTo), a.CreatedAt.Local().Format(dateLayout))
	}
}

func printFooter(w io.Writer, st listview.State, total int64, trash bool) {
	where := "assets"
	if trash {
		where = "trashed assets"
	}
	fmt.Fprintf(w, "Page %d of %d, %d %s (%s)\n", st.Page, st.TotalPages(total), total, where, st.Summary())
}

// printAsset writes every field of one asset.
func printAsset(w io.Writer, a *models.Asset) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	row := func(k, v string) { fmt.Fprintf(tw, "%s:\t%s\n", k, v) }
	row("ID", a.ID)
	row("Asset Tag", dash(a.AssetTag))
	row("Name", a.Name)
	row("Type", dash(a.AssetType))
	row("Status", string(a.Status))
	row("Serial Number", dashPtr(a.SerialNumber))
	row("Location", dashPtr(a.Location))
	row("Assigned To", dashPtr(a.AssignedTo))
	row("Purchase Date", dashDate(a.PurchaseDate))
	row("Warranty Expiry", dashDate(a.WarrantyExpiry))
	row("Description", dashPtr(a.Description))
	row("Notes", dashPtr(a.Notes))
	row("Created", a.CreatedAt.Local().Format(time.RFC3339))
	row("Updated", a.UpdatedAt.Local().Format(time.RFC3339))
	if a.DeletedAt != nil {
		row("Deleted", a.DeletedAt.Local().Format(time.RFC3339))
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func dashPtr(s *string) string {
	if s == nil {
		return "-"
	}
	return dash(*s)
}

func dashDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}
