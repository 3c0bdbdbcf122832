package models

import (
	"time"
)

// AssetField names an updatable asset attribute, using its wire name.
type AssetField string

const (
	FieldName           AssetField = "name"
	FieldAssetType      AssetField = "assetType"
	FieldStatus         AssetField = "status"
	FieldSerialNumber   AssetField = "serialNumber"
	FieldLocation       AssetField = "location"
	FieldAssignedTo     AssetField = "assignedTo"
	FieldDescription    AssetField = "description"
	FieldNotes          AssetField = "notes"
	FieldPurchaseDate   AssetField = "purchaseDate"
	FieldWarrantyExpiry AssetField = "warrantyExpiry"
)

// UpdatableFields lists every field a patch may touch.
var UpdatableFields = []AssetField{
	FieldName, FieldAssetType, FieldStatus,
	FieldSerialNumber, FieldLocation, FieldAssignedTo, FieldDescription, FieldNotes,
	FieldPurchaseDate, FieldWarrantyExpiry,
}

// IsDate reports whether the field holds a date.
func (f AssetField) IsDate() bool {
	return f == FieldPurchaseDate || f == FieldWarrantyExpiry
}

// Clearable reports whether the field may be removed by a patch.
func (f AssetField) Clearable() bool {
	switch f {
	case FieldName, FieldAssetType, FieldStatus:
		return false
	}
	return true
}

// AssetPatch is a partial update keyed by field. A field missing from the map
// is left unchanged; a field mapped to nil is cleared.
//
// Date fields carry *time.Time values, every other field carries *string.
type AssetPatch map[AssetField]any

// SetText records a new value for a text field. nil clears it.
func (p AssetPatch) SetText(f AssetField, v *string) {
	if v == nil {
		p[f] = (*string)(nil)
		return
	}
	s := *v
	p[f] = &s
}

// SetDate records a new value for a date field. nil clears it.
func (p AssetPatch) SetDate(f AssetField, v *time.Time) {
	if v == nil {
		p[f] = (*time.Time)(nil)
		return
	}
	t := *v
	p[f] = &t
}

// Text returns the text value for f and whether f is present.
func (p AssetPatch) Text(f AssetField) (*string, bool) {
	v, ok := p[f]
	if !ok {
		return nil, false
	}
	s, _ := v.(*string)
	return s, true
}

// Date returns the date value for f and whether f is present.
func (p AssetPatch) Date(f AssetField) (*time.Time, bool) {
	v, ok := p[f]
	if !ok {
		return nil, false
	}
	t, _ := v.(*time.Time)
	return t, true
}

// Apply copies every present field onto a. It does not touch UpdatedAt.
func (p AssetPatch) Apply(a *Asset) {
	for f := range p {
		if f.IsDate() {
			t, _ := p.Date(f)
			switch f {
			case FieldPurchaseDate:
				a.PurchaseDate = t
			case FieldWarrantyExpiry:
				a.WarrantyExpiry = t
			}
			continue
		}

		s, _ := p.Text(f)
		switch f {
		case FieldName:
			if s != nil {
				a.Name = *s
			}
		case FieldAssetType:
			if s != nil {
				a.AssetType = *s
			}
		case FieldStatus:
			if s != nil {
				a.Status = AssetStatus(*s)
			}
		case FieldSerialNumber:
			a.SerialNumber = s
		case FieldLocation:
			a.Location = s
		case FieldAssignedTo:
			a.AssignedTo = s
		case FieldDescription:
			a.Description = s
		case FieldNotes:
			a.Notes = s
		}
	}
}
