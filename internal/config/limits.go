package config

const (
	// MaxAssetNameLength is the maximum length for asset names. Names are
	// printed on labels, so they stay short.
	MaxAssetNameLength = 200

	// MaxShortTextLength bounds type, serial number, location and assignee.
	MaxShortTextLength = 500

	// MaxLongTextLength bounds description and notes.
	MaxLongTextLength = 5000

	// MaxBulkIDs is the largest id list a bulk request may carry.
	MaxBulkIDs = 500

	// MaxExportRows caps spreadsheet and CSV exports.
	MaxExportRows = 10000

	// MaxLabelsPerPrint caps one bulk label print job.
	MaxLabelsPerPrint = 200
)
