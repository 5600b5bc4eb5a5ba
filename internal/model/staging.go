package model

import (
	"github.com/shopspring/decimal"
)

// StagedRow is one validated spreadsheet row waiting in quarantine for
// the operator to confirm or discard it.  Rows live in the
// `data_imported` table and are scoped by the uploading user's id: a
// user has at most one in-flight staged import at a time, and every
// pipeline operation (preview, edit, cancel, confirm) addresses the
// whole set through that id.
//
// Fields:
//  ID              – primary key assigned by the staging store.
//  SheetName       – workbook sheet the row came from.
//  Name            – trimmed service name, never empty.
//  Description     – trimmed description, nil when the cell was blank.
//  DurationMinutes – positive duration in minutes.
//  Price           – non-negative decimal price.
//  State           – active flag for the future catalog entry.
//  UserID          – owning principal.
type StagedRow struct {
	ID              uint64          `json:"id_import"`        // data_imported.id_import
	SheetName       string          `json:"sheet_name"`       // data_imported.sheet_name
	Name            string          `json:"name"`             // data_imported.name
	Description     *string         `json:"description"`      // data_imported.description (nullable)
	DurationMinutes int             `json:"duration_minutes"` // data_imported.duration_minutes
	Price           decimal.Decimal `json:"price"`            // data_imported.price
	State           bool            `json:"state"`            // data_imported.state
	UserID          uint64          `json:"user_id"`          // data_imported.user_id
}

// StagingError records one rejected row or sheet in the `data_errors`
// table.  RowNum is 0 for sheet-level failures (missing columns,
// timeout) and the 1-based spreadsheet row otherwise, where the first
// data row is reported as row 2 to account for the header.
type StagingError struct {
	ID        uint64 `json:"id_error"`      // data_errors.id_error
	SheetName string `json:"sheet_name"`    // data_errors.sheet_name
	RowNum    int    `json:"row_num"`       // data_errors.row_num (0 = sheet-level)
	Message   string `json:"error_message"` // data_errors.error_message
	UserID    uint64 `json:"user_id"`       // data_errors.user_id
}

// StagedRowPatch is the closed set of fields an operator may change on
// a staged row before confirming.  nil pointers mean "leave untouched".
// A provided empty description is persisted as NULL, mirroring how the
// orchestrator stages blank cells.
type StagedRowPatch struct {
	Name            *string
	Description     *string
	DurationMinutes *int
	Price           *decimal.Decimal
	State           *bool
}

// IsZero reports whether the patch carries no field at all.
func (p StagedRowPatch) IsZero() bool {
	return p.Name == nil && p.Description == nil && p.DurationMinutes == nil &&
		p.Price == nil && p.State == nil
}

// SheetPreview groups the staged rows and errors of a single sheet for
// the review surface, together with per-sheet counts.
type SheetPreview struct {
	Data   []StagedRow    `json:"data"`
	Errors []StagingError `json:"errors"`
	Stats  SheetStats     `json:"stats"`
}

// SheetStats carries the per-sheet counters shown in the preview.
type SheetStats struct {
	TotalRows  int `json:"total_rows"`
	ErrorCount int `json:"error_count"`
}

// StagingPreview is the full review payload: every sheet that has rows
// or errors staged for the user, plus an aggregate summary.
type StagingPreview struct {
	Sheets  map[string]SheetPreview `json:"sheets"`
	Summary StagingSummary          `json:"summary"`
}

// StagingSummary aggregates counts across all staged sheets.
// HasInvalidSheets is true when at least one sheet produced only
// errors and no staged rows.
type StagingSummary struct {
	TotalSheets      int  `json:"total_sheets"`
	TotalRows        int  `json:"total_rows"`
	TotalErrors      int  `json:"total_errors"`
	HasInvalidSheets bool `json:"has_invalid_sheets"`
}
