package importer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook is the in-memory form of one uploaded spreadsheet: its
// sheets in workbook order, each with the header row and the data rows
// below it.  Parsing is pure; the only input is the byte buffer.
type Workbook struct {
	Filename string
	Sheets   []Sheet
}

// Sheet is one named tabular unit.  Columns holds the trimmed header
// cells in order; Rows maps each header to the raw cell text, with
// missing trailing cells present as empty strings so validators can
// treat short rows like blank cells.
type Sheet struct {
	Name    string
	Columns []string
	Rows    []RawRow
}

// RawRow maps a column name to the raw cell value as text.
type RawRow map[string]string

// ParseError wraps any failure to decode the uploaded bytes as a
// workbook.  It aborts the whole import session: nothing is staged
// from a file that cannot be read.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no se pudo leer el archivo %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseWorkbook decodes an XLSX workbook from raw bytes.  Sheets keep
// workbook order.  A sheet without a header row comes back with empty
// Columns, which the validator then reports as missing every required
// column.
func ParseWorkbook(content []byte, filename string) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	defer f.Close()

	wb := &Workbook{Filename: filename}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, &ParseError{Filename: filename, Err: err}
		}
		sheet := Sheet{Name: name}
		if len(rows) > 0 {
			for _, h := range rows[0] {
				sheet.Columns = append(sheet.Columns, strings.TrimSpace(h))
			}
			for _, cells := range rows[1:] {
				row := make(RawRow, len(sheet.Columns))
				for i, col := range sheet.Columns {
					if col == "" {
						continue
					}
					if i < len(cells) {
						row[col] = cells[i]
					} else {
						row[col] = ""
					}
				}
				sheet.Rows = append(sheet.Rows, row)
			}
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}
