package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook assembles an in-memory XLSX with one sheet per entry.
func buildWorkbook(t *testing.T, sheets map[string][][]any, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, cells := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &cells))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseWorkbookReadsSheetsInOrder(t *testing.T) {
	content := buildWorkbook(t, map[string][][]any{
		"Cortes": {
			{"name", "description", "duration_minutes", "price", "state"},
			{"Corte clásico", "Con tijera", "30", "15.50", "1"},
		},
		"Tintes": {
			{"name", "description", "duration_minutes", "price", "state"},
			{"Tinte completo", "", "90", "45", "1"},
		},
	}, []string{"Cortes", "Tintes"})

	wb, err := ParseWorkbook(content, "catalogo.xlsx")
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "Cortes", wb.Sheets[0].Name)
	assert.Equal(t, "Tintes", wb.Sheets[1].Name)
	assert.Equal(t, []string{"name", "description", "duration_minutes", "price", "state"}, wb.Sheets[0].Columns)

	require.Len(t, wb.Sheets[0].Rows, 1)
	assert.Equal(t, "Corte clásico", wb.Sheets[0].Rows[0]["name"])
	assert.Equal(t, "15.50", wb.Sheets[0].Rows[0]["price"])
}

func TestParseWorkbookTrimsHeadersAndPadsShortRows(t *testing.T) {
	content := buildWorkbook(t, map[string][][]any{
		"Servicios": {
			{" name ", "description", "duration_minutes", "price", "state "},
			{"Manicura"}, // trailing cells absent
		},
	}, []string{"Servicios"})

	wb, err := ParseWorkbook(content, "catalogo.xlsx")
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	sheet := wb.Sheets[0]
	assert.Equal(t, []string{"name", "description", "duration_minutes", "price", "state"}, sheet.Columns)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "Manicura", sheet.Rows[0]["name"])
	assert.Equal(t, "", sheet.Rows[0]["price"])
	assert.Equal(t, "", sheet.Rows[0]["state"])
}

func TestParseWorkbookRejectsGarbage(t *testing.T) {
	_, err := ParseWorkbook([]byte("definitivamente no es un xlsx"), "roto.xlsx")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "roto.xlsx", perr.Filename)
	assert.Contains(t, perr.Error(), "no se pudo leer el archivo roto.xlsx")
}
