package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is a worksheet fixture, rows are written from A1.
type Sheet struct {
	Name string
	Rows [][]string
}

// WriteWorkbook creates an xlsx file at path with the given sheets, in
// order.
func WriteWorkbook(t testing.TB, path string, sheets ...Sheet) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet.Name))
		} else {
			_, err := f.NewSheet(sheet.Name)
			require.NoError(t, err)
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(sheet.Name, cell, &values))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

// WriteIdentifiers creates an input workbook with an IndexNumber column.
func WriteIdentifiers(t testing.TB, path, sheet string, ids ...string) {
	t.Helper()
	rows := [][]string{{"IndexNumber"}}
	for _, id := range ids {
		rows = append(rows, []string{id})
	}
	WriteWorkbook(t, path, Sheet{Name: sheet, Rows: rows})
}

// ReadSheet returns the rows of a sheet, every row padded to width when
// width > 0.
func ReadSheet(t testing.TB, path, sheet string, width int) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	if width <= 0 {
		return rows
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}

// SheetList returns the sheet names of the workbook at path.
func SheetList(t testing.TB, path string) []string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	return f.GetSheetList()
}
