package workbook

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"webcivil-assist/lib/caserecord"
	"webcivil-assist/lib/testutil"

	"github.com/stretchr/testify/require"
)

const (
	inputSheet  = "I. Input Sheet"
	outputSheet = "II. Output Sheet"
)

func TestColumn(t *testing.T) {
	require.Equal(t, 1, Column([]string{"Name", "Case Number"}))
	require.Equal(t, 2, Column([]string{"Index", "Other", " IndexNumber "}))
	require.Equal(t, 0, Column([]string{"Docket", "Case Number (old)"}))
	require.Equal(t, 0, Column(nil))
}

func TestIdentifiersFromRows(t *testing.T) {
	rows := [][]string{
		{"Name", "Index #:"},
		{"a", " 12345/2020 "},
		{"b"},
		{"c", ""},
		{"d", "   "},
		{"e", "67890/2021"},
	}
	require.Equal(t, []string{"12345/2020", "67890/2021"}, Identifiers(rows))
	require.Nil(t, Identifiers(nil))
	require.Nil(t, Identifiers([][]string{{"IndexNumber"}}))
}

func TestSourceHeaderMatch(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	named := filepath.Join(dir, "named.xlsx")
	testutil.WriteWorkbook(t, named, testutil.Sheet{
		Name: inputSheet,
		Rows: [][]string{
			{"Plaintiff", "Case Number"},
			{"Doe", "A1"},
			{"Roe", "A2"},
		},
	})

	ids, err := NewSource(named, inputSheet).Identifiers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2"}, ids)

	unnamed := filepath.Join(dir, "unnamed.xlsx")
	testutil.WriteWorkbook(t, unnamed,
		testutil.Sheet{Name: "Other", Rows: [][]string{{"ignored"}}},
		testutil.Sheet{
			Name: inputSheet,
			Rows: [][]string{
				{"Docket", "Plaintiff"},
				{"B1", "Doe"},
				{"", "Roe"},
				{"B2", "Poe"},
			},
		},
	)

	ids, err = NewSource(unnamed, inputSheet).Identifiers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"B1", "B2"}, ids)

	// empty sheet name means the first sheet
	ids, err = NewSource(unnamed, "").Identifiers(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestSourceErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	path := filepath.Join(dir, "input.xlsx")
	testutil.WriteWorkbook(t, path, testutil.Sheet{Name: inputSheet})

	_, err := NewSource(path, "Missing").Identifiers(ctx)
	require.ErrorIs(t, err, ErrSheetNotFound)

	_, err = NewSource(path, inputSheet).Identifiers(ctx)
	require.ErrorIs(t, err, ErrEmptySheet)

	_, err = NewSource(filepath.Join(dir, "missing.xlsx"), inputSheet).Identifiers(ctx)
	require.Error(t, err)
}

func testRecords() []caserecord.Record {
	first := caserecord.New("12345/2020")
	first.Fill(caserecord.AppearanceDate, "01/15/2024", caserecord.SourceTable)
	first.Fill(caserecord.Judge, "Hon. Jane Smith", caserecord.SourceTable)
	return []caserecord.Record{first, caserecord.New("67890/2021")}
}

func TestSinkCreatesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	n, err := NewSink(path, outputSheet).Flush(context.Background(), testRecords())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Equal(t, []string{outputSheet}, testutil.SheetList(t, path))

	cols := caserecord.Columns()
	rows := testutil.ReadSheet(t, path, outputSheet, len(cols))
	require.Len(t, rows, 3)
	require.Equal(t, cols, rows[0])

	expected := make([]string, len(cols))
	expected[caserecord.IndexNumber] = "12345/2020"
	expected[caserecord.AppearanceDate] = "01/15/2024"
	expected[caserecord.Judge] = "Hon. Jane Smith"
	require.Equal(t, expected, rows[1])

	expected = make([]string, len(cols))
	expected[caserecord.IndexNumber] = "67890/2021"
	require.Equal(t, expected, rows[2])
}

func TestSinkReplacesSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	testutil.WriteWorkbook(t, path,
		testutil.Sheet{
			Name: inputSheet,
			Rows: [][]string{{"IndexNumber"}, {"12345/2020"}, {"67890/2021"}},
		},
		testutil.Sheet{
			Name: outputSheet,
			Rows: [][]string{{"stale"}, {"row"}, {"row"}, {"row"}, {"row"}},
		},
	)

	_, err := NewSink(path, outputSheet).Flush(context.Background(), testRecords())
	require.NoError(t, err)

	require.ElementsMatch(t, []string{inputSheet, outputSheet}, testutil.SheetList(t, path))

	require.Equal(t, [][]string{{"IndexNumber"}, {"12345/2020"}, {"67890/2021"}}, testutil.ReadSheet(t, path, inputSheet, 0))
	out := testutil.ReadSheet(t, path, outputSheet, 0)
	require.Len(t, out, 3)
	require.Equal(t, "IndexNumber", out[0][0])
	require.Equal(t, "67890/2021", out[2][0])
}

func TestSinkReplacesOnlySheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	testutil.WriteWorkbook(t, path, testutil.Sheet{
		Name: outputSheet,
		Rows: [][]string{{"stale"}, {"a"}, {"b"}, {"c"}},
	})

	n, err := NewSink(path, outputSheet).Flush(context.Background(), testRecords()[:1])
	require.NoError(t, err)
	require.Equal(t, 1, n)

	out := testutil.ReadSheet(t, path, outputSheet, 0)
	require.Len(t, out, 2)
	require.Equal(t, "12345/2020", out[1][0])
}

func TestSinkNothingToWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	n, err := NewSink(path, outputSheet).Flush(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSinkLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")
	_, err := NewSink(path, outputSheet).Flush(context.Background(), testRecords())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "out.xlsx", entries[0].Name())
}

func TestSinkKeepsFileMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.xlsx")
	testutil.WriteIdentifiers(t, path, inputSheet, "12345/2020")
	require.NoError(t, os.Chmod(path, 0640))

	_, err := NewSink(path, outputSheet).Flush(context.Background(), testRecords())
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0640), info.Mode().Perm())

	created := filepath.Join(dir, "out.xlsx")
	_, err = NewSink(created, outputSheet).Flush(context.Background(), testRecords())
	require.NoError(t, err)
	info, err = os.Stat(created)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0644), info.Mode().Perm())
}
