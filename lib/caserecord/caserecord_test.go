package caserecord

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestColumns(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, len(Fields()))
	require.Equal(t, "IndexNumber", cols[0])
	require.Equal(t, "MotSeq_1", MotSeq1.String())
	require.Equal(t, "Part_2", cols[len(cols)-1])

	// callers must not be able to mutate the header
	cols[0] = "changed"
	require.Equal(t, "IndexNumber", Columns()[0])

	for _, f := range Fields() {
		parsed, ok := ParseField(f.String())
		require.True(t, ok)
		require.Equal(t, f, parsed)
	}
	_, ok := ParseField("Nope")
	require.False(t, ok)
}

func TestParseSource(t *testing.T) {
	for _, s := range []Source{SourceInput, SourceTable, SourceText, SourceElement} {
		require.Equal(t, s, ParseSource(s.String()))
	}
	require.Equal(t, SourceNone, ParseSource("none"))
	require.Equal(t, SourceNone, ParseSource("bogus"))
}

func TestFillFirstWriterWins(t *testing.T) {
	r := New("12345/2020")

	require.True(t, r.Fill(Judge, "  Hon. Jane Smith ", SourceTable))
	require.False(t, r.Fill(Judge, "Hon. Someone Else", SourceElement))
	require.False(t, r.Fill(IndexNumber, "other", SourceText))
	require.False(t, r.Fill(CaseName, "   ", SourceText))
	require.False(t, r.Fill(CaseName, "Doe v. Roe", SourceNone))

	require.Equal(t, Result{Value: "Hon. Jane Smith", Source: SourceTable}, r.Result(Judge))
	require.Equal(t, "12345/2020", r.Value(IndexNumber))

	_, present := r.Get(CaseName)
	require.False(t, present)
}

func TestNewOnlyIndexNumber(t *testing.T) {
	r := New("67890/2021")
	absent := r.Absent()
	require.Len(t, absent, len(Fields())-1)
	require.NotContains(t, absent, IndexNumber)

	row := r.Row()
	require.Equal(t, "67890/2021", row[0])
	for _, v := range row[1:] {
		require.Equal(t, "", v)
	}
}

func TestMapRoundTrip(t *testing.T) {
	r := New("A1")
	r.Fill(AppearanceDate, "01/15/2024", SourceTable)
	r.Fill(Part, "IAS 12", SourceElement)

	m := r.Map()
	diff := cmp.Diff(map[string]string{
		"IndexNumber":    "A1",
		"AppearanceDate": "01/15/2024",
		"Part":           "IAS 12",
	}, m)
	if diff != "" {
		t.Fatal(diff)
	}
}
