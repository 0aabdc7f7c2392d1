package caserecord

import (
	"fmt"
	"strings"
)

// Field is one column of the output sheet.
type Field int

const (
	IndexNumber Field = iota
	AppearanceDate
	FirstPlaintiffFirm
	CaseName
	Time
	Purpose
	OutcomeType
	Judge
	Part
	Classification
	FilingDate
	DispositionDate
	AppearanceDate1
	Time1
	Purpose1
	OutcomeType1
	Judge1
	Part1
	MotSeq1
	AppearanceDate2
	Time2
	Purpose2
	OutcomeType2
	Judge2
	Part2

	fieldCount
)

var columns = [fieldCount]string{
	"IndexNumber", "AppearanceDate", "FirstPlaintiffFirm", "CaseName", "Time", "Purpose",
	"OutcomeType", "Judge", "Part", "Classification", "FilingDate", "DispositionDate",
	"AppearanceDate_1", "Time_1", "Purpose_1", "OutcomeType_1", "Judge_1", "Part_1",
	"MotSeq_1", "AppearanceDate_2", "Time_2", "Purpose_2", "OutcomeType_2", "Judge_2", "Part_2",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return columns[f]
}

// Fields lists every field in column order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Columns returns the output sheet header.
func Columns() []string {
	out := make([]string, fieldCount)
	copy(out, columns[:])
	return out
}

// ParseField resolves a column name to its field.
func ParseField(name string) (Field, bool) {
	for i, c := range columns {
		if c == name {
			return Field(i), true
		}
	}
	return 0, false
}

// Source says where a field value came from. SourceNone means the field is
// absent.
type Source int

const (
	SourceNone Source = iota
	SourceInput
	SourceTable
	SourceText
	SourceElement
)

func (s Source) String() string {
	switch s {
	case SourceInput:
		return "input"
	case SourceTable:
		return "table"
	case SourceText:
		return "text"
	case SourceElement:
		return "element"
	default:
		return "none"
	}
}

// ParseSource is the inverse of Source.String, unknown names are SourceNone.
func ParseSource(name string) Source {
	for s := SourceInput; s <= SourceElement; s++ {
		if s.String() == name {
			return s
		}
	}
	return SourceNone
}

// Result is the outcome for a single field.
type Result struct {
	Value  string
	Source Source
}

func (r Result) Present() bool {
	return r.Source != SourceNone
}

// Record is the fixed-shape set of extracted fields for one case. The zero
// value has every field absent.
type Record struct {
	results [fieldCount]Result
}

// New returns a record with only the index number filled.
func New(indexNumber string) Record {
	var r Record
	r.Fill(IndexNumber, indexNumber, SourceInput)
	return r
}

// Fill writes value to field when the field is still absent and the trimmed
// value is not empty. It reports whether the write happened.
func (r *Record) Fill(field Field, value string, source Source) bool {
	if field < 0 || field >= fieldCount || source == SourceNone {
		return false
	}
	if r.results[field].Present() {
		return false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	r.results[field] = Result{Value: value, Source: source}
	return true
}

func (r Record) Result(field Field) Result {
	if field < 0 || field >= fieldCount {
		return Result{}
	}
	return r.results[field]
}

// Get returns the value of field and whether it is present.
func (r Record) Get(field Field) (string, bool) {
	res := r.Result(field)
	return res.Value, res.Present()
}

// Value returns the value of field, "" when absent.
func (r Record) Value(field Field) string {
	return r.Result(field).Value
}

// Absent lists the fields that have no value, in column order.
func (r Record) Absent() []Field {
	var out []Field
	for i, res := range r.results {
		if !res.Present() {
			out = append(out, Field(i))
		}
	}
	return out
}

// Row returns the values in column order, "" for absent fields.
func (r Record) Row() []string {
	out := make([]string, fieldCount)
	for i, res := range r.results {
		out[i] = res.Value
	}
	return out
}

// Map returns the present fields keyed by column name.
func (r Record) Map() map[string]string {
	out := map[string]string{}
	for i, res := range r.results {
		if res.Present() {
			out[columns[i]] = res.Value
		}
	}
	return out
}
