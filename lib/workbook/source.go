package workbook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrEmptySheet    = errors.New("sheet has no rows")
)

// HeaderCandidates are the column names that hold index numbers, in order
// of preference.
var HeaderCandidates = []string{"IndexNumber", "Index #:", "Index Number", "Index", "Case Number"}

// Source reads the case identifiers from the input sheet.
type Source struct {
	Path string
	// Sheet is the input sheet name, empty means the first sheet.
	Sheet string
}

func NewSource(path, sheet string) Source {
	return Source{Path: path, Sheet: sheet}
}

// Column returns the index of the identifier column: the first candidate
// found in header, otherwise 0.
func Column(header []string) int {
	for _, candidate := range HeaderCandidates {
		for i, name := range header {
			if strings.TrimSpace(name) == candidate {
				return i
			}
		}
	}
	return 0
}

// Identifiers reads the identifier column below the header row. Empty
// values are dropped and the rest are trimmed, order is preserved.
func Identifiers(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	col := Column(rows[0])

	var out []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}

func resolveSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return "", ErrSheetNotFound
		}
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == sheet {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q (have %s)", ErrSheetNotFound, sheet, strings.Join(sheets, ", "))
}

// Identifiers loads the identifier queue.
func (s Source) Identifiers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, s.Sheet)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySheet, sheet)
	}
	return Identifiers(rows), nil
}
