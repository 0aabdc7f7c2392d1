package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"webcivil-assist/lib/caserecord"

	"github.com/xuri/excelize/v2"
)

const scratchSheet = "webcivil_scratch"

// Sink writes records to the output sheet of a workbook.
type Sink struct {
	Path  string
	Sheet string
}

func NewSink(path, sheet string) Sink {
	return Sink{Path: path, Sheet: sheet}
}

func openOrCreate(path string) (*excelize.File, bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, err
	}
	return f, false, nil
}

// replaceSheet leaves an empty sheet called name in f. A workbook cannot
// lose its last sheet, so the new sheet is created before the old one is
// deleted.
func replaceSheet(f *excelize.File, name string, created bool) (int, error) {
	if created {
		// a new workbook comes with one default sheet
		def := f.GetSheetName(0)
		if err := f.SetSheetName(def, name); err != nil {
			return 0, err
		}
		return f.GetSheetIndex(name)
	}

	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		return f.NewSheet(name)
	}

	if _, err := f.NewSheet(scratchSheet); err != nil {
		return 0, err
	}
	if err := f.DeleteSheet(name); err != nil {
		return 0, err
	}
	if err := f.SetSheetName(scratchSheet, name); err != nil {
		return 0, err
	}
	return f.GetSheetIndex(name)
}

func writeRows(f *excelize.File, sheet string, records []caserecord.Record) error {
	header := caserecord.Columns()
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := rec.Row()
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

const newFileMode os.FileMode = 0644

// destMode is the permission the saved workbook should end up with, the
// existing file's when there is one.
func destMode(dest string) (os.FileMode, error) {
	info, err := os.Stat(dest)
	if errors.Is(err, os.ErrNotExist) {
		return newFileMode, nil
	}
	if err != nil {
		return 0, err
	}
	return info.Mode().Perm(), nil
}

// save writes to a temporary file next to the destination and renames it
// into place.
func save(f *excelize.File, dest string) error {
	mode, err := destMode(dest)
	if err != nil {
		return err
	}

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".webcivil-*.xlsx")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, dest)
}

// Flush replaces the output sheet with a header and one row per record and
// returns how many records were written. Nothing is written when records is
// empty.
func (s Sink) Flush(ctx context.Context, records []caserecord.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, created, err := openOrCreate(s.Path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	idx, err := replaceSheet(f, s.Sheet, created)
	if err != nil {
		return 0, fmt.Errorf("replace sheet %q: %w", s.Sheet, err)
	}
	if err := writeRows(f, s.Sheet, records); err != nil {
		return 0, fmt.Errorf("write sheet %q: %w", s.Sheet, err)
	}
	f.SetActiveSheet(idx)

	if err := save(f, s.Path); err != nil {
		return 0, fmt.Errorf("save %s: %w", s.Path, err)
	}
	return len(records), nil
}
