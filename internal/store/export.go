package store

import (
	"context"
	"fmt"

	"timekeeper/internal/types"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook writes header + rows into a new single-sheet workbook at path.
func writeWorkbook(path, sheet string, rows []types.Record) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(types.Header))
	for i, h := range types.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{r.DateString(), r.Day, string(r.Status), r.Remarks}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	// Widen the remarks column so long work descriptions stay readable.
	if err := f.SetColWidth(sheet, "D", "D", 60); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// ExportWorkbook snapshots every record of s into an xlsx file at path, so
// non-file backends can still attach or serve a timesheet.
func ExportWorkbook(ctx context.Context, s Store, path string) error {
	rows, err := s.ListAll(ctx)
	if err != nil {
		return err
	}
	if err := writeWorkbook(path, DefaultSheet, rows); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}
	return nil
}
