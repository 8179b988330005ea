package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"timekeeper/internal/logging"
	"timekeeper/internal/types"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used when none is configured.
const DefaultSheet = "Attendance"

// XLSXStore keeps the attendance table in a single-sheet workbook.
// Every mutation reads the whole sheet and rewrites the whole file.
type XLSXStore struct {
	path  string
	sheet string
}

// NewXLSXStore creates a store backed by the workbook at path.
// The file is created lazily by EnsureInitialized.
func NewXLSXStore(path, sheet string) *XLSXStore {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &XLSXStore{path: path, sheet: sheet}
}

// Path returns the workbook location.
func (s *XLSXStore) Path() string {
	return s.path
}

func (s *XLSXStore) EnsureInitialized(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", types.ErrStoreUnreadable, err)
	}

	logging.Store("Creating workbook %s with sheet %s", s.path, s.sheet)
	return s.save(nil)
}

func (s *XLSXStore) Find(ctx context.Context, date time.Time) (*types.Record, error) {
	rows, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return findRow(rows, date), nil
}

func (s *XLSXStore) Upsert(ctx context.Context, rec types.Record, mode types.WriteMode) (types.Record, error) {
	rows, err := s.read(ctx)
	if err != nil {
		return types.Record{}, err
	}
	rows, stored, err := applyUpsert(rows, rec, mode)
	if err != nil {
		return stored, err
	}
	logging.StoreDebug("Upsert %s mode=%s status=%q", stored.DateString(), mode, stored.Status)
	return stored, s.save(rows)
}

func (s *XLSXStore) Clear(ctx context.Context, date time.Time) error {
	rows, err := s.read(ctx)
	if err != nil {
		return err
	}
	rows, err = applyClear(rows, date)
	if err != nil {
		return err
	}
	return s.save(rows)
}

func (s *XLSXStore) ListAll(ctx context.Context) ([]types.Record, error) {
	return s.read(ctx)
}

func (s *XLSXStore) ListMonth(ctx context.Context, month string) ([]types.Record, error) {
	rows, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return filterMonth(rows, month), nil
}

func (s *XLSXStore) PrefillMonth(ctx context.Context, month time.Month, year int) (int, error) {
	fill, err := monthRows(month, year)
	if err != nil {
		return 0, err
	}
	rows, err := s.read(ctx)
	if err != nil {
		return 0, err
	}
	rows, added := applyPrefill(rows, fill)
	logging.Store("Prefill %s %d: %d rows added", month, year, added)
	return added, s.save(rows)
}

func (s *XLSXStore) Close() error {
	return nil
}

// read ensures the workbook exists and loads every data row, sorted.
func (s *XLSXStore) read(ctx context.Context) ([]types.Record, error) {
	if err := s.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	timer := logging.StartTimer(logging.CategoryStore, "read "+s.path)
	defer timer.Stop()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrStoreUnreadable, err)
	}
	defer f.Close()

	sheet := s.sheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		// Hand-made workbooks may use another name; fall back to the active sheet.
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}

	cells, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrStoreUnreadable, err)
	}

	var rows []types.Record
	for i, row := range cells {
		if i == 0 {
			continue // header
		}
		rec, ok, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", types.ErrStoreUnreadable, i+1, err)
		}
		if ok {
			rows = append(rows, rec)
		}
	}
	sortRecords(rows)
	return rows, nil
}

// parseRow decodes one sheet row. Blank rows report ok=false.
func parseRow(row []string) (types.Record, bool, error) {
	cols := make([]string, len(types.Header))
	copy(cols, row)
	if strings.TrimSpace(strings.Join(cols, "")) == "" {
		return types.Record{}, false, nil
	}

	date, err := parseDateCell(cols[0])
	if err != nil {
		return types.Record{}, false, err
	}
	return types.NewRecord(date, types.ParseStatus(cols[2]), cols[3]), true, nil
}

// parseDateCell accepts ISO strings and the serials of native date cells.
func parseDateCell(v string) (time.Time, error) {
	if d, err := types.ParseDate(v); err == nil {
		return d, nil
	}
	if serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return types.DateOf(t), nil
	}
	return types.ParseDate(v)
}

// save rewrites the whole workbook through a temporary file.
func (s *XLSXStore) save(rows []types.Record) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
		}
	}

	tmp := s.path + ".tmp.xlsx"
	if err := writeWorkbook(tmp, s.sheet, rows); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
	}
	logging.StoreDebug("Wrote %d rows to %s", len(rows), s.path)
	return nil
}
