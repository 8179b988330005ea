// Package store persists attendance records, one row per calendar date.
//
// Three backends share one contract:
//   - XLSXStore: the default single-sheet workbook, read in full and rewritten in full on every mutation
//   - SQLiteStore: a keyed table for callers that want a real database
//   - MemoryStore: an ephemeral backend and test double
//
// Every mutation leaves the table sorted by ascending date. None of the
// backends coordinate concurrent writers.
package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"timekeeper/internal/types"
)

// Store is the record persistence contract consumed by core.
type Store interface {
	// EnsureInitialized creates the empty table with its header if absent. Idempotent.
	EnsureInitialized(ctx context.Context) error

	// Find returns the record for date, or nil when none exists.
	Find(ctx context.Context, date time.Time) (*types.Record, error)

	// Upsert writes rec according to mode and returns the stored row.
	Upsert(ctx context.Context, rec types.Record, mode types.WriteMode) (types.Record, error)

	// Clear blanks status and remarks of an existing record.
	// Returns types.ErrNotFound if there is no record for date.
	Clear(ctx context.Context, date time.Time) error

	// ListAll returns every record in ascending date order.
	ListAll(ctx context.Context) ([]types.Record, error)

	// ListMonth returns records whose date falls in the named month of any year.
	// An unknown month or no matches yields an empty slice, not an error.
	ListMonth(ctx context.Context, month string) ([]types.Record, error)

	// PrefillMonth adds one blank record per day of month/year, marking
	// weekends Week Off. Existing rows win. Returns the number of rows added.
	PrefillMonth(ctx context.Context, month time.Month, year int) (int, error)

	Close() error
}

// FileBacked is implemented by stores whose backing file is itself an
// xlsx workbook that can be attached or downloaded as-is.
type FileBacked interface {
	Path() string
}

// =============================================================================
// TABLE OPERATIONS
// =============================================================================
// Pure functions over a sorted slice of records. XLSXStore and MemoryStore
// load the whole table, apply one of these, and write the whole table back.

func sortRecords(rows []types.Record) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}

func indexOf(rows []types.Record, date time.Time) int {
	date = types.DateOf(date)
	for i, r := range rows {
		if r.Date.Equal(date) {
			return i
		}
	}
	return -1
}

func findRow(rows []types.Record, date time.Time) *types.Record {
	if i := indexOf(rows, date); i >= 0 {
		rec := rows[i]
		return &rec
	}
	return nil
}

// applyUpsert returns the new table and the stored row.
func applyUpsert(rows []types.Record, rec types.Record, mode types.WriteMode) ([]types.Record, types.Record, error) {
	rec = rec.Normalize()
	if rec.Date.IsZero() {
		return rows, rec, fmt.Errorf("record has no date")
	}

	i := indexOf(rows, rec.Date)
	if i < 0 {
		rows = append(rows, rec)
		sortRecords(rows)
		return rows, rec, nil
	}

	switch mode {
	case types.ModeOverwrite:
		rows[i] = rows[i].Overwrite(rec)
	case types.ModeMerge:
		rows[i] = rows[i].Merge(rec)
	default:
		return rows, rows[i], fmt.Errorf("%w for %s", types.ErrRecordExists, rec.DateString())
	}
	sortRecords(rows)
	return rows, *findRow(rows, rec.Date), nil
}

func applyClear(rows []types.Record, date time.Time) ([]types.Record, error) {
	i := indexOf(rows, date)
	if i < 0 {
		return rows, fmt.Errorf("%w for %s to clear", types.ErrNotFound, types.DateOf(date).Format(types.DateLayout))
	}
	rows[i] = rows[i].Cleared()
	return rows, nil
}

func filterMonth(rows []types.Record, month string) []types.Record {
	m, ok := types.ParseMonth(month)
	out := []types.Record{}
	if !ok {
		return out
	}
	for _, r := range rows {
		if r.Date.Month() == m {
			out = append(out, r)
		}
	}
	return out
}

// monthRows generates the blank calendar for month/year.
func monthRows(month time.Month, year int) ([]types.Record, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", int(month))
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var rows []types.Record
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		status := types.StatusNone
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			status = types.StatusWeekOff
		}
		rows = append(rows, types.NewRecord(d, status, ""))
	}
	return rows, nil
}

// applyPrefill adds the rows of fill whose dates are absent from rows.
func applyPrefill(rows, fill []types.Record) ([]types.Record, int) {
	added := 0
	for _, r := range fill {
		if indexOf(rows, r.Date) >= 0 {
			continue
		}
		rows = append(rows, r)
		added++
	}
	sortRecords(rows)
	return rows, added
}

func cloneRows(rows []types.Record) []types.Record {
	out := make([]types.Record, len(rows))
	copy(out, rows)
	return out
}
