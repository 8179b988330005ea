// Package types provides the attendance record model shared across timekeeper packages.
// This package exists to break import cycles between store, perception, and core.
// Types in this package should be plain data structures with no external dependencies.
package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for record keys.
const DateLayout = "2006-01-02"

// Header is the fixed column header of the attendance table.
var Header = []string{"Date", "Day", "Status", "Remarks"}

// =============================================================================
// STATUS
// =============================================================================

// Status is the attendance status of a single day.
type Status string

const (
	StatusNone    Status = ""
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusWeekOff Status = "Week Off"
)

// ParseStatus maps stored text onto a known status, case-insensitively.
// Unknown text is kept verbatim so hand-edited sheets round-trip.
func ParseStatus(s string) Status {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "":
		return StatusNone
	case "present":
		return StatusPresent
	case "absent":
		return StatusAbsent
	case "week off":
		return StatusWeekOff
	}
	return Status(trimmed)
}

// IsPresent reports whether the status counts as a worked day.
func (s Status) IsPresent() bool {
	return strings.EqualFold(string(s), string(StatusPresent))
}

// =============================================================================
// WRITE MODE
// =============================================================================

// WriteMode selects how Upsert treats a record that already exists.
type WriteMode int

const (
	// ModeInsert fails with ErrRecordExists when the date is taken.
	ModeInsert WriteMode = iota
	// ModeOverwrite replaces status and remarks.
	ModeOverwrite
	// ModeMerge appends new remarks and keeps the old status when the new one is empty.
	ModeMerge
)

func (m WriteMode) String() string {
	switch m {
	case ModeInsert:
		return "insert"
	case ModeOverwrite:
		return "overwrite"
	case ModeMerge:
		return "merge"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// =============================================================================
// RECORD
// =============================================================================

// Record is one row of the attendance table, keyed by Date.
type Record struct {
	Date    time.Time `json:"date"`
	Day     string    `json:"day"`
	Status  Status    `json:"status"`
	Remarks string    `json:"remarks"`
}

// NewRecord builds a normalized record for the given calendar date.
func NewRecord(date time.Time, status Status, remarks string) Record {
	return Record{Date: date, Status: status, Remarks: remarks}.Normalize()
}

// Normalize truncates Date to a calendar date and recomputes Day from it.
// The incoming Day value is never trusted.
func (r Record) Normalize() Record {
	r.Date = DateOf(r.Date)
	r.Day = Weekday(r.Date)
	r.Remarks = strings.TrimSpace(r.Remarks)
	return r
}

// DateString returns the ISO key of the record.
func (r Record) DateString() string {
	return r.Date.Format(DateLayout)
}

// Merge folds next into r. Remarks are only ever appended: new text is
// joined with "; " unless it already appears in the old remarks. The status
// changes only when next carries one.
func (r Record) Merge(next Record) Record {
	merged := r
	if next.Remarks != "" && !strings.Contains(r.Remarks, next.Remarks) {
		if r.Remarks == "" {
			merged.Remarks = next.Remarks
		} else {
			merged.Remarks = r.Remarks + "; " + next.Remarks
		}
	}
	if next.Status != StatusNone {
		merged.Status = next.Status
	}
	return merged.Normalize()
}

// Overwrite replaces status and remarks with those of next.
func (r Record) Overwrite(next Record) Record {
	r.Status = next.Status
	r.Remarks = next.Remarks
	return r.Normalize()
}

// Cleared blanks status and remarks while keeping the record's identity.
func (r Record) Cleared() Record {
	r.Status = StatusNone
	r.Remarks = ""
	return r.Normalize()
}

// =============================================================================
// DATES
// =============================================================================

// DateOf returns the calendar date of t as midnight UTC. Using UTC for the
// key keeps weekday and ordering stable regardless of DST transitions.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the host's local calendar date.
func Today(now time.Time) time.Time {
	return DateOf(now.Local())
}

// Weekday returns the English weekday name of date.
func Weekday(date time.Time) string {
	return date.Weekday().String()
}

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate accepts the ISO layout, optionally with a time of day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseMonth resolves a full English month name, case-insensitively.
func ParseMonth(name string) (time.Month, bool) {
	name = strings.TrimSpace(name)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return 0, false
}
