package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNewRecord_DerivesWeekday(t *testing.T) {
	rec := NewRecord(day(t, "2025-07-01"), StatusPresent, "  built report ")
	assert.Equal(t, "Tuesday", rec.Day)
	assert.Equal(t, "2025-07-01", rec.DateString())
	assert.Equal(t, "built report", rec.Remarks)
}

func TestNormalize_IgnoresSuppliedDay(t *testing.T) {
	rec := Record{Date: time.Date(2025, 7, 5, 18, 30, 0, 0, time.UTC), Day: "Monday"}.Normalize()
	assert.Equal(t, "Saturday", rec.Day)
	assert.Equal(t, 0, rec.Date.Hour())
}

func TestMerge(t *testing.T) {
	base := NewRecord(day(t, "2025-07-01"), StatusPresent, "built report")

	tests := []struct {
		name        string
		next        Record
		wantStatus  Status
		wantRemarks string
	}{
		{"appends distinct text", Record{Status: StatusPresent, Remarks: "fixed bug"}, StatusPresent, "built report; fixed bug"},
		{"skips substring", Record{Remarks: "report"}, StatusPresent, "built report"},
		{"empty status keeps old", Record{Remarks: "review"}, StatusPresent, "built report; review"},
		{"new status wins", Record{Status: StatusAbsent}, StatusAbsent, "built report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.Merge(tt.next)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantRemarks, got.Remarks)
			assert.Equal(t, "Tuesday", got.Day)
		})
	}
}

func TestMerge_Idempotent(t *testing.T) {
	base := NewRecord(day(t, "2025-07-01"), StatusPresent, "built report")
	next := Record{Status: StatusPresent, Remarks: "fixed bug"}

	once := base.Merge(next)
	twice := once.Merge(next)
	assert.Equal(t, once, twice)
}

func TestMerge_IntoEmptyRemarks(t *testing.T) {
	base := NewRecord(day(t, "2025-07-01"), StatusNone, "")
	got := base.Merge(Record{Remarks: "standup"})
	assert.Equal(t, "standup", got.Remarks)
	assert.Equal(t, StatusNone, got.Status)
}

func TestOverwriteAndClear(t *testing.T) {
	base := NewRecord(day(t, "2025-07-01"), StatusPresent, "built report")

	over := base.Overwrite(Record{Status: StatusAbsent, Remarks: ""})
	assert.Equal(t, StatusAbsent, over.Status)
	assert.Empty(t, over.Remarks)

	cleared := base.Cleared()
	assert.Equal(t, base.Date, cleared.Date)
	assert.Equal(t, base.Day, cleared.Day)
	assert.Equal(t, StatusNone, cleared.Status)
	assert.Empty(t, cleared.Remarks)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusPresent, ParseStatus("present"))
	assert.Equal(t, StatusWeekOff, ParseStatus(" WEEK OFF "))
	assert.Equal(t, StatusNone, ParseStatus(""))
	assert.Equal(t, Status("Holiday"), ParseStatus("Holiday"))
	assert.True(t, Status("PRESENT").IsPresent())
	assert.False(t, StatusAbsent.IsPresent())
}

func TestParseDate_Layouts(t *testing.T) {
	for _, in := range []string{"2025-07-01", "2025-07-01 00:00:00", "2025-07-01T09:15:00Z"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2025-07-01", got.Format(DateLayout), in)
	}

	for _, in := range []string{"yesterday", "04/07/2025", "7/1/25", "5-Jul-25"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestParseMonth(t *testing.T) {
	m, ok := ParseMonth("july")
	require.True(t, ok)
	assert.Equal(t, time.July, m)

	_, ok = ParseMonth("jul")
	assert.False(t, ok)
}

func TestWriteModeString(t *testing.T) {
	assert.Equal(t, "insert", ModeInsert.String())
	assert.Equal(t, "overwrite", ModeOverwrite.String())
	assert.Equal(t, "merge", ModeMerge.String())
}
