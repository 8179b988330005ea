package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timekeeper/internal/mail"
	"timekeeper/internal/perception"
	"timekeeper/internal/store"
	"timekeeper/internal/types"
)

// scriptedExtractor replies with the next canned answer on each call.
type scriptedExtractor struct {
	replies []string
	calls   int
}

func (s *scriptedExtractor) ExtractWorkDescription(context.Context, string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return s.replies[len(s.replies)-1], nil
}

type fakeSender struct {
	reports []mail.Report
	err     error
}

func (f *fakeSender) SendReport(_ context.Context, r mail.Report) error {
	f.reports = append(f.reports, r)
	return f.err
}

var morning = time.Date(2025, time.July, 1, 9, 15, 0, 0, time.Local)

func newAssistant(t *testing.T, st store.Store, ex perception.Extractor, opts ...Option) *Assistant {
	t.Helper()
	cl := perception.NewClassifier(ex, perception.WithClock(func() time.Time { return morning }))
	opts = append([]Option{WithScratchDir(t.TempDir())}, opts...)
	return NewAssistant(st, cl, opts...)
}

func TestHandle_Greet(t *testing.T) {
	a := newAssistant(t, store.NewMemoryStore(), nil)
	assert.Equal(t, WelcomeMessage, a.Handle(context.Background(), "Hey"))
}

func TestHandle_AttendanceLifecycle(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ex := &scriptedExtractor{replies: []string{"built report", "built report", "fixed bug", "fixed bug"}}
	a := newAssistant(t, st, ex)

	// created
	resp := a.Handle(ctx, "Present today, built report")
	assert.Equal(t, "✅ Present marked for 2025-07-01 (Tuesday).\n➤ Remarks: built report", resp)
	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, types.Record{Date: july1, Day: "Tuesday", Status: types.StatusPresent, Remarks: "built report"}, all[0])

	// duplicate without keyword
	resp = a.Handle(ctx, "Present today, built report again")
	assert.Equal(t, "⚠️ Duplicate found for 2025-07-01. Use 'overwrite' or 'update' to modify it.", resp)
	got, err := st.Find(ctx, july1)
	require.NoError(t, err)
	assert.Equal(t, "built report", got.Remarks)

	// overwrite replaces fully, extraction runs twice
	resp = a.Handle(ctx, "overwrite: fixed bug")
	updated := "✅ Updated entry on 2025-07-01 (Tuesday) with:\n➤ Status: Present\n➤ Remarks: fixed bug"
	assert.True(t, strings.HasPrefix(resp, updated+"\n➤ Changes: Remarks: "), resp)
	assert.Contains(t, resp, "[+")
	assert.Equal(t, 4, ex.calls)
	got, err = st.Find(ctx, july1)
	require.NoError(t, err)
	assert.Equal(t, types.Record{Date: july1, Day: "Tuesday", Status: types.StatusPresent, Remarks: "fixed bug"}, *got)
}

func TestHandle_UpdateReportsStatusChange(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_, err := st.Upsert(ctx, types.NewRecord(july1, types.StatusPresent, "built report"), types.ModeInsert)
	require.NoError(t, err)
	a := newAssistant(t, st, &scriptedExtractor{replies: []string{"built report"}})

	resp := a.Handle(ctx, "update: absent, built report")
	assert.Equal(t, "✅ Updated entry on 2025-07-01 (Tuesday) with:\n➤ Status: Absent\n➤ Remarks: built report\n➤ Changes: Status: Present -> Absent", resp)
}

func TestHandle_MarkAbsent(t *testing.T) {
	a := newAssistant(t, store.NewMemoryStore(), &scriptedExtractor{replies: []string{""}})
	assert.Equal(t, "✅ Absent marked for 2025-07-01 (Tuesday).\n➤ Remarks: ", a.Handle(context.Background(), "absent"))
}

func TestHandle_ExtractionFailure(t *testing.T) {
	ex := perception.ExtractorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("deadline exceeded")
	})
	st := store.NewMemoryStore()
	a := newAssistant(t, st, ex)

	resp := a.Handle(context.Background(), "worked on docs")
	assert.Contains(t, resp, "❌")
	assert.Contains(t, resp, "deadline exceeded")

	all, err := st.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestHandle_Clear(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	a := newAssistant(t, st, nil)

	resp := a.Handle(ctx, "clear entry")
	assert.Equal(t, "❌ Failed to clear entry: no entry found for 2025-07-01 to clear", resp)

	_, err := st.Upsert(ctx, types.NewRecord(july1, types.StatusPresent, "built report"), types.ModeInsert)
	require.NoError(t, err)

	resp = a.Handle(ctx, "remove today's entry")
	assert.Equal(t, "✅ Entry on 2025-07-01 cleared successfully.", resp)
	got, err := st.Find(ctx, july1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tuesday", got.Day)
	assert.Empty(t, got.Status)
	assert.Empty(t, got.Remarks)
}

func TestHandle_Timesheet(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	a := newAssistant(t, st, nil)

	assert.Equal(t, "No attendance data found.", a.Handle(ctx, "show timesheet"))
	assert.Equal(t, "No records found for July.", a.Handle(ctx, "timesheet for july"))

	_, err := st.Upsert(ctx, types.NewRecord(july1, types.StatusPresent, "built report"), types.ModeInsert)
	require.NoError(t, err)
	_, err = st.Upsert(ctx, types.NewRecord(july1.AddDate(0, 0, 1), types.StatusNone, ""), types.ModeInsert)
	require.NoError(t, err)
	_, err = st.Upsert(ctx, types.NewRecord(time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC), types.StatusAbsent, ""), types.ModeInsert)
	require.NoError(t, err)

	assert.Equal(t,
		"2025-07-01 (Tuesday) - Present | built report\n"+
			"2025-07-02 (Wednesday) - None | None\n"+
			"2025-08-04 (Monday) - Absent | None",
		a.Handle(ctx, "show my timesheet"))

	assert.Equal(t,
		"2025-07-01 (Tuesday) - Present | built report\n"+
			"2025-07-02 (Wednesday) -  | ",
		a.Handle(ctx, "timesheet for July please"))
}

func TestHandle_Salary(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	for i := 0; i < 10; i++ {
		_, err := st.Upsert(ctx, types.NewRecord(july1.AddDate(0, 0, i), types.StatusPresent, ""), types.ModeInsert)
		require.NoError(t, err)
	}
	_, err := st.Upsert(ctx, types.NewRecord(july1.AddDate(0, 0, 10), types.StatusAbsent, ""), types.ModeInsert)
	require.NoError(t, err)

	resp := newAssistant(t, st, nil).Handle(ctx, "what's my salary")
	assert.Contains(t, resp, "➤ Present Days: 10")
	assert.Contains(t, resp, "➤ Total Hours: 80 hrs")
	assert.Contains(t, resp, "💰 Expected Salary: ₹11520")
}

func TestHandle_Email(t *testing.T) {
	ctx := context.Background()

	t.Run("sent", func(t *testing.T) {
		sender := &fakeSender{}
		a := newAssistant(t, store.NewMemoryStore(), nil, WithMailer(sender))

		resp := a.Handle(ctx, "email the timesheet to hr@example.com")
		assert.Equal(t, "✅ Attendance report sent to hr@example.com.", resp)
		require.Len(t, sender.reports, 1)
		r := sender.reports[0]
		assert.Equal(t, "hr@example.com", r.Recipient)
		assert.Equal(t, "Attendance Report", r.Subject)
		assert.Equal(t, "Hi,\n\nPlease find the attached attendance report.\n\nRegards,\nAttendance Assistant", r.Body)
		assert.FileExists(t, r.AttachmentPath)
	})

	t.Run("transport failure", func(t *testing.T) {
		a := newAssistant(t, store.NewMemoryStore(), nil, WithMailer(&fakeSender{err: types.ErrExternalService}))
		assert.Equal(t, "❌ Failed to send email.", a.Handle(ctx, "email hr@example.com"))
	})

	t.Run("no transport", func(t *testing.T) {
		a := newAssistant(t, store.NewMemoryStore(), nil)
		assert.Equal(t, "❌ Failed to send email.", a.Handle(ctx, "email hr@example.com"))
	})

	t.Run("missing recipient", func(t *testing.T) {
		sender := &fakeSender{}
		a := newAssistant(t, store.NewMemoryStore(), nil, WithMailer(sender))
		assert.Equal(t, "❌ Please include a valid recipient email in your message.", a.Handle(ctx, "send mail to my manager"))
		assert.Empty(t, sender.reports)
	})

	t.Run("custom text", func(t *testing.T) {
		sender := &fakeSender{}
		a := newAssistant(t, store.NewMemoryStore(), nil, WithMailer(sender), WithReportText("July", ""))
		a.Handle(ctx, "email hr@example.com")
		require.Len(t, sender.reports, 1)
		assert.Equal(t, "July", sender.reports[0].Subject)
		assert.Equal(t, defaultBody, sender.reports[0].Body)
	})
}

func TestHandle_StoreFailuresAreRendered(t *testing.T) {
	a := newAssistant(t, brokenStore{store.NewMemoryStore(), types.ErrStoreUnreadable}, &scriptedExtractor{replies: []string{"x"}})
	ctx := context.Background()

	assert.Contains(t, a.Handle(ctx, "timesheet"), "❌ Failed to fetch timesheet")
	assert.Contains(t, a.Handle(ctx, "timesheet for may"), "❌ Failed to fetch May timesheet")
	assert.Contains(t, a.Handle(ctx, "salary"), "❌ Failed to calculate salary")
	assert.Contains(t, a.Handle(ctx, "clear"), "❌ Failed to clear entry")
	assert.Contains(t, a.Handle(ctx, "worked on x"), "❌ Failed to store attendance")
}

func TestTimesheetFile(t *testing.T) {
	ctx := context.Background()

	t.Run("exported for memory store", func(t *testing.T) {
		a := newAssistant(t, store.NewMemoryStore(), nil)
		path, err := a.TimesheetFile(ctx)
		require.NoError(t, err)
		assert.Equal(t, mail.AttachmentName, filepath.Base(path))
		assert.FileExists(t, path)
	})

	t.Run("xlsx store returns its own file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "attendance.xlsx")
		st := store.NewXLSXStore(file, store.DefaultSheet)
		a := newAssistant(t, st, nil)

		path, err := a.TimesheetFile(ctx)
		require.NoError(t, err)
		assert.Equal(t, file, path)
		_, err = os.Stat(file)
		assert.NoError(t, err)
	})
}

func TestWantsDownload(t *testing.T) {
	a := newAssistant(t, store.NewMemoryStore(), nil)
	assert.True(t, a.WantsDownload("Timesheet please"))
	assert.False(t, a.WantsDownload("worked on docs"))
}

func TestFormatTimesheet(t *testing.T) {
	rows := []types.Record{types.NewRecord(july1, types.StatusNone, "")}
	assert.Equal(t, "2025-07-01 (Tuesday) - None | None", FormatTimesheet(rows, "None"))
	assert.Equal(t, "2025-07-01 (Tuesday) -  | ", FormatTimesheet(rows, ""))
}
