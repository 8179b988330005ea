package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"timekeeper/internal/config"
	"timekeeper/internal/logging"
	"timekeeper/internal/mail"
	"timekeeper/internal/payroll"
	"timekeeper/internal/perception"
	"timekeeper/internal/store"
	"timekeeper/internal/types"
)

// WelcomeMessage is the reply to a bare greeting.
const WelcomeMessage = "👋 Hello! Welcome to your Attendance Assistant.\n" +
	"I'm here to help you:\n" +
	"➤ Mark attendance (Present / Absent / Week Off)\n" +
	"➤ Extract what work you did as remarks\n" +
	"➤ Fetch or download your timesheet\n" +
	"➤ Update or clear previous entries\n" +
	"➤ Estimate your salary from Present days\n" +
	"➤ Email the timesheet to anyone\n" +
	"How can I assist you today?"

const (
	defaultSubject = "Attendance Report"
	defaultBody    = "Hi,\n\nPlease find the attached attendance report.\n\nRegards,\nAttendance Assistant"
)

// Assistant is the presentation boundary: one message in, one string out.
// Every failure is logged and rendered, never returned.
type Assistant struct {
	store      store.Store
	classifier *perception.Classifier
	reconciler *Reconciler
	estimator  *payroll.Estimator
	mailer     mail.Sender

	subject    string
	body       string
	scratchDir string
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithMailer sets the email transport. Without one, email requests fail.
func WithMailer(m mail.Sender) Option {
	return func(a *Assistant) { a.mailer = m }
}

// WithEstimator replaces the default salary estimator.
func WithEstimator(e *payroll.Estimator) Option {
	return func(a *Assistant) { a.estimator = e }
}

// WithReportText sets the email subject and body. Empty values keep the defaults.
func WithReportText(subject, body string) Option {
	return func(a *Assistant) {
		if subject != "" {
			a.subject = subject
		}
		if body != "" {
			a.body = body
		}
	}
}

// WithScratchDir sets where workbook snapshots are exported for stores
// that are not backed by an xlsx file.
func WithScratchDir(dir string) Option {
	return func(a *Assistant) { a.scratchDir = dir }
}

// NewAssistant wires the classifier and reconciler over st.
func NewAssistant(st store.Store, cl *perception.Classifier, opts ...Option) *Assistant {
	a := &Assistant{
		store:      st,
		classifier: cl,
		reconciler: NewReconciler(st, cl),
		subject:    defaultSubject,
		body:       defaultBody,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.estimator == nil {
		a.estimator = payroll.NewEstimator(config.DefaultConfig().Payroll)
	}
	return a
}

// Handle classifies message and performs the matching operation.
func (a *Assistant) Handle(ctx context.Context, message string) string {
	intent, err := a.classifier.Classify(ctx, message)
	if err != nil {
		if errors.Is(err, types.ErrMissingRecipient) {
			return "❌ Please include a valid recipient email in your message."
		}
		logging.Get(logging.CategoryIntent).Error("classify failed: %v", err)
		return fmt.Sprintf("❌ Failed to process message: %v", err)
	}
	logging.Intent("action=%s", intent.Action)

	switch intent.Action {
	case perception.ActionGreet:
		return WelcomeMessage
	case perception.ActionSendEmail:
		return a.sendEmail(ctx, intent.Recipient)
	case perception.ActionComputeSalary:
		return a.salary(ctx)
	case perception.ActionClearEntry:
		return a.clear(ctx, intent.Date)
	case perception.ActionFetchAllTimesheet:
		return a.timesheet(ctx)
	case perception.ActionFetchMonthlyTimesheet:
		return a.monthlyTimesheet(ctx, intent.Month)
	case perception.ActionMarkAttendance:
		return a.mark(ctx, intent)
	}
	return fmt.Sprintf("❌ Unsupported action: %s", intent.Action)
}

// WantsDownload reports whether the timesheet file should be offered
// alongside the reply to message.
func (a *Assistant) WantsDownload(message string) bool {
	return perception.WantsDownload(message)
}

// TimesheetFile returns a path to an xlsx rendering of the current table.
// File-backed stores return their own file; others are exported to the
// scratch directory.
func (a *Assistant) TimesheetFile(ctx context.Context) (string, error) {
	if err := a.store.EnsureInitialized(ctx); err != nil {
		return "", err
	}
	if fb, ok := a.store.(store.FileBacked); ok {
		return fb.Path(), nil
	}

	dir := a.scratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, mail.AttachmentName)
	if err := store.ExportWorkbook(ctx, a.store, path); err != nil {
		return "", err
	}
	return path, nil
}

func (a *Assistant) sendEmail(ctx context.Context, to string) string {
	if a.mailer == nil {
		logging.MailError("no mail transport configured")
		return "❌ Failed to send email."
	}
	path, err := a.TimesheetFile(ctx)
	if err != nil {
		logging.MailError("attachment unavailable: %v", err)
		return "❌ Failed to send email."
	}
	err = a.mailer.SendReport(ctx, mail.Report{
		Subject:        a.subject,
		Body:           a.body,
		AttachmentPath: path,
		Recipient:      to,
	})
	if err != nil {
		logging.MailError("send report: %v", err)
		return "❌ Failed to send email."
	}
	return fmt.Sprintf("✅ Attendance report sent to %s.", to)
}

func (a *Assistant) salary(ctx context.Context) string {
	records, err := a.store.ListAll(ctx)
	if err != nil {
		logging.StoreError("salary: %v", err)
		return fmt.Sprintf("❌ Failed to calculate salary: %v", err)
	}
	return a.estimator.Estimate(records).String()
}

func (a *Assistant) clear(ctx context.Context, date time.Time) string {
	day := date.Format(types.DateLayout)
	if err := a.store.Clear(ctx, date); err != nil {
		logging.StoreError("clear %s: %v", day, err)
		return fmt.Sprintf("❌ Failed to clear entry: %v", err)
	}
	return fmt.Sprintf("✅ Entry on %s cleared successfully.", day)
}

func (a *Assistant) timesheet(ctx context.Context) string {
	records, err := a.store.ListAll(ctx)
	if err != nil {
		logging.StoreError("timesheet: %v", err)
		return fmt.Sprintf("❌ Failed to fetch timesheet: %v", err)
	}
	if len(records) == 0 {
		return "No attendance data found."
	}
	return FormatTimesheet(records, "None")
}

func (a *Assistant) monthlyTimesheet(ctx context.Context, month string) string {
	records, err := a.store.ListMonth(ctx, month)
	if err != nil {
		logging.StoreError("timesheet %s: %v", month, err)
		return fmt.Sprintf("❌ Failed to fetch %s timesheet: %v", month, err)
	}
	if len(records) == 0 {
		return fmt.Sprintf("No records found for %s.", month)
	}
	return FormatTimesheet(records, "")
}

func (a *Assistant) mark(ctx context.Context, in perception.Intent) string {
	out, err := a.reconciler.Reconcile(ctx, Entry{
		Date:    in.Date,
		Status:  in.Status,
		Remarks: in.Remarks,
		Message: in.Message,
	}, in.Overwrite)

	rec := out.Record
	if err != nil {
		logging.Get(logging.CategoryReconcile).Error("%s %s: %v", out.Kind, rec.DateString(), err)
		if out.Kind == OutcomeUpdated {
			return fmt.Sprintf("❌ Failed to update entry: %v", err)
		}
		return fmt.Sprintf("❌ Failed to store attendance: %v", err)
	}

	switch out.Kind {
	case OutcomeUpdated:
		reply := fmt.Sprintf("✅ Updated entry on %s (%s) with:\n➤ Status: %s\n➤ Remarks: %s",
			rec.DateString(), rec.Day, rec.Status, rec.Remarks)
		if out.Changes != "" {
			reply += "\n➤ Changes: " + out.Changes
		}
		return reply
	case OutcomeDuplicateRejected:
		return fmt.Sprintf("⚠️ Duplicate found for %s. Use 'overwrite' or 'update' to modify it.", rec.DateString())
	}
	return fmt.Sprintf("✅ %s marked for %s (%s).\n➤ Remarks: %s",
		rec.Status, rec.DateString(), rec.Day, rec.Remarks)
}

// FormatTimesheet renders one line per record. Empty status or remarks
// are replaced with blank.
func FormatTimesheet(records []types.Record, blank string) string {
	lines := make([]string, len(records))
	for i, r := range records {
		status, remarks := string(r.Status), r.Remarks
		if status == "" {
			status = blank
		}
		if remarks == "" {
			remarks = blank
		}
		lines[i] = fmt.Sprintf("%s (%s) - %s | %s", r.DateString(), r.Day, status, remarks)
	}
	return strings.Join(lines, "\n")
}
