// Package perception turns a raw chat message into an Intent.
//
// Classification is a fixed, ordered list of keyword rules evaluated on the
// lowercased, trimmed message; the first rule that matches wins. Only the
// final MarkAttendance rule reaches outside the process, asking a text model
// to isolate the work description.
package perception

import (
	"time"

	"timekeeper/internal/types"
)

// Action is the operation a message maps to.
type Action int

const (
	ActionGreet Action = iota
	ActionSendEmail
	ActionComputeSalary
	ActionClearEntry
	ActionFetchMonthlyTimesheet
	ActionFetchAllTimesheet
	ActionMarkAttendance
)

func (a Action) String() string {
	switch a {
	case ActionGreet:
		return "greet"
	case ActionSendEmail:
		return "send_email"
	case ActionComputeSalary:
		return "compute_salary"
	case ActionClearEntry:
		return "clear_entry"
	case ActionFetchMonthlyTimesheet:
		return "fetch_monthly_timesheet"
	case ActionFetchAllTimesheet:
		return "fetch_all_timesheet"
	case ActionMarkAttendance:
		return "mark_attendance"
	}
	return "unknown"
}

// Intent is the classified form of one message. Only the fields relevant
// to Action are set.
type Intent struct {
	Action  Action
	Message string // original, untrimmed text

	// SendEmail
	Recipient string

	// ClearEntry and MarkAttendance: always today's local date
	Date time.Time

	// FetchMonthlyTimesheet: canonical month name, e.g. "July"
	Month string

	// MarkAttendance
	Status    types.Status
	Remarks   string
	Overwrite bool // message asked for "overwrite" or "update"
}
