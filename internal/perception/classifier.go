package perception

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"timekeeper/internal/logging"
	"timekeeper/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)
	monthPattern = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)

	greetings = map[string]bool{"hi": true, "hello": true, "hey": true}
)

// rule is one entry of the ordered classification table.
type rule struct {
	name  string
	match func(lower string) bool
	build func(ctx context.Context, c *Classifier, message, lower string) (Intent, error)
}

// Classifier maps messages to intents.
type Classifier struct {
	extractor Extractor
	now       func() time.Time
	rules     []rule
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithClock overrides the clock used to resolve "today".
func WithClock(now func() time.Time) ClassifierOption {
	return func(c *Classifier) { c.now = now }
}

// NewClassifier creates a classifier that uses ex for remark extraction.
func NewClassifier(ex Extractor, opts ...ClassifierOption) *Classifier {
	c := &Classifier{extractor: ex, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.rules = defaultRules()
	return c
}

// defaultRules is the priority order. Later rules are reachable only when
// every earlier one fails, e.g. "salary" short-circuits attendance parsing.
func defaultRules() []rule {
	return []rule{
		{
			name:  "greet",
			match: func(lower string) bool { return greetings[lower] },
			build: func(_ context.Context, _ *Classifier, msg, _ string) (Intent, error) {
				return Intent{Action: ActionGreet, Message: msg}, nil
			},
		},
		{
			name:  "email",
			match: containsAny("email", "send mail"),
			build: func(_ context.Context, _ *Classifier, msg, _ string) (Intent, error) {
				to := emailPattern.FindString(msg)
				if to == "" {
					return Intent{Action: ActionSendEmail, Message: msg}, types.ErrMissingRecipient
				}
				return Intent{Action: ActionSendEmail, Message: msg, Recipient: to}, nil
			},
		},
		{
			name:  "salary",
			match: containsAny("salary"),
			build: func(_ context.Context, _ *Classifier, msg, _ string) (Intent, error) {
				return Intent{Action: ActionComputeSalary, Message: msg}, nil
			},
		},
		{
			// The target is always today; dates in the message are not parsed.
			name:  "clear",
			match: containsAny("clear", "remove"),
			build: func(_ context.Context, c *Classifier, msg, _ string) (Intent, error) {
				return Intent{Action: ActionClearEntry, Message: msg, Date: types.Today(c.now())}, nil
			},
		},
		{
			name:  "timesheet",
			match: containsAny("timesheet"),
			build: func(_ context.Context, _ *Classifier, msg, lower string) (Intent, error) {
				if m := monthPattern.FindString(lower); m != "" {
					month, _ := types.ParseMonth(m)
					return Intent{Action: ActionFetchMonthlyTimesheet, Message: msg, Month: month.String()}, nil
				}
				return Intent{Action: ActionFetchAllTimesheet, Message: msg}, nil
			},
		},
		{
			name:  "attendance",
			match: func(string) bool { return true },
			build: func(ctx context.Context, c *Classifier, msg, lower string) (Intent, error) {
				remarks, err := c.ExtractRemarks(ctx, msg)
				if err != nil {
					return Intent{Action: ActionMarkAttendance, Message: msg}, err
				}
				return Intent{
					Action:    ActionMarkAttendance,
					Message:   msg,
					Date:      types.Today(c.now()),
					Status:    DetectStatus(lower),
					Remarks:   remarks,
					Overwrite: WantsOverwrite(lower),
				}, nil
			},
		},
	}
}

func containsAny(needles ...string) func(string) bool {
	return func(lower string) bool {
		for _, n := range needles {
			if strings.Contains(lower, n) {
				return true
			}
		}
		return false
	}
}

// Classify returns the intent of message. A SendEmail intent without an
// address returns types.ErrMissingRecipient; extraction failures return an
// error wrapping types.ErrExternalService.
func (c *Classifier) Classify(ctx context.Context, message string) (Intent, error) {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, r := range c.rules {
		if !r.match(lower) {
			continue
		}
		intent, err := r.build(ctx, c, message, lower)
		logging.IntentDebug("rule=%s action=%s err=%v", r.name, intent.Action, err)
		return intent, err
	}
	// The attendance rule matches everything.
	return Intent{}, fmt.Errorf("no rule matched %q", message)
}

// ExtractRemarks asks the extractor for the work description in message.
func (c *Classifier) ExtractRemarks(ctx context.Context, message string) (string, error) {
	if c.extractor == nil {
		return "", fmt.Errorf("%w: no text extractor configured", types.ErrExternalService)
	}
	out, err := c.extractor.ExtractWorkDescription(ctx, WorkPrompt(message))
	if err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrExternalService, err)
	}
	return strings.TrimSpace(out), nil
}

// DetectStatus infers the attendance status from a lowercased message.
func DetectStatus(lower string) types.Status {
	switch {
	case strings.Contains(lower, "absent"):
		return types.StatusAbsent
	case strings.Contains(lower, "week off"), strings.Contains(lower, "leave"), strings.Contains(lower, "off"):
		return types.StatusWeekOff
	}
	return types.StatusPresent
}

// WantsOverwrite reports whether a lowercased message explicitly asks to
// replace an existing entry.
func WantsOverwrite(lower string) bool {
	return strings.Contains(lower, "overwrite") || strings.Contains(lower, "update")
}

// WantsDownload reports whether the chat surface should offer the
// timesheet file for message.
func WantsDownload(message string) bool {
	return strings.Contains(strings.ToLower(message), "timesheet")
}
