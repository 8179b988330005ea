// Package mail delivers the timesheet report over email.
package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"timekeeper/internal/config"
	"timekeeper/internal/logging"
	"timekeeper/internal/types"
)

const (
	// AttachmentName is the filename recipients see.
	AttachmentName = "attendance.xlsx"
	// AttachmentType is the xlsx MIME type.
	AttachmentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Report is one outbound timesheet email.
type Report struct {
	Subject        string
	Body           string
	AttachmentPath string
	Recipient      string
}

// Sender delivers reports. A nil error means the transport accepted it.
type Sender interface {
	SendReport(ctx context.Context, r Report) error
}

// SendFunc posts a prepared message. It matches sendgrid.Client.SendWithContext.
type SendFunc func(ctx context.Context, m *sgmail.SGMailV3) (*rest.Response, error)

// SendGridSender implements Sender with the SendGrid v3 API.
type SendGridSender struct {
	from string
	send SendFunc
}

// SendGridOption configures a SendGridSender.
type SendGridOption func(*SendGridSender)

// WithSendFunc replaces the HTTP transport, mainly for tests.
func WithSendFunc(fn SendFunc) SendGridOption {
	return func(s *SendGridSender) { s.send = fn }
}

// NewSendGridSender creates a sender authenticated with apiKey that sends
// from the verified address from.
func NewSendGridSender(apiKey, from string, opts ...SendGridOption) *SendGridSender {
	s := &SendGridSender{from: from}
	client := sendgrid.NewSendClient(apiKey)
	s.send = client.SendWithContext
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSenderFromConfig builds the configured transport.
func NewSenderFromConfig(cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case "", "sendgrid":
		if !cfg.Enabled() {
			return nil, fmt.Errorf("sendgrid needs SENDGRID_API_KEY and FROM_EMAIL")
		}
		return NewSendGridSender(cfg.APIKey, cfg.From), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.Provider)
	}
}

// Build assembles the SendGrid message for r, reading and encoding the
// attachment.
func (s *SendGridSender) Build(r Report) (*sgmail.SGMailV3, error) {
	if strings.TrimSpace(r.Recipient) == "" {
		return nil, types.ErrMissingRecipient
	}
	data, err := os.ReadFile(r.AttachmentPath)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	m := sgmail.NewV3MailInit(
		sgmail.NewEmail("", s.from),
		r.Subject,
		sgmail.NewEmail("", r.Recipient),
		sgmail.NewContent("text/plain", r.Body),
	)

	a := sgmail.NewAttachment()
	a.SetContent(base64.StdEncoding.EncodeToString(data))
	a.SetType(AttachmentType)
	a.SetFilename(AttachmentName)
	a.SetDisposition("attachment")
	m.AddAttachment(a)
	return m, nil
}

// SendReport sends r. Transport failures and non-2xx replies wrap
// types.ErrExternalService.
func (s *SendGridSender) SendReport(ctx context.Context, r Report) error {
	m, err := s.Build(r)
	if err != nil {
		return err
	}

	resp, err := s.send(ctx, m)
	if err != nil {
		logging.MailError("send to %s failed: %v", r.Recipient, err)
		return fmt.Errorf("%w: sendgrid: %w", types.ErrExternalService, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logging.MailError("send to %s rejected: status=%d body=%s", r.Recipient, resp.StatusCode, resp.Body)
		return fmt.Errorf("%w: sendgrid returned status %d", types.ErrExternalService, resp.StatusCode)
	}

	logging.Mail("report sent to %s (status=%d)", r.Recipient, resp.StatusCode)
	return nil
}
