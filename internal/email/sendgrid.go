// Package email renders and delivers transactional email through SendGrid.
package email

import (
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/summitprep/satprep-backend/internal/config"
)

// ErrNotConfigured is returned when no SendGrid API key is set. The worker
// logs the message content instead of sending, so dev environments work
// without credentials.
var ErrNotConfigured = errors.New("sendgrid api key not configured")

// Sender delivers rendered messages through the SendGrid v3 API.
type Sender struct {
	client *sendgrid.Client
	from   *sgmail.Email
	apiKey string
}

// NewSender creates a Sender from configuration.
func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   sgmail.NewEmail(cfg.EmailFromName, cfg.EmailFromAddr),
		apiKey: cfg.SendGridAPIKey,
	}
}

// Send delivers one message. Returns ErrNotConfigured when no API key is set.
func (s *Sender) Send(toName, toAddr, subject, plain, html string) error {
	if s.apiKey == "" {
		return ErrNotConfigured
	}

	msg := sgmail.NewSingleEmail(s.from, subject, sgmail.NewEmail(toName, toAddr), plain, html)
	resp, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
