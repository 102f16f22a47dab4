package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"roombooking/internal/config"
)

// Mailer delivers one email to one recipient.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, plainText, html string) error
}

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridMailer struct {
	client sendGridClient
	from   *mail.Email
	log    *logrus.Logger
}

// NewMailer returns a SendGrid mailer, or one that only logs when the API key
// or sender address is not configured.
func NewMailer(cfg config.SendGridConfig, log *logrus.Logger) Mailer {
	if cfg.APIKey == "" || cfg.FromEmail == "" {
		log.Warn("SENDGRID_API_KEY or SENDGRID_FROM_EMAIL not set, emails will only be logged")
		return &logMailer{log: log}
	}
	return &sendGridMailer{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		log:    log,
	}
}

func (m *sendGridMailer) Send(ctx context.Context, toEmail, toName, subject, plainText, html string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toEmail), plainText, html)
	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", toEmail, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	m.log.WithFields(logrus.Fields{"to": toEmail, "subject": subject, "status": response.StatusCode}).Info("email sent")
	return nil
}

type logMailer struct {
	log *logrus.Logger
}

func (m *logMailer) Send(_ context.Context, toEmail, _, subject, _, _ string) error {
	m.log.WithFields(logrus.Fields{"to": toEmail, "subject": subject}).Info("email delivery disabled, skipping")
	return nil
}
