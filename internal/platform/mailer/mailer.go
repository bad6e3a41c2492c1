// Package mailer provides outbound email delivery for notification
// messages. Delivery is best-effort: callers treat a send failure as a
// logged warning, never as a failure of the operation that triggered it.
package mailer

import (
	"context"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/freshnest/freshnest-api/internal/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends notification email.
type Mailer interface {
	// Send delivers a single message. The context bounds the SMTP
	// round trip.
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail through an SMTP server using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer from the given SMTP settings.
func NewSMTPMailer(cfg config.MailConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger.With("component", "smtp_mailer"),
	}
}

// Send delivers the message, honoring context cancellation. gomail's
// DialAndSend has no context support, so the send runs in a goroutine
// and the result is abandoned if the context expires first.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.Body)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(gm)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return err
		}
	}

	m.logger.Debug("mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// NoopMailer discards all messages. It is used when no SMTP host is
// configured, so the rest of the application never has to check whether
// mail is enabled.
type NoopMailer struct {
	logger *slog.Logger
}

// NewNoopMailer creates a mailer that logs and drops every message.
func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	return &NoopMailer{logger: logger.With("component", "noop_mailer")}
}

// Send logs the message and returns nil.
func (m *NoopMailer) Send(_ context.Context, msg Message) error {
	m.logger.Debug("mail delivery disabled, dropping message",
		"to", msg.To,
		"subject", msg.Subject)
	return nil
}

// FromConfig returns an SMTP mailer when a host is configured, and a
// noop mailer otherwise.
func FromConfig(cfg config.MailConfig, logger *slog.Logger) Mailer {
	if cfg.Host == "" {
		return NewNoopMailer(logger)
	}
	return NewSMTPMailer(cfg, logger)
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*NoopMailer)(nil)
)
