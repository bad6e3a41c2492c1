package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/freshnest/freshnest-api/internal/events"
	"github.com/freshnest/freshnest-api/internal/platform/mailer"
	"github.com/freshnest/freshnest-api/internal/redact"
)

// MailEventHandler implements the events.EventHandler interface by
// converting notification events into send_mail tasks and submitting
// them to the runner. Composition happens synchronously; the SMTP round
// trip happens on a worker.
type MailEventHandler struct {
	runner *Runner
	mailer mailer.Mailer
	logger *slog.Logger
}

// NewMailEventHandler creates an event handler that delivers notification
// email through the given mailer, using the runner for background execution.
func NewMailEventHandler(runner *Runner, m mailer.Mailer, logger *slog.Logger) *MailEventHandler {
	return &MailEventHandler{
		runner: runner,
		mailer: m,
		logger: logger.With("component", "mail_event_handler"),
	}
}

// HandleEvent composes the email for the event and submits a send task.
// Unknown event types are ignored.
func (h *MailEventHandler) HandleEvent(ctx context.Context, event *events.NotificationEvent) error {
	msg, err := h.compose(event)
	if err != nil {
		h.logger.Error("failed to compose notification mail",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type)
		return fmt.Errorf("failed to compose notification mail: %w", err)
	}
	if msg == nil {
		h.logger.Debug("ignoring event with no mail notification",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	send := *msg
	if err := h.runner.Submit(NewFunc(TaskTypeSendMail, func(ctx context.Context) error {
		return h.mailer.Send(ctx, send)
	})); err != nil {
		return fmt.Errorf("failed to submit mail task: %w", err)
	}

	h.logger.Debug("mail task submitted",
		"event_id", event.ID,
		"event_type", event.Type,
		"to", redact.String(msg.To))
	return nil
}

// compose builds the message for a given event type. A nil message with
// a nil error means the event carries no email notification.
func (h *MailEventHandler) compose(event *events.NotificationEvent) (*mailer.Message, error) {
	switch event.Type {
	case events.TypeUserRegistered:
		var p events.UserRegisteredPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, err
		}
		return &mailer.Message{
			To:      p.Email,
			Subject: "Welcome to FreshNest",
			Body: fmt.Sprintf(
				"<p>Hi %s,</p><p>Your FreshNest account is ready. Book your first cleaning any time.</p>",
				p.FirstName),
		}, nil

	case events.TypeOfferGranted:
		var p events.OfferGrantedPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, err
		}
		body := fmt.Sprintf("<p>Good news! The offer <b>%s</b> has been added to your account.</p>", p.OfferName)
		if p.ExpiresAt != nil {
			body += fmt.Sprintf("<p>Use it before %s.</p>", p.ExpiresAt.Format("January 2, 2006"))
		}
		return &mailer.Message{
			To:      p.Email,
			Subject: "A new offer is waiting for you",
			Body:    body,
		}, nil

	case events.TypeGiftCardPurchased:
		var p events.GiftCardPurchasedPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, err
		}
		body := fmt.Sprintf(
			"<p>You've received a FreshNest gift card worth $%.2f.</p><p>Your code: <b>%s</b></p>",
			p.Amount, p.Code)
		if p.Message != "" {
			body += fmt.Sprintf("<p>Message from the sender: %s</p>", p.Message)
		}
		return &mailer.Message{
			To:      p.RecipientEmail,
			Subject: "You've received a FreshNest gift card",
			Body:    body,
		}, nil

	case events.TypeOrderCancelled:
		var p events.OrderCancelledPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, err
		}
		return &mailer.Message{
			To:      p.Email,
			Subject: "Your cleaning has been cancelled",
			Body: fmt.Sprintf(
				"<p>Your cleaning scheduled for %s has been cancelled. Any gift card funds used on this order have been returned to your balance.</p>",
				p.ServiceDate.Format("January 2, 2006 at 3:04 PM")),
		}, nil
	}

	return nil, nil
}

// Ensure MailEventHandler implements events.EventHandler
var _ events.EventHandler = (*MailEventHandler)(nil)
