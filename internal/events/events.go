package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Well-known notification event types.
const (
	// TypeUserRegistered fires after a successful registration; handlers
	// send the welcome email.
	TypeUserRegistered = "user.registered"

	// TypeOfferGranted fires when a special offer is granted to a user.
	TypeOfferGranted = "offer.granted"

	// TypeGiftCardPurchased fires when a gift card purchase is recorded;
	// handlers deliver the card code to the recipient.
	TypeGiftCardPurchased = "giftcard.purchased"

	// TypeOrderCancelled fires after a successful cancellation.
	TypeOrderCancelled = "order.cancelled"
)

// NotificationEvent represents a fact that side-effect handlers react to.
// It contains the necessary information for notification delivery without
// direct dependencies on the mailer or task packages.
type NotificationEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the kind of notification that should be produced
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *NotificationEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewNotificationEvent creates a new NotificationEvent with the specified type and payload.
func NewNotificationEvent(eventType string, payload interface{}) (*NotificationEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &NotificationEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *NotificationEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *NotificationEvent) error
}
