package events

import (
	"time"

	"github.com/google/uuid"
)

// Payload structures for the well-known event types. Services marshal
// these when emitting; handlers unmarshal them on the other side.

// UserRegisteredPayload accompanies TypeUserRegistered.
type UserRegisteredPayload struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
}

// OfferGrantedPayload accompanies TypeOfferGranted.
type OfferGrantedPayload struct {
	UserID    uuid.UUID  `json:"user_id"`
	Email     string     `json:"email"`
	OfferName string     `json:"offer_name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// GiftCardPurchasedPayload accompanies TypeGiftCardPurchased.
type GiftCardPurchasedPayload struct {
	GiftCardID     uuid.UUID `json:"gift_card_id"`
	RecipientEmail string    `json:"recipient_email"`
	Code           string    `json:"code"`
	Amount         float64   `json:"amount"`
	Message        string    `json:"message,omitempty"`
}

// OrderCancelledPayload accompanies TypeOrderCancelled.
type OrderCancelledPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	Email       string    `json:"email"`
	ServiceDate time.Time `json:"service_date"`
}
