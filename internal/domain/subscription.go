package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Subscription-specific validation errors
var (
	ErrInvalidFrequency = errors.New("invalid subscription frequency")
)

// SubscriptionFrequency is how often a recurring cleaning repeats.
type SubscriptionFrequency string

const (
	FrequencyWeekly   SubscriptionFrequency = "weekly"
	FrequencyBiweekly SubscriptionFrequency = "biweekly"
	FrequencyMonthly  SubscriptionFrequency = "monthly"
)

// Valid reports whether the frequency is known.
func (f SubscriptionFrequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// Subscription is a recurring cleaning plan. Scheduling and dispatch of the
// individual visits happens outside this core; the entity records the plan
// itself.
type Subscription struct {
	ID            uuid.UUID             `json:"id"`
	UserID        uuid.UUID             `json:"user_id"`
	ApartmentID   *uuid.UUID            `json:"apartment_id,omitempty"`
	ServiceTypeID uuid.UUID             `json:"service_type_id"`
	Frequency     SubscriptionFrequency `json:"frequency"`
	// DiscountPercent is the recurring-plan discount applied when orders
	// are generated from this subscription.
	DiscountPercent float64   `json:"discount_percent"`
	IsActive        bool      `json:"is_active"`
	StartDate       time.Time `json:"start_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewSubscription creates an active recurring plan for the user.
func NewSubscription(userID, serviceTypeID uuid.UUID, frequency SubscriptionFrequency, startDate time.Time) (*Subscription, error) {
	sub := &Subscription{
		ID:            uuid.New(),
		UserID:        userID,
		ServiceTypeID: serviceTypeID,
		Frequency:     frequency,
		IsActive:      true,
		StartDate:     startDate,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := sub.Validate(); err != nil {
		return nil, err
	}

	return sub, nil
}

// Validate checks if the Subscription has valid data.
func (s *Subscription) Validate() error {
	if s.ID == uuid.Nil {
		return ErrInvalidID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if s.ServiceTypeID == uuid.Nil {
		return ErrEmptyServiceType
	}
	if !s.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if s.DiscountPercent < 0 || s.DiscountPercent > 100 {
		return ErrPercentageOutOfRange
	}
	return nil
}
