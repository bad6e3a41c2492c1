package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Special-offer-specific validation errors
var (
	ErrEmptyOfferName        = errors.New("special offer name cannot be empty")
	ErrNonPositiveDiscount   = errors.New("discount value must be positive")
	ErrPercentageOutOfRange  = errors.New("percentage discount must be between 0 and 100")
	ErrEmptyGrantUser        = errors.New("grant user cannot be empty")
	ErrEmptyGrantOffer       = errors.New("grant offer cannot be empty")
)

// OfferType classifies a special offer.
type OfferType string

const (
	// OfferTypeFirstTime is the one-off discount granted to new customers.
	// Business rule: exactly one active offer of this type exists at a time.
	OfferTypeFirstTime OfferType = "first_time"

	// OfferTypePromotional is a broadly granted campaign offer.
	OfferTypePromotional OfferType = "promotional"

	// OfferTypeSeasonal is a time-boxed campaign offer.
	OfferTypeSeasonal OfferType = "seasonal"
)

// Valid reports whether the offer type is known.
func (t OfferType) Valid() bool {
	switch t {
	case OfferTypeFirstTime, OfferTypePromotional, OfferTypeSeasonal:
		return true
	}
	return false
}

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	// DiscountTypeAmount is a fixed currency amount off the subtotal.
	DiscountTypeAmount DiscountType = "amount"

	// DiscountTypePercentage is a percentage off the subtotal.
	DiscountTypePercentage DiscountType = "percentage"
)

// Valid reports whether the discount type is known.
func (t DiscountType) Valid() bool {
	return t == DiscountTypeAmount || t == DiscountTypePercentage
}

// SpecialOffer is a promotional discount customers can redeem against an
// order. Nil validity bounds mean unbounded in that direction.
type SpecialOffer struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Type OfferType `json:"type"`

	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`

	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`

	IsActive           bool    `json:"is_active"`
	MinimumOrderAmount float64 `json:"minimum_order_amount"`
	// FirstTimeOnly restricts fan-out grants to customers who have not yet
	// placed an order.
	FirstTimeOnly bool `json:"first_time_only"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSpecialOffer is a grant of an offer to a specific user. A grant is
// issued at most once per (user, offer) pair and consumed at most once.
type UserSpecialOffer struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	OfferID uuid.UUID `json:"offer_id"`

	IsUsed bool `json:"is_used"`
	// UsedAt and OrderID are stamped exactly once, when the grant is
	// consumed against an order.
	UsedAt  *time.Time `json:"used_at,omitempty"`
	OrderID *uuid.UUID `json:"order_id,omitempty"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	GrantedAt time.Time  `json:"granted_at"`
}

// NewSpecialOffer creates an active special offer.
// Returns an error if validation fails.
func NewSpecialOffer(name string, offerType OfferType, discountType DiscountType, discountValue float64) (*SpecialOffer, error) {
	offer := &SpecialOffer{
		ID:            uuid.New(),
		Name:          name,
		Type:          offerType,
		DiscountType:  discountType,
		DiscountValue: discountValue,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := offer.Validate(); err != nil {
		return nil, err
	}

	return offer, nil
}

// Validate checks if the SpecialOffer has valid data.
func (o *SpecialOffer) Validate() error {
	if o.ID == uuid.Nil {
		return ErrInvalidID
	}
	if o.Name == "" {
		return ErrEmptyOfferName
	}
	if !o.Type.Valid() {
		return ErrInvalidOfferType
	}
	if !o.DiscountType.Valid() {
		return ErrInvalidDiscountType
	}
	if o.DiscountValue <= 0 {
		return ErrNonPositiveDiscount
	}
	if o.DiscountType == DiscountTypePercentage && o.DiscountValue > 100 {
		return ErrPercentageOutOfRange
	}
	if o.MinimumOrderAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// InValidityWindow reports whether now falls inside [ValidFrom, ValidTo).
// A nil bound is unbounded in that direction.
func (o *SpecialOffer) InValidityWindow(now time.Time) bool {
	if o.ValidFrom != nil && now.Before(*o.ValidFrom) {
		return false
	}
	if o.ValidTo != nil && !now.Before(*o.ValidTo) {
		return false
	}
	return true
}

// DiscountFor computes the discount this offer yields on the given
// subtotal, rounded to cents. Returns zero when the subtotal is below the
// offer's minimum order amount.
func (o *SpecialOffer) DiscountFor(subtotal float64) float64 {
	if subtotal < o.MinimumOrderAmount {
		return 0
	}

	var discount float64
	switch o.DiscountType {
	case DiscountTypePercentage:
		discount = subtotal * o.DiscountValue / 100
	case DiscountTypeAmount:
		discount = o.DiscountValue
	}

	if discount > subtotal {
		discount = subtotal
	}
	return RoundCurrency(discount)
}

// NewUserSpecialOffer creates a fresh, unused grant of the offer to the user.
func NewUserSpecialOffer(userID, offerID uuid.UUID, expiresAt *time.Time) (*UserSpecialOffer, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyGrantUser
	}
	if offerID == uuid.Nil {
		return nil, ErrEmptyGrantOffer
	}

	return &UserSpecialOffer{
		ID:        uuid.New(),
		UserID:    userID,
		OfferID:   offerID,
		ExpiresAt: expiresAt,
		GrantedAt: time.Now().UTC(),
	}, nil
}

// Expired reports whether the grant itself has lapsed.
// A nil ExpiresAt never expires.
func (g *UserSpecialOffer) Expired(now time.Time) bool {
	return g.ExpiresAt != nil && !g.ExpiresAt.After(now)
}

// Redeemable reports whether the grant can still be consumed at the given
// time.
func (g *UserSpecialOffer) Redeemable(now time.Time) bool {
	return !g.IsUsed && !g.Expired(now)
}
