package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gift-card-specific validation errors
var (
	ErrEmptyGiftCardCode     = errors.New("gift card code cannot be empty")
	ErrNonPositiveCardAmount = errors.New("gift card amount must be positive")
	ErrBalanceExceedsFace    = errors.New("gift card balance cannot exceed original amount")
	ErrNegativeBalance       = errors.New("gift card balance cannot be negative")
)

// GiftCardCodeAlphabet is the unambiguous character set used for generated
// codes. It omits 0/O, 1/I and similar look-alikes.
const GiftCardCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// giftCardCodeGroups and giftCardCodeGroupLen define the XXXX-XXXX-XXXX
// code shape: 12 characters in dash-separated groups of four.
const (
	giftCardCodeGroups   = 3
	giftCardCodeGroupLen = 4
)

// GiftCard is balance-bearing redeemable credit. The balance only ever
// decreases once the card is paid, and every redemption appends an
// immutable GiftCardUsage record.
type GiftCard struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`

	OriginalAmount float64 `json:"original_amount"`
	CurrentBalance float64 `json:"current_balance"`

	IsActive bool `json:"is_active"`
	// IsPaid is flipped once the payment intent for the card settles.
	// Unpaid cards are never redeemable.
	IsPaid bool `json:"is_paid"`

	PurchaserID    uuid.UUID `json:"purchaser_id"`
	RecipientEmail string    `json:"recipient_email,omitempty"`
	Message        string    `json:"message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GiftCardUsage is the immutable audit record of one redemption event.
// For any card, the sum of AmountUsed across its usages plus the current
// balance equals the original amount.
type GiftCardUsage struct {
	ID         uuid.UUID `json:"id"`
	GiftCardID uuid.UUID `json:"gift_card_id"`
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	AmountUsed float64   `json:"amount_used"`
	// BalanceAfter captures the card balance immediately after this debit.
	BalanceAfter float64   `json:"balance_after"`
	UsedAt       time.Time `json:"used_at"`
}

// NewGiftCard creates an unpaid, active gift card with the given code and
// face value. The balance starts equal to the original amount.
func NewGiftCard(code string, amount float64, purchaserID uuid.UUID) (*GiftCard, error) {
	card := &GiftCard{
		ID:             uuid.New(),
		Code:           code,
		OriginalAmount: amount,
		CurrentBalance: amount,
		IsActive:       true,
		IsPaid:         false,
		PurchaserID:    purchaserID,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the GiftCard has valid data.
// Returns an error if any field fails validation.
func (g *GiftCard) Validate() error {
	if g.ID == uuid.Nil {
		return ErrInvalidID
	}
	if g.Code == "" {
		return ErrEmptyGiftCardCode
	}
	if !ValidGiftCardCode(g.Code) {
		return ErrInvalidGiftCardCode
	}
	if g.OriginalAmount <= 0 {
		return ErrNonPositiveCardAmount
	}
	if g.CurrentBalance < 0 {
		return ErrNegativeBalance
	}
	if g.CurrentBalance > g.OriginalAmount {
		return ErrBalanceExceedsFace
	}
	return nil
}

// Redeemable reports whether the card can currently be applied to an
// order: it must be active, paid, and carry a positive balance.
func (g *GiftCard) Redeemable() bool {
	return g.IsActive && g.IsPaid && g.CurrentBalance > 0
}

// Debit reduces the balance by the given amount, clamped to the available
// balance, and returns the amount actually applied. The caller records the
// matching usage entry in the same transaction.
func (g *GiftCard) Debit(requested float64) float64 {
	if requested <= 0 {
		return 0
	}
	applied := requested
	if applied > g.CurrentBalance {
		applied = g.CurrentBalance
	}
	applied = RoundCurrency(applied)
	g.CurrentBalance = RoundCurrency(g.CurrentBalance - applied)
	g.UpdatedAt = time.Now().UTC()
	return applied
}

// ValidGiftCardCode reports whether the code matches the XXXX-XXXX-XXXX
// shape using the unambiguous alphabet.
func ValidGiftCardCode(code string) bool {
	groups := strings.Split(code, "-")
	if len(groups) != giftCardCodeGroups {
		return false
	}
	for _, group := range groups {
		if len(group) != giftCardCodeGroupLen {
			return false
		}
		for _, ch := range group {
			if !strings.ContainsRune(GiftCardCodeAlphabet, ch) {
				return false
			}
		}
	}
	return true
}
