package store

import (
	"context"
	"database/sql"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/google/uuid"
)

// GiftCardStore defines the interface for gift card and usage persistence.
// The usage history is append-only: usages are created, never updated or
// deleted.
type GiftCardStore interface {
	// Create saves a new gift card.
	// Returns ErrGiftCardCodeExists if the code is already taken.
	Create(ctx context.Context, card *domain.GiftCard) error

	// GetByID retrieves a gift card by its unique ID.
	// Returns ErrGiftCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GiftCard, error)

	// GetByCode retrieves a gift card by its redemption code.
	// Returns ErrGiftCardNotFound if the card does not exist.
	GetByCode(ctx context.Context, code string) (*domain.GiftCard, error)

	// GetByCodeForUpdate retrieves a gift card by code while taking a
	// row-level lock, so concurrent redemptions of the same card serialize.
	// IMPORTANT: only meaningful within a transaction; use WithTx.
	GetByCodeForUpdate(ctx context.Context, code string) (*domain.GiftCard, error)

	// CodeExists reports whether any card already uses the given code.
	CodeExists(ctx context.Context, code string) (bool, error)

	// SetPaid marks the card as paid, making it redeemable.
	// Returns ErrGiftCardNotFound if the card does not exist.
	SetPaid(ctx context.Context, id uuid.UUID) error

	// UpdateBalance persists a new current balance for the card.
	// IMPORTANT: the debit and the matching CreateUsage MUST share one
	// transaction; a balance change without a usage record (or vice versa)
	// must never be observable.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error

	// CreateUsage appends an immutable redemption record.
	CreateUsage(ctx context.Context, usage *domain.GiftCardUsage) error

	// ListUsages returns the card's redemption history, oldest first.
	ListUsages(ctx context.Context, cardID uuid.UUID) ([]*domain.GiftCardUsage, error)

	// WithTx returns a new GiftCardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) GiftCardStore
}
