package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/google/uuid"
)

// SpecialOfferStore defines the interface for special offer and grant
// persistence.
type SpecialOfferStore interface {
	// CreateOffer saves a new special offer.
	CreateOffer(ctx context.Context, offer *domain.SpecialOffer) error

	// GetOffer retrieves an offer by its unique ID.
	// Returns ErrOfferNotFound if the offer does not exist.
	GetOffer(ctx context.Context, id uuid.UUID) (*domain.SpecialOffer, error)

	// GetActiveOfferByType returns the single active offer of the given
	// type. Returns ErrOfferNotFound if none exists.
	GetActiveOfferByType(ctx context.Context, offerType domain.OfferType) (*domain.SpecialOffer, error)

	// GetOfferByName resolves a promo code to its offer. Names are not
	// unique; the newest offer wins. Returns ErrOfferNotFound if no offer
	// carries the name.
	GetOfferByName(ctx context.Context, name string) (*domain.SpecialOffer, error)

	// UpdateOffer saves changes to an existing offer.
	UpdateOffer(ctx context.Context, offer *domain.SpecialOffer) error

	// CreateGrant issues a grant to a user.
	// Returns ErrGrantExists if the (user, offer) pair already holds one.
	CreateGrant(ctx context.Context, grant *domain.UserSpecialOffer) error

	// GrantExists reports whether the (user, offer) pair already holds a grant.
	GrantExists(ctx context.Context, userID, offerID uuid.UUID) (bool, error)

	// GetUnusedGrantForUpdate retrieves the unused grant for the exact
	// (user, offer) pair while taking a row-level lock, so concurrent
	// redemptions serialize. Returns ErrGrantNotFound if no unused grant
	// exists (never granted, or already consumed).
	// IMPORTANT: only meaningful within a transaction; use WithTx.
	GetUnusedGrantForUpdate(ctx context.Context, userID, offerID uuid.UUID) (*domain.UserSpecialOffer, error)

	// MarkGrantUsed consumes the grant: sets is_used, stamps the usage time
	// and the consuming order. The update is guarded by is_used = FALSE so
	// a grant can never be consumed twice; returns ErrGrantNotFound when
	// the guard rejects the update.
	MarkGrantUsed(ctx context.Context, grantID, orderID uuid.UUID, usedAt time.Time) error

	// ListUnusedGrants returns the user's unconsumed grants.
	ListUnusedGrants(ctx context.Context, userID uuid.UUID) ([]*domain.UserSpecialOffer, error)

	// WithTx returns a new SpecialOfferStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SpecialOfferStore
}
