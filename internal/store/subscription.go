package store

import (
	"context"
	"database/sql"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/google/uuid"
)

// SubscriptionStore defines the interface for recurring plan persistence.
type SubscriptionStore interface {
	// Create saves a new subscription.
	Create(ctx context.Context, sub *domain.Subscription) error

	// GetByID retrieves a subscription by its unique ID.
	// Returns ErrSubscriptionNotFound if the subscription does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)

	// ListByUser returns all subscriptions owned by the user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error)

	// Update saves changes to an existing subscription.
	Update(ctx context.Context, sub *domain.Subscription) error

	// WithTx returns a new SubscriptionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SubscriptionStore
}
