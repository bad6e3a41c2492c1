package store

import (
	"context"
	"database/sql"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/google/uuid"
)

// OrderStore defines the interface for order data persistence.
type OrderStore interface {
	// Create saves a new order together with all of its line items.
	// IMPORTANT: This method MUST be run within a transaction so the order
	// row and its line items are inserted atomically. Use WithTx together
	// with store.RunInTransaction.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique ID, including line items.
	// Returns ErrOrderNotFound if the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// ListByUser returns the user's orders, newest first, without line items.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)

	// Update saves the order's money fields and replaces all of its line
	// items (remove-then-recreate, not diff-patch).
	// IMPORTANT: This method MUST be run within a transaction; the delete
	// and re-insert of line items is not atomic otherwise.
	Update(ctx context.Context, order *domain.Order) error

	// UpdateStatus sets the order's lifecycle status.
	// Returns ErrOrderNotFound if the order does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error

	// WithTx returns a new OrderStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) OrderStore
}
