package store

import (
	"context"
	"database/sql"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/google/uuid"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The implementation hashes the
	// plaintext Password field before storage and clears it from memory.
	// Returns ErrEmailExists if the email is already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update saves changes to an existing user. If the Password field is
	// set, the implementation re-hashes it before storage.
	Update(ctx context.Context, user *domain.User) error

	// SetFirstTimeOrder flips the user's first-time-customer flag.
	SetFirstTimeOrder(ctx context.Context, id uuid.UUID, firstTime bool) error

	// ListActive returns all active users. Used for special offer fan-out;
	// when firstTimeOnly is true only first-time customers are returned.
	ListActive(ctx context.Context, firstTimeOnly bool) ([]*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	WithTx(tx *sql.Tx) UserStore
}
