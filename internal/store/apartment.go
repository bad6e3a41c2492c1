package store

import (
	"context"
	"database/sql"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/google/uuid"
)

// ApartmentStore defines the interface for apartment data persistence.
type ApartmentStore interface {
	// Create saves a new apartment.
	Create(ctx context.Context, apartment *domain.Apartment) error

	// GetByID retrieves an apartment by its unique ID.
	// Returns ErrApartmentNotFound if the apartment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error)

	// ListByUser returns all apartments owned by the user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Apartment, error)

	// Update saves changes to an existing apartment.
	Update(ctx context.Context, apartment *domain.Apartment) error

	// Delete removes an apartment from the store.
	// Returns ErrApartmentNotFound if the apartment does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ApartmentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ApartmentStore
}
