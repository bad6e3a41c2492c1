package store

import (
	"context"
	"database/sql"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/google/uuid"
)

// CatalogStore defines read access to the service catalog: service types,
// services and extra services. The pricing engine treats a missing catalog
// item as an expected absence, so implementations return the dedicated
// not-found sentinels rather than generic errors.
type CatalogStore interface {
	// GetServiceType retrieves a service type by ID.
	// Returns ErrServiceTypeNotFound if it does not exist.
	GetServiceType(ctx context.Context, id uuid.UUID) (*domain.ServiceType, error)

	// GetService retrieves a catalog service by ID.
	// Returns ErrServiceNotFound if it does not exist.
	GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error)

	// GetExtraService retrieves an extra service by ID.
	// Returns ErrExtraServiceNotFound if it does not exist.
	GetExtraService(ctx context.Context, id uuid.UUID) (*domain.ExtraService, error)

	// ListServiceTypes returns all active service types.
	ListServiceTypes(ctx context.Context) ([]*domain.ServiceType, error)

	// ListServices returns all active catalog services.
	ListServices(ctx context.Context) ([]*domain.Service, error)

	// ListExtraServices returns all active extra services.
	ListExtraServices(ctx context.Context) ([]*domain.ExtraService, error)

	// WithTx returns a new CatalogStore instance that uses the provided
	// transaction, so pricing lookups can share the order transaction.
	WithTx(tx *sql.Tx) CatalogStore
}
