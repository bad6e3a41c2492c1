package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/platform/logger"
	"github.com/freshnest/freshnest-api/internal/store"
)

// PostgresCatalogStore implements the store.CatalogStore interface
// using a PostgreSQL database as the storage backend. The catalog is
// read-mostly; administration of catalog rows happens out of band.
type PostgresCatalogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCatalogStore creates a new PostgreSQL implementation of the
// CatalogStore interface.
func NewPostgresCatalogStore(db store.DBTX, log *slog.Logger) *PostgresCatalogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresCatalogStore{
		db:     db,
		logger: log.With(slog.String("component", "catalog_store")),
	}
}

// Ensure PostgresCatalogStore implements store.CatalogStore interface
var _ store.CatalogStore = (*PostgresCatalogStore)(nil)

// GetServiceType implements store.CatalogStore.GetServiceType
// Returns store.ErrServiceTypeNotFound if it does not exist.
func (s *PostgresCatalogStore) GetServiceType(ctx context.Context, id uuid.UUID) (*domain.ServiceType, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, base_price, base_duration, is_active, created_at, updated_at
		FROM service_types
		WHERE id = $1
	`

	var st domain.ServiceType
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&st.ID,
		&st.Name,
		&st.BasePrice,
		&st.BaseDuration,
		&st.IsActive,
		&st.CreatedAt,
		&st.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrServiceTypeNotFound
		}
		log.Error("failed to get service type",
			slog.String("error", err.Error()),
			slog.String("service_type_id", id.String()))
		return nil, MapError(err)
	}

	return &st, nil
}

// GetService implements store.CatalogStore.GetService
// Returns store.ErrServiceNotFound if it does not exist.
func (s *PostgresCatalogStore) GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, cost, duration, is_active, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	var svc domain.Service
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&svc.ID,
		&svc.Name,
		&svc.Cost,
		&svc.Duration,
		&svc.IsActive,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrServiceNotFound
		}
		log.Error("failed to get service",
			slog.String("error", err.Error()),
			slog.String("service_id", id.String()))
		return nil, MapError(err)
	}

	return &svc, nil
}

// GetExtraService implements store.CatalogStore.GetExtraService
// Returns store.ErrExtraServiceNotFound if it does not exist.
func (s *PostgresCatalogStore) GetExtraService(ctx context.Context, id uuid.UUID) (*domain.ExtraService, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, price, duration, is_hour_based, is_active, created_at, updated_at
		FROM extra_services
		WHERE id = $1
	`

	var extra domain.ExtraService
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&extra.ID,
		&extra.Name,
		&extra.Price,
		&extra.Duration,
		&extra.IsHourBased,
		&extra.IsActive,
		&extra.CreatedAt,
		&extra.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrExtraServiceNotFound
		}
		log.Error("failed to get extra service",
			slog.String("error", err.Error()),
			slog.String("extra_service_id", id.String()))
		return nil, MapError(err)
	}

	return &extra, nil
}

// ListServiceTypes implements store.CatalogStore.ListServiceTypes
func (s *PostgresCatalogStore) ListServiceTypes(ctx context.Context) ([]*domain.ServiceType, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, base_price, base_duration, is_active, created_at, updated_at
		FROM service_types
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list service types", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var types []*domain.ServiceType
	for rows.Next() {
		var st domain.ServiceType
		if err := rows.Scan(
			&st.ID,
			&st.Name,
			&st.BasePrice,
			&st.BaseDuration,
			&st.IsActive,
			&st.CreatedAt,
			&st.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		types = append(types, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return types, nil
}

// ListServices implements store.CatalogStore.ListServices
func (s *PostgresCatalogStore) ListServices(ctx context.Context) ([]*domain.Service, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, cost, duration, is_active, created_at, updated_at
		FROM services
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list services", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var services []*domain.Service
	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(
			&svc.ID,
			&svc.Name,
			&svc.Cost,
			&svc.Duration,
			&svc.IsActive,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		services = append(services, &svc)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return services, nil
}

// ListExtraServices implements store.CatalogStore.ListExtraServices
func (s *PostgresCatalogStore) ListExtraServices(ctx context.Context) ([]*domain.ExtraService, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, price, duration, is_hour_based, is_active, created_at, updated_at
		FROM extra_services
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list extra services", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var extras []*domain.ExtraService
	for rows.Next() {
		var extra domain.ExtraService
		if err := rows.Scan(
			&extra.ID,
			&extra.Name,
			&extra.Price,
			&extra.Duration,
			&extra.IsHourBased,
			&extra.IsActive,
			&extra.CreatedAt,
			&extra.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		extras = append(extras, &extra)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return extras, nil
}

// WithTx implements store.CatalogStore.WithTx
func (s *PostgresCatalogStore) WithTx(tx *sql.Tx) store.CatalogStore {
	return &PostgresCatalogStore{
		db:     tx,
		logger: s.logger,
	}
}
