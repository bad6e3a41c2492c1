package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/platform/logger"
	"github.com/freshnest/freshnest-api/internal/store"
)

// PostgresApartmentStore implements the store.ApartmentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresApartmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresApartmentStore creates a new PostgreSQL implementation of the
// ApartmentStore interface.
func NewPostgresApartmentStore(db store.DBTX, log *slog.Logger) *PostgresApartmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresApartmentStore{
		db:     db,
		logger: log.With(slog.String("component", "apartment_store")),
	}
}

// Ensure PostgresApartmentStore implements store.ApartmentStore interface
var _ store.ApartmentStore = (*PostgresApartmentStore)(nil)

const apartmentColumns = `id, user_id, name, address, city, zip_code,
	bedrooms, bathrooms, created_at, updated_at`

// Create implements store.ApartmentStore.Create
// Returns store.ErrInvalidEntity if the owning user does not exist.
func (s *PostgresApartmentStore) Create(ctx context.Context, apartment *domain.Apartment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := apartment.Validate(); err != nil {
		log.Warn("apartment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("apartment_id", apartment.ID.String()))
		return err
	}

	query := `
		INSERT INTO apartments (` + apartmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		apartment.ID,
		apartment.UserID,
		apartment.Name,
		apartment.Address,
		apartment.City,
		apartment.ZipCode,
		apartment.Bedrooms,
		apartment.Bathrooms,
		apartment.CreatedAt,
		apartment.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, apartment.UserID)
		}
		log.Error("failed to create apartment",
			slog.String("error", err.Error()),
			slog.String("apartment_id", apartment.ID.String()))
		return MapError(err)
	}

	log.Info("apartment created successfully",
		slog.String("apartment_id", apartment.ID.String()),
		slog.String("user_id", apartment.UserID.String()))
	return nil
}

// GetByID implements store.ApartmentStore.GetByID
// Returns store.ErrApartmentNotFound if the apartment does not exist.
func (s *PostgresApartmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + apartmentColumns + ` FROM apartments WHERE id = $1`

	var apt domain.Apartment
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&apt.ID,
		&apt.UserID,
		&apt.Name,
		&apt.Address,
		&apt.City,
		&apt.ZipCode,
		&apt.Bedrooms,
		&apt.Bathrooms,
		&apt.CreatedAt,
		&apt.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrApartmentNotFound
		}
		log.Error("failed to get apartment by ID",
			slog.String("error", err.Error()),
			slog.String("apartment_id", id.String()))
		return nil, MapError(err)
	}

	return &apt, nil
}

// ListByUser implements store.ApartmentStore.ListByUser
func (s *PostgresApartmentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Apartment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + apartmentColumns + ` FROM apartments WHERE user_id = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list apartments",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var apartments []*domain.Apartment
	for rows.Next() {
		var apt domain.Apartment
		if err := rows.Scan(
			&apt.ID,
			&apt.UserID,
			&apt.Name,
			&apt.Address,
			&apt.City,
			&apt.ZipCode,
			&apt.Bedrooms,
			&apt.Bathrooms,
			&apt.CreatedAt,
			&apt.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		apartments = append(apartments, &apt)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return apartments, nil
}

// Update implements store.ApartmentStore.Update
// Returns store.ErrApartmentNotFound if the apartment does not exist.
func (s *PostgresApartmentStore) Update(ctx context.Context, apartment *domain.Apartment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := apartment.Validate(); err != nil {
		log.Warn("apartment validation failed during update",
			slog.String("error", err.Error()),
			slog.String("apartment_id", apartment.ID.String()))
		return err
	}

	apartment.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE apartments
		SET name = $1, address = $2, city = $3, zip_code = $4,
			bedrooms = $5, bathrooms = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		apartment.Name,
		apartment.Address,
		apartment.City,
		apartment.ZipCode,
		apartment.Bedrooms,
		apartment.Bathrooms,
		apartment.UpdatedAt,
		apartment.ID,
	)

	if err != nil {
		log.Error("failed to update apartment",
			slog.String("error", err.Error()),
			slog.String("apartment_id", apartment.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffectedWith(result, store.ErrApartmentNotFound)
}

// Delete implements store.ApartmentStore.Delete
// Returns store.ErrApartmentNotFound if the apartment does not exist.
func (s *PostgresApartmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM apartments WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete apartment",
			slog.String("error", err.Error()),
			slog.String("apartment_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffectedWith(result, store.ErrApartmentNotFound)
}

// WithTx implements store.ApartmentStore.WithTx
func (s *PostgresApartmentStore) WithTx(tx *sql.Tx) store.ApartmentStore {
	return &PostgresApartmentStore{
		db:     tx,
		logger: s.logger,
	}
}
