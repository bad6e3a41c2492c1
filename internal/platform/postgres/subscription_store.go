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

// PostgresSubscriptionStore implements the store.SubscriptionStore
// interface using a PostgreSQL database as the storage backend.
type PostgresSubscriptionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubscriptionStore creates a new PostgreSQL implementation of
// the SubscriptionStore interface.
func NewPostgresSubscriptionStore(db store.DBTX, log *slog.Logger) *PostgresSubscriptionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresSubscriptionStore{
		db:     db,
		logger: log.With(slog.String("component", "subscription_store")),
	}
}

// Ensure PostgresSubscriptionStore implements store.SubscriptionStore interface
var _ store.SubscriptionStore = (*PostgresSubscriptionStore)(nil)

const subscriptionColumns = `id, user_id, apartment_id, service_type_id, frequency,
	discount_percent, is_active, start_date, created_at, updated_at`

// Create implements store.SubscriptionStore.Create
func (s *PostgresSubscriptionStore) Create(ctx context.Context, sub *domain.Subscription) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := sub.Validate(); err != nil {
		log.Warn("subscription validation failed during create",
			slog.String("error", err.Error()),
			slog.String("subscription_id", sub.ID.String()))
		return err
	}

	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		sub.ID,
		sub.UserID,
		sub.ApartmentID,
		sub.ServiceTypeID,
		sub.Frequency,
		sub.DiscountPercent,
		sub.IsActive,
		sub.StartDate,
		sub.CreatedAt,
		sub.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced user, apartment or service type not found",
				store.ErrInvalidEntity)
		}
		log.Error("failed to create subscription",
			slog.String("error", err.Error()),
			slog.String("subscription_id", sub.ID.String()))
		return MapError(err)
	}

	log.Info("subscription created successfully",
		slog.String("subscription_id", sub.ID.String()),
		slog.String("user_id", sub.UserID.String()),
		slog.String("frequency", string(sub.Frequency)))
	return nil
}

// GetByID implements store.SubscriptionStore.GetByID
// Returns store.ErrSubscriptionNotFound if the subscription does not exist.
func (s *PostgresSubscriptionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	sub, err := s.scanSubscription(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSubscriptionNotFound
		}
		log.Error("failed to get subscription",
			slog.String("error", err.Error()),
			slog.String("subscription_id", id.String()))
		return nil, MapError(err)
	}

	return sub, nil
}

// ListByUser implements store.SubscriptionStore.ListByUser
func (s *PostgresSubscriptionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list subscriptions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := s.scanSubscription(rows)
		if err != nil {
			return nil, MapError(err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return subs, nil
}

// Update implements store.SubscriptionStore.Update
// Returns store.ErrSubscriptionNotFound if the subscription does not exist.
func (s *PostgresSubscriptionStore) Update(ctx context.Context, sub *domain.Subscription) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := sub.Validate(); err != nil {
		log.Warn("subscription validation failed during update",
			slog.String("error", err.Error()),
			slog.String("subscription_id", sub.ID.String()))
		return err
	}

	sub.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE subscriptions
		SET apartment_id = $1, service_type_id = $2, frequency = $3,
			discount_percent = $4, is_active = $5, start_date = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		sub.ApartmentID,
		sub.ServiceTypeID,
		sub.Frequency,
		sub.DiscountPercent,
		sub.IsActive,
		sub.StartDate,
		sub.UpdatedAt,
		sub.ID,
	)

	if err != nil {
		log.Error("failed to update subscription",
			slog.String("error", err.Error()),
			slog.String("subscription_id", sub.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffectedWith(result, store.ErrSubscriptionNotFound)
}

// WithTx implements store.SubscriptionStore.WithTx
func (s *PostgresSubscriptionStore) WithTx(tx *sql.Tx) store.SubscriptionStore {
	return &PostgresSubscriptionStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresSubscriptionStore) scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var sub domain.Subscription
	var frequency string
	var apartmentID sql.NullString

	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&apartmentID,
		&sub.ServiceTypeID,
		&frequency,
		&sub.DiscountPercent,
		&sub.IsActive,
		&sub.StartDate,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Frequency = domain.SubscriptionFrequency(frequency)
	if apartmentID.Valid {
		id, err := uuid.Parse(apartmentID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid apartment ID in subscription row: %w", err)
		}
		sub.ApartmentID = &id
	}

	return &sub, nil
}
