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

// PostgresSpecialOfferStore implements the store.SpecialOfferStore
// interface using a PostgreSQL database as the storage backend.
//
// Grants live in user_special_offers with a unique (user_id, offer_id)
// constraint backing the issue-at-most-once rule, and an is_used guard
// column backing consume-at-most-once.
type PostgresSpecialOfferStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSpecialOfferStore creates a new PostgreSQL implementation of
// the SpecialOfferStore interface.
func NewPostgresSpecialOfferStore(db store.DBTX, log *slog.Logger) *PostgresSpecialOfferStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresSpecialOfferStore{
		db:     db,
		logger: log.With(slog.String("component", "special_offer_store")),
	}
}

// Ensure PostgresSpecialOfferStore implements store.SpecialOfferStore interface
var _ store.SpecialOfferStore = (*PostgresSpecialOfferStore)(nil)

const offerColumns = `id, name, type, discount_type, discount_value, valid_from,
	valid_to, is_active, minimum_order_amount, first_time_only, created_at, updated_at`

const grantColumns = `id, user_id, offer_id, is_used, used_at, order_id,
	expires_at, granted_at`

// CreateOffer implements store.SpecialOfferStore.CreateOffer
func (s *PostgresSpecialOfferStore) CreateOffer(ctx context.Context, offer *domain.SpecialOffer) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := offer.Validate(); err != nil {
		log.Warn("special offer validation failed during create",
			slog.String("error", err.Error()),
			slog.String("offer_id", offer.ID.String()))
		return err
	}

	query := `
		INSERT INTO special_offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		offer.ID,
		offer.Name,
		offer.Type,
		offer.DiscountType,
		offer.DiscountValue,
		offer.ValidFrom,
		offer.ValidTo,
		offer.IsActive,
		offer.MinimumOrderAmount,
		offer.FirstTimeOnly,
		offer.CreatedAt,
		offer.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create special offer",
			slog.String("error", err.Error()),
			slog.String("offer_id", offer.ID.String()))
		return MapError(err)
	}

	log.Info("special offer created successfully",
		slog.String("offer_id", offer.ID.String()),
		slog.String("type", string(offer.Type)))
	return nil
}

// GetOffer implements store.SpecialOfferStore.GetOffer
// Returns store.ErrOfferNotFound if the offer does not exist.
func (s *PostgresSpecialOfferStore) GetOffer(ctx context.Context, id uuid.UUID) (*domain.SpecialOffer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + offerColumns + ` FROM special_offers WHERE id = $1`

	offer, err := s.scanOffer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOfferNotFound
		}
		log.Error("failed to get special offer",
			slog.String("error", err.Error()),
			slog.String("offer_id", id.String()))
		return nil, MapError(err)
	}

	return offer, nil
}

// GetActiveOfferByType implements store.SpecialOfferStore.GetActiveOfferByType
// Returns store.ErrOfferNotFound if no active offer of the type exists.
func (s *PostgresSpecialOfferStore) GetActiveOfferByType(ctx context.Context, offerType domain.OfferType) (*domain.SpecialOffer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + offerColumns + `
		FROM special_offers
		WHERE type = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`

	offer, err := s.scanOffer(s.db.QueryRowContext(ctx, query, offerType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOfferNotFound
		}
		log.Error("failed to get active offer by type",
			slog.String("error", err.Error()),
			slog.String("offer_type", string(offerType)))
		return nil, MapError(err)
	}

	return offer, nil
}

// GetOfferByName implements store.SpecialOfferStore.GetOfferByName
// Returns store.ErrOfferNotFound if no offer carries the name.
func (s *PostgresSpecialOfferStore) GetOfferByName(ctx context.Context, name string) (*domain.SpecialOffer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + offerColumns + `
		FROM special_offers
		WHERE name = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	offer, err := s.scanOffer(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOfferNotFound
		}
		log.Error("failed to get offer by name",
			slog.String("error", err.Error()),
			slog.String("name", name))
		return nil, MapError(err)
	}

	return offer, nil
}

// UpdateOffer implements store.SpecialOfferStore.UpdateOffer
// Returns store.ErrOfferNotFound if the offer does not exist.
func (s *PostgresSpecialOfferStore) UpdateOffer(ctx context.Context, offer *domain.SpecialOffer) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := offer.Validate(); err != nil {
		log.Warn("special offer validation failed during update",
			slog.String("error", err.Error()),
			slog.String("offer_id", offer.ID.String()))
		return err
	}

	offer.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE special_offers
		SET name = $1, type = $2, discount_type = $3, discount_value = $4,
			valid_from = $5, valid_to = $6, is_active = $7,
			minimum_order_amount = $8, first_time_only = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		offer.Name,
		offer.Type,
		offer.DiscountType,
		offer.DiscountValue,
		offer.ValidFrom,
		offer.ValidTo,
		offer.IsActive,
		offer.MinimumOrderAmount,
		offer.FirstTimeOnly,
		offer.UpdatedAt,
		offer.ID,
	)

	if err != nil {
		log.Error("failed to update special offer",
			slog.String("error", err.Error()),
			slog.String("offer_id", offer.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffectedWith(result, store.ErrOfferNotFound)
}

// CreateGrant implements store.SpecialOfferStore.CreateGrant
// Returns store.ErrGrantExists if the (user, offer) pair already holds a grant.
func (s *PostgresSpecialOfferStore) CreateGrant(ctx context.Context, grant *domain.UserSpecialOffer) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO user_special_offers (` + grantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		grant.ID,
		grant.UserID,
		grant.OfferID,
		grant.IsUsed,
		grant.UsedAt,
		grant.OrderID,
		grant.ExpiresAt,
		grant.GrantedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("grant already exists",
				slog.String("user_id", grant.UserID.String()),
				slog.String("offer_id", grant.OfferID.String()))
			return fmt.Errorf("%w: %v", store.ErrGrantExists, err)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced user or offer not found",
				store.ErrInvalidEntity)
		}
		log.Error("failed to create grant",
			slog.String("error", err.Error()),
			slog.String("user_id", grant.UserID.String()),
			slog.String("offer_id", grant.OfferID.String()))
		return MapError(err)
	}

	log.Info("offer grant created",
		slog.String("grant_id", grant.ID.String()),
		slog.String("user_id", grant.UserID.String()),
		slog.String("offer_id", grant.OfferID.String()))
	return nil
}

// GrantExists implements store.SpecialOfferStore.GrantExists
func (s *PostgresSpecialOfferStore) GrantExists(ctx context.Context, userID, offerID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_special_offers WHERE user_id = $1 AND offer_id = $2
		)
	`, userID, offerID).Scan(&exists)
	if err != nil {
		log.Error("failed to check grant existence",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("offer_id", offerID.String()))
		return false, MapError(err)
	}

	return exists, nil
}

// GetUnusedGrantForUpdate implements store.SpecialOfferStore.GetUnusedGrantForUpdate
// It takes a row-level lock so concurrent redemptions serialize. Only
// meaningful within a transaction.
// Returns store.ErrGrantNotFound if no unused grant exists.
func (s *PostgresSpecialOfferStore) GetUnusedGrantForUpdate(ctx context.Context, userID, offerID uuid.UUID) (*domain.UserSpecialOffer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + grantColumns + `
		FROM user_special_offers
		WHERE user_id = $1 AND offer_id = $2 AND is_used = FALSE
		FOR UPDATE
	`

	grant, err := s.scanGrant(s.db.QueryRowContext(ctx, query, userID, offerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGrantNotFound
		}
		log.Error("failed to get unused grant",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("offer_id", offerID.String()))
		return nil, MapError(err)
	}

	return grant, nil
}

// MarkGrantUsed implements store.SpecialOfferStore.MarkGrantUsed
// The update is guarded by is_used = FALSE, so a grant can never be
// consumed twice even without the row lock.
// Returns store.ErrGrantNotFound when the guard rejects the update.
func (s *PostgresSpecialOfferStore) MarkGrantUsed(ctx context.Context, grantID, orderID uuid.UUID, usedAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE user_special_offers
		SET is_used = TRUE, used_at = $1, order_id = $2
		WHERE id = $3 AND is_used = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, usedAt, orderID, grantID)
	if err != nil {
		log.Error("failed to mark grant used",
			slog.String("error", err.Error()),
			slog.String("grant_id", grantID.String()),
			slog.String("order_id", orderID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffectedWith(result, store.ErrGrantNotFound); err != nil {
		return err
	}

	log.Info("offer grant consumed",
		slog.String("grant_id", grantID.String()),
		slog.String("order_id", orderID.String()))
	return nil
}

// ListUnusedGrants implements store.SpecialOfferStore.ListUnusedGrants
func (s *PostgresSpecialOfferStore) ListUnusedGrants(ctx context.Context, userID uuid.UUID) ([]*domain.UserSpecialOffer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + grantColumns + `
		FROM user_special_offers
		WHERE user_id = $1 AND is_used = FALSE
		ORDER BY granted_at
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list unused grants",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var grants []*domain.UserSpecialOffer
	for rows.Next() {
		grant, err := s.scanGrant(rows)
		if err != nil {
			return nil, MapError(err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return grants, nil
}

// WithTx implements store.SpecialOfferStore.WithTx
func (s *PostgresSpecialOfferStore) WithTx(tx *sql.Tx) store.SpecialOfferStore {
	return &PostgresSpecialOfferStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresSpecialOfferStore) scanOffer(row rowScanner) (*domain.SpecialOffer, error) {
	var offer domain.SpecialOffer
	var offerType, discountType string
	var validFrom, validTo sql.NullTime

	err := row.Scan(
		&offer.ID,
		&offer.Name,
		&offerType,
		&discountType,
		&offer.DiscountValue,
		&validFrom,
		&validTo,
		&offer.IsActive,
		&offer.MinimumOrderAmount,
		&offer.FirstTimeOnly,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	offer.Type = domain.OfferType(offerType)
	offer.DiscountType = domain.DiscountType(discountType)
	if validFrom.Valid {
		t := validFrom.Time
		offer.ValidFrom = &t
	}
	if validTo.Valid {
		t := validTo.Time
		offer.ValidTo = &t
	}

	return &offer, nil
}

func (s *PostgresSpecialOfferStore) scanGrant(row rowScanner) (*domain.UserSpecialOffer, error) {
	var grant domain.UserSpecialOffer
	var usedAt, expiresAt sql.NullTime
	var orderID sql.NullString

	err := row.Scan(
		&grant.ID,
		&grant.UserID,
		&grant.OfferID,
		&grant.IsUsed,
		&usedAt,
		&orderID,
		&expiresAt,
		&grant.GrantedAt,
	)
	if err != nil {
		return nil, err
	}

	if usedAt.Valid {
		t := usedAt.Time
		grant.UsedAt = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		grant.ExpiresAt = &t
	}
	if orderID.Valid {
		id, err := uuid.Parse(orderID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid order ID in grant row: %w", err)
		}
		grant.OrderID = &id
	}

	return &grant, nil
}
