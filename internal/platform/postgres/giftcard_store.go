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
	"github.com/freshnest/freshnest-api/internal/redact"
	"github.com/freshnest/freshnest-api/internal/store"
)

// PostgresGiftCardStore implements the store.GiftCardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGiftCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGiftCardStore creates a new PostgreSQL implementation of the
// GiftCardStore interface.
func NewPostgresGiftCardStore(db store.DBTX, log *slog.Logger) *PostgresGiftCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresGiftCardStore{
		db:     db,
		logger: log.With(slog.String("component", "gift_card_store")),
	}
}

// Ensure PostgresGiftCardStore implements store.GiftCardStore interface
var _ store.GiftCardStore = (*PostgresGiftCardStore)(nil)

const giftCardColumns = `id, code, original_amount, current_balance, is_active,
	is_paid, purchaser_id, recipient_email, message, created_at, updated_at`

// Create implements store.GiftCardStore.Create
// Returns store.ErrGiftCardCodeExists if the code is already taken.
func (s *PostgresGiftCardStore) Create(ctx context.Context, card *domain.GiftCard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("gift card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("gift_card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO gift_cards (` + giftCardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.Code,
		card.OriginalAmount,
		card.CurrentBalance,
		card.IsActive,
		card.IsPaid,
		card.PurchaserID,
		card.RecipientEmail,
		card.Message,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("gift card code collision",
				slog.String("code", redact.Code(card.Code)))
			return fmt.Errorf("%w: %v", store.ErrGiftCardCodeExists, err)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: purchaser with ID %s not found",
				store.ErrInvalidEntity, card.PurchaserID)
		}
		log.Error("failed to create gift card",
			slog.String("error", err.Error()),
			slog.String("gift_card_id", card.ID.String()))
		return MapError(err)
	}

	log.Info("gift card created successfully",
		slog.String("gift_card_id", card.ID.String()),
		slog.Float64("amount", card.OriginalAmount))
	return nil
}

// GetByID implements store.GiftCardStore.GetByID
// Returns store.ErrGiftCardNotFound if the card does not exist.
func (s *PostgresGiftCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GiftCard, error) {
	query := `SELECT ` + giftCardColumns + ` FROM gift_cards WHERE id = $1`
	return s.getCard(ctx, query, id)
}

// GetByCode implements store.GiftCardStore.GetByCode
// Returns store.ErrGiftCardNotFound if the card does not exist.
func (s *PostgresGiftCardStore) GetByCode(ctx context.Context, code string) (*domain.GiftCard, error) {
	query := `SELECT ` + giftCardColumns + ` FROM gift_cards WHERE code = $1`
	return s.getCard(ctx, query, code)
}

// GetByCodeForUpdate implements store.GiftCardStore.GetByCodeForUpdate
// It takes a row-level lock so concurrent redemptions of the same card
// serialize. Only meaningful within a transaction.
func (s *PostgresGiftCardStore) GetByCodeForUpdate(ctx context.Context, code string) (*domain.GiftCard, error) {
	query := `SELECT ` + giftCardColumns + ` FROM gift_cards WHERE code = $1 FOR UPDATE`
	return s.getCard(ctx, query, code)
}

// CodeExists implements store.GiftCardStore.CodeExists
func (s *PostgresGiftCardStore) CodeExists(ctx context.Context, code string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM gift_cards WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		log.Error("failed to check gift card code existence",
			slog.String("error", err.Error()))
		return false, MapError(err)
	}

	return exists, nil
}

// SetPaid implements store.GiftCardStore.SetPaid
// Returns store.ErrGiftCardNotFound if the card does not exist.
func (s *PostgresGiftCardStore) SetPaid(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE gift_cards
		SET is_paid = TRUE, updated_at = $1
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to mark gift card paid",
			slog.String("error", err.Error()),
			slog.String("gift_card_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffectedWith(result, store.ErrGiftCardNotFound); err != nil {
		return err
	}

	log.Info("gift card marked paid", slog.String("gift_card_id", id.String()))
	return nil
}

// UpdateBalance implements store.GiftCardStore.UpdateBalance
// Returns store.ErrGiftCardNotFound if the card does not exist.
func (s *PostgresGiftCardStore) UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if balance < 0 {
		return domain.ErrNegativeBalance
	}

	query := `
		UPDATE gift_cards
		SET current_balance = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, balance, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update gift card balance",
			slog.String("error", err.Error()),
			slog.String("gift_card_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffectedWith(result, store.ErrGiftCardNotFound)
}

// CreateUsage implements store.GiftCardStore.CreateUsage
// The usage history is append-only.
func (s *PostgresGiftCardStore) CreateUsage(ctx context.Context, usage *domain.GiftCardUsage) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO gift_card_usages
			(id, gift_card_id, order_id, user_id, amount_used, balance_after, used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		usage.ID,
		usage.GiftCardID,
		usage.OrderID,
		usage.UserID,
		usage.AmountUsed,
		usage.BalanceAfter,
		usage.UsedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced gift card, order or user not found",
				store.ErrInvalidEntity)
		}
		log.Error("failed to create gift card usage",
			slog.String("error", err.Error()),
			slog.String("gift_card_id", usage.GiftCardID.String()),
			slog.String("order_id", usage.OrderID.String()))
		return MapError(err)
	}

	log.Info("gift card usage recorded",
		slog.String("gift_card_id", usage.GiftCardID.String()),
		slog.String("order_id", usage.OrderID.String()),
		slog.Float64("amount_used", usage.AmountUsed),
		slog.Float64("balance_after", usage.BalanceAfter))
	return nil
}

// ListUsages implements store.GiftCardStore.ListUsages
func (s *PostgresGiftCardStore) ListUsages(ctx context.Context, cardID uuid.UUID) ([]*domain.GiftCardUsage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, gift_card_id, order_id, user_id, amount_used, balance_after, used_at
		FROM gift_card_usages
		WHERE gift_card_id = $1
		ORDER BY used_at
	`

	rows, err := s.db.QueryContext(ctx, query, cardID)
	if err != nil {
		log.Error("failed to list gift card usages",
			slog.String("error", err.Error()),
			slog.String("gift_card_id", cardID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var usages []*domain.GiftCardUsage
	for rows.Next() {
		var usage domain.GiftCardUsage
		if err := rows.Scan(
			&usage.ID,
			&usage.GiftCardID,
			&usage.OrderID,
			&usage.UserID,
			&usage.AmountUsed,
			&usage.BalanceAfter,
			&usage.UsedAt,
		); err != nil {
			return nil, MapError(err)
		}
		usages = append(usages, &usage)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return usages, nil
}

// WithTx implements store.GiftCardStore.WithTx
func (s *PostgresGiftCardStore) WithTx(tx *sql.Tx) store.GiftCardStore {
	return &PostgresGiftCardStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresGiftCardStore) getCard(ctx context.Context, query string, arg interface{}) (*domain.GiftCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var card domain.GiftCard
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&card.ID,
		&card.Code,
		&card.OriginalAmount,
		&card.CurrentBalance,
		&card.IsActive,
		&card.IsPaid,
		&card.PurchaserID,
		&card.RecipientEmail,
		&card.Message,
		&card.CreatedAt,
		&card.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGiftCardNotFound
		}
		log.Error("failed to get gift card", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &card, nil
}
