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

// PostgresOrderStore implements the store.OrderStore interface
// using a PostgreSQL database as the storage backend.
//
// Orders span three tables: the order row plus two line item tables
// (order_services and order_extra_services). Create and Update touch
// all three, so both must run inside a transaction via WithTx.
type PostgresOrderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOrderStore creates a new PostgreSQL implementation of the
// OrderStore interface.
func NewPostgresOrderStore(db store.DBTX, log *slog.Logger) *PostgresOrderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresOrderStore{
		db:     db,
		logger: log.With(slog.String("component", "order_store")),
	}
}

// Ensure PostgresOrderStore implements store.OrderStore interface
var _ store.OrderStore = (*PostgresOrderStore)(nil)

const orderColumns = `id, user_id, apartment_id, service_type_id, service_type_name,
	base_price, status, service_date, duration, subtotal, discount_amount,
	tax, tips, total, promo_code, created_at, updated_at`

// Create implements store.OrderStore.Create
// It inserts the order row and all of its line items. Run within a
// transaction so the insert is atomic.
func (s *PostgresOrderStore) Create(ctx context.Context, order *domain.Order) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := order.Validate(); err != nil {
		log.Warn("order validation failed during create",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return err
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		order.ApartmentID,
		order.ServiceTypeID,
		order.ServiceTypeName,
		order.BasePrice,
		order.Status,
		order.ServiceDate,
		order.Duration,
		order.Subtotal,
		order.DiscountAmount,
		order.Tax,
		order.Tips,
		order.Total,
		order.PromoCode,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced user, apartment or service type not found",
				store.ErrInvalidEntity)
		}
		log.Error("failed to create order",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return MapError(err)
	}

	if err := s.insertLineItems(ctx, order); err != nil {
		return err
	}

	log.Info("order created successfully",
		slog.String("order_id", order.ID.String()),
		slog.String("user_id", order.UserID.String()),
		slog.Float64("total", order.Total))
	return nil
}

// GetByID implements store.OrderStore.GetByID
// Returns store.ErrOrderNotFound if the order does not exist.
func (s *PostgresOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := s.scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOrderNotFound
		}
		log.Error("failed to get order by ID",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()))
		return nil, MapError(err)
	}

	if err := s.loadLineItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// ListByUser implements store.OrderStore.ListByUser
// Line items are not loaded; callers needing them fetch orders one by one.
func (s *PostgresOrderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list orders",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var orders []*domain.Order
	for rows.Next() {
		order, err := s.scanOrder(rows)
		if err != nil {
			return nil, MapError(err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return orders, nil
}

// Update implements store.OrderStore.Update
// It saves the order's money fields and replaces all line items
// (remove-then-recreate). Run within a transaction.
// Returns store.ErrOrderNotFound if the order does not exist.
func (s *PostgresOrderStore) Update(ctx context.Context, order *domain.Order) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := order.Validate(); err != nil {
		log.Warn("order validation failed during update",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return err
	}

	order.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE orders
		SET apartment_id = $1, status = $2, service_date = $3, duration = $4,
			subtotal = $5, discount_amount = $6, tax = $7, tips = $8,
			total = $9, promo_code = $10, updated_at = $11
		WHERE id = $12
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		order.ApartmentID,
		order.Status,
		order.ServiceDate,
		order.Duration,
		order.Subtotal,
		order.DiscountAmount,
		order.Tax,
		order.Tips,
		order.Total,
		order.PromoCode,
		order.UpdatedAt,
		order.ID,
	)

	if err != nil {
		log.Error("failed to update order",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffectedWith(result, store.ErrOrderNotFound); err != nil {
		return err
	}

	// Replace line items wholesale rather than diffing.
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM order_services WHERE order_id = $1`, order.ID); err != nil {
		log.Error("failed to clear order services",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return MapError(err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM order_extra_services WHERE order_id = $1`, order.ID); err != nil {
		log.Error("failed to clear order extra services",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return MapError(err)
	}

	if err := s.insertLineItems(ctx, order); err != nil {
		return err
	}

	log.Info("order updated successfully",
		slog.String("order_id", order.ID.String()),
		slog.Float64("total", order.Total))
	return nil
}

// UpdateStatus implements store.OrderStore.UpdateStatus
// Returns store.ErrOrderNotFound if the order does not exist.
func (s *PostgresOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.Valid() {
		return domain.ErrInvalidOrderStatus
	}

	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update order status",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	if err := CheckRowsAffectedWith(result, store.ErrOrderNotFound); err != nil {
		return err
	}

	log.Info("order status updated",
		slog.String("order_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// WithTx implements store.OrderStore.WithTx
func (s *PostgresOrderStore) WithTx(tx *sql.Tx) store.OrderStore {
	return &PostgresOrderStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresOrderStore) insertLineItems(ctx context.Context, order *domain.Order) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, item := range order.Services {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO order_services (id, order_id, service_id, name, quantity, cost, duration)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, order.ID, item.ServiceID, item.Name, item.Quantity, item.Cost, item.Duration)
		if err != nil {
			log.Error("failed to insert order service item",
				slog.String("error", err.Error()),
				slog.String("order_id", order.ID.String()),
				slog.String("service_id", item.ServiceID.String()))
			return MapError(err)
		}
	}

	for _, item := range order.ExtraServices {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO order_extra_services
				(id, order_id, extra_service_id, name, quantity, hours, is_hour_based, cost, duration)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, item.ID, order.ID, item.ExtraServiceID, item.Name, item.Quantity,
			item.Hours, item.IsHourBased, item.Cost, item.Duration)
		if err != nil {
			log.Error("failed to insert order extra service item",
				slog.String("error", err.Error()),
				slog.String("order_id", order.ID.String()),
				slog.String("extra_service_id", item.ExtraServiceID.String()))
			return MapError(err)
		}
	}

	return nil
}

func (s *PostgresOrderStore) loadLineItems(ctx context.Context, order *domain.Order) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, service_id, name, quantity, cost, duration
		FROM order_services
		WHERE order_id = $1
	`, order.ID)
	if err != nil {
		log.Error("failed to load order services",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderServiceItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ServiceID,
			&item.Name,
			&item.Quantity,
			&item.Cost,
			&item.Duration,
		); err != nil {
			return MapError(err)
		}
		order.Services = append(order.Services, item)
	}
	if err := rows.Err(); err != nil {
		return MapError(err)
	}

	extraRows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, extra_service_id, name, quantity, hours, is_hour_based, cost, duration
		FROM order_extra_services
		WHERE order_id = $1
	`, order.ID)
	if err != nil {
		log.Error("failed to load order extra services",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return MapError(err)
	}
	defer func() { _ = extraRows.Close() }()

	for extraRows.Next() {
		var item domain.OrderExtraServiceItem
		if err := extraRows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ExtraServiceID,
			&item.Name,
			&item.Quantity,
			&item.Hours,
			&item.IsHourBased,
			&item.Cost,
			&item.Duration,
		); err != nil {
			return MapError(err)
		}
		order.ExtraServices = append(order.ExtraServices, item)
	}
	if err := extraRows.Err(); err != nil {
		return MapError(err)
	}

	return nil
}

func (s *PostgresOrderStore) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var status string
	var apartmentID sql.NullString
	var promoCode sql.NullString

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&apartmentID,
		&order.ServiceTypeID,
		&order.ServiceTypeName,
		&order.BasePrice,
		&status,
		&order.ServiceDate,
		&order.Duration,
		&order.Subtotal,
		&order.DiscountAmount,
		&order.Tax,
		&order.Tips,
		&order.Total,
		&promoCode,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	if apartmentID.Valid {
		id, err := uuid.Parse(apartmentID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid apartment ID in order row: %w", err)
		}
		order.ApartmentID = &id
	}
	if promoCode.Valid {
		order.PromoCode = promoCode.String
	}

	return &order, nil
}
