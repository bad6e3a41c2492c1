package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/events"
	"github.com/freshnest/freshnest-api/internal/store"
)

// ServiceSelection references a catalog service with a quantity.
type ServiceSelection struct {
	ServiceID uuid.UUID `json:"service_id"`
	Quantity  int       `json:"quantity"`
}

// ExtraServiceSelection references an extra service. Hours matters only
// for hour-based extras; Quantity for the rest.
type ExtraServiceSelection struct {
	ExtraServiceID uuid.UUID `json:"extra_service_id"`
	Quantity       int       `json:"quantity"`
	Hours          float64   `json:"hours"`
}

// CreateOrderInput carries everything needed to price and book an order.
type CreateOrderInput struct {
	ServiceTypeID uuid.UUID               `json:"service_type_id"`
	ApartmentID   *uuid.UUID              `json:"apartment_id,omitempty"`
	ServiceDate   time.Time               `json:"service_date"`
	Tips          float64                 `json:"tips"`
	PromoCode     string                  `json:"promo_code,omitempty"`
	Services      []ServiceSelection      `json:"services"`
	ExtraServices []ExtraServiceSelection `json:"extra_services"`
}

// UpdateOrderInput replaces an order's line items wholesale and optionally
// moves the service date or tips. The discount amount fixed at creation is
// reapplied, never recomputed.
type UpdateOrderInput struct {
	ServiceDate   *time.Time              `json:"service_date,omitempty"`
	Tips          *float64                `json:"tips,omitempty"`
	Services      []ServiceSelection      `json:"services"`
	ExtraServices []ExtraServiceSelection `json:"extra_services"`
}

// OrderService provides order booking, pricing and lifecycle operations.
type OrderService interface {
	// CreateOrder prices and books a new order for the user. Referenced
	// catalog items that no longer exist are skipped, not errors. A promo
	// code resolves to a granted special offer whose discount is fixed into
	// the order and whose grant is consumed in the same transaction; an
	// unusable code fails the whole booking with ErrOfferUnusable.
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*domain.Order, error)

	// GetOrder retrieves an order, enforcing ownership.
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)

	// ListOrders returns the user's orders, newest first.
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)

	// UpdateOrder replaces the order's line items and recomputes totals,
	// reapplying the discount amount fixed at creation time.
	UpdateOrder(ctx context.Context, userID, orderID uuid.UUID, input UpdateOrderInput) (*domain.Order, error)

	// CalculateAdditionalAmount prices the update hypothetically and
	// returns how much more the user would owe. Never negative: a cheaper
	// configuration yields zero, not a refund.
	CalculateAdditionalAmount(ctx context.Context, userID, orderID uuid.UUID, input UpdateOrderInput) (float64, error)

	// CancelOrder cancels the order. Fails with ErrOrderNotModifiable on
	// terminal orders and ErrCancellationTooLate inside the notice window.
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error

	// MarkOrderAsDone transitions the order to done. Fails with
	// ErrOrderNotModifiable if the order is cancelled; marking a done
	// order done again is a no-op.
	MarkOrderAsDone(ctx context.Context, orderID uuid.UUID) error
}

type orderServiceImpl struct {
	db           *sql.DB
	orderStore   store.OrderStore
	userStore    store.UserStore
	catalogStore store.CatalogStore
	aptStore     store.ApartmentStore
	offerStore   store.SpecialOfferStore
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewOrderService creates a new OrderService.
// It returns an error if any of the required dependencies are nil.
func NewOrderService(
	db *sql.DB,
	orderStore store.OrderStore,
	userStore store.UserStore,
	catalogStore store.CatalogStore,
	aptStore store.ApartmentStore,
	offerStore store.SpecialOfferStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (OrderService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if orderStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "orderStore cannot be nil"}
	}
	if userStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "userStore cannot be nil"}
	}
	if catalogStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "catalogStore cannot be nil"}
	}
	if aptStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "aptStore cannot be nil"}
	}
	if offerStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "offerStore cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &orderServiceImpl{
		db:           db,
		orderStore:   orderStore,
		userStore:    userStore,
		catalogStore: catalogStore,
		aptStore:     aptStore,
		offerStore:   offerStore,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "order_service"),
	}, nil
}

// CreateOrder builds the order from catalog snapshots, prices it, and
// persists it together with its line items in one transaction. A promo
// code locks the backing grant, fixes the offer's discount into the order
// and consumes the grant inside that same transaction, so a half-applied
// offer is never observable. The user's first-time flag flips in the same
// transaction.
func (s *orderServiceImpl) CreateOrder(
	ctx context.Context,
	userID uuid.UUID,
	input CreateOrderInput,
) (*domain.Order, error) {
	serviceType, err := s.catalogStore.GetServiceType(ctx, input.ServiceTypeID)
	if err != nil {
		if errors.Is(err, store.ErrServiceTypeNotFound) {
			return nil, err
		}
		return nil, NewServiceError("create_order", "failed to load service type", err)
	}

	if input.ApartmentID != nil {
		apt, err := s.aptStore.GetByID(ctx, *input.ApartmentID)
		if err != nil {
			return nil, NewServiceError("create_order", "failed to load apartment", err)
		}
		if apt.UserID != userID {
			return nil, ErrNotOwned
		}
	}

	order, err := domain.NewOrder(userID, serviceType, input.ServiceDate, input.Tips)
	if err != nil {
		return nil, NewServiceError("create_order", "invalid order data", err)
	}
	order.ApartmentID = input.ApartmentID
	order.PromoCode = input.PromoCode

	s.addLineItems(ctx, order, input.Services, input.ExtraServices)
	order.Recalculate(serviceType.BaseDuration)

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txOffers := s.offerStore.WithTx(tx)

		// The grant row lock is held until commit, so a concurrent booking
		// against the same grant waits here and then fails its is_used guard.
		var grantID uuid.UUID
		if input.PromoCode != "" {
			grant, offer, err := s.lockPromoGrant(ctx, txOffers, userID, input.PromoCode, order.Subtotal)
			if err != nil {
				return err
			}
			order.DiscountAmount = offer.DiscountFor(order.Subtotal)
			order.Recalculate(serviceType.BaseDuration)
			grantID = grant.ID
		}

		if err := s.orderStore.WithTx(tx).Create(ctx, order); err != nil {
			return NewServiceError("create_order", "failed to save order", err)
		}

		if grantID != uuid.Nil {
			if err := txOffers.MarkGrantUsed(ctx, grantID, order.ID, time.Now().UTC()); err != nil {
				if errors.Is(err, store.ErrGrantNotFound) {
					return fmt.Errorf("%w: grant already consumed", ErrOfferUnusable)
				}
				return NewServiceError("create_order", "failed to consume offer grant", err)
			}
		}

		// The first order makes the customer a repeat customer.
		user, err := s.userStore.WithTx(tx).GetByID(ctx, userID)
		if err != nil {
			return NewServiceError("create_order", "failed to load user", err)
		}
		if user.FirstTimeOrder {
			if err := s.userStore.WithTx(tx).SetFirstTimeOrder(ctx, userID, false); err != nil {
				return NewServiceError("create_order", "failed to clear first-time flag", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		"order_id", order.ID,
		"user_id", userID,
		"discount", order.DiscountAmount,
		"total", order.Total)
	return order, nil
}

// lockPromoGrant resolves the promo code to its offer and locks the user's
// unused grant, checking every redemption precondition. Each failed
// precondition surfaces as ErrOfferUnusable so an unusable code fails the
// booking rather than silently pricing without the discount.
func (s *orderServiceImpl) lockPromoGrant(
	ctx context.Context,
	offers store.SpecialOfferStore,
	userID uuid.UUID,
	promoCode string,
	subtotal float64,
) (*domain.UserSpecialOffer, *domain.SpecialOffer, error) {
	offer, err := offers.GetOfferByName(ctx, promoCode)
	if err != nil {
		if errors.Is(err, store.ErrOfferNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown promo code", ErrOfferUnusable)
		}
		return nil, nil, NewServiceError("create_order", "failed to resolve promo code", err)
	}

	now := time.Now().UTC()
	if !offer.IsActive {
		return nil, nil, fmt.Errorf("%w: offer is not active", ErrOfferUnusable)
	}
	if !offer.InValidityWindow(now) {
		return nil, nil, fmt.Errorf("%w: offer is outside its validity period", ErrOfferUnusable)
	}
	if subtotal < offer.MinimumOrderAmount {
		return nil, nil, fmt.Errorf("%w: order is below the offer minimum", ErrOfferUnusable)
	}

	grant, err := offers.GetUnusedGrantForUpdate(ctx, userID, offer.ID)
	if err != nil {
		if errors.Is(err, store.ErrGrantNotFound) {
			return nil, nil, fmt.Errorf("%w: offer has not been granted or is already used", ErrOfferUnusable)
		}
		return nil, nil, NewServiceError("create_order", "failed to load offer grant", err)
	}
	if grant.Expired(now) {
		return nil, nil, fmt.Errorf("%w: offer grant has expired", ErrOfferUnusable)
	}

	return grant, offer, nil
}

// GetOrder retrieves the order and enforces ownership.
func (s *orderServiceImpl) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderStore.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return nil, err
		}
		return nil, NewServiceError("get_order", "failed to load order", err)
	}
	if order.UserID != userID {
		return nil, ErrNotOwned
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *orderServiceImpl) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_orders", "failed to list orders", err)
	}
	return orders, nil
}

// UpdateOrder replaces the line items wholesale inside one transaction,
// recomputes subtotal/tax/total/duration and keeps the stored discount.
func (s *orderServiceImpl) UpdateOrder(
	ctx context.Context,
	userID, orderID uuid.UUID,
	input UpdateOrderInput,
) (*domain.Order, error) {
	var updated *domain.Order

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txOrders := s.orderStore.WithTx(tx)

		order, err := txOrders.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, store.ErrOrderNotFound) {
				return err
			}
			return NewServiceError("update_order", "failed to load order", err)
		}
		if order.UserID != userID {
			return ErrNotOwned
		}
		if !order.Modifiable() {
			return ErrOrderNotModifiable
		}

		if input.ServiceDate != nil {
			order.ServiceDate = *input.ServiceDate
		}
		if input.Tips != nil {
			order.Tips = *input.Tips
		}

		order.ClearItems()
		s.addLineItems(ctx, order, input.Services, input.ExtraServices)
		order.Recalculate(s.baseDuration(ctx, order))

		if err := txOrders.Update(ctx, order); err != nil {
			return NewServiceError("update_order", "failed to save order", err)
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order updated",
		"order_id", orderID,
		"user_id", userID,
		"total", updated.Total)
	return updated, nil
}

// CalculateAdditionalAmount prices the hypothetical update without
// persisting anything and returns max(0, newTotal − oldTotal).
func (s *orderServiceImpl) CalculateAdditionalAmount(
	ctx context.Context,
	userID, orderID uuid.UUID,
	input UpdateOrderInput,
) (float64, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return 0, err
	}
	if !order.Modifiable() {
		return 0, ErrOrderNotModifiable
	}

	// Work on a copy; this operation must not mutate the stored order.
	draft := *order
	if input.ServiceDate != nil {
		draft.ServiceDate = *input.ServiceDate
	}
	if input.Tips != nil {
		draft.Tips = *input.Tips
	}
	draft.ClearItems()
	s.addLineItems(ctx, &draft, input.Services, input.ExtraServices)
	draft.Recalculate(s.baseDuration(ctx, order))

	additional := domain.RoundCurrency(draft.Total - order.Total)
	if additional < 0 {
		additional = 0
	}
	return additional, nil
}

// CancelOrder cancels the order and emits a cancellation event. Gift card
// funds spent on the order are not restored here; refunds are out of scope.
func (s *orderServiceImpl) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	var cancelled *domain.Order

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txOrders := s.orderStore.WithTx(tx)

		order, err := txOrders.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, store.ErrOrderNotFound) {
				return err
			}
			return NewServiceError("cancel_order", "failed to load order", err)
		}
		if order.UserID != userID {
			return ErrNotOwned
		}
		if order.Status.Terminal() {
			return ErrOrderNotModifiable
		}
		if !order.CancellableAt(time.Now().UTC()) {
			return ErrCancellationTooLate
		}

		if err := txOrders.UpdateStatus(ctx, orderID, domain.OrderStatusCancelled); err != nil {
			return NewServiceError("cancel_order", "failed to update status", err)
		}

		cancelled = order
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order cancelled", "order_id", orderID, "user_id", userID)
	s.emitCancellation(ctx, userID, cancelled)
	return nil
}

// MarkOrderAsDone completes the order. Cancelled orders cannot be
// completed; completing a done order again is a no-op.
func (s *orderServiceImpl) MarkOrderAsDone(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderStore.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return err
		}
		return NewServiceError("mark_order_done", "failed to load order", err)
	}

	if order.Status == domain.OrderStatusCancelled {
		return ErrOrderNotModifiable
	}
	if order.Status == domain.OrderStatusDone {
		return nil
	}

	if err := s.orderStore.UpdateStatus(ctx, orderID, domain.OrderStatusDone); err != nil {
		return NewServiceError("mark_order_done", "failed to update status", err)
	}

	s.logger.Info("order marked done", "order_id", orderID)
	return nil
}

// addLineItems resolves the selections against the catalog and appends
// snapshot line items. A selection referencing a catalog item that no
// longer exists is skipped with a warning rather than failing the order.
func (s *orderServiceImpl) addLineItems(
	ctx context.Context,
	order *domain.Order,
	services []ServiceSelection,
	extras []ExtraServiceSelection,
) {
	for _, sel := range services {
		svc, err := s.catalogStore.GetService(ctx, sel.ServiceID)
		if err != nil {
			if errors.Is(err, store.ErrServiceNotFound) {
				s.logger.Warn("skipping missing catalog service",
					"order_id", order.ID,
					"service_id", sel.ServiceID)
				continue
			}
			s.logger.Warn("skipping catalog service after lookup failure",
				"order_id", order.ID,
				"service_id", sel.ServiceID,
				"error", err)
			continue
		}
		order.AddService(svc, sel.Quantity)
	}

	for _, sel := range extras {
		extra, err := s.catalogStore.GetExtraService(ctx, sel.ExtraServiceID)
		if err != nil {
			if errors.Is(err, store.ErrExtraServiceNotFound) {
				s.logger.Warn("skipping missing extra service",
					"order_id", order.ID,
					"extra_service_id", sel.ExtraServiceID)
				continue
			}
			s.logger.Warn("skipping extra service after lookup failure",
				"order_id", order.ID,
				"extra_service_id", sel.ExtraServiceID,
				"error", err)
			continue
		}
		order.AddExtraService(extra, sel.Quantity, sel.Hours)
	}
}

// baseDuration looks up the order's service type base duration, falling
// back to zero when the catalog row has since been removed.
func (s *orderServiceImpl) baseDuration(ctx context.Context, order *domain.Order) int {
	serviceType, err := s.catalogStore.GetServiceType(ctx, order.ServiceTypeID)
	if err != nil {
		s.logger.Warn("service type missing during repricing, using zero base duration",
			"order_id", order.ID,
			"service_type_id", order.ServiceTypeID)
		return 0
	}
	return serviceType.BaseDuration
}

// emitCancellation is best-effort; a failed notification never unwinds
// the cancellation.
func (s *orderServiceImpl) emitCancellation(ctx context.Context, userID uuid.UUID, order *domain.Order) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("skipping cancellation notification, user lookup failed",
			"order_id", order.ID,
			"error", err)
		return
	}

	event, err := events.NewNotificationEvent(events.TypeOrderCancelled, events.OrderCancelledPayload{
		OrderID:     order.ID,
		Email:       user.Email,
		ServiceDate: order.ServiceDate,
	})
	if err != nil {
		s.logger.Warn("failed to build cancellation event", "order_id", order.ID, "error", err)
		return
	}
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("failed to emit cancellation event", "order_id", order.ID, "error", err)
	}
}
