package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/store"
)

// CreateSubscriptionInput carries the fields for starting a recurring plan.
type CreateSubscriptionInput struct {
	ServiceTypeID   uuid.UUID                    `json:"service_type_id"`
	ApartmentID     *uuid.UUID                   `json:"apartment_id,omitempty"`
	Frequency       domain.SubscriptionFrequency `json:"frequency"`
	DiscountPercent float64                      `json:"discount_percent"`
	StartDate       time.Time                    `json:"start_date"`
}

// UpdateSubscriptionInput carries optional plan changes. Nil fields are
// left untouched.
type UpdateSubscriptionInput struct {
	Frequency   *domain.SubscriptionFrequency `json:"frequency,omitempty"`
	ApartmentID *uuid.UUID                    `json:"apartment_id,omitempty"`
	StartDate   *time.Time                    `json:"start_date,omitempty"`
}

// SubscriptionService manages recurring cleaning plans. Scheduling the
// individual visits is out of scope; the service owns the plan records.
type SubscriptionService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateSubscriptionInput) (*domain.Subscription, error)
	Get(ctx context.Context, userID, subID uuid.UUID) (*domain.Subscription, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error)
	Update(ctx context.Context, userID, subID uuid.UUID, input UpdateSubscriptionInput) (*domain.Subscription, error)

	// Cancel deactivates the plan. Cancelling an already inactive plan is
	// a no-op.
	Cancel(ctx context.Context, userID, subID uuid.UUID) error
}

type subscriptionServiceImpl struct {
	subStore store.SubscriptionStore
	catalog  store.CatalogStore
	aptStore store.ApartmentStore
	logger   *slog.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(
	subStore store.SubscriptionStore,
	catalog store.CatalogStore,
	aptStore store.ApartmentStore,
	logger *slog.Logger,
) (SubscriptionService, error) {
	if subStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "subStore cannot be nil"}
	}
	if catalog == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "catalog cannot be nil"}
	}
	if aptStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "aptStore cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &subscriptionServiceImpl{
		subStore: subStore,
		catalog:  catalog,
		aptStore: aptStore,
		logger:   logger.With("component", "subscription_service"),
	}, nil
}

func (s *subscriptionServiceImpl) Create(ctx context.Context, userID uuid.UUID, input CreateSubscriptionInput) (*domain.Subscription, error) {
	if _, err := s.catalog.GetServiceType(ctx, input.ServiceTypeID); err != nil {
		if errors.Is(err, store.ErrServiceTypeNotFound) {
			return nil, err
		}
		return nil, NewServiceError("create_subscription", "failed to load service type", err)
	}

	if input.ApartmentID != nil {
		if err := s.checkApartment(ctx, userID, *input.ApartmentID, "create_subscription"); err != nil {
			return nil, err
		}
	}

	sub, err := domain.NewSubscription(userID, input.ServiceTypeID, input.Frequency, input.StartDate)
	if err != nil {
		return nil, NewServiceError("create_subscription", "invalid subscription data", err)
	}
	sub.ApartmentID = input.ApartmentID
	sub.DiscountPercent = input.DiscountPercent
	if err := sub.Validate(); err != nil {
		return nil, NewServiceError("create_subscription", "invalid subscription data", err)
	}

	if err := s.subStore.Create(ctx, sub); err != nil {
		return nil, NewServiceError("create_subscription", "failed to save subscription", err)
	}

	s.logger.Info("subscription created",
		"subscription_id", sub.ID, "user_id", userID, "frequency", sub.Frequency)
	return sub, nil
}

func (s *subscriptionServiceImpl) Get(ctx context.Context, userID, subID uuid.UUID) (*domain.Subscription, error) {
	return s.getOwned(ctx, userID, subID, "get_subscription")
}

func (s *subscriptionServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	subs, err := s.subStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_subscriptions", "failed to list subscriptions", err)
	}
	return subs, nil
}

func (s *subscriptionServiceImpl) Update(ctx context.Context, userID, subID uuid.UUID, input UpdateSubscriptionInput) (*domain.Subscription, error) {
	sub, err := s.getOwned(ctx, userID, subID, "update_subscription")
	if err != nil {
		return nil, err
	}

	if input.Frequency != nil {
		sub.Frequency = *input.Frequency
	}
	if input.ApartmentID != nil {
		if err := s.checkApartment(ctx, userID, *input.ApartmentID, "update_subscription"); err != nil {
			return nil, err
		}
		sub.ApartmentID = input.ApartmentID
	}
	if input.StartDate != nil {
		sub.StartDate = *input.StartDate
	}

	if err := sub.Validate(); err != nil {
		return nil, NewServiceError("update_subscription", "invalid subscription data", err)
	}

	if err := s.subStore.Update(ctx, sub); err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return nil, err
		}
		return nil, NewServiceError("update_subscription", "failed to save subscription", err)
	}

	return sub, nil
}

func (s *subscriptionServiceImpl) Cancel(ctx context.Context, userID, subID uuid.UUID) error {
	sub, err := s.getOwned(ctx, userID, subID, "cancel_subscription")
	if err != nil {
		return err
	}
	if !sub.IsActive {
		return nil
	}

	sub.IsActive = false
	if err := s.subStore.Update(ctx, sub); err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return err
		}
		return NewServiceError("cancel_subscription", "failed to save subscription", err)
	}

	s.logger.Info("subscription cancelled", "subscription_id", subID, "user_id", userID)
	return nil
}

func (s *subscriptionServiceImpl) getOwned(ctx context.Context, userID, subID uuid.UUID, op string) (*domain.Subscription, error) {
	sub, err := s.subStore.GetByID(ctx, subID)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return nil, err
		}
		return nil, NewServiceError(op, "failed to load subscription", err)
	}
	if sub.UserID != userID {
		return nil, fmt.Errorf("%w: subscription", ErrNotOwned)
	}
	return sub, nil
}

func (s *subscriptionServiceImpl) checkApartment(ctx context.Context, userID, apartmentID uuid.UUID, op string) error {
	apt, err := s.aptStore.GetByID(ctx, apartmentID)
	if err != nil {
		if errors.Is(err, store.ErrApartmentNotFound) {
			return err
		}
		return NewServiceError(op, "failed to load apartment", err)
	}
	if apt.UserID != userID {
		return fmt.Errorf("%w: apartment", ErrNotOwned)
	}
	return nil
}
