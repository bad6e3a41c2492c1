package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/store"
)

// CreateApartmentInput carries the fields for saving a cleaning location.
type CreateApartmentInput struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ZipCode   string `json:"zip_code"`
	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
}

// UpdateApartmentInput carries optional apartment changes. Nil fields are
// left untouched.
type UpdateApartmentInput struct {
	Name      *string `json:"name,omitempty"`
	Address   *string `json:"address,omitempty"`
	City      *string `json:"city,omitempty"`
	ZipCode   *string `json:"zip_code,omitempty"`
	Bedrooms  *int    `json:"bedrooms,omitempty"`
	Bathrooms *int    `json:"bathrooms,omitempty"`
}

// ApartmentService manages a customer's saved cleaning locations. Every
// operation that touches an existing apartment enforces ownership.
type ApartmentService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateApartmentInput) (*domain.Apartment, error)
	Get(ctx context.Context, userID, apartmentID uuid.UUID) (*domain.Apartment, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Apartment, error)
	Update(ctx context.Context, userID, apartmentID uuid.UUID, input UpdateApartmentInput) (*domain.Apartment, error)
	Delete(ctx context.Context, userID, apartmentID uuid.UUID) error
}

type apartmentServiceImpl struct {
	aptStore store.ApartmentStore
	logger   *slog.Logger
}

// NewApartmentService creates a new ApartmentService.
func NewApartmentService(aptStore store.ApartmentStore, logger *slog.Logger) (ApartmentService, error) {
	if aptStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "aptStore cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &apartmentServiceImpl{
		aptStore: aptStore,
		logger:   logger.With("component", "apartment_service"),
	}, nil
}

func (s *apartmentServiceImpl) Create(ctx context.Context, userID uuid.UUID, input CreateApartmentInput) (*domain.Apartment, error) {
	apt, err := domain.NewApartment(userID, input.Name, input.Address, input.City, input.ZipCode, input.Bedrooms, input.Bathrooms)
	if err != nil {
		return nil, NewServiceError("create_apartment", "invalid apartment data", err)
	}

	if err := s.aptStore.Create(ctx, apt); err != nil {
		return nil, NewServiceError("create_apartment", "failed to save apartment", err)
	}

	s.logger.Info("apartment created", "apartment_id", apt.ID, "user_id", userID)
	return apt, nil
}

func (s *apartmentServiceImpl) Get(ctx context.Context, userID, apartmentID uuid.UUID) (*domain.Apartment, error) {
	return s.getOwned(ctx, userID, apartmentID, "get_apartment")
}

func (s *apartmentServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]*domain.Apartment, error) {
	apts, err := s.aptStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_apartments", "failed to list apartments", err)
	}
	return apts, nil
}

func (s *apartmentServiceImpl) Update(ctx context.Context, userID, apartmentID uuid.UUID, input UpdateApartmentInput) (*domain.Apartment, error) {
	apt, err := s.getOwned(ctx, userID, apartmentID, "update_apartment")
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		apt.Name = *input.Name
	}
	if input.Address != nil {
		apt.Address = *input.Address
	}
	if input.City != nil {
		apt.City = *input.City
	}
	if input.ZipCode != nil {
		apt.ZipCode = *input.ZipCode
	}
	if input.Bedrooms != nil {
		apt.Bedrooms = *input.Bedrooms
	}
	if input.Bathrooms != nil {
		apt.Bathrooms = *input.Bathrooms
	}

	if err := apt.Validate(); err != nil {
		return nil, NewServiceError("update_apartment", "invalid apartment data", err)
	}

	if err := s.aptStore.Update(ctx, apt); err != nil {
		if errors.Is(err, store.ErrApartmentNotFound) {
			return nil, err
		}
		return nil, NewServiceError("update_apartment", "failed to save apartment", err)
	}

	return apt, nil
}

func (s *apartmentServiceImpl) Delete(ctx context.Context, userID, apartmentID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, apartmentID, "delete_apartment"); err != nil {
		return err
	}

	if err := s.aptStore.Delete(ctx, apartmentID); err != nil {
		if errors.Is(err, store.ErrApartmentNotFound) {
			return err
		}
		return NewServiceError("delete_apartment", "failed to delete apartment", err)
	}

	s.logger.Info("apartment deleted", "apartment_id", apartmentID, "user_id", userID)
	return nil
}

func (s *apartmentServiceImpl) getOwned(ctx context.Context, userID, apartmentID uuid.UUID, op string) (*domain.Apartment, error) {
	apt, err := s.aptStore.GetByID(ctx, apartmentID)
	if err != nil {
		if errors.Is(err, store.ErrApartmentNotFound) {
			return nil, err
		}
		return nil, NewServiceError(op, "failed to load apartment", err)
	}
	if apt.UserID != userID {
		return nil, fmt.Errorf("%w: apartment", ErrNotOwned)
	}
	return apt, nil
}
