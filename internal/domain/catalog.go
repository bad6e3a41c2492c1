package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Catalog-specific validation errors
var (
	ErrEmptyServiceName    = errors.New("service name cannot be empty")
	ErrNegativeServicePrice = errors.New("service price cannot be negative")
)

// ServiceType is a top-level cleaning package (e.g. standard, deep,
// move-out). Its base price seeds every order subtotal.
type ServiceType struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BasePrice float64   `json:"base_price"`
	// BaseDuration is the minimum service time in minutes.
	BaseDuration int       `json:"base_duration"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Service is a quantity-priced catalog item added to an order, such as
// bedrooms or bathrooms. Cost and duration scale linearly with quantity.
type Service struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	// Cost is the price per unit of quantity.
	Cost float64 `json:"cost"`
	// Duration is the added service time in minutes per unit of quantity.
	Duration  int       `json:"duration"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExtraService is an optional add-on such as inside-fridge cleaning or
// window washing. Hour-based extras are billed per hour rather than per
// quantity.
type ExtraService struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price float64   `json:"price"`
	// Duration is the added service time in minutes per unit (or per hour
	// for hour-based extras).
	Duration int `json:"duration"`
	// IsHourBased selects hour-based billing: price × hours instead of
	// price × quantity.
	IsHourBased bool      `json:"is_hour_based"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks if the Service has valid data.
func (s *Service) Validate() error {
	if s.ID == uuid.Nil {
		return ErrInvalidID
	}
	if s.Name == "" {
		return ErrEmptyServiceName
	}
	if s.Cost < 0 {
		return ErrNegativeServicePrice
	}
	return nil
}

// Validate checks if the ExtraService has valid data.
func (e *ExtraService) Validate() error {
	if e.ID == uuid.Nil {
		return ErrInvalidID
	}
	if e.Name == "" {
		return ErrEmptyServiceName
	}
	if e.Price < 0 {
		return ErrNegativeServicePrice
	}
	return nil
}
