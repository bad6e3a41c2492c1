package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Apartment-specific validation errors
var (
	ErrEmptyApartmentAddress = errors.New("apartment address cannot be empty")
	ErrEmptyApartmentOwner   = errors.New("apartment owner cannot be empty")
)

// Apartment is a customer's saved cleaning location.
type Apartment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	ZipCode   string    `json:"zip_code"`
	Bedrooms  int       `json:"bedrooms"`
	Bathrooms int       `json:"bathrooms"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewApartment creates a new Apartment owned by the given user.
// Returns an error if validation fails.
func NewApartment(userID uuid.UUID, name, address, city, zipCode string, bedrooms, bathrooms int) (*Apartment, error) {
	apt := &Apartment{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Address:   address,
		City:      city,
		ZipCode:   zipCode,
		Bedrooms:  bedrooms,
		Bathrooms: bathrooms,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := apt.Validate(); err != nil {
		return nil, err
	}

	return apt, nil
}

// Validate checks if the Apartment has valid data.
func (a *Apartment) Validate() error {
	if a.ID == uuid.Nil {
		return ErrInvalidID
	}
	if a.UserID == uuid.Nil {
		return ErrEmptyApartmentOwner
	}
	if a.Address == "" {
		return ErrEmptyApartmentAddress
	}
	return nil
}
