// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidAmount is returned when a monetary amount is negative or
	// otherwise outside its permitted range.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidOrderStatus is returned when an order status is not one of
	// the known lifecycle states.
	ErrInvalidOrderStatus = errors.New("invalid order status")

	// ErrInvalidGiftCardCode is returned when a gift card code does not match
	// the expected XXXX-XXXX-XXXX format.
	ErrInvalidGiftCardCode = errors.New("invalid gift card code format")

	// ErrInvalidOfferType is returned when a special offer type is unknown.
	ErrInvalidOfferType = errors.New("invalid special offer type")

	// ErrInvalidDiscountType is returned when a discount is neither a fixed
	// amount nor a percentage.
	ErrInvalidDiscountType = errors.New("invalid discount type")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError provides field-level context for a validation failure.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
