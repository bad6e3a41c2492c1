package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrOrderNotFound, ErrGiftCardNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrApartmentNotFound indicates that the requested apartment does not exist in the store.
	ErrApartmentNotFound = fmt.Errorf("%w: apartment", ErrNotFound)

	// ErrOrderNotFound indicates that the requested order does not exist in the store.
	ErrOrderNotFound = fmt.Errorf("%w: order", ErrNotFound)

	// ErrServiceTypeNotFound indicates that the requested service type does not exist in the store.
	ErrServiceTypeNotFound = fmt.Errorf("%w: service type", ErrNotFound)

	// ErrServiceNotFound indicates that the requested catalog service does not exist in the store.
	ErrServiceNotFound = fmt.Errorf("%w: service", ErrNotFound)

	// ErrExtraServiceNotFound indicates that the requested extra service does not exist in the store.
	ErrExtraServiceNotFound = fmt.Errorf("%w: extra service", ErrNotFound)

	// ErrGiftCardNotFound indicates that the requested gift card does not exist in the store.
	ErrGiftCardNotFound = fmt.Errorf("%w: gift card", ErrNotFound)

	// ErrOfferNotFound indicates that the requested special offer does not exist in the store.
	ErrOfferNotFound = fmt.Errorf("%w: special offer", ErrNotFound)

	// ErrGrantNotFound indicates that no matching unused grant exists for a
	// (user, offer) pair. Callers usually translate this into an expected
	// negative outcome rather than a failure.
	ErrGrantNotFound = fmt.Errorf("%w: offer grant", ErrNotFound)

	// ErrSubscriptionNotFound indicates that the requested subscription does not exist in the store.
	ErrSubscriptionNotFound = fmt.Errorf("%w: subscription", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrGiftCardCodeExists indicates that a gift card with the given code
	// already exists. Code generation retries on this.
	ErrGiftCardCodeExists = fmt.Errorf("%w: gift card code", ErrDuplicate)

	// ErrGrantExists indicates that the (user, offer) pair already holds a grant.
	ErrGrantExists = fmt.Errorf("%w: offer grant", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
// This includes the generic ErrDuplicate and all entity-specific duplicate errors.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "order", "gift_card")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
