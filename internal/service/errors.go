// Package service provides application-level services for orders, gift
// cards, special offers, users, apartments and subscriptions.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError with operation context
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrOrderNotModifiable indicates the order is in a terminal state
	// (done or cancelled) and permits no further changes.
	// API layer should map this to HTTP 409 Conflict.
	ErrOrderNotModifiable = errors.New("order can no longer be modified")

	// ErrCancellationTooLate indicates the order's service date is inside
	// the cancellation notice window.
	// API layer should map this to HTTP 409 Conflict.
	ErrCancellationTooLate = errors.New("order is too close to its service date to cancel")

	// ErrGiftCardUnusable indicates a gift card exists but cannot be
	// applied: inactive, unpaid, or depleted.
	// API layer should map this to HTTP 422 Unprocessable Entity.
	ErrGiftCardUnusable = errors.New("gift card cannot be used")

	// ErrInvalidCredentials indicates an authentication attempt with an
	// unknown email or a wrong password. The API layer maps it to 401 and
	// never distinguishes the two cases.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrOfferUnusable indicates a special offer cannot be applied:
	// inactive, outside its validity window, or the grant is expired.
	// API layer should map this to HTTP 422 Unprocessable Entity.
	ErrOfferUnusable = errors.New("special offer cannot be used")
)

// ServiceError wraps unexpected errors from the service layer with
// operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_order", "apply_gift_card")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError. Known sentinel errors pass
// through unwrapped so callers can match them with errors.Is.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// SideEffectFailure records one failed best-effort side effect (mail,
// offer grant, notification) after the core operation already committed.
type SideEffectFailure struct {
	// Name identifies the side effect, e.g. "welcome_mail" or "first_time_offer_grant"
	Name string
	// Err is the failure; never nil
	Err error
}

// SideEffects collects best-effort failures so callers can log them
// without treating the operation as failed.
type SideEffects struct {
	Failures []SideEffectFailure
}

// Record appends a failure when err is non-nil.
func (s *SideEffects) Record(name string, err error) {
	if err != nil {
		s.Failures = append(s.Failures, SideEffectFailure{Name: name, Err: err})
	}
}

// Ok reports whether every side effect succeeded.
func (s *SideEffects) Ok() bool {
	return len(s.Failures) == 0
}
