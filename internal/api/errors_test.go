package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/service"
	"github.com/freshnest/freshnest-api/internal/service/auth"
	"github.com/freshnest/freshnest-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid refresh token", auth.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"expired refresh token", auth.ErrExpiredRefreshToken, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"wrapped not owned", fmt.Errorf("%w: apartment", service.ErrNotOwned), http.StatusForbidden},
		{"order not found", store.ErrOrderNotFound, http.StatusNotFound},
		{"gift card not found", store.ErrGiftCardNotFound, http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"order frozen", service.ErrOrderNotModifiable, http.StatusConflict},
		{"too late to cancel", service.ErrCancellationTooLate, http.StatusConflict},
		{"gift card unusable", service.ErrGiftCardUnusable, http.StatusUnprocessableEntity},
		{"offer unusable", service.ErrOfferUnusable, http.StatusUnprocessableEntity},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"validation failed", domain.ErrValidation, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage_NeverLeaksInternals(t *testing.T) {
	t.Parallel()

	internal := errors.New("pq: connection refused on 10.0.0.3:5432")
	msg := GetSafeErrorMessage(internal)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "10.0.0.3")
}

func TestGetSafeErrorMessage_KnownErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Order not found", GetSafeErrorMessage(store.ErrOrderNotFound))
	assert.Equal(t, "Gift card cannot be used", GetSafeErrorMessage(fmt.Errorf("%w: depleted", service.ErrGiftCardUnusable)))
	assert.Equal(t, "Invalid credentials", GetSafeErrorMessage(service.ErrInvalidCredentials))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New("Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag")
	assert.Equal(t, "Invalid Email: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("random failure")))
}
