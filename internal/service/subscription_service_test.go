package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/store"
)

type subscriptionServiceFixture struct {
	svc     SubscriptionService
	subs    *mockSubscriptionStore
	catalog *mockCatalogStore
	apts    *mockApartmentStore
}

func newSubscriptionServiceFixture(t *testing.T) *subscriptionServiceFixture {
	t.Helper()

	f := &subscriptionServiceFixture{
		subs:    new(mockSubscriptionStore),
		catalog: new(mockCatalogStore),
		apts:    new(mockApartmentStore),
	}

	svc, err := NewSubscriptionService(f.subs, f.catalog, f.apts, discardLogger())
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestSubscriptionCreate(t *testing.T) {
	t.Parallel()

	f := newSubscriptionServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()

	f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)
	f.subs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Subscription")).Return(nil)

	sub, err := f.svc.Create(context.Background(), userID, CreateSubscriptionInput{
		ServiceTypeID:   serviceType.ID,
		Frequency:       domain.FrequencyBiweekly,
		DiscountPercent: 15,
		StartDate:       time.Now().UTC().Add(72 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, userID, sub.UserID)
	assert.Equal(t, domain.FrequencyBiweekly, sub.Frequency)
	assert.Equal(t, 15.0, sub.DiscountPercent)
	assert.True(t, sub.IsActive)
}

func TestSubscriptionCreate_UnknownServiceType(t *testing.T) {
	t.Parallel()

	f := newSubscriptionServiceFixture(t)
	id := uuid.New()
	f.catalog.On("GetServiceType", mock.Anything, id).Return(nil, store.ErrServiceTypeNotFound)

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateSubscriptionInput{
		ServiceTypeID: id,
		Frequency:     domain.FrequencyWeekly,
		StartDate:     time.Now().UTC(),
	})
	require.ErrorIs(t, err, store.ErrServiceTypeNotFound)
	f.subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubscriptionCreate_ForeignApartment(t *testing.T) {
	t.Parallel()

	f := newSubscriptionServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()
	aptID := uuid.New()

	f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)
	f.apts.On("GetByID", mock.Anything, aptID).Return(&domain.Apartment{
		ID: aptID, UserID: uuid.New(), Address: "1 Elm St",
	}, nil)

	_, err := f.svc.Create(context.Background(), userID, CreateSubscriptionInput{
		ServiceTypeID: serviceType.ID,
		ApartmentID:   &aptID,
		Frequency:     domain.FrequencyMonthly,
		StartDate:     time.Now().UTC(),
	})
	require.ErrorIs(t, err, ErrNotOwned)
}

func TestSubscriptionCancel(t *testing.T) {
	t.Parallel()

	f := newSubscriptionServiceFixture(t)
	sub := &domain.Subscription{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		ServiceTypeID: uuid.New(),
		Frequency:     domain.FrequencyWeekly,
		IsActive:      true,
	}

	f.subs.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
	f.subs.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.Subscription) bool {
		return !s.IsActive
	})).Return(nil)

	require.NoError(t, f.svc.Cancel(context.Background(), sub.UserID, sub.ID))
	f.subs.AssertExpectations(t)
}

func TestSubscriptionCancel_AlreadyInactive(t *testing.T) {
	t.Parallel()

	f := newSubscriptionServiceFixture(t)
	sub := &domain.Subscription{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		ServiceTypeID: uuid.New(),
		Frequency:     domain.FrequencyWeekly,
		IsActive:      false,
	}

	f.subs.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)

	require.NoError(t, f.svc.Cancel(context.Background(), sub.UserID, sub.ID))
	f.subs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSubscriptionUpdate_Frequency(t *testing.T) {
	t.Parallel()

	f := newSubscriptionServiceFixture(t)
	sub := &domain.Subscription{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		ServiceTypeID: uuid.New(),
		Frequency:     domain.FrequencyWeekly,
		IsActive:      true,
	}

	f.subs.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
	f.subs.On("Update", mock.Anything, mock.Anything).Return(nil)

	freq := domain.FrequencyMonthly
	updated, err := f.svc.Update(context.Background(), sub.UserID, sub.ID, UpdateSubscriptionInput{Frequency: &freq})
	require.NoError(t, err)
	assert.Equal(t, domain.FrequencyMonthly, updated.Frequency)
}

func TestSubscriptionGet_EnforcesOwnership(t *testing.T) {
	t.Parallel()

	f := newSubscriptionServiceFixture(t)
	sub := &domain.Subscription{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		ServiceTypeID: uuid.New(),
		Frequency:     domain.FrequencyWeekly,
	}

	f.subs.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)

	_, err := f.svc.Get(context.Background(), uuid.New(), sub.ID)
	require.ErrorIs(t, err, ErrNotOwned)
}
