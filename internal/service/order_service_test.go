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

type orderServiceFixture struct {
	svc     OrderService
	orders  *mockOrderStore
	users   *mockUserStore
	catalog *mockCatalogStore
	apts    *mockApartmentStore
	offers  *mockSpecialOfferStore
	emitter *captureEmitter
}

func newOrderServiceFixture(t *testing.T) *orderServiceFixture {
	t.Helper()

	f := &orderServiceFixture{
		orders:  new(mockOrderStore),
		users:   new(mockUserStore),
		catalog: new(mockCatalogStore),
		apts:    new(mockApartmentStore),
		offers:  new(mockSpecialOfferStore),
		emitter: &captureEmitter{},
	}

	svc, err := NewOrderService(newStubDB(t), f.orders, f.users, f.catalog, f.apts, f.offers, f.emitter, discardLogger())
	require.NoError(t, err)
	f.svc = svc
	return f
}

func testServiceType() *domain.ServiceType {
	return &domain.ServiceType{
		ID:           uuid.New(),
		Name:         "Standard Cleaning",
		BasePrice:    100,
		BaseDuration: 90,
		IsActive:     true,
	}
}

func TestCreateOrder_PricesFromCatalogSnapshots(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()
	bedroom := &domain.Service{ID: uuid.New(), Name: "Bedroom", Cost: 10, Duration: 30, IsActive: true}
	serviceDate := time.Now().UTC().Add(72 * time.Hour)

	f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)
	f.catalog.On("GetService", mock.Anything, bedroom.ID).Return(bedroom, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	f.users.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID, Email: "a@b.com", FirstTimeOrder: false, IsActive: true}, nil)

	order, err := f.svc.CreateOrder(context.Background(), userID, CreateOrderInput{
		ServiceTypeID: serviceType.ID,
		ServiceDate:   serviceDate,
		Tips:          5,
		Services:      []ServiceSelection{{ServiceID: bedroom.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// base 100 + 2 bedrooms at 10 = 120; tax 8.8% of 120
	assert.Equal(t, 120.0, order.Subtotal)
	assert.Equal(t, 0.0, order.DiscountAmount)
	assert.Equal(t, 10.56, order.Tax)
	assert.Equal(t, 135.56, order.Total)
	assert.Equal(t, 90+60, order.Duration)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "Standard Cleaning", order.ServiceTypeName)

	f.orders.AssertExpectations(t)
}

func TestCreateOrder_AppliesPromoCodeDiscount(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()

	offer, err := domain.NewSpecialOffer("Welcome", domain.OfferTypeFirstTime, domain.DiscountTypePercentage, 20)
	require.NoError(t, err)
	grant, err := domain.NewUserSpecialOffer(userID, offer.ID, nil)
	require.NoError(t, err)

	f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)
	f.offers.On("GetOfferByName", mock.Anything, "Welcome").Return(offer, nil)
	f.offers.On("GetUnusedGrantForUpdate", mock.Anything, userID, offer.ID).Return(grant, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.offers.On("MarkGrantUsed", mock.Anything, grant.ID, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil)
	f.users.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID, Email: "a@b.com", FirstTimeOrder: false, IsActive: true}, nil)

	order, err := f.svc.CreateOrder(context.Background(), userID, CreateOrderInput{
		ServiceTypeID: serviceType.ID,
		ServiceDate:   time.Now().UTC().Add(72 * time.Hour),
		PromoCode:     "Welcome",
	})
	require.NoError(t, err)

	// 20% of the 100 base: tax 8.8% of the discounted 80
	assert.Equal(t, 100.0, order.Subtotal)
	assert.Equal(t, 20.0, order.DiscountAmount)
	assert.Equal(t, 7.04, order.Tax)
	assert.Equal(t, 87.04, order.Total)
	assert.Equal(t, "Welcome", order.PromoCode)

	// The grant is consumed against this very order.
	f.offers.AssertCalled(t, "MarkGrantUsed", mock.Anything, grant.ID, order.ID, mock.AnythingOfType("time.Time"))
}

func TestCreateOrder_UnusablePromoCode(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	freshGrant := func(offerID uuid.UUID) *domain.UserSpecialOffer {
		g, err := domain.NewUserSpecialOffer(userID, offerID, nil)
		require.NoError(t, err)
		return g
	}

	tests := []struct {
		name  string
		setup func(f *orderServiceFixture)
	}{
		{
			name: "unknown promo code",
			setup: func(f *orderServiceFixture) {
				f.offers.On("GetOfferByName", mock.Anything, "Welcome").Return(nil, store.ErrOfferNotFound)
			},
		},
		{
			name: "inactive offer",
			setup: func(f *orderServiceFixture) {
				offer, _ := domain.NewSpecialOffer("Welcome", domain.OfferTypePromotional, domain.DiscountTypeAmount, 10)
				offer.IsActive = false
				f.offers.On("GetOfferByName", mock.Anything, "Welcome").Return(offer, nil)
			},
		},
		{
			name: "offer outside validity window",
			setup: func(f *orderServiceFixture) {
				offer, _ := domain.NewSpecialOffer("Welcome", domain.OfferTypeSeasonal, domain.DiscountTypeAmount, 10)
				offer.ValidTo = &past
				f.offers.On("GetOfferByName", mock.Anything, "Welcome").Return(offer, nil)
			},
		},
		{
			name: "order below offer minimum",
			setup: func(f *orderServiceFixture) {
				offer, _ := domain.NewSpecialOffer("Welcome", domain.OfferTypePromotional, domain.DiscountTypeAmount, 10)
				offer.MinimumOrderAmount = 500
				f.offers.On("GetOfferByName", mock.Anything, "Welcome").Return(offer, nil)
			},
		},
		{
			name: "grant already used",
			setup: func(f *orderServiceFixture) {
				offer, _ := domain.NewSpecialOffer("Welcome", domain.OfferTypeFirstTime, domain.DiscountTypeAmount, 10)
				f.offers.On("GetOfferByName", mock.Anything, "Welcome").Return(offer, nil)
				f.offers.On("GetUnusedGrantForUpdate", mock.Anything, userID, offer.ID).Return(nil, store.ErrGrantNotFound)
			},
		},
		{
			name: "grant expired",
			setup: func(f *orderServiceFixture) {
				offer, _ := domain.NewSpecialOffer("Welcome", domain.OfferTypeFirstTime, domain.DiscountTypeAmount, 10)
				offer.ValidTo = &future
				f.offers.On("GetOfferByName", mock.Anything, "Welcome").Return(offer, nil)
				expired := freshGrant(offer.ID)
				expired.ExpiresAt = &past
				f.offers.On("GetUnusedGrantForUpdate", mock.Anything, userID, offer.ID).Return(expired, nil)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newOrderServiceFixture(t)
			serviceType := testServiceType()
			f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)
			tc.setup(f)

			// An unusable code fails the booking; it never prices the
			// order without the discount.
			_, err := f.svc.CreateOrder(context.Background(), userID, CreateOrderInput{
				ServiceTypeID: serviceType.ID,
				ServiceDate:   time.Now().UTC().Add(72 * time.Hour),
				PromoCode:     "Welcome",
			})
			require.ErrorIs(t, err, ErrOfferUnusable)
			f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateOrder_FlipsFirstTimeFlag(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()

	f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID, Email: "a@b.com", FirstTimeOrder: true, IsActive: true}, nil)
	f.users.On("SetFirstTimeOrder", mock.Anything, userID, false).Return(nil)

	_, err := f.svc.CreateOrder(context.Background(), userID, CreateOrderInput{
		ServiceTypeID: serviceType.ID,
		ServiceDate:   time.Now().UTC().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	f.users.AssertCalled(t, "SetFirstTimeOrder", mock.Anything, userID, false)
}

func TestCreateOrder_SkipsMissingCatalogItems(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()
	bedroom := &domain.Service{ID: uuid.New(), Name: "Bedroom", Cost: 10, Duration: 30, IsActive: true}
	goneID := uuid.New()

	f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)
	f.catalog.On("GetService", mock.Anything, bedroom.ID).Return(bedroom, nil)
	f.catalog.On("GetService", mock.Anything, goneID).Return(nil, store.ErrServiceNotFound)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID, Email: "a@b.com", IsActive: true}, nil)

	order, err := f.svc.CreateOrder(context.Background(), userID, CreateOrderInput{
		ServiceTypeID: serviceType.ID,
		ServiceDate:   time.Now().UTC().Add(48 * time.Hour),
		Services: []ServiceSelection{
			{ServiceID: bedroom.ID, Quantity: 1},
			{ServiceID: goneID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// The vanished catalog item is dropped silently, not an error.
	require.Len(t, order.Services, 1)
	assert.Equal(t, bedroom.ID, order.Services[0].ServiceID)
	assert.Equal(t, 110.0, order.Subtotal)
}

func TestCreateOrder_RejectsForeignApartment(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()
	aptID := uuid.New()

	f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)
	f.apts.On("GetByID", mock.Anything, aptID).Return(&domain.Apartment{
		ID: aptID, UserID: uuid.New(), Address: "1 Main St",
	}, nil)

	_, err := f.svc.CreateOrder(context.Background(), userID, CreateOrderInput{
		ServiceTypeID: serviceType.ID,
		ApartmentID:   &aptID,
		ServiceDate:   time.Now().UTC().Add(48 * time.Hour),
	})
	require.ErrorIs(t, err, ErrNotOwned)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func existingOrder(userID uuid.UUID, serviceType *domain.ServiceType, discount float64) *domain.Order {
	order, _ := domain.NewOrder(userID, serviceType, time.Now().UTC().Add(72*time.Hour), 0)
	order.DiscountAmount = discount
	order.Recalculate(serviceType.BaseDuration)
	return order
}

func TestUpdateOrder_ReappliesOriginalDiscount(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()
	order := existingOrder(userID, serviceType, 10)
	bedroom := &domain.Service{ID: uuid.New(), Name: "Bedroom", Cost: 10, Duration: 30, IsActive: true}

	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)
	f.catalog.On("GetService", mock.Anything, bedroom.ID).Return(bedroom, nil)
	f.orders.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, err := f.svc.UpdateOrder(context.Background(), userID, order.ID, UpdateOrderInput{
		Services: []ServiceSelection{{ServiceID: bedroom.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// subtotal 120 with the stored discount of 10 carried over:
	// tax = 8.8% of 110 = 9.68, total = 110 + 9.68
	assert.Equal(t, 120.0, updated.Subtotal)
	assert.Equal(t, 10.0, updated.DiscountAmount)
	assert.Equal(t, 9.68, updated.Tax)
	assert.Equal(t, 119.68, updated.Total)
}

func TestUpdateOrder_RejectsTerminalOrder(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	order := existingOrder(userID, testServiceType(), 0)
	order.Status = domain.OrderStatusDone

	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := f.svc.UpdateOrder(context.Background(), userID, order.ID, UpdateOrderInput{})
	require.ErrorIs(t, err, ErrOrderNotModifiable)
	f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCalculateAdditionalAmount_ChargesOnlyTheIncrease(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()
	order := existingOrder(userID, serviceType, 0) // total 108.8
	bedroom := &domain.Service{ID: uuid.New(), Name: "Bedroom", Cost: 10, Duration: 30, IsActive: true}

	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)
	f.catalog.On("GetService", mock.Anything, bedroom.ID).Return(bedroom, nil)

	additional, err := f.svc.CalculateAdditionalAmount(context.Background(), userID, order.ID, UpdateOrderInput{
		Services: []ServiceSelection{{ServiceID: bedroom.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// new total 120 * 1.088 = 130.56 against the stored 108.80
	assert.Equal(t, 21.76, additional)

	// Pricing must not have touched the stored order.
	f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Equal(t, 108.8, order.Total)
}

func TestCalculateAdditionalAmount_NeverNegative(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()
	bedroom := &domain.Service{ID: uuid.New(), Name: "Bedroom", Cost: 10, Duration: 30, IsActive: true}

	order, err := domain.NewOrder(userID, serviceType, time.Now().UTC().Add(72*time.Hour), 0)
	require.NoError(t, err)
	order.AddService(bedroom, 3)
	order.Recalculate(serviceType.BaseDuration)

	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.catalog.On("GetServiceType", mock.Anything, serviceType.ID).Return(serviceType, nil)

	// Dropping every line item prices cheaper; the caller owes nothing,
	// and no refund is computed.
	additional, err := f.svc.CalculateAdditionalAmount(context.Background(), userID, order.ID, UpdateOrderInput{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, additional)
}

func TestCancelOrder_InsideNoticeWindow(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()
	order, err := domain.NewOrder(userID, serviceType, time.Now().UTC().Add(23*time.Hour), 0)
	require.NoError(t, err)

	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	err = f.svc.CancelOrder(context.Background(), userID, order.ID)
	require.ErrorIs(t, err, ErrCancellationTooLate)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelOrder_OutsideNoticeWindow(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	serviceType := testServiceType()
	order, err := domain.NewOrder(userID, serviceType, time.Now().UTC().Add(48*time.Hour), 0)
	require.NoError(t, err)

	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.orders.On("UpdateStatus", mock.Anything, order.ID, domain.OrderStatusCancelled).Return(nil)
	f.users.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID, Email: "a@b.com", IsActive: true}, nil)

	err = f.svc.CancelOrder(context.Background(), userID, order.ID)
	require.NoError(t, err)

	f.orders.AssertExpectations(t)
	emitted := f.emitter.emitted()
	require.Len(t, emitted, 1)
	assert.Equal(t, "order.cancelled", emitted[0].Type)
}

func TestCancelOrder_TerminalOrder(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	userID := uuid.New()
	order := existingOrder(userID, testServiceType(), 0)
	order.Status = domain.OrderStatusCancelled

	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	err := f.svc.CancelOrder(context.Background(), userID, order.ID)
	require.ErrorIs(t, err, ErrOrderNotModifiable)
}

func TestMarkOrderAsDone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       domain.OrderStatus
		wantErr      error
		wantStatusUp bool
	}{
		{name: "pending order completes", status: domain.OrderStatusPending, wantStatusUp: true},
		{name: "paid order completes", status: domain.OrderStatusPaid, wantStatusUp: true},
		{name: "done order is a no-op", status: domain.OrderStatusDone},
		{name: "cancelled order cannot complete", status: domain.OrderStatusCancelled, wantErr: ErrOrderNotModifiable},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newOrderServiceFixture(t)
			order := existingOrder(uuid.New(), testServiceType(), 0)
			order.Status = tc.status

			f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
			if tc.wantStatusUp {
				f.orders.On("UpdateStatus", mock.Anything, order.ID, domain.OrderStatusDone).Return(nil)
			}

			err := f.svc.MarkOrderAsDone(context.Background(), order.ID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)

			if tc.wantStatusUp {
				f.orders.AssertCalled(t, "UpdateStatus", mock.Anything, order.ID, domain.OrderStatusDone)
			} else {
				f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestGetOrder_EnforcesOwnership(t *testing.T) {
	t.Parallel()

	f := newOrderServiceFixture(t)
	order := existingOrder(uuid.New(), testServiceType(), 0)

	f.orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := f.svc.GetOrder(context.Background(), uuid.New(), order.ID)
	require.ErrorIs(t, err, ErrNotOwned)
}
