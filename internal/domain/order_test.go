package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServiceTypeFixture() *ServiceType {
	return &ServiceType{
		ID:           uuid.New(),
		Name:         "Standard Cleaning",
		BasePrice:    100,
		BaseDuration: 90,
		IsActive:     true,
	}
}

func TestNewOrder(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	st := testServiceTypeFixture()
	date := time.Now().UTC().Add(72 * time.Hour)

	order, err := NewOrder(userID, st, date, 5)
	require.NoError(t, err)

	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, st.ID, order.ServiceTypeID)
	assert.Equal(t, "Standard Cleaning", order.ServiceTypeName)
	assert.Equal(t, 100.0, order.BasePrice)
	assert.Equal(t, 90, order.Duration)
	assert.Equal(t, 5.0, order.Tips)
}

func TestNewOrderValidation(t *testing.T) {
	t.Parallel()

	st := testServiceTypeFixture()
	date := time.Now().UTC().Add(72 * time.Hour)

	_, err := NewOrder(uuid.New(), nil, date, 0)
	assert.ErrorIs(t, err, ErrEmptyServiceType)

	_, err = NewOrder(uuid.Nil, st, date, 0)
	assert.ErrorIs(t, err, ErrEmptyOrderOwner)

	_, err = NewOrder(uuid.New(), st, time.Time{}, 0)
	assert.ErrorIs(t, err, ErrZeroServiceDate)

	_, err = NewOrder(uuid.New(), st, date, -1)
	assert.ErrorIs(t, err, ErrNegativeTips)
}

func TestOrderRecalculate(t *testing.T) {
	t.Parallel()

	st := testServiceTypeFixture()
	order, err := NewOrder(uuid.New(), st, time.Now().UTC().Add(72*time.Hour), 0)
	require.NoError(t, err)

	order.AddService(&Service{ID: uuid.New(), Name: "Bedroom", Cost: 10, Duration: 15}, 2)
	order.AddExtraService(&ExtraService{ID: uuid.New(), Name: "Inside fridge", Price: 25, Duration: 30}, 1, 0)
	order.Recalculate(st.BaseDuration)

	// 100 base + 2×10 bedrooms + 25 fridge
	assert.Equal(t, 145.0, order.Subtotal)
	assert.Equal(t, 12.76, order.Tax)
	assert.Equal(t, 157.76, order.Total)
	assert.Equal(t, 90+30+30, order.Duration)
}

func TestOrderRecalculateKeepsDiscount(t *testing.T) {
	t.Parallel()

	st := testServiceTypeFixture()
	order, err := NewOrder(uuid.New(), st, time.Now().UTC().Add(72*time.Hour), 0)
	require.NoError(t, err)
	order.DiscountAmount = 20

	order.Recalculate(st.BaseDuration)

	assert.Equal(t, 100.0, order.Subtotal)
	assert.Equal(t, 20.0, order.DiscountAmount)
	assert.Equal(t, 7.04, order.Tax)
	assert.Equal(t, 87.04, order.Total)
}

func TestOrderHourBasedExtra(t *testing.T) {
	t.Parallel()

	st := testServiceTypeFixture()
	order, err := NewOrder(uuid.New(), st, time.Now().UTC().Add(72*time.Hour), 0)
	require.NoError(t, err)

	order.AddExtraService(&ExtraService{
		ID:          uuid.New(),
		Name:        "Organizing",
		Price:       40,
		Duration:    60,
		IsHourBased: true,
	}, 3, 2.5)

	require.Len(t, order.ExtraServices, 1)
	item := order.ExtraServices[0]
	assert.Equal(t, 100.0, item.Cost)
	assert.Equal(t, 2.5, item.Hours)
	assert.Equal(t, 150, item.Duration)
}

func TestOrderStatusTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status     OrderStatus
		modifiable bool
	}{
		{OrderStatusPending, true},
		{OrderStatusPaid, true},
		{OrderStatusDone, false},
		{OrderStatusCancelled, false},
	}

	for _, tc := range tests {
		order := &Order{Status: tc.status}
		assert.Equal(t, tc.modifiable, order.Modifiable(), "status %s", tc.status)
	}
}

func TestOrderCancellableAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		status      OrderStatus
		serviceDate time.Time
		want        bool
	}{
		{"well before notice window", OrderStatusPending, now.Add(48 * time.Hour), true},
		{"inside notice window", OrderStatusPending, now.Add(23 * time.Hour), false},
		{"exactly at boundary", OrderStatusPending, now.Add(24 * time.Hour), false},
		{"just past boundary", OrderStatusPaid, now.Add(24*time.Hour + time.Second), true},
		{"already done", OrderStatusDone, now.Add(48 * time.Hour), false},
		{"already cancelled", OrderStatusCancelled, now.Add(48 * time.Hour), false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			order := &Order{Status: tc.status, ServiceDate: tc.serviceDate}
			assert.Equal(t, tc.want, order.CancellableAt(now))
		})
	}
}

func TestOrderClearItems(t *testing.T) {
	t.Parallel()

	st := testServiceTypeFixture()
	order, err := NewOrder(uuid.New(), st, time.Now().UTC().Add(72*time.Hour), 0)
	require.NoError(t, err)

	order.AddService(&Service{ID: uuid.New(), Name: "Bedroom", Cost: 10, Duration: 15}, 1)
	order.ClearItems()
	order.Recalculate(st.BaseDuration)

	assert.Empty(t, order.Services)
	assert.Equal(t, 100.0, order.Subtotal)
	assert.Equal(t, 90, order.Duration)
}
