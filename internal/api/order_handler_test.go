package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freshnest/freshnest-api/internal/api/shared"
	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/service"
	"github.com/freshnest/freshnest-api/internal/store"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, input service.CreateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, userID, input)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, userID, orderID)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]*domain.Order)
	return orders, args.Error(1)
}

func (m *mockOrderService) UpdateOrder(ctx context.Context, userID, orderID uuid.UUID, input service.UpdateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, userID, orderID, input)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderService) CalculateAdditionalAmount(ctx context.Context, userID, orderID uuid.UUID, input service.UpdateOrderInput) (float64, error) {
	args := m.Called(ctx, userID, orderID, input)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockOrderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	return m.Called(ctx, userID, orderID).Error(0)
}

func (m *mockOrderService) MarkOrderAsDone(ctx context.Context, orderID uuid.UUID) error {
	return m.Called(ctx, orderID).Error(0)
}

// authedRequest builds a request carrying the given user ID, the way the
// auth middleware would.
func authedRequest(t *testing.T, method, target string, body interface{}, userID uuid.UUID) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestCreateOrderHandler(t *testing.T) {
	t.Parallel()

	svc := new(mockOrderService)
	handler := NewOrderHandler(svc)
	userID := uuid.New()

	order := &domain.Order{
		ID:       uuid.New(),
		UserID:   userID,
		Status:   domain.OrderStatusPending,
		Subtotal: 120,
		Tax:      10.56,
		Total:    130.56,
	}
	svc.On("CreateOrder", mock.Anything, userID, mock.AnythingOfType("service.CreateOrderInput")).Return(order, nil)

	req := authedRequest(t, http.MethodPost, "/api/orders", CreateOrderRequest{
		ServiceTypeID: uuid.New(),
		ServiceDate:   time.Now().UTC().Add(72 * time.Hour),
	}, userID)
	rec := httptest.NewRecorder()

	handler.CreateOrder(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got domain.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, 130.56, got.Total)
}

func TestCreateOrderHandler_MissingAuth(t *testing.T) {
	t.Parallel()

	handler := NewOrderHandler(new(mockOrderService))
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()

	handler.CreateOrder(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrderHandler_ValidationFailure(t *testing.T) {
	t.Parallel()

	svc := new(mockOrderService)
	handler := NewOrderHandler(svc)

	// Missing service type and date.
	req := authedRequest(t, http.MethodPost, "/api/orders", map[string]interface{}{}, uuid.New())
	rec := httptest.NewRecorder()

	handler.CreateOrder(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelOrderHandler_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"successful cancel", nil, http.StatusNoContent},
		{"too late", service.ErrCancellationTooLate, http.StatusConflict},
		{"terminal order", service.ErrOrderNotModifiable, http.StatusConflict},
		{"foreign order", fmt.Errorf("%w", service.ErrNotOwned), http.StatusForbidden},
		{"unknown order", store.ErrOrderNotFound, http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := new(mockOrderService)
			handler := NewOrderHandler(svc)
			userID := uuid.New()
			orderID := uuid.New()

			svc.On("CancelOrder", mock.Anything, userID, orderID).Return(tc.serviceErr)

			req := authedRequest(t, http.MethodPost, "/api/orders/"+orderID.String()+"/cancel", nil, userID)
			req = withChiParam(req, "id", orderID.String())
			rec := httptest.NewRecorder()

			handler.CancelOrder(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestCalculateAdditionalAmountHandler(t *testing.T) {
	t.Parallel()

	svc := new(mockOrderService)
	handler := NewOrderHandler(svc)
	userID := uuid.New()
	orderID := uuid.New()

	svc.On("CalculateAdditionalAmount", mock.Anything, userID, orderID, mock.Anything).Return(21.76, nil)

	req := authedRequest(t, http.MethodPost, "/api/orders/"+orderID.String()+"/calculate", UpdateOrderRequest{}, userID)
	req = withChiParam(req, "id", orderID.String())
	rec := httptest.NewRecorder()

	handler.CalculateAdditionalAmount(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got AdditionalAmountResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 21.76, got.AdditionalAmount)
}
