package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/freshnest/freshnest-api/internal/api/shared"
	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/service"
)

// ServiceSelectionRequest references a catalog service with a quantity.
type ServiceSelectionRequest struct {
	ServiceID uuid.UUID `json:"service_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"omitempty,gt=0"`
}

// ExtraServiceSelectionRequest references an extra service.
type ExtraServiceSelectionRequest struct {
	ExtraServiceID uuid.UUID `json:"extra_service_id" validate:"required"`
	Quantity       int       `json:"quantity"         validate:"omitempty,gt=0"`
	Hours          float64   `json:"hours"            validate:"omitempty,gt=0"`
}

// CreateOrderRequest represents the request body for booking an order.
type CreateOrderRequest struct {
	ServiceTypeID uuid.UUID                      `json:"service_type_id" validate:"required"`
	ApartmentID   *uuid.UUID                     `json:"apartment_id,omitempty"`
	ServiceDate   time.Time                      `json:"service_date"    validate:"required"`
	Tips          float64                        `json:"tips"            validate:"omitempty,gte=0"`
	PromoCode     string                         `json:"promo_code,omitempty"`
	Services      []ServiceSelectionRequest      `json:"services"        validate:"dive"`
	ExtraServices []ExtraServiceSelectionRequest `json:"extra_services"  validate:"dive"`
}

// UpdateOrderRequest represents the request body for updating an order.
// The line item lists replace the existing ones wholesale.
type UpdateOrderRequest struct {
	ServiceDate   *time.Time                     `json:"service_date,omitempty"`
	Tips          *float64                       `json:"tips,omitempty" validate:"omitempty,gte=0"`
	Services      []ServiceSelectionRequest      `json:"services"       validate:"dive"`
	ExtraServices []ExtraServiceSelectionRequest `json:"extra_services" validate:"dive"`
}

// AdditionalAmountResponse reports the extra charge an order update would
// incur.
type AdditionalAmountResponse struct {
	AdditionalAmount float64 `json:"additional_amount"`
}

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

// CreateOrder handles POST /api/orders requests.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), userID, service.CreateOrderInput{
		ServiceTypeID: req.ServiceTypeID,
		ApartmentID:   req.ApartmentID,
		ServiceDate:   req.ServiceDate,
		Tips:          req.Tips,
		PromoCode:     req.PromoCode,
		Services:      toServiceSelections(req.Services),
		ExtraServices: toExtraSelections(req.ExtraServices),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, order)
}

// GetOrder handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, orderID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, order)
}

// ListOrders handles GET /api/orders requests.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if orders == nil {
		orders = []*domain.Order{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, orders)
}

// UpdateOrder handles PUT /api/orders/{id} requests.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	userID, orderID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	order, err := h.orderService.UpdateOrder(r.Context(), userID, orderID, service.UpdateOrderInput{
		ServiceDate:   req.ServiceDate,
		Tips:          req.Tips,
		Services:      toServiceSelections(req.Services),
		ExtraServices: toExtraSelections(req.ExtraServices),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, order)
}

// CalculateAdditionalAmount handles POST /api/orders/{id}/calculate
// requests, pricing an update without applying it.
func (h *OrderHandler) CalculateAdditionalAmount(w http.ResponseWriter, r *http.Request) {
	userID, orderID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	additional, err := h.orderService.CalculateAdditionalAmount(r.Context(), userID, orderID, service.UpdateOrderInput{
		ServiceDate:   req.ServiceDate,
		Tips:          req.Tips,
		Services:      toServiceSelections(req.Services),
		ExtraServices: toExtraSelections(req.ExtraServices),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AdditionalAmountResponse{AdditionalAmount: additional})
}

// CancelOrder handles POST /api/orders/{id}/cancel requests.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, orderID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.orderService.CancelOrder(r.Context(), userID, orderID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkOrderAsDone handles POST /api/orders/{id}/done requests.
func (h *OrderHandler) MarkOrderAsDone(w http.ResponseWriter, r *http.Request) {
	_, orderID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.orderService.MarkOrderAsDone(r.Context(), orderID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toServiceSelections(reqs []ServiceSelectionRequest) []service.ServiceSelection {
	selections := make([]service.ServiceSelection, 0, len(reqs))
	for _, req := range reqs {
		selections = append(selections, service.ServiceSelection{
			ServiceID: req.ServiceID,
			Quantity:  req.Quantity,
		})
	}
	return selections
}

func toExtraSelections(reqs []ExtraServiceSelectionRequest) []service.ExtraServiceSelection {
	selections := make([]service.ExtraServiceSelection, 0, len(reqs))
	for _, req := range reqs {
		selections = append(selections, service.ExtraServiceSelection{
			ExtraServiceID: req.ExtraServiceID,
			Quantity:       req.Quantity,
			Hours:          req.Hours,
		})
	}
	return selections
}
