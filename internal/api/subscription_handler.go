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

// CreateSubscriptionRequest represents the request body for starting a
// recurring cleaning plan.
type CreateSubscriptionRequest struct {
	ServiceTypeID   uuid.UUID  `json:"service_type_id"  validate:"required"`
	ApartmentID     *uuid.UUID `json:"apartment_id,omitempty"`
	Frequency       string     `json:"frequency"        validate:"required,oneof=weekly biweekly monthly"`
	DiscountPercent float64    `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	StartDate       time.Time  `json:"start_date"       validate:"required"`
}

// UpdateSubscriptionRequest represents the request body for changing a
// plan. Nil fields are left untouched.
type UpdateSubscriptionRequest struct {
	Frequency   *string    `json:"frequency,omitempty" validate:"omitempty,oneof=weekly biweekly monthly"`
	ApartmentID *uuid.UUID `json:"apartment_id,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
}

// SubscriptionHandler handles recurring plan HTTP requests.
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	validator           *validator.Validate
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		validator:           validator.New(),
	}
}

// Create handles POST /api/subscriptions requests.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateSubscriptionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sub, err := h.subscriptionService.Create(r.Context(), userID, service.CreateSubscriptionInput{
		ServiceTypeID:   req.ServiceTypeID,
		ApartmentID:     req.ApartmentID,
		Frequency:       domain.SubscriptionFrequency(req.Frequency),
		DiscountPercent: req.DiscountPercent,
		StartDate:       req.StartDate,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, sub)
}

// Get handles GET /api/subscriptions/{id} requests.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, subID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Get(r.Context(), userID, subID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sub)
}

// List handles GET /api/subscriptions requests.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	subs, err := h.subscriptionService.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if subs == nil {
		subs = []*domain.Subscription{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, subs)
}

// Update handles PUT /api/subscriptions/{id} requests.
func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, subID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateSubscriptionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	var freq *domain.SubscriptionFrequency
	if req.Frequency != nil {
		f := domain.SubscriptionFrequency(*req.Frequency)
		freq = &f
	}

	sub, err := h.subscriptionService.Update(r.Context(), userID, subID, service.UpdateSubscriptionInput{
		Frequency:   freq,
		ApartmentID: req.ApartmentID,
		StartDate:   req.StartDate,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sub)
}

// Cancel handles POST /api/subscriptions/{id}/cancel requests.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, subID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.subscriptionService.Cancel(r.Context(), userID, subID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
