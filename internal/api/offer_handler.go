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

// CreateOfferRequest represents the request body for creating a special
// offer.
type CreateOfferRequest struct {
	Name               string     `json:"name"                 validate:"required,max=200"`
	Type               string     `json:"type"                 validate:"required,oneof=first_time promotional seasonal"`
	DiscountType       string     `json:"discount_type"        validate:"required,oneof=amount percentage"`
	DiscountValue      float64    `json:"discount_value"       validate:"required,gt=0"`
	ValidFrom          *time.Time `json:"valid_from,omitempty"`
	ValidTo            *time.Time `json:"valid_to,omitempty"`
	MinimumOrderAmount float64    `json:"minimum_order_amount" validate:"omitempty,gte=0"`
	FirstTimeOnly      bool       `json:"first_time_only"`
}

// UseOfferRequest represents the request body for redeeming an offer
// against an order.
type UseOfferRequest struct {
	OfferID uuid.UUID `json:"offer_id" validate:"required"`
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// UseOfferResponse reports whether a grant was consumed.
type UseOfferResponse struct {
	Used bool `json:"used"`
}

// OfferHandler handles special offer HTTP requests.
type OfferHandler struct {
	offerService service.SpecialOfferService
	validator    *validator.Validate
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offerService service.SpecialOfferService) *OfferHandler {
	return &OfferHandler{
		offerService: offerService,
		validator:    validator.New(),
	}
}

// CreateOffer handles POST /api/offers requests.
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req CreateOfferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	offer, err := h.offerService.CreateOffer(r.Context(), service.CreateOfferInput{
		Name:               req.Name,
		Type:               domain.OfferType(req.Type),
		DiscountType:       domain.DiscountType(req.DiscountType),
		DiscountValue:      req.DiscountValue,
		ValidFrom:          req.ValidFrom,
		ValidTo:            req.ValidTo,
		MinimumOrderAmount: req.MinimumOrderAmount,
		FirstTimeOnly:      req.FirstTimeOnly,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, offer)
}

// GetOffer handles GET /api/offers/{id} requests.
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	offerID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	offer, err := h.offerService.GetOffer(r.Context(), offerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, offer)
}

// DeactivateOffer handles DELETE /api/offers/{id} requests. Offers are
// retired, never removed, so grant history stays intact.
func (h *OfferHandler) DeactivateOffer(w http.ResponseWriter, r *http.Request) {
	offerID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.offerService.DeactivateOffer(r.Context(), offerID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UseOffer handles POST /api/offers/use requests.
func (h *OfferHandler) UseOffer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UseOfferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	used, err := h.offerService.UseSpecialOffer(r.Context(), userID, req.OfferID, req.OrderID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UseOfferResponse{Used: used})
}

// ValidateOffer handles GET /api/offers/{id}/validate requests.
func (h *OfferHandler) ValidateOffer(w http.ResponseWriter, r *http.Request) {
	userID, offerID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.offerService.ValidateSpecialOffer(r.Context(), userID, offerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// AvailableOffers handles GET /api/offers/available requests.
func (h *OfferHandler) AvailableOffers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	offers, err := h.offerService.GetUserAvailableOffers(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if offers == nil {
		offers = []*service.AvailableOffer{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, offers)
}
