package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/freshnest/freshnest-api/internal/api/shared"
	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/service"
)

// PurchaseGiftCardRequest represents the request body for buying a gift card.
type PurchaseGiftCardRequest struct {
	Amount         float64 `json:"amount"          validate:"required,gt=0"`
	RecipientEmail string  `json:"recipient_email" validate:"omitempty,email"`
	Message        string  `json:"message"         validate:"omitempty,max=500"`
}

// ApplyGiftCardRequest represents the request body for redeeming a gift
// card against an order.
type ApplyGiftCardRequest struct {
	Code    string    `json:"code"     validate:"required"`
	Amount  float64   `json:"amount"   validate:"required,gt=0"`
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// ApplyGiftCardResponse reports the amount actually debited.
type ApplyGiftCardResponse struct {
	AppliedAmount float64 `json:"applied_amount"`
}

// GiftCardHandler handles gift card HTTP requests.
type GiftCardHandler struct {
	giftCardService service.GiftCardService
	validator       *validator.Validate
}

// NewGiftCardHandler creates a new GiftCardHandler.
func NewGiftCardHandler(giftCardService service.GiftCardService) *GiftCardHandler {
	return &GiftCardHandler{
		giftCardService: giftCardService,
		validator:       validator.New(),
	}
}

// Purchase handles POST /api/gift-cards requests.
func (h *GiftCardHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req PurchaseGiftCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.giftCardService.Purchase(r.Context(), userID, service.PurchaseGiftCardInput{
		Amount:         req.Amount,
		RecipientEmail: req.RecipientEmail,
		Message:        req.Message,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// MarkPaid handles POST /api/gift-cards/{id}/paid requests.
func (h *GiftCardHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	_, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.giftCardService.MarkPaid(r.Context(), cardID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Validate handles GET /api/gift-cards/validate?code=... requests.
func (h *GiftCardHandler) Validate(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing code parameter")
		return
	}

	result, err := h.giftCardService.Validate(r.Context(), code)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Apply handles POST /api/gift-cards/apply requests.
func (h *GiftCardHandler) Apply(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ApplyGiftCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	applied, err := h.giftCardService.ApplyToOrder(r.Context(), req.Code, req.Amount, req.OrderID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ApplyGiftCardResponse{AppliedAmount: applied})
}

// Usages handles GET /api/gift-cards/{id}/usages requests.
func (h *GiftCardHandler) Usages(w http.ResponseWriter, r *http.Request) {
	_, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	usages, err := h.giftCardService.Usages(r.Context(), cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if usages == nil {
		usages = []*domain.GiftCardUsage{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, usages)
}
