package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/freshnest/freshnest-api/internal/api/shared"
	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/service"
)

// CreateApartmentRequest represents the request body for saving a cleaning
// location.
type CreateApartmentRequest struct {
	Name      string `json:"name"      validate:"omitempty,max=100"`
	Address   string `json:"address"   validate:"required,max=300"`
	City      string `json:"city"      validate:"omitempty,max=100"`
	ZipCode   string `json:"zip_code"  validate:"omitempty,max=20"`
	Bedrooms  int    `json:"bedrooms"  validate:"omitempty,gte=0"`
	Bathrooms int    `json:"bathrooms" validate:"omitempty,gte=0"`
}

// UpdateApartmentRequest represents the request body for updating an
// apartment. Nil fields are left untouched.
type UpdateApartmentRequest struct {
	Name      *string `json:"name,omitempty"      validate:"omitempty,max=100"`
	Address   *string `json:"address,omitempty"   validate:"omitempty,max=300"`
	City      *string `json:"city,omitempty"      validate:"omitempty,max=100"`
	ZipCode   *string `json:"zip_code,omitempty"  validate:"omitempty,max=20"`
	Bedrooms  *int    `json:"bedrooms,omitempty"  validate:"omitempty,gte=0"`
	Bathrooms *int    `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
}

// ApartmentHandler handles apartment HTTP requests.
type ApartmentHandler struct {
	apartmentService service.ApartmentService
	validator        *validator.Validate
}

// NewApartmentHandler creates a new ApartmentHandler.
func NewApartmentHandler(apartmentService service.ApartmentService) *ApartmentHandler {
	return &ApartmentHandler{
		apartmentService: apartmentService,
		validator:        validator.New(),
	}
}

// Create handles POST /api/apartments requests.
func (h *ApartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateApartmentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	apt, err := h.apartmentService.Create(r.Context(), userID, service.CreateApartmentInput{
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		ZipCode:   req.ZipCode,
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, apt)
}

// Get handles GET /api/apartments/{id} requests.
func (h *ApartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, aptID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	apt, err := h.apartmentService.Get(r.Context(), userID, aptID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, apt)
}

// List handles GET /api/apartments requests.
func (h *ApartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	apts, err := h.apartmentService.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if apts == nil {
		apts = []*domain.Apartment{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, apts)
}

// Update handles PUT /api/apartments/{id} requests.
func (h *ApartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, aptID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateApartmentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	apt, err := h.apartmentService.Update(r.Context(), userID, aptID, service.UpdateApartmentInput{
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		ZipCode:   req.ZipCode,
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, apt)
}

// Delete handles DELETE /api/apartments/{id} requests.
func (h *ApartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, aptID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.apartmentService.Delete(r.Context(), userID, aptID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
