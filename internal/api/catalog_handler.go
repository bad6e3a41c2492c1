package api

import (
	"net/http"

	"github.com/freshnest/freshnest-api/internal/api/shared"
	"github.com/freshnest/freshnest-api/internal/store"
)

// CatalogHandler serves the read-only service catalog.
type CatalogHandler struct {
	catalog store.CatalogStore
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog store.CatalogStore) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListServiceTypes handles GET /api/catalog/service-types requests.
func (h *CatalogHandler) ListServiceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.catalog.ListServiceTypes(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, types)
}

// ListServices handles GET /api/catalog/services requests.
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ListServices(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, services)
}

// ListExtraServices handles GET /api/catalog/extra-services requests.
func (h *CatalogHandler) ListExtraServices(w http.ResponseWriter, r *http.Request) {
	extras, err := h.catalog.ListExtraServices(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, extras)
}
