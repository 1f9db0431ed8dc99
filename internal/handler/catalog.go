package handler

import (
	"net/http"

	"bridge-be/internal/catalog"
	"bridge-be/internal/courier"
	"bridge-be/internal/middleware"
	"bridge-be/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type AvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// CatalogHandler serves the reference data the order form picks from.
type CatalogHandler struct {
	catalog  catalog.Repository
	couriers courier.Repository
	validate *validator.Validate
}

func NewCatalogHandler(c catalog.Repository, couriers courier.Repository) *CatalogHandler {
	return &CatalogHandler{catalog: c, couriers: couriers, validate: newValidator()}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/catalog/stores", h.handleListStores)
		r.Get("/catalog/products", h.handleListProducts)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(user.RoleAdmin))
		r.Get("/couriers", h.handleListCouriers)
		r.Patch("/couriers/{id}/availability", h.handleSetAvailability)
	})
}

func (h *CatalogHandler) handleListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.catalog.ListStores(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list stores")
		return
	}
	respondWithJSON(w, http.StatusOK, stores)
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) handleListCouriers(w http.ResponseWriter, r *http.Request) {
	couriers, err := h.couriers.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list couriers")
		return
	}
	respondWithJSON(w, http.StatusOK, couriers)
}

func (h *CatalogHandler) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.couriers.SetAvailable(r.Context(), id, *req.Available); err != nil {
		respondWithServiceError(w, r, err, "Failed to update courier")
		return
	}
	c, err := h.couriers.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update courier")
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}
