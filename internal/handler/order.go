package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"bridge-be/internal/middleware"
	"bridge-be/internal/order"
	"bridge-be/internal/user"
	"bridge-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type StoreRequest struct {
	Name          string `json:"name" validate:"required"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	ContactPerson string `json:"contactPerson"`
}

type CreateOrderRequest struct {
	StoreID          string             `json:"storeId"`
	Store            *StoreRequest      `json:"store" validate:"required_without=StoreID"`
	Items            []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	AgentID          string             `json:"agentId"`
	DeliveryAddress  string             `json:"deliveryAddress" validate:"required"`
	DeliveryNotes    string             `json:"deliveryNotes"`
	Notes            string             `json:"notes"`
	DeliveryDeadline *time.Time         `json:"deliveryDeadline"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AssignCourierRequest struct {
	CourierID string `json:"courierId" validate:"required"`
	Dispatch  bool   `json:"dispatch"`
}

type DeadlineRequest struct {
	Deadline *time.Time `json:"deadline" validate:"required"`
}

type ProblemRequest struct {
	Description string `json:"description" validate:"required"`
}

// FiltersRequest patches the shared filter state. An empty string or a
// null-equivalent zero time clears that clause.
type FiltersRequest struct {
	Status   *string    `json:"status"`
	StoreID  *string    `json:"storeId"`
	Search   *string    `json:"search"`
	DateFrom *time.Time `json:"dateFrom"`
	DateTo   *time.Time `json:"dateTo"`
}

type TransitionsResponse struct {
	Status order.OrderStatus   `json:"status"`
	Next   []order.OrderStatus `json:"next"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service, validate: newValidator()}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/orders", h.handleList)
		r.Post("/orders", h.handleCreate)
		r.Post("/orders/refresh", h.handleRefresh)
		r.Get("/orders/{id}", h.handleGet)
		r.Get("/orders/{id}/transitions", h.handleTransitions)
		r.Patch("/orders/{id}/status", h.handleUpdateStatus)
		r.Post("/orders/{id}/problem", h.handleReportProblem)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(user.RoleAdmin))

		r.Post("/orders/{id}/courier", h.handleAssignCourier)
		r.Put("/orders/{id}/deadline", h.handleSetDeadline)
		r.Get("/orders/filters", h.handleGetFilters)
		r.Patch("/orders/filters", h.handleSetFilters)
		r.Delete("/orders/filters", h.handleClearFilters)
		r.Get("/orders/filtered", h.handleFiltered)
	})
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	f, err := filtersFromQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, h.service.List(r.Context(), viewer, f))
}

func (h *OrderHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	in := order.CreateInput{
		StoreID:          req.StoreID,
		AgentID:          req.AgentID,
		DeliveryAddress:  req.DeliveryAddress,
		DeliveryNotes:    req.DeliveryNotes,
		Notes:            req.Notes,
		DeliveryDeadline: req.DeliveryDeadline,
	}
	if req.Store != nil {
		in.Store = &order.StoreInput{
			Name:          req.Store.Name,
			Address:       req.Store.Address,
			Phone:         req.Store.Phone,
			Email:         req.Store.Email,
			ContactPerson: req.Store.ContactPerson,
		}
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, order.LineInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	o, err := h.service.Create(r.Context(), viewer, in)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to create order")
		return
	}
	respondWithJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	if err := h.service.Refresh(r.Context()); err != nil {
		respondWithServiceError(w, r, err, "Failed to refresh orders")
		return
	}
	respondWithJSON(w, http.StatusOK, h.service.List(r.Context(), viewer, order.Filters{}))
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	o, err := h.service.Get(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get order")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleTransitions(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	o, err := h.service.Get(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get order")
		return
	}
	respondWithJSON(w, http.StatusOK, TransitionsResponse{Status: o.Status, Next: order.NextStatuses(o.Status)})
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), viewer, chi.URLParam(r, "id"), status)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update order status")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleAssignCourier(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	var req AssignCourierRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	o, err := h.service.AssignCourier(r.Context(), viewer, chi.URLParam(r, "id"), req.CourierID, req.Dispatch)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to assign courier")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleSetDeadline(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	var req DeadlineRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	o, err := h.service.SetDeliveryDeadline(r.Context(), viewer, chi.URLParam(r, "id"), *req.Deadline)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to set delivery deadline")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleReportProblem(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	var req ProblemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	o, err := h.service.ReportProblem(r.Context(), viewer, chi.URLParam(r, "id"), req.Description)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to report problem")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	st, err := h.service.FilterState(r.Context(), viewer)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to read filters")
		return
	}
	respondWithJSON(w, http.StatusOK, st.Filters)
}

func (h *OrderHandler) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	var req FiltersRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	patch, err := req.toFilters()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	orders, err := h.service.SetFilters(r.Context(), viewer, patch)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to set filters")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ClearFilters(r.Context(), viewer)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to clear filters")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleFiltered(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	st, err := h.service.FilterState(r.Context(), viewer)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to read filtered orders")
		return
	}
	respondWithJSON(w, http.StatusOK, order.NewestFirst(st.FilteredOrders))
}

func (req FiltersRequest) toFilters() (order.Filters, error) {
	f := order.Filters{
		StoreID:  req.StoreID,
		Search:   req.Search,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	}
	if req.Status != nil {
		var status order.OrderStatus
		if strings.TrimSpace(*req.Status) != "" {
			parsed, err := order.ParseStatus(*req.Status)
			if err != nil {
				return order.Filters{}, err
			}
			status = parsed
		}
		f.Status = &status
	}
	return f, nil
}

// filtersFromQuery reads status, storeId, search, dateFrom and dateTo.
// Dates accept RFC 3339 or a bare YYYY-MM-DD.
func filtersFromQuery(r *http.Request) (order.Filters, error) {
	q := r.URL.Query()
	var f order.Filters

	if raw := q.Get("status"); raw != "" {
		status, err := order.ParseStatus(raw)
		if err != nil {
			return order.Filters{}, err
		}
		f.Status = &status
	}
	f.StoreID = utils.TrimmedPtr(q.Get("storeId"))
	f.Search = utils.TrimmedPtr(q.Get("search"))
	for key, dst := range map[string]**time.Time{"dateFrom": &f.DateFrom, "dateTo": &f.DateTo} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			return order.Filters{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = &t
	}
	return f, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t, nil
}
