package handler

import (
	"net/http"

	"bridge-be/internal/middleware"
	"bridge-be/internal/order"
	"bridge-be/internal/user"

	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	service order.Service
}

func NewDashboardHandler(service order.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) RegisterRoutes(router chi.Router) {
	router.With(middleware.RequireAuth).Get("/dashboard", h.handleDashboard)
	router.With(middleware.RequireRole(user.RoleAdmin)).Get("/analytics/agents", h.handleAgentPerformance)
}

func (h *DashboardHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, h.service.Dashboard(r.Context(), viewer))
}

func (h *DashboardHandler) handleAgentPerformance(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	rows, err := h.service.AgentPerformance(r.Context(), viewer)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to compute agent performance")
		return
	}
	respondWithJSON(w, http.StatusOK, rows)
}
