package handler

import (
	"context"
	"net/http"
	"strings"

	"bridge-be/internal/middleware"
	"bridge-be/internal/user"

	"github.com/go-chi/chi/v5"
)

// UserDirectory searches accounts by name, email or phone.
type UserDirectory interface {
	Search(ctx context.Context, term string, role user.Role) ([]user.User, error)
}

type UsersHandler struct {
	users UserDirectory
}

func NewUsersHandler(users UserDirectory) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(user.RoleAdmin))
		r.Get("/users", h.handleListUsers)
	})
}

func (h *UsersHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var role user.Role
	if raw := strings.TrimSpace(q.Get("role")); raw != "" {
		parsed, err := user.ParseRole(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		role = parsed
	}

	users, err := h.users.Search(r.Context(), q.Get("search"), role)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list users")
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}
