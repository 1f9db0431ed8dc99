package handler

import (
	"net/http"

	"bridge-be/internal/order"
	"bridge-be/internal/user"
	"bridge-be/internal/utils"
)

// viewerFrom builds the order viewer for the authenticated request.
func viewerFrom(r *http.Request) (order.Viewer, bool) {
	ctx := r.Context()
	id, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return order.Viewer{}, false
	}

	v := order.Viewer{ID: id, Role: user.Role(utils.GetUserRoleFromContext(ctx))}
	if s, ok := utils.SessionFromContext(ctx); ok {
		if u, err := s.User(); err == nil {
			v.Name = u.Name
		}
	}
	return v, true
}

func requireViewer(w http.ResponseWriter, r *http.Request) (order.Viewer, bool) {
	v, ok := viewerFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
	}
	return v, ok
}
