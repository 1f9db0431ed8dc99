package handler

import (
	"net/http"
	"time"

	"bridge-be/internal/middleware"
	"bridge-be/internal/notification"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type NotificationRequest struct {
	Type       string `json:"type" validate:"required,oneof=SUCCESS ERROR WARNING INFO"`
	Title      string `json:"title"`
	Message    string `json:"message" validate:"required"`
	DurationMS int    `json:"durationMs" validate:"gte=0"`
}

type NotificationsResponse struct {
	Notifications []notification.Notification `json:"notifications"`
	UnreadCount   int                         `json:"unreadCount"`
}

// WebsocketServer attaches a live connection to a user.
type WebsocketServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID string)
}

type NotificationHandler struct {
	registry *notification.Registry
	ws       WebsocketServer
	validate *validator.Validate
}

func NewNotificationHandler(registry *notification.Registry, ws WebsocketServer) *NotificationHandler {
	return &NotificationHandler{registry: registry, ws: ws, validate: newValidator()}
}

func (h *NotificationHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/notifications", h.handleList)
		r.Post("/notifications", h.handleAdd)
		r.Post("/notifications/read-all", h.handleMarkAllRead)
		r.Post("/notifications/{id}/read", h.handleMarkRead)
		r.Delete("/notifications/{id}", h.handleRemove)
		r.Delete("/notifications", h.handleClear)
		r.Get("/ws", h.handleWS)
	})
}

func (h *NotificationHandler) timeline(w http.ResponseWriter, r *http.Request) (*notification.Store, bool) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return nil, false
	}
	return h.registry.For(viewer.ID), true
}

func (h *NotificationHandler) respondTimeline(w http.ResponseWriter, s *notification.Store, code int) {
	respondWithJSON(w, code, NotificationsResponse{Notifications: s.List(), UnreadCount: s.UnreadCount()})
}

func (h *NotificationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	s, ok := h.timeline(w, r)
	if !ok {
		return
	}
	h.respondTimeline(w, s, http.StatusOK)
}

func (h *NotificationHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	var req NotificationRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	n := h.registry.Notify(r.Context(), viewer.ID, notification.Draft{
		Type:     notification.Type(req.Type),
		Title:    req.Title,
		Message:  req.Message,
		Duration: time.Duration(req.DurationMS) * time.Millisecond,
	})
	respondWithJSON(w, http.StatusCreated, n)
}

func (h *NotificationHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	s, ok := h.timeline(w, r)
	if !ok {
		return
	}
	if !s.MarkAsRead(chi.URLParam(r, "id")) {
		respondWithError(w, http.StatusNotFound, "notification not found")
		return
	}
	h.respondTimeline(w, s, http.StatusOK)
}

func (h *NotificationHandler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	s, ok := h.timeline(w, r)
	if !ok {
		return
	}
	s.MarkAllAsRead()
	h.respondTimeline(w, s, http.StatusOK)
}

func (h *NotificationHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	s, ok := h.timeline(w, r)
	if !ok {
		return
	}
	if !s.Remove(chi.URLParam(r, "id")) {
		respondWithError(w, http.StatusNotFound, "notification not found")
		return
	}
	h.respondTimeline(w, s, http.StatusOK)
}

func (h *NotificationHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	s, ok := h.timeline(w, r)
	if !ok {
		return
	}
	s.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) handleWS(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	h.ws.ServeWS(w, r, viewer.ID)
}
