package handler

import (
	"errors"
	"net/http"
	"time"

	"bridge-be/internal/auth"
	"bridge-be/internal/logger"
	"bridge-be/internal/user"
	"bridge-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN AGENT COURIER"`
	Phone    string `json:"phone"`
}

type AuthResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// SessionFactory hands out fresh, signed-out sessions.
type SessionFactory interface {
	New() *user.Session
}

type AuthHandler struct {
	sessions SessionFactory
	ttl      time.Duration
	secure   bool
	validate *validator.Validate
}

// NewAuthHandler issues tokens valid for ttl. secure marks the cookie
// HTTPS-only.
func NewAuthHandler(sessions SessionFactory, ttl time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		ttl:      ttl,
		secure:   secure,
		validate: newValidator(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.handleLogin)
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/logout", h.handleLogout)
	router.Get("/auth/session", h.handleSession)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	s := h.sessions.New()
	u, err := s.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, s.State().Error)
			return
		}
		respondWithServiceError(w, r, err, "Failed to sign in")
		return
	}

	h.issue(w, r, s, u, http.StatusOK)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	// Self-registration only creates agent accounts.
	role := user.RoleAgent
	if req.Role != "" && user.Role(req.Role) != user.RoleAgent {
		respondWithError(w, http.StatusForbidden, "only agent accounts can self-register")
		return
	}

	s := h.sessions.New()
	u, err := s.Register(r.Context(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		Phone:    req.Phone,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to register")
		return
	}

	h.issue(w, r, s, u, http.StatusCreated)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s, ok := utils.SessionFromContext(r.Context()); ok {
		if err := s.Logout(r.Context()); err != nil {
			respondWithServiceError(w, r, err, "Failed to sign out")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	s, ok := utils.SessionFromContext(r.Context())
	if !ok {
		respondWithJSON(w, http.StatusOK, user.SessionState{})
		return
	}
	respondWithJSON(w, http.StatusOK, s.State())
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, s *user.Session, u user.User, code int) {
	token, err := auth.GenerateToken(u.ID, u.Email, string(u.Role), s.ID(), h.ttl)
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to issue token",
			zap.String("layer", "handler"),
			zap.String("user_id", u.ID),
			zap.Error(err),
		)
		_ = s.Logout(r.Context())
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondWithJSON(w, code, AuthResponse{Token: token, User: u})
}
