package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bridge-be/internal/auth"
	"bridge-be/internal/user"
	"bridge-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCors(t *testing.T) {
	handler := CORS("http://localhost:3000")(okHandler())

	t.Run("OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/orders", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Normal request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// signedIn returns a session manager holding one logged-in session for
// email and a token bound to it.
func signedIn(t *testing.T, email string) (*user.SessionManager, *user.Session, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	seed, err := user.SeedUsers(time.Now())
	require.NoError(t, err)
	m := user.NewSessionManager(user.NewService(user.NewMemoryRepository(seed...)), user.NewMemorySessionStore(), time.Hour)

	s := m.New()
	u, err := s.Login(context.Background(), email, user.DefaultPassword)
	require.NoError(t, err)

	token, err := auth.GenerateToken(u.ID, u.Email, string(u.Role), s.ID(), time.Hour)
	require.NoError(t, err)
	return m, s, token
}

func TestAuthenticate(t *testing.T) {
	t.Run("Missing Token", func(t *testing.T) {
		m, _, _ := signedIn(t, "admin@bridge.com")
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetUserIDFromContext(r.Context())
			assert.False(t, ok, "Context should not contain user ID")
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		Authenticate(m)(next).ServeHTTP(w, httptest.NewRequest("GET", "/orders", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		m, _, _ := signedIn(t, "admin@bridge.com")
		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		Authenticate(m)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Cookie", func(t *testing.T) {
		m, s, token := signedIn(t, "agent@bridge.com")
		req := httptest.NewRequest("GET", "/orders", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "2", userID)
			assert.Equal(t, "AGENT", utils.GetUserRoleFromContext(r.Context()))

			got, ok := utils.SessionFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, s.ID(), got.ID())
			w.WriteHeader(http.StatusOK)
		})

		Authenticate(m)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Logged Out Session", func(t *testing.T) {
		m, s, token := signedIn(t, "admin@bridge.com")
		require.NoError(t, s.Logout(context.Background()))

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		Authenticate(m)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Expired Token", func(t *testing.T) {
		m, s, _ := signedIn(t, "admin@bridge.com")

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
			UserID:    "1",
			SessionID: s.ID(),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		tokenString, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		Authenticate(m)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Token For Another User", func(t *testing.T) {
		m, s, _ := signedIn(t, "agent@bridge.com")
		forged, err := auth.GenerateToken("1", "admin@bridge.com", "ADMIN", s.ID(), time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		w := httptest.NewRecorder()

		Authenticate(m)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		m, _, _ := signedIn(t, "admin@bridge.com")
		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetUserIDFromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})

		Authenticate(m)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(user.RoleAdmin)(okHandler())

	tests := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"anonymous", context.Background(), http.StatusUnauthorized},
		{"agent", utils.SetUserContext(context.Background(), "2", "agent@bridge.com", "AGENT"), http.StatusForbidden},
		{"admin", utils.SetUserContext(context.Background(), "1", "admin@bridge.com", "ADMIN"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/analytics/agents", nil).WithContext(tt.ctx)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/orders", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), "2", "", "AGENT"))
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
