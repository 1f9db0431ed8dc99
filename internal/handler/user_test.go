package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"bridge-be/internal/order"
	"bridge-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingDirectory struct{}

func (failingDirectory) Search(context.Context, string, user.Role) ([]user.User, error) {
	return nil, errors.New("directory offline")
}

func newUsersRouter(t *testing.T) http.Handler {
	t.Helper()
	seed, err := user.SeedUsers(time.Now())
	require.NoError(t, err)

	svc := user.NewService(user.NewMemoryRepository(seed...))
	_, err = svc.Register(context.Background(), user.RegisterInput{
		Name: "Aruzhan", Email: "aruzhan@bridge.com", Password: "secret", Role: user.RoleAgent, Phone: "+7 701 555 0101",
	})
	require.NoError(t, err)
	return newRouter(NewUsersHandler(svc))
}

func userNames(users []user.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	return names
}

func TestUsersHandler_List(t *testing.T) {
	router := newUsersRouter(t)

	t.Run("Admin only", func(t *testing.T) {
		rr := do(t, router, order.Viewer{}, http.MethodGet, "/users", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = do(t, router, agentViewer, http.MethodGet, "/users", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Everyone", func(t *testing.T) {
		rr := do(t, router, adminViewer, http.MethodGet, "/users", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		users := decode[[]user.User](t, rr)
		assert.ElementsMatch(t, []string{"Damir", "Dawlet", "Aruzhan"}, userNames(users))
		assert.NotContains(t, rr.Body.String(), "password")
	})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"By name", "?search=dAw", []string{"Dawlet"}},
		{"By email", "?search=admin@", []string{"Damir"}},
		{"By phone", "?search=555", []string{"Aruzhan"}},
		{"By role", "?role=agent", []string{"Aruzhan", "Dawlet"}},
		{"Role and search", "?role=ADMIN&search=bridge", []string{"Damir"}},
		{"No match", "?search=nobody", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, adminViewer, http.MethodGet, "/users"+tt.query, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.ElementsMatch(t, tt.want, userNames(decode[[]user.User](t, rr)))
		})
	}

	t.Run("Unknown role", func(t *testing.T) {
		rr := do(t, router, adminViewer, http.MethodGet, "/users?role=OWNER", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Directory failure is hidden", func(t *testing.T) {
		rr := do(t, newRouter(NewUsersHandler(failingDirectory{})), adminViewer, http.MethodGet, "/users", nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "Failed to list users")
		assert.NotContains(t, rr.Body.String(), "directory offline")
	})
}
