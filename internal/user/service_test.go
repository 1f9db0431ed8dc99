package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u User) (User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) ListByRole(ctx context.Context, role Role) ([]User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]User), args.Error(1)
}

func newTestService(repo Repository) *service {
	svc := NewService(repo).(*service)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "u-fixed" }
	return svc
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	email := "agent@bridge.com"
	hashed, _ := HashPassword("password")

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo)

		stored := User{ID: "2", Email: email, Password: hashed, Role: RoleAgent}
		mockRepo.On("FindByEmail", ctx, email).Return(stored, nil)

		u, err := svc.Login(ctx, email, "password")

		require.NoError(t, err)
		assert.Equal(t, "2", u.ID)
		require.NotNil(t, u.LastLogin)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(User{}, ErrUserNotFound)

		_, err := svc.Login(ctx, email, "password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("InvalidPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(User{ID: "2", Password: hashed}, nil)

		_, err := svc.Login(ctx, email, "wrong")
		assert.Equal(t, "invalid email or password", err.Error())
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	in := RegisterInput{Name: "Aruzhan", Email: "aruzhan@bridge.com", Password: "secret", Role: RoleAgent}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo)

		mockRepo.On("Create", ctx, mock.MatchedBy(func(u User) bool {
			return u.ID == "u-fixed" && u.Email == in.Email && u.Role == RoleAgent &&
				CheckPasswordHash("secret", u.Password)
		})).Return(User{ID: "u-fixed", Name: in.Name, Email: in.Email, Role: RoleAgent}, nil)

		u, err := svc.Register(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, "u-fixed", u.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo)

		mockRepo.On("Create", ctx, mock.Anything).Return(User{}, ErrEmailExists)

		_, err := svc.Register(ctx, in)
		assert.Equal(t, ErrEmailExists, err)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo)

		mockRepo.On("Create", ctx, mock.Anything).Return(User{}, errors.New("db error"))

		_, err := svc.Register(ctx, in)
		assert.Equal(t, "db error", err.Error())
	})

	t.Run("MissingFields", func(t *testing.T) {
		svc := newTestService(new(MockRepository))

		_, err := svc.Register(ctx, RegisterInput{Email: "x@bridge.com", Role: RoleAgent})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("InvalidRole", func(t *testing.T) {
		svc := newTestService(new(MockRepository))

		bad := in
		bad.Role = "OWNER"
		_, err := svc.Register(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	svc := newTestService(mockRepo)

	mockRepo.On("FindByID", ctx, "1").Return(User{ID: "1", Name: "Damir"}, nil)

	u, err := svc.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Damir", u.Name)
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	directory := []User{
		{ID: "1", Name: "Damir", Email: "admin@bridge.com", Role: RoleAdmin, Phone: "+7 701 000 0001"},
		{ID: "2", Name: "Dawlet", Email: "agent@bridge.com", Role: RoleAgent, Phone: "+7 701 555 0002"},
		{ID: "3", Name: "Aruzhan", Email: "aruzhan@bridge.com", Role: RoleAgent},
	}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"Empty term", "  ", []string{"1", "2", "3"}},
		{"Name ignores case", "DAW", []string{"2"}},
		{"Email", "aruzhan@", []string{"3"}},
		{"Phone", "555", []string{"2"}},
		{"No match", "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			svc := newTestService(mockRepo)
			mockRepo.On("ListByRole", ctx, Role("")).Return(directory, nil)

			got, err := svc.Search(ctx, tt.term, "")
			require.NoError(t, err)
			ids := []string{}
			for _, u := range got {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo)
		mockRepo.On("ListByRole", ctx, RoleAgent).Return([]User(nil), errors.New("db error"))

		_, err := svc.Search(ctx, "d", RoleAgent)
		assert.EqualError(t, err, "db error")
	})
}
