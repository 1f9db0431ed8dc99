package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"bridge-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Login(ctx context.Context, email, password string) (User, error)
	Register(ctx context.Context, in RegisterInput) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
	Search(ctx context.Context, term string, role Role) ([]User, error)
}

type service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository) Service {
	return &service{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString()[:8] },
	}
}

func (s *service) Login(ctx context.Context, email, password string) (User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		log.Info("login rejected: unknown email", zap.String("email", email))
		return User{}, ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, u.Password) {
		log.Info("login rejected: password mismatch", zap.String("user_id", u.ID))
		return User{}, ErrInvalidCredentials
	}

	now := s.now()
	u.LastLogin = &now
	log.Info("login succeeded", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Register creates the account and returns it; the caller treats the
// result as an immediate login.
func (s *service) Register(ctx context.Context, in RegisterInput) (User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return User{}, ErrInvalidInput
	}
	role, err := ParseRole(string(in.Role))
	if err != nil {
		return User{}, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return User{}, err
	}

	u, err := s.repo.Create(ctx, User{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  hashed,
		Role:      role,
		Phone:     in.Phone,
		CreatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return User{}, ErrEmailExists
		}
		log.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		return User{}, err
	}

	log.Info("register service completed",
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
	)
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListByRole(ctx context.Context, role Role) ([]User, error) {
	return s.repo.ListByRole(ctx, role)
}

// Search lists users of role (all roles when empty) whose name, email or
// phone contains term, ignoring case.
func (s *service) Search(ctx context.Context, term string, role Role) ([]User, error) {
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list users",
			zap.String("layer", "service"),
			zap.String("method", "Search"),
			zap.Error(err),
		)
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return users, nil
	}
	out := []User{}
	for _, u := range users {
		if matchesTerm(u, term) {
			out = append(out, u)
		}
	}
	return out, nil
}

func matchesTerm(u User, term string) bool {
	for _, field := range []string{u.Name, u.Email, u.Phone} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
