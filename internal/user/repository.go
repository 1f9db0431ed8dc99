package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bridge-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
}

type memoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
}

// NewMemoryRepository returns a Repository holding users in process memory.
// Emails are matched case-insensitively.
func NewMemoryRepository(seed ...User) Repository {
	r := &memoryRepository{
		byID:    make(map[string]User, len(seed)),
		byEmail: make(map[string]string, len(seed)),
	}
	for _, u := range seed {
		r.byID[u.ID] = u
		r.byEmail[normalizeEmail(u.Email)] = u.ID
	}
	return r
}

func (r *memoryRepository) Create(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(u.Email)
	if _, ok := r.byEmail[key]; ok {
		logger.FromCtx(ctx).Warn("repository: email already registered", zap.String("email", u.Email))
		return User{}, ErrEmailExists
	}
	if _, ok := r.byID[u.ID]; ok {
		return User{}, ErrEmailExists
	}

	r.byID[u.ID] = u
	r.byEmail[key] = u.ID
	return u, nil
}

func (r *memoryRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *memoryRepository) ListByRole(ctx context.Context, role Role) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []User{}
	for _, u := range r.byID {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultPassword is shared by the two canned dashboard accounts.
const DefaultPassword = "password"

// SeedUsers returns the administrator and agent accounts the dashboard ships
// with, their passwords hashed.
func SeedUsers(now time.Time) ([]User, error) {
	hash, err := HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}
	return []User{
		{
			ID:        "1",
			Name:      "Damir",
			Email:     "admin@bridge.com",
			Password:  hash,
			Role:      RoleAdmin,
			Avatar:    "/assets/damir.jpg",
			CreatedAt: now,
		},
		{
			ID:        "2",
			Name:      "Dawlet",
			Email:     "agent@bridge.com",
			Password:  hash,
			Role:      RoleAgent,
			Avatar:    "/assets/dawlet.jpg",
			CreatedAt: now,
		},
	}, nil
}
