package utils

import (
	"context"

	"bridge-be/internal/user"
)

// SetUserContext sets user info into context (called by middleware)
func SetUserContext(ctx context.Context, id, email, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UserEmailKey, email)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return ctx
}

// GetUserIDFromContext retrieves userID safely
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func GetUserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}

func GetUserRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

func WithSession(ctx context.Context, s *user.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

func SessionFromContext(ctx context.Context) (*user.Session, bool) {
	s, ok := ctx.Value(SessionKey).(*user.Session)
	return s, ok && s != nil
}
