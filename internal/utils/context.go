package utils

import "context"

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "email"
	UserRoleKey  contextKey = "role"
	SessionKey   contextKey = "session"

	internalRequestKey contextKey = "internal_request"
)

// WithInternalRequest marks ctx as coming from a trusted service.
func WithInternalRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, internalRequestKey, true)
}

func IsInternalRequest(ctx context.Context) bool {
	v, _ := ctx.Value(internalRequestKey).(bool)
	return v
}
