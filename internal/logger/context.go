package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	userIDKey    ctxKey = "user_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID tags every log line written under ctx with the acting user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns logger with request_id and user_id automatically added
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if uid := UserIDFrom(ctx); uid != "" {
		l = l.With(zap.String("user_id", uid))
	}
	return l
}
