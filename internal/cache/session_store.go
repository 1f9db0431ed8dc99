package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bridge-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// kv is the subset of *redis.Client the session store needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SessionStore keeps auth session snapshots in Redis with a TTL.
type SessionStore struct {
	rdb kv
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		return data, true, nil
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	default:
		logger.FromCtx(ctx).Error("failed to load session",
			zap.String("layer", "cache"),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false, fmt.Errorf("load session: %w", err)
	}
}

// Save writes data under key. A ttl of zero keeps the key until deleted.
func (s *SessionStore) Save(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.FromCtx(ctx).Error("failed to save session",
			zap.String("layer", "cache"),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
