package notification

import (
	"context"
	"sync"

	"bridge-be/internal/logger"

	"go.uber.org/zap"
)

// Pusher delivers a timeline event to a user's live connections.
type Pusher interface {
	Push(userID, kind string, data any)
}

// Registry keeps one Store per user and forwards their changes to a Pusher.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
	pusher Pusher
	opts   []Option
}

func NewRegistry(pusher Pusher, opts ...Option) *Registry {
	return &Registry{
		stores: make(map[string]*Store),
		pusher: pusher,
		opts:   opts,
	}
}

// For returns userID's store, creating it on first use.
func (r *Registry) For(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[userID]; ok {
		return s
	}

	opts := append([]Option{}, r.opts...)
	if r.pusher != nil {
		opts = append(opts, WithListener(func(ev Event) {
			r.pusher.Push(userID, string(ev.Kind), ev)
		}))
	}
	s := NewStore(opts...)
	r.stores[userID] = s
	return s
}

// Notify adds d to userID's timeline.
func (r *Registry) Notify(ctx context.Context, userID string, d Draft) Notification {
	n := r.For(userID).Add(d)
	logger.FromCtx(ctx).Debug("notification added",
		zap.String("notification_id", n.ID),
		zap.String("recipient", userID),
		zap.String("type", string(n.Type)),
	)
	return n
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.stores {
		s.Close()
	}
}
