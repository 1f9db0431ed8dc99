package user

import (
	"context"
	"sync"
	"time"
)

// SessionStore persists opaque session snapshots under a key. Load reports
// false when the key is absent or expired.
type SessionStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemorySessionStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true, nil
}

// Save stores data under key. A ttl of zero never expires.
func (m *MemorySessionStore) Save(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{data: make([]byte, len(data))}
	copy(e.data, data)
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
