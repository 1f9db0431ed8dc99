package user

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bridge-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorageKey prefixes every persisted session snapshot.
const StorageKey = "bridge-auth-storage"

// Authenticator checks credentials and creates accounts. Service satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (User, error)
	Register(ctx context.Context, in RegisterInput) (User, error)
}

// SessionState is what a client sees of its session.
type SessionState struct {
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	IsLoading       bool   `json:"isLoading"`
	Error           string `json:"error,omitempty"`
}

// snapshot is the persisted subset of SessionState.
type snapshot struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

// Session holds one client's identity. Only the user and the
// authenticated flag survive a restart; loading and error are transient.
type Session struct {
	mu    sync.RWMutex
	id    string
	auth  Authenticator
	store SessionStore
	ttl   time.Duration

	user          *User
	authenticated bool
	inflight      int
	lastErr       string
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Login(ctx context.Context, email, password string) (u User, err error) {
	s.begin()
	defer func() { s.end(err) }()

	u, err = s.auth.Login(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	if err = s.signIn(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Register creates the account and signs it in straight away.
func (s *Session) Register(ctx context.Context, in RegisterInput) (u User, err error) {
	s.begin()
	defer func() { s.end(err) }()

	u, err = s.auth.Register(ctx, in)
	if err != nil {
		return User{}, err
	}
	if err = s.signIn(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Logout clears the identity and drops the persisted snapshot.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()

	if err := s.store.Delete(ctx, storageKey(s.id)); err != nil {
		logger.FromCtx(ctx).Error("failed to drop session snapshot",
			zap.String("session_id", s.id),
			zap.Error(err),
		)
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Session) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := SessionState{
		IsAuthenticated: s.authenticated,
		IsLoading:       s.inflight > 0,
		Error:           s.lastErr,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// User returns the signed-in user, or ErrNotAuthenticated.
func (s *Session) User() (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.authenticated || s.user == nil {
		return User{}, ErrNotAuthenticated
	}
	return *s.user, nil
}

func (s *Session) signIn(ctx context.Context, u User) error {
	u.Password = ""
	data, err := json.Marshal(snapshot{User: &u, IsAuthenticated: true})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Save(ctx, storageKey(s.id), data, s.ttl); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.user = &u
	s.authenticated = true
	s.mu.Unlock()
	return nil
}

func (s *Session) begin() {
	s.mu.Lock()
	s.inflight++
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Session) end(err error) {
	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()
}

func storageKey(id string) string {
	return StorageKey + ":" + id
}

// SessionManager creates sessions and restores persisted ones.
type SessionManager struct {
	auth  Authenticator
	store SessionStore
	ttl   time.Duration
	newID func() string
}

func NewSessionManager(auth Authenticator, store SessionStore, ttl time.Duration) *SessionManager {
	return &SessionManager{
		auth:  auth,
		store: store,
		ttl:   ttl,
		newID: uuid.NewString,
	}
}

// New returns an empty, unauthenticated session with a fresh id.
func (m *SessionManager) New() *Session {
	return m.session(m.newID())
}

// Open restores the session persisted under id.
func (m *SessionManager) Open(ctx context.Context, id string) (*Session, error) {
	data, ok, err := m.store.Load(ctx, storageKey(id))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, ErrSessionNotFound
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.FromCtx(ctx).Warn("discarding unreadable session snapshot",
			zap.String("session_id", id),
			zap.Error(err),
		)
		return nil, ErrSessionNotFound
	}

	s := m.session(id)
	s.user = snap.User
	s.authenticated = snap.IsAuthenticated && snap.User != nil
	return s, nil
}

func (m *SessionManager) session(id string) *Session {
	return &Session{id: id, auth: m.auth, store: m.store, ttl: m.ttl}
}
