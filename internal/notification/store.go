package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is one user's transient notification timeline, newest first.
// Nothing here is persisted.
type Store struct {
	mu       sync.Mutex
	items    []Notification
	unread   int
	timers   map[string]*time.Timer
	closed   bool
	now      func() time.Time
	newID    func() string
	listener func(Event)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithListener registers fn to receive every change. fn runs outside the
// store lock.
func WithListener(fn func(Event)) Option {
	return func(s *Store) { s.listener = fn }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		items:  []Notification{},
		timers: make(map[string]*time.Timer),
		now:    time.Now,
		newID:  func() string { return uuid.NewString()[:8] },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add prepends a new unread notification. SUCCESS and INFO notifications
// with a positive duration remove themselves once it elapses.
func (s *Store) Add(d Draft) Notification {
	s.mu.Lock()
	n := Notification{
		ID:        s.newID(),
		Type:      d.Type,
		Title:     d.Title,
		Message:   d.Message,
		Duration:  d.Duration,
		CreatedAt: s.now(),
	}
	expires := d.Duration > 0 && d.Type.autoExpires()
	if expires {
		at := n.CreatedAt.Add(d.Duration)
		n.ExpiresAt = &at
	}

	s.items = append([]Notification{n}, s.items...)
	s.unread++
	if expires && !s.closed {
		id := n.ID
		s.timers[id] = time.AfterFunc(d.Duration, func() { s.expire(id) })
	}
	ev := Event{Kind: EventAdded, Notification: &n, UnreadCount: s.unread}
	s.mu.Unlock()

	s.emit(ev)
	return n
}

// MarkAsRead flips the read flag of id and recounts unread.
func (s *Store) MarkAsRead(id string) bool {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			found = true
			break
		}
	}
	s.unread = s.countUnread()
	ev := Event{Kind: EventRead, UnreadCount: s.unread}
	s.mu.Unlock()

	if found {
		s.emit(ev)
	}
	return found
}

func (s *Store) MarkAllAsRead() {
	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.unread = 0
	s.mu.Unlock()

	s.emit(Event{Kind: EventRead})
}

// Remove deletes id. The unread count drops only if it was unread.
func (s *Store) Remove(id string) bool {
	ev, ok := s.remove(id)
	if ok {
		s.emit(ev)
	}
	return ok
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	s.stopTimers()
	s.items = []Notification{}
	s.unread = 0
	s.mu.Unlock()

	s.emit(Event{Kind: EventCleared})
}

func (s *Store) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Close stops pending expiry timers. Later additions never expire.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopTimers()
	s.mu.Unlock()
}

func (s *Store) expire(id string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.Remove(id)
}

func (s *Store) remove(id string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	for i, n := range s.items {
		if n.ID != id {
			continue
		}
		s.items = append(s.items[:i:i], s.items[i+1:]...)
		if !n.Read {
			s.unread--
		}
		return Event{Kind: EventRemoved, Notification: &n, UnreadCount: s.unread}, true
	}
	return Event{}, false
}

// stopTimers must be called with mu held.
func (s *Store) stopTimers() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// countUnread must be called with mu held.
func (s *Store) countUnread() int {
	n := 0
	for _, item := range s.items {
		if !item.Read {
			n++
		}
	}
	return n
}

func (s *Store) emit(ev Event) {
	if s.listener != nil {
		s.listener(ev)
	}
}
