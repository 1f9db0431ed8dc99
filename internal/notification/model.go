package notification

import "time"

type Type string

const (
	TypeSuccess Type = "SUCCESS"
	TypeError   Type = "ERROR"
	TypeWarning Type = "WARNING"
	TypeInfo    Type = "INFO"
)

// autoExpires reports whether a notification of type t is dismissed
// automatically once its duration elapses.
func (t Type) autoExpires() bool {
	return t == TypeSuccess || t == TypeInfo
}

type Notification struct {
	ID        string        `json:"id"`
	Type      Type          `json:"type"`
	Title     string        `json:"title,omitempty"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"-"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
	Read      bool          `json:"read"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Draft is a notification before it gets an id and timestamp.
type Draft struct {
	Type     Type
	Title    string
	Message  string
	Duration time.Duration
}

// EventKind names a change to a user's notification timeline.
type EventKind string

const (
	EventAdded   EventKind = "notification.added"
	EventRemoved EventKind = "notification.removed"
	EventRead    EventKind = "notification.read"
	EventCleared EventKind = "notification.cleared"
)

type Event struct {
	Kind         EventKind     `json:"kind"`
	Notification *Notification `json:"notification,omitempty"`
	UnreadCount  int           `json:"unreadCount"`
}
