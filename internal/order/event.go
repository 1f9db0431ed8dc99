package order

import "time"

type EventType string

const (
	EventCreated         EventType = "order.created"
	EventStatusChanged   EventType = "order.status_changed"
	EventCourierAssigned EventType = "order.courier_assigned"
	EventDispatched      EventType = "order.dispatched"
	EventDeadlineSet     EventType = "order.deadline_set"
	EventProblemReported EventType = "order.problem_reported"
)

// Event describes a completed order mutation. Order is the state after it.
type Event struct {
	Type       EventType   `json:"type"`
	OrderID    string      `json:"orderId"`
	Status     OrderStatus `json:"status"`
	ActorID    string      `json:"actorId"`
	OccurredAt time.Time   `json:"occurredAt"`
	Order      Order       `json:"order"`
}
