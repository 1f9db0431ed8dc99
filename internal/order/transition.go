package order

import (
	"fmt"
	"strings"
)

// allowedTransitions is the authoritative rule table. Status only moves
// forward; DELIVERED and CANCELLED are terminal.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s OrderStatus) []OrderStatus {
	next := allowedTransitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is an edge of the graph.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s OrderStatus) bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// ParseStatus accepts any casing of a known status.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := allowedTransitions[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}
