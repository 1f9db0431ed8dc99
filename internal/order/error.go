package order

import (
	"errors"
	"fmt"
)

var (
	// -- Resource State --
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderExists       = errors.New("order already exists")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrUnknownStatus     = errors.New("unknown order status")

	// -- Validation & Input --
	ErrInvalidOrder   = errors.New("invalid order")
	ErrStoreRequired  = errors.New("store is required")
	ErrNoProducts     = errors.New("order must contain at least one product")
	ErrInvalidQty     = errors.New("product quantity must be greater than zero")
	ErrAddressMissing = errors.New("delivery address is required")

	// -- Authorization --
	ErrForbidden = errors.New("forbidden")

	// -- Courier --
	ErrCourierNotFound    = errors.New("courier not found")
	ErrCourierUnavailable = errors.New("courier is not available")
)

// TransitionError reports a status change the transition graph does not allow.
type TransitionError struct {
	OrderID string
	From    OrderStatus
	To      OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot move from %s to %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
