package order

import "context"

// Source is the backing data capability of the OrderStore. The mock
// generator and the PostgreSQL repository both satisfy it.
type Source interface {
	FetchOrders(ctx context.Context) ([]Order, error)
	// InsertOrder persists a new order and reports ErrOrderExists when the
	// id is already taken.
	InsertOrder(ctx context.Context, o Order) error
	SaveOrder(ctx context.Context, o Order) error
}
