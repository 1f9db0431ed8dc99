package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxIDAttempts = 16

var errIDExhausted = errors.New("could not allocate a unique order id")

// State is a point-in-time copy of everything the OrderStore holds.
type State struct {
	Orders         []Order `json:"orders"`
	FilteredOrders []Order `json:"filteredOrders"`
	Filters        Filters `json:"filters"`
	IsLoading      bool    `json:"isLoading"`
	Error          string  `json:"error,omitempty"`
}

// OrderStore owns the canonical order collection, the active filter
// predicate and the derived filtered view. filtered is recomputed under the
// same lock as every change to orders or filters, so readers never see them
// disagree. writeMu serializes writers across the source round trip; mu is
// only held while memory is read or swapped.
type OrderStore struct {
	writeMu  sync.Mutex
	mu       sync.RWMutex
	source   Source
	orders   []Order
	filters  Filters
	filtered []Order
	inflight int
	lastErr  string

	latency time.Duration
	now     func() time.Time
	newID   func() string
}

type StoreOption func(*OrderStore)

// WithLatency delays every asynchronous operation by d, the way the
// dashboard simulated network round trips.
func WithLatency(d time.Duration) StoreOption {
	return func(s *OrderStore) { s.latency = d }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *OrderStore) { s.now = now }
}

func WithIDGenerator(gen func() string) StoreOption {
	return func(s *OrderStore) { s.newID = gen }
}

func NewStore(source Source, opts ...StoreOption) *OrderStore {
	s := &OrderStore{
		source:   source,
		orders:   []Order{},
		filtered: []Order{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    defaultOrderID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultOrderID() string {
	return "order-" + uuid.NewString()[:8]
}

// FetchOrders repopulates the collection from the source. On failure the
// previous collection is kept as is.
func (s *OrderStore) FetchOrders(ctx context.Context) (err error) {
	s.begin()
	defer func() { s.end(err) }()

	if err = s.wait(ctx); err != nil {
		return err
	}

	orders, err := s.source.FetchOrders(ctx)
	if err != nil {
		return fmt.Errorf("fetch orders: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.orders = cloneAll(orders)
	s.recompute()
	s.mu.Unlock()
	return nil
}

// CreateOrder assigns an identifier, computes the total and prepends the
// order. It does not validate the draft.
func (s *OrderStore) CreateOrder(ctx context.Context, d Draft) (out Order, err error) {
	s.begin()
	defer func() { s.end(err) }()

	if err = s.wait(ctx); err != nil {
		return Order{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	id, err := s.uniqueID()
	s.mu.RUnlock()
	if err != nil {
		return Order{}, err
	}

	now := s.now()
	o := Order{
		ID:               id,
		StoreID:          d.StoreID,
		Store:            d.Store,
		Status:           d.Status,
		CreatedAt:        now,
		UpdatedAt:        now,
		AgentID:          d.AgentID,
		AssignedTo:       d.AssignedTo,
		DeliveryAddress:  d.DeliveryAddress,
		DeliveryNotes:    d.DeliveryNotes,
		Notes:            d.Notes,
		DeliveryDeadline: d.DeliveryDeadline,
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	o.Products = make([]Product, len(d.Products))
	copy(o.Products, d.Products)
	o.TotalAmount = Total(o.Products)
	o = o.clone()

	if err = s.source.InsertOrder(ctx, o); err != nil {
		return Order{}, fmt.Errorf("insert order %s: %w", id, err)
	}

	s.mu.Lock()
	s.orders = append([]Order{o}, s.orders...)
	s.recompute()
	s.mu.Unlock()
	return o.clone(), nil
}

// UpdateOrderStatus moves an order along the transition graph. Setting the
// current status again is a no-op, and so is an unknown id: it returns the
// zero Order and no error.
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (Order, error) {
	return s.mutate(ctx, id, func(o *Order) (bool, error) {
		if o.Status == status {
			return false, nil
		}
		if !CanTransition(o.Status, status) {
			return false, &TransitionError{OrderID: o.ID, From: o.Status, To: status}
		}
		o.Status = status
		return true, nil
	})
}

// AssignCourier records the courier without touching the status.
func (s *OrderStore) AssignCourier(ctx context.Context, orderID, courierID string) (Order, error) {
	return s.mutate(ctx, orderID, func(o *Order) (bool, error) {
		if o.AssignedTo == courierID && o.CourierID == courierID {
			return false, nil
		}
		o.AssignedTo = courierID
		o.CourierID = courierID
		return true, nil
	})
}

// Dispatch assigns the courier and moves the order to SHIPPED in one step.
func (s *OrderStore) Dispatch(ctx context.Context, orderID, courierID string) (Order, error) {
	return s.mutate(ctx, orderID, func(o *Order) (bool, error) {
		if o.Status != StatusShipped && !CanTransition(o.Status, StatusShipped) {
			return false, &TransitionError{OrderID: o.ID, From: o.Status, To: StatusShipped}
		}
		o.AssignedTo = courierID
		o.CourierID = courierID
		o.Status = StatusShipped
		return true, nil
	})
}

func (s *OrderStore) SetDeliveryDeadline(ctx context.Context, orderID string, deadline time.Time) (Order, error) {
	return s.mutate(ctx, orderID, func(o *Order) (bool, error) {
		d := deadline
		o.DeliveryDeadline = &d
		return true, nil
	})
}

func (s *OrderStore) ReportProblem(ctx context.Context, orderID, description string) (Order, error) {
	return s.mutate(ctx, orderID, func(o *Order) (bool, error) {
		o.ProblemReported = true
		o.ProblemDescription = description
		return true, nil
	})
}

// SetFilters merges patch into the active predicate and returns the new
// filtered view.
func (s *OrderStore) SetFilters(patch Filters) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = s.filters.Merge(patch.clone())
	s.recompute()
	return cloneAll(s.filtered)
}

// ClearFilters resets the predicate; the filtered view becomes the full list.
func (s *OrderStore) ClearFilters() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = Filters{}
	s.recompute()
	return cloneAll(s.filtered)
}

func (s *OrderStore) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.orders)
}

func (s *OrderStore) FilteredOrders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.filtered)
}

func (s *OrderStore) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.clone()
}

func (s *OrderStore) Get(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.orders[idx].clone(), true
	}
	return Order{}, false
}

func (s *OrderStore) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{
		Orders:         cloneAll(s.orders),
		FilteredOrders: cloneAll(s.filtered),
		Filters:        s.filters.clone(),
		IsLoading:      s.inflight > 0,
		Error:          s.lastErr,
	}
}

func (s *OrderStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Err returns the message of the most recent failed operation, if any.
func (s *OrderStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// mutate applies fn to a copy of the order, persists it and swaps it in.
// An unknown id leaves the store untouched and yields the zero Order.
func (s *OrderStore) mutate(ctx context.Context, id string, fn func(o *Order) (bool, error)) (out Order, err error) {
	s.begin()
	defer func() { s.end(err) }()

	if err = s.wait(ctx); err != nil {
		return Order{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, ok := s.Get(id)
	if !ok {
		return Order{}, nil
	}

	next := current.clone()
	changed, err := fn(&next)
	if err != nil {
		return Order{}, err
	}
	if !changed {
		return next, nil
	}
	next.UpdatedAt = s.now()

	if err = s.source.SaveOrder(ctx, next); err != nil {
		return Order{}, fmt.Errorf("save order %s: %w", id, err)
	}

	s.mu.Lock()
	if idx := s.indexOf(id); idx >= 0 {
		s.orders[idx] = next
		s.recompute()
	}
	s.mu.Unlock()
	return next.clone(), nil
}

func (s *OrderStore) begin() {
	s.mu.Lock()
	s.inflight++
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *OrderStore) end(err error) {
	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()
}

// wait simulates latency. A cancelled caller gets ctx.Err() and its
// operation is never applied.
func (s *OrderStore) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// recompute must be called with mu held for writing.
func (s *OrderStore) recompute() {
	s.filtered = ApplyFilters(s.orders, s.filters)
}

func (s *OrderStore) indexOf(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

// uniqueID must be called with mu held.
func (s *OrderStore) uniqueID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", errIDExhausted
}
