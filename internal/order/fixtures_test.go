package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	t0      = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	storeS1 = Store{ID: "s1", Name: "Grocery Store A", Address: "123 Main St, City", Phone: "+1234567890"}
	storeS2 = Store{ID: "s2", Name: "Supermarket B", Address: "456 Oak Ave, Town", Phone: "+1987654321"}
	milk    = Product{ID: "p1", Name: "Milk", Price: decimal.RequireFromString("2.99"), Quantity: 1}
	bread   = Product{ID: "p2", Name: "Bread", Price: decimal.RequireFromString("1.99"), Quantity: 1}
)

func line(p Product, qty int) Product {
	p.Quantity = qty
	return p
}

func newOrder(id string, st Store, status OrderStatus, created time.Time, agent string, products ...Product) Order {
	return Order{
		ID:          id,
		StoreID:     st.ID,
		Store:       st,
		Products:    products,
		Status:      status,
		TotalAmount: Total(products),
		CreatedAt:   created,
		UpdatedAt:   created,
		AgentID:     agent,
		AssignedTo:  agent,
	}
}

func sampleOrders() []Order {
	return []Order{
		newOrder("order-1", storeS1, StatusDelivered, t0.AddDate(0, 0, -1), "1", line(milk, 1)),
		newOrder("order-2", storeS2, StatusDelivered, t0.AddDate(0, 0, -2), "2", line(bread, 2)),
		newOrder("order-3", storeS1, StatusPending, t0.AddDate(0, 0, -3), "2", line(milk, 1), line(bread, 2)),
		newOrder("order-4", storeS2, StatusProcessing, t0.AddDate(0, 0, -40), "1", line(bread, 1)),
		newOrder("order-5", storeS1, StatusShipped, t0.AddDate(0, 0, -5), "", line(milk, 3)),
	}
}

var errSourceDown = errors.New("source unavailable")

// fakeSource serves a fixed order list and records writes.
type fakeSource struct {
	mu       sync.Mutex
	orders   []Order
	saved    []Order
	fetchErr  error
	saveErr   error
	insertErr error
	// saveHook runs inside SaveOrder, before the write is recorded.
	saveHook func()
}

func (f *fakeSource) FetchOrders(ctx context.Context) ([]Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return cloneAll(f.orders), nil
}

func (f *fakeSource) InsertOrder(ctx context.Context, o Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.saved = append(f.saved, o)
	return nil
}

func (f *fakeSource) SaveOrder(ctx context.Context, o Order) error {
	if f.saveHook != nil {
		f.saveHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, o)
	return nil
}

func (f *fakeSource) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func loadedStore(opts ...StoreOption) (*OrderStore, *fakeSource) {
	src := &fakeSource{orders: sampleOrders()}
	opts = append([]StoreOption{WithClock(func() time.Time { return t0 })}, opts...)
	s := NewStore(src, opts...)
	if err := s.FetchOrders(context.Background()); err != nil {
		panic(err)
	}
	return s, src
}

func ptr[T any](v T) *T {
	return &v
}
