package courier

import (
	"context"
	"fmt"
	"sync"
)

type Repository interface {
	List(ctx context.Context) ([]Courier, error)
	Get(ctx context.Context, id string) (Courier, error)
	SetAvailable(ctx context.Context, id string, available bool) error
}

type memoryRepository struct {
	mu       sync.RWMutex
	couriers []Courier
}

func NewRepository(seed ...Courier) Repository {
	couriers := make([]Courier, len(seed))
	copy(couriers, seed)
	return &memoryRepository{couriers: couriers}
}

// Defaults are the delivery couriers on shift; c3 is off duty.
func Defaults() []Courier {
	return []Courier{
		{ID: "c1", Name: "John Doe", Phone: "+1234567890", Available: true},
		{ID: "c2", Name: "Jane Smith", Phone: "+1987654321", Available: true},
		{ID: "c3", Name: "Mike Johnson", Phone: "+1122334455", Available: false},
		{ID: "c4", Name: "Sarah Williams", Phone: "+1555666777", Available: true},
	}
}

func (r *memoryRepository) List(_ context.Context) ([]Courier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Courier, len(r.couriers))
	copy(out, r.couriers)
	return out, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Courier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.couriers {
		if c.ID == id {
			return c, nil
		}
	}
	return Courier{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (r *memoryRepository) SetAvailable(_ context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.couriers {
		if r.couriers[i].ID == id {
			r.couriers[i].Available = available
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
