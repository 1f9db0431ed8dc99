package catalog

import (
	"context"
	"fmt"
	"strings"

	"bridge-be/internal/order"
)

type Repository interface {
	ListStores(ctx context.Context) ([]order.Store, error)
	GetStore(ctx context.Context, id string) (order.Store, error)
	ListProducts(ctx context.Context, search string) ([]order.Product, error)
	GetProduct(ctx context.Context, id string) (order.Product, error)
}

type memoryRepository struct {
	stores   []order.Store
	products []order.Product
}

// NewRepository returns a read-only Repository over the given reference data.
func NewRepository(stores []order.Store, products []order.Product) Repository {
	return &memoryRepository{stores: stores, products: products}
}

// NewDefaultRepository serves the built-in stores and products.
func NewDefaultRepository() Repository {
	return NewRepository(Stores(), Products())
}

func (r *memoryRepository) ListStores(_ context.Context) ([]order.Store, error) {
	out := make([]order.Store, len(r.stores))
	copy(out, r.stores)
	return out, nil
}

func (r *memoryRepository) GetStore(_ context.Context, id string) (order.Store, error) {
	for _, s := range r.stores {
		if s.ID == id {
			return s, nil
		}
	}
	return order.Store{}, fmt.Errorf("%w: %s", ErrStoreNotFound, id)
}

// ListProducts matches search case-insensitively against name and SKU.
// An empty search returns everything.
func (r *memoryRepository) ListProducts(_ context.Context, search string) ([]order.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := []order.Product{}
	for _, p := range r.products {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.SKU), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepository) GetProduct(_ context.Context, id string) (order.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return order.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
}
