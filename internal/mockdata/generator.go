// Package mockdata produces the demo order book served when no database is
// configured.
package mockdata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"bridge-be/internal/catalog"
	"bridge-be/internal/order"
)

const (
	mixedOrders = 20
	agentOrders = 10
	// pcgStream is the fixed second PCG word; only the seed varies.
	pcgStream = 0x9e3779b97f4a7c15
)

var streets = []string{"Main St", "Oak Ave", "Pine Rd", "Maple Ln", "Cedar Blvd"}

// Generator is an order.Source whose data depends only on its seed and base
// time, so every fetch returns the same orders.
type Generator struct {
	seed     uint64
	base     time.Time
	stores   []order.Store
	products []order.Product
}

func NewGenerator(seed uint64, base time.Time) *Generator {
	return &Generator{
		seed:     seed,
		base:     base,
		stores:   catalog.Stores(),
		products: catalog.Products(),
	}
}

func (g *Generator) FetchOrders(ctx context.Context) ([]order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Generate(), nil
}

// InsertOrder accepts every write; generated data lives only in the
// OrderStore.
func (g *Generator) InsertOrder(ctx context.Context, _ order.Order) error {
	return ctx.Err()
}

func (g *Generator) SaveOrder(ctx context.Context, _ order.Order) error {
	return ctx.Err()
}

// Generate builds 30 orders. The first 20 rotate through stores and
// statuses and alternate between agents "1" and "2"; the last 10 belong to
// agent "2", are more recent and lean towards fulfilled statuses.
func (g *Generator) Generate() []order.Order {
	r := rand.New(rand.NewPCG(g.seed, pcgStream))
	orders := make([]order.Order, 0, mixedOrders+agentOrders)
	staples := g.products[:catalog.StapleCount]

	for i := 1; i <= mixedOrders; i++ {
		n := 1 + r.IntN(3)
		lines := make([]order.Product, 0, n)
		for j := 0; j < n; j++ {
			p := staples[(i+j)%len(staples)]
			p.Quantity = 1 + r.IntN(5)
			lines = append(lines, p)
		}

		agentID := "1"
		if i%2 == 0 {
			agentID = "2"
		}

		notes := ""
		switch i % 3 {
		case 0:
			notes = "Please deliver ASAP"
		case 1:
			notes = "Call before delivery"
		}

		orders = append(orders, g.order(r, i, order.Statuses[i%len(order.Statuses)], lines, 30, agentID, notes))
	}

	for i := mixedOrders + 1; i <= mixedOrders+agentOrders; i++ {
		n := 2 + r.IntN(3)
		lines := make([]order.Product, 0, n)
		for j := 0; j < n; j++ {
			p := g.products[r.IntN(len(g.products))]
			p.Quantity = 1 + r.IntN(3)
			lines = append(lines, p)
		}

		notes := ""
		switch i % 4 {
		case 0:
			notes = "Please deliver during business hours"
		case 1:
			notes = "Fragile items inside"
		case 2:
			notes = "Leave at the door"
		}

		orders = append(orders, g.order(r, i, agentStatus(r.Float64()), lines, 14, "2", notes))
	}

	return orders
}

func (g *Generator) order(r *rand.Rand, i int, status order.OrderStatus, lines []order.Product, maxDays int, agentID, notes string) order.Order {
	store := g.stores[i%len(g.stores)]
	createdAt := g.base.AddDate(0, 0, -r.IntN(maxDays))

	return order.Order{
		ID:              fmt.Sprintf("order-%d", i),
		StoreID:         store.ID,
		Store:           store,
		Products:        lines,
		Status:          status,
		TotalAmount:     order.Total(lines),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
		AgentID:         agentID,
		AssignedTo:      agentID,
		DeliveryAddress: fmt.Sprintf("%d %s, City", 1+r.IntN(999), streets[i%len(streets)]),
		Notes:           notes,
	}
}

func agentStatus(roll float64) order.OrderStatus {
	switch {
	case roll < 0.4:
		return order.StatusDelivered
	case roll < 0.7:
		return order.StatusProcessing
	case roll < 0.85:
		return order.StatusShipped
	default:
		return order.StatusPending
	}
}
