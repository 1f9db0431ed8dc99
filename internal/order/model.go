package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func (s OrderStatus) String() string {
	return string(s)
}

// Product is a line item. Quantity is fixed once the order exists.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	SKU         string          `json:"sku,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// Store is the merchant location an order belongs to.
type Store struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	ContactPerson string `json:"contactPerson,omitempty"`
}

// Order is the central entity. Store is a snapshot taken at creation time
// and is never re-synced with the catalog.
type Order struct {
	ID                 string          `json:"id"`
	StoreID            string          `json:"storeId"`
	Store              Store           `json:"store"`
	Products           []Product       `json:"products"`
	Status             OrderStatus     `json:"status"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	AgentID            string          `json:"agentId,omitempty"`
	AssignedTo         string          `json:"assignedTo,omitempty"`
	CourierID          string          `json:"courierId,omitempty"`
	DeliveryAddress    string          `json:"deliveryAddress,omitempty"`
	DeliveryNotes      string          `json:"deliveryNotes,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	DeliveryDeadline   *time.Time      `json:"deliveryDeadline,omitempty"`
	ProblemReported    bool            `json:"problemReported,omitempty"`
	ProblemDescription string          `json:"problemDescription,omitempty"`
}

// Draft is an order that has not been assigned an identifier yet.
type Draft struct {
	StoreID          string
	Store            Store
	Products         []Product
	Status           OrderStatus
	AgentID          string
	AssignedTo       string
	DeliveryAddress  string
	DeliveryNotes    string
	Notes            string
	DeliveryDeadline *time.Time
}

// Total sums price * quantity over the line items, rounded to cents.
func Total(products []Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total.Round(2)
}

// clone returns a deep copy so callers never share slices with the store.
func (o Order) clone() Order {
	c := o
	if o.Products != nil {
		c.Products = make([]Product, len(o.Products))
		copy(c.Products, o.Products)
	}
	if o.DeliveryDeadline != nil {
		d := *o.DeliveryDeadline
		c.DeliveryDeadline = &d
	}
	return c
}

func cloneAll(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = o.clone()
	}
	return out
}
