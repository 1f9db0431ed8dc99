package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"bridge-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

const selectOrders = `
	SELECT id, store_id, store, products, status, total_amount,
	       created_at, updated_at, agent_id, assigned_to, courier_id,
	       delivery_address, delivery_notes, notes, delivery_deadline,
	       problem_reported, problem_description
	FROM orders
	ORDER BY created_at DESC
`

const insertOrder = `
	INSERT INTO orders (
		id, store_id, store, products, status, total_amount,
		created_at, updated_at, agent_id, assigned_to, courier_id,
		delivery_address, delivery_notes, notes, delivery_deadline,
		problem_reported, problem_description
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
`

const upsertOrder = insertOrder + `
	ON CONFLICT (id) DO UPDATE SET
		status = EXCLUDED.status,
		updated_at = EXCLUDED.updated_at,
		assigned_to = EXCLUDED.assigned_to,
		courier_id = EXCLUDED.courier_id,
		delivery_deadline = EXCLUDED.delivery_deadline,
		problem_reported = EXCLUDED.problem_reported,
		problem_description = EXCLUDED.problem_description
`

type repository struct {
	db *sql.DB
}

// NewRepository returns a Source backed by the orders table. The store
// snapshot and line items are kept as JSONB; SaveOrder only rewrites the
// mutable columns of an existing row.
func NewRepository(db *sql.DB) Source {
	return &repository{db: db}
}

func (r *repository) FetchOrders(ctx context.Context) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FetchOrders"),
	)

	rows, err := r.db.QueryContext(ctx, selectOrders)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	log.Debug("orders fetched", zap.Int("count", len(orders)))
	return orders, nil
}

// InsertOrder writes a new row. A taken id is reported as ErrOrderExists
// and the existing row is left alone.
func (r *repository) InsertOrder(ctx context.Context, o Order) error {
	err := r.exec(ctx, insertOrder, o)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrOrderExists, o.ID)
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert order",
			zap.String("layer", "repository"),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *repository) SaveOrder(ctx context.Context, o Order) error {
	if err := r.exec(ctx, upsertOrder, o); err != nil {
		logger.FromCtx(ctx).Error("failed to upsert order",
			zap.String("layer", "repository"),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
		return fmt.Errorf("upsert order: %w", err)
	}
	return nil
}

func (r *repository) exec(ctx context.Context, query string, o Order) error {
	storeJSON, err := json.Marshal(o.Store)
	if err != nil {
		return fmt.Errorf("encode store snapshot: %w", err)
	}
	productsJSON, err := json.Marshal(o.Products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}

	var deadline sql.NullTime
	if o.DeliveryDeadline != nil {
		deadline = sql.NullTime{Time: *o.DeliveryDeadline, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, query,
		o.ID, o.StoreID, storeJSON, productsJSON, string(o.Status), o.TotalAmount,
		o.CreatedAt, o.UpdatedAt, nullString(o.AgentID), nullString(o.AssignedTo), nullString(o.CourierID),
		nullString(o.DeliveryAddress), nullString(o.DeliveryNotes), nullString(o.Notes), deadline,
		o.ProblemReported, nullString(o.ProblemDescription),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o                                    Order
		status                               string
		storeJSON, productsJSON              []byte
		agentID, assignedTo, courierID       sql.NullString
		address, deliveryNotes, notes, probl sql.NullString
		deadline                             sql.NullTime
	)

	err := row.Scan(
		&o.ID, &o.StoreID, &storeJSON, &productsJSON, &status, &o.TotalAmount,
		&o.CreatedAt, &o.UpdatedAt, &agentID, &assignedTo, &courierID,
		&address, &deliveryNotes, &notes, &deadline,
		&o.ProblemReported, &probl,
	)
	if err != nil {
		return Order{}, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(storeJSON, &o.Store); err != nil {
		return Order{}, fmt.Errorf("decode store snapshot of %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(productsJSON, &o.Products); err != nil {
		return Order{}, fmt.Errorf("decode products of %s: %w", o.ID, err)
	}

	o.Status = OrderStatus(status)
	o.AgentID = agentID.String
	o.AssignedTo = assignedTo.String
	o.CourierID = courierID.String
	o.DeliveryAddress = address.String
	o.DeliveryNotes = deliveryNotes.String
	o.Notes = notes.String
	o.ProblemDescription = probl.String
	if deadline.Valid {
		t := deadline.Time
		o.DeliveryDeadline = &t
	}
	return o, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
