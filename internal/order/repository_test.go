package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderColumns = []string{
	"id", "store_id", "store", "products", "status", "total_amount",
	"created_at", "updated_at", "agent_id", "assigned_to", "courier_id",
	"delivery_address", "delivery_notes", "notes", "delivery_deadline",
	"problem_reported", "problem_description",
}

func TestRepository_FetchOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		deadline := t0.Add(48 * time.Hour)
		rows := sqlmock.NewRows(orderColumns).
			AddRow("order-1", "s1", []byte(`{"id":"s1","name":"Grocery Store A","address":"123 Main St, City","phone":"+1234567890"}`),
				[]byte(`[{"id":"p1","name":"Milk","price":"2.99","quantity":2}]`), "SHIPPED", "5.98",
				t0, t0, "2", "c1", "c1", "123 Main St, City", nil, nil, deadline, false, nil).
			AddRow("order-2", "s2", []byte(`{"id":"s2","name":"Supermarket B"}`),
				[]byte(`[]`), "PENDING", "0",
				t0, t0, nil, nil, nil, nil, nil, nil, nil, true, "Shop closed")

		mock.ExpectQuery("SELECT (.+) FROM orders").WillReturnRows(rows)

		orders, err := repo.FetchOrders(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 2)

		first := orders[0]
		assert.Equal(t, StatusShipped, first.Status)
		assert.Equal(t, "Grocery Store A", first.Store.Name)
		require.Len(t, first.Products, 1)
		assert.Equal(t, 2, first.Products[0].Quantity)
		assert.True(t, first.TotalAmount.Equal(decimal.RequireFromString("5.98")))
		assert.Equal(t, "c1", first.CourierID)
		require.NotNil(t, first.DeliveryDeadline)
		assert.True(t, first.DeliveryDeadline.Equal(deadline))

		second := orders[1]
		assert.Empty(t, second.AgentID)
		assert.Nil(t, second.DeliveryDeadline)
		assert.True(t, second.ProblemReported)
		assert.Equal(t, "Shop closed", second.ProblemDescription)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM orders").WillReturnError(errors.New("db error"))

		_, err := repo.FetchOrders(ctx)
		assert.ErrorContains(t, err, "query orders")
	})

	t.Run("BadSnapshot", func(t *testing.T) {
		rows := sqlmock.NewRows(orderColumns).
			AddRow("order-9", "s1", []byte(`{`), []byte(`[]`), "PENDING", "0",
				t0, t0, nil, nil, nil, nil, nil, nil, nil, false, nil)
		mock.ExpectQuery("SELECT (.+) FROM orders").WillReturnRows(rows)

		_, err := repo.FetchOrders(ctx)
		assert.ErrorContains(t, err, "order-9")
	})
}

func TestRepository_SaveOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	o := newOrder("order-3", storeS1, StatusPending, t0, "2", line(milk, 1), line(bread, 2))

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO orders (.+) ON CONFLICT \\(id\\) DO UPDATE").
			WithArgs("order-3", "s1", sqlmock.AnyArg(), sqlmock.AnyArg(), "PENDING", o.TotalAmount,
				t0, t0, sql.NullString{String: "2", Valid: true}, sql.NullString{String: "2", Valid: true}, nil,
				nil, nil, nil, nil, false, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveOrder(ctx, o))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExecError", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO orders").WillReturnError(errors.New("db error"))

		err := repo.SaveOrder(ctx, o)
		assert.ErrorContains(t, err, "upsert order")
	})
}

func TestRepository_InsertOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	o := newOrder("order-new-1", storeS2, StatusPending, t0, "1", line(bread, 1))

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO orders (.+) VALUES \(.+\)\s*$`).
			WithArgs("order-new-1", "s2", sqlmock.AnyArg(), sqlmock.AnyArg(), "PENDING", o.TotalAmount,
				t0, t0, sql.NullString{String: "1", Valid: true}, sql.NullString{String: "1", Valid: true}, nil,
				nil, nil, nil, nil, false, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.InsertOrder(ctx, o))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate id", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO orders").WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

		err := repo.InsertOrder(ctx, o)
		assert.ErrorIs(t, err, ErrOrderExists)
		assert.ErrorContains(t, err, "order-new-1")
	})

	t.Run("ExecError", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO orders").WillReturnError(errors.New("db error"))

		err := repo.InsertOrder(ctx, o)
		assert.ErrorContains(t, err, "insert order")
		assert.NotErrorIs(t, err, ErrOrderExists)
	})
}
