package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bridge-be/internal/courier"
	"bridge-be/internal/logger"
	"bridge-be/internal/notification"
	"bridge-be/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const notifyDuration = 5 * time.Second

// Catalog resolves store and product references of a new order.
type Catalog interface {
	GetStore(ctx context.Context, id string) (Store, error)
	GetProduct(ctx context.Context, id string) (Product, error)
}

type CourierDirectory interface {
	Get(ctx context.Context, id string) (courier.Courier, error)
}

type AgentDirectory interface {
	ListByRole(ctx context.Context, role user.Role) ([]user.User, error)
}

// Notifier surfaces the outcome of an operation to the acting user.
type Notifier interface {
	Notify(ctx context.Context, userID string, d notification.Draft) notification.Notification
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Recorder interface {
	ObserveOperation(op string, err error, elapsed time.Duration)
	SetOrdersByStatus(counts map[string]int)
}

type LineInput struct {
	ProductID string
	Quantity  int
}

// StoreInput describes a store that is not in the catalog.
type StoreInput struct {
	Name          string
	Address       string
	Phone         string
	Email         string
	ContactPerson string
}

type CreateInput struct {
	StoreID          string
	Store            *StoreInput
	Items            []LineInput
	AgentID          string
	DeliveryAddress  string
	DeliveryNotes    string
	Notes            string
	DeliveryDeadline *time.Time
}

type Service interface {
	Refresh(ctx context.Context) error
	List(ctx context.Context, viewer Viewer, f Filters) []Order
	Get(ctx context.Context, viewer Viewer, id string) (Order, error)
	Create(ctx context.Context, viewer Viewer, in CreateInput) (Order, error)
	UpdateStatus(ctx context.Context, viewer Viewer, id string, status OrderStatus) (Order, error)
	AssignCourier(ctx context.Context, viewer Viewer, orderID, courierID string, dispatch bool) (Order, error)
	SetDeliveryDeadline(ctx context.Context, viewer Viewer, orderID string, deadline time.Time) (Order, error)
	ReportProblem(ctx context.Context, viewer Viewer, orderID, description string) (Order, error)
	SetFilters(ctx context.Context, viewer Viewer, patch Filters) ([]Order, error)
	ClearFilters(ctx context.Context, viewer Viewer) ([]Order, error)
	FilterState(ctx context.Context, viewer Viewer) (State, error)
	Dashboard(ctx context.Context, viewer Viewer) Stats
	AgentPerformance(ctx context.Context, viewer Viewer) ([]AgentPerformance, error)
}

type ServiceDeps struct {
	Store     *OrderStore
	Catalog   Catalog
	Couriers  CourierDirectory
	Agents    AgentDirectory
	Notifier  Notifier
	Publisher Publisher
	Recorder  Recorder
}

type service struct {
	store     *OrderStore
	catalog   Catalog
	couriers  CourierDirectory
	agents    AgentDirectory
	notifier  Notifier
	publisher Publisher
	recorder  Recorder
	now       func() time.Time
	newID     func() string
}

// NewService wires the OrderStore to its collaborators. Notifier,
// Publisher and Recorder are optional.
func NewService(d ServiceDeps) Service {
	return &service{
		store:     d.Store,
		catalog:   d.Catalog,
		couriers:  d.Couriers,
		agents:    d.Agents,
		notifier:  d.Notifier,
		publisher: d.Publisher,
		recorder:  d.Recorder,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString()[:8] },
	}
}

func (s *service) Refresh(ctx context.Context) error {
	start := time.Now()
	err := s.store.FetchOrders(ctx)
	s.observe("fetch", err, start)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to refresh orders",
			zap.String("layer", "service"),
			zap.Error(err),
		)
		return err
	}
	s.updateGauge()
	return nil
}

// List returns the orders viewer may see that match f, newest first.
func (s *service) List(ctx context.Context, viewer Viewer, f Filters) []Order {
	visible := FilterVisible(s.store.Orders(), viewer)
	return NewestFirst(ApplyFilters(visible, f))
}

// Get reports ErrOrderNotFound for orders hidden from viewer as well.
func (s *service) Get(ctx context.Context, viewer Viewer, id string) (Order, error) {
	o, ok := s.store.Get(id)
	if !ok || !VisibleTo(o, viewer) {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o, nil
}

func (s *service) Create(ctx context.Context, viewer Viewer, in CreateInput) (Order, error) {
	return s.run(ctx, viewer, "create", EventCreated,
		func() (Order, bool, error) {
			d, err := s.buildDraft(ctx, viewer, in)
			if err != nil {
				return Order{}, false, err
			}
			o, err := s.store.CreateOrder(ctx, d)
			return o, err == nil, err
		},
		func(o Order) string { return fmt.Sprintf("Order #%s created", o.ID) },
		"Failed to create order",
	)
}

func (s *service) UpdateStatus(ctx context.Context, viewer Viewer, id string, status OrderStatus) (Order, error) {
	return s.run(ctx, viewer, "update_status", EventStatusChanged,
		func() (Order, bool, error) {
			current, err := s.Get(ctx, viewer, id)
			if err != nil {
				return Order{}, false, err
			}
			if current.Status == status {
				return current, false, nil
			}
			return fromStore(s.store.UpdateOrderStatus(ctx, id, status))
		},
		func(o Order) string { return fmt.Sprintf("Order #%s is now %s", o.ID, o.Status) },
		"Failed to update order status",
	)
}

// AssignCourier hands the order to an available courier. With dispatch the
// order also moves to SHIPPED in the same step.
func (s *service) AssignCourier(ctx context.Context, viewer Viewer, orderID, courierID string, dispatch bool) (Order, error) {
	evType := EventCourierAssigned
	if dispatch {
		evType = EventDispatched
	}

	return s.run(ctx, viewer, "assign_courier", evType,
		func() (Order, bool, error) {
			if !viewer.IsAdmin() {
				return Order{}, false, ErrForbidden
			}
			if _, err := s.Get(ctx, viewer, orderID); err != nil {
				return Order{}, false, err
			}
			c, err := s.couriers.Get(ctx, courierID)
			if err != nil {
				if errors.Is(err, courier.ErrNotFound) {
					return Order{}, false, fmt.Errorf("%w: %s", ErrCourierNotFound, courierID)
				}
				return Order{}, false, err
			}
			if !c.Available {
				return Order{}, false, fmt.Errorf("%w: %s", ErrCourierUnavailable, c.Name)
			}
			if dispatch {
				return fromStore(s.store.Dispatch(ctx, orderID, courierID))
			}
			return fromStore(s.store.AssignCourier(ctx, orderID, courierID))
		},
		func(o Order) string { return fmt.Sprintf("Courier assigned to order #%s", o.ID) },
		"Failed to assign courier",
	)
}

func (s *service) SetDeliveryDeadline(ctx context.Context, viewer Viewer, orderID string, deadline time.Time) (Order, error) {
	return s.run(ctx, viewer, "set_deadline", EventDeadlineSet,
		func() (Order, bool, error) {
			if !viewer.IsAdmin() {
				return Order{}, false, ErrForbidden
			}
			if deadline.IsZero() {
				return Order{}, false, fmt.Errorf("%w: deadline is required", ErrInvalidOrder)
			}
			if _, err := s.Get(ctx, viewer, orderID); err != nil {
				return Order{}, false, err
			}
			return fromStore(s.store.SetDeliveryDeadline(ctx, orderID, deadline))
		},
		func(o Order) string { return fmt.Sprintf("Delivery deadline set for order #%s", o.ID) },
		"Failed to set delivery deadline",
	)
}

func (s *service) ReportProblem(ctx context.Context, viewer Viewer, orderID, description string) (Order, error) {
	return s.run(ctx, viewer, "report_problem", EventProblemReported,
		func() (Order, bool, error) {
			description = strings.TrimSpace(description)
			if description == "" {
				return Order{}, false, fmt.Errorf("%w: problem description is required", ErrInvalidOrder)
			}
			if _, err := s.Get(ctx, viewer, orderID); err != nil {
				return Order{}, false, err
			}
			return fromStore(s.store.ReportProblem(ctx, orderID, description))
		},
		func(o Order) string { return fmt.Sprintf("Problem reported on order #%s", o.ID) },
		"Failed to report problem",
	)
}

func (s *service) SetFilters(ctx context.Context, viewer Viewer, patch Filters) ([]Order, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.store.SetFilters(patch), nil
}

func (s *service) ClearFilters(ctx context.Context, viewer Viewer) ([]Order, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.store.ClearFilters(), nil
}

func (s *service) FilterState(ctx context.Context, viewer Viewer) (State, error) {
	if !viewer.IsAdmin() {
		return State{}, ErrForbidden
	}
	return s.store.State(), nil
}

func (s *service) Dashboard(ctx context.Context, viewer Viewer) Stats {
	return ComputeStats(FilterVisible(s.store.Orders(), viewer), s.now())
}

func (s *service) AgentPerformance(ctx context.Context, viewer Viewer) ([]AgentPerformance, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}

	users, err := s.agents.ListByRole(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	agents := make(map[string]string)
	known := make(map[string]string, len(users))
	for _, u := range users {
		known[u.ID] = u.Name
		if u.Role == user.RoleAgent {
			agents[u.ID] = u.Name
		}
	}

	rows := ComputeAgentPerformance(s.store.Orders(), agents)
	for i := range rows {
		if name, ok := known[rows[i].AgentID]; ok {
			rows[i].Name = name
		}
	}
	return rows, nil
}

func (s *service) buildDraft(ctx context.Context, viewer Viewer, in CreateInput) (Draft, error) {
	if viewer.ID == "" {
		return Draft{}, ErrForbidden
	}
	if len(in.Items) == 0 {
		return Draft{}, ErrNoProducts
	}
	address := strings.TrimSpace(in.DeliveryAddress)
	if address == "" {
		return Draft{}, ErrAddressMissing
	}

	store, err := s.resolveStore(ctx, in)
	if err != nil {
		return Draft{}, err
	}

	products := make([]Product, 0, len(in.Items))
	index := make(map[string]int, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return Draft{}, fmt.Errorf("%w: %s", ErrInvalidQty, item.ProductID)
		}
		if i, ok := index[item.ProductID]; ok {
			products[i].Quantity += item.Quantity
			continue
		}
		p, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return Draft{}, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
		}
		p.Quantity = item.Quantity
		index[item.ProductID] = len(products)
		products = append(products, p)
	}

	d := Draft{
		StoreID:          store.ID,
		Store:            store,
		Products:         products,
		Status:           StatusPending,
		DeliveryAddress:  address,
		DeliveryNotes:    strings.TrimSpace(in.DeliveryNotes),
		Notes:            strings.TrimSpace(in.Notes),
		DeliveryDeadline: in.DeliveryDeadline,
	}
	switch {
	case !viewer.IsAdmin():
		d.AgentID, d.AssignedTo = viewer.ID, viewer.ID
	case in.AgentID != "":
		d.AgentID, d.AssignedTo = in.AgentID, in.AgentID
	}
	return d, nil
}

func (s *service) resolveStore(ctx context.Context, in CreateInput) (Store, error) {
	if in.StoreID != "" {
		st, err := s.catalog.GetStore(ctx, in.StoreID)
		if err != nil {
			return Store{}, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
		}
		return st, nil
	}
	if in.Store == nil || strings.TrimSpace(in.Store.Name) == "" {
		return Store{}, ErrStoreRequired
	}
	return Store{
		ID:            "store-" + s.newID(),
		Name:          strings.TrimSpace(in.Store.Name),
		Address:       strings.TrimSpace(in.Store.Address),
		Phone:         strings.TrimSpace(in.Store.Phone),
		Email:         strings.TrimSpace(in.Store.Email),
		ContactPerson: strings.TrimSpace(in.Store.ContactPerson),
	}, nil
}

// fromStore adapts a store mutation result for run. The store answers an id
// that vanished since the visibility check with the zero Order.
func fromStore(o Order, err error) (Order, bool, error) {
	if err != nil {
		return Order{}, false, err
	}
	if o.ID == "" {
		return Order{}, false, ErrOrderNotFound
	}
	return o, true, nil
}

// run executes one mutation and fans its outcome out to metrics, the
// acting user's notifications and the event stream. A mutation that
// reports no change is returned without notifying or publishing.
func (s *service) run(
	ctx context.Context,
	viewer Viewer,
	op string,
	evType EventType,
	fn func() (Order, bool, error),
	success func(Order) string,
	failure string,
) (Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", op),
		zap.String("actor_id", viewer.ID),
	)

	start := time.Now()
	o, applied, err := fn()
	s.observe(op, err, start)

	if err != nil {
		log.Warn("order operation failed", zap.Error(err))
		s.notify(ctx, viewer.ID, notification.Draft{
			Type:     notification.TypeError,
			Title:    "Error",
			Message:  fmt.Sprintf("%s: %v", failure, err),
			Duration: notifyDuration,
		})
		return Order{}, err
	}
	if !applied {
		log.Debug("order unchanged", zap.String("order_id", o.ID))
		return o, nil
	}

	log.Info("order operation completed", zap.String("order_id", o.ID), zap.String("status", string(o.Status)))
	s.notify(ctx, viewer.ID, notification.Draft{
		Type:     notification.TypeSuccess,
		Title:    "Success",
		Message:  success(o),
		Duration: notifyDuration,
	})

	if s.publisher != nil {
		ev := Event{Type: evType, OrderID: o.ID, Status: o.Status, ActorID: viewer.ID, OccurredAt: s.now(), Order: o}
		if perr := s.publisher.Publish(ctx, ev); perr != nil {
			log.Error("failed to publish order event", zap.String("event", string(evType)), zap.Error(perr))
		}
	}
	s.updateGauge()
	return o, nil
}

func (s *service) notify(ctx context.Context, userID string, d notification.Draft) {
	if s.notifier == nil || userID == "" {
		return
	}
	s.notifier.Notify(ctx, userID, d)
}

func (s *service) observe(op string, err error, start time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveOperation(op, err, time.Since(start))
	}
}

func (s *service) updateGauge() {
	if s.recorder == nil {
		return
	}
	counts := make(map[string]int, len(Statuses))
	for _, st := range Statuses {
		counts[string(st)] = 0
	}
	for _, o := range s.store.Orders() {
		counts[string(o.Status)]++
	}
	s.recorder.SetOrdersByStatus(counts)
}
