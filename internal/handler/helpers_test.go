package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bridge-be/internal/order"
	"bridge-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockOrderService) List(ctx context.Context, viewer order.Viewer, f order.Filters) []order.Order {
	args := m.Called(ctx, viewer, f)
	return args.Get(0).([]order.Order)
}

func (m *MockOrderService) Get(ctx context.Context, viewer order.Viewer, id string) (order.Order, error) {
	args := m.Called(ctx, viewer, id)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderService) Create(ctx context.Context, viewer order.Viewer, in order.CreateInput) (order.Order, error) {
	args := m.Called(ctx, viewer, in)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, viewer order.Viewer, id string, status order.OrderStatus) (order.Order, error) {
	args := m.Called(ctx, viewer, id, status)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderService) AssignCourier(ctx context.Context, viewer order.Viewer, orderID, courierID string, dispatch bool) (order.Order, error) {
	args := m.Called(ctx, viewer, orderID, courierID, dispatch)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderService) SetDeliveryDeadline(ctx context.Context, viewer order.Viewer, orderID string, deadline time.Time) (order.Order, error) {
	args := m.Called(ctx, viewer, orderID, deadline)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderService) ReportProblem(ctx context.Context, viewer order.Viewer, orderID, description string) (order.Order, error) {
	args := m.Called(ctx, viewer, orderID, description)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *MockOrderService) SetFilters(ctx context.Context, viewer order.Viewer, patch order.Filters) ([]order.Order, error) {
	args := m.Called(ctx, viewer, patch)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) ClearFilters(ctx context.Context, viewer order.Viewer) ([]order.Order, error) {
	args := m.Called(ctx, viewer)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) FilterState(ctx context.Context, viewer order.Viewer) (order.State, error) {
	args := m.Called(ctx, viewer)
	return args.Get(0).(order.State), args.Error(1)
}

func (m *MockOrderService) Dashboard(ctx context.Context, viewer order.Viewer) order.Stats {
	return m.Called(ctx, viewer).Get(0).(order.Stats)
}

func (m *MockOrderService) AgentPerformance(ctx context.Context, viewer order.Viewer) ([]order.AgentPerformance, error) {
	args := m.Called(ctx, viewer)
	return args.Get(0).([]order.AgentPerformance), args.Error(1)
}

var (
	adminViewer = order.Viewer{ID: "1", Role: "ADMIN"}
	agentViewer = order.Viewer{ID: "2", Role: "AGENT"}
)

type routes interface {
	RegisterRoutes(router chi.Router)
}

func newRouter(h routes) *chi.Mux {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// do sends a request as viewer (anonymous when viewer.ID is empty).
func do(t *testing.T, router http.Handler, viewer order.Viewer, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if viewer.ID != "" {
		req = req.WithContext(utils.SetUserContext(req.Context(), viewer.ID, "", string(viewer.Role)))
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
