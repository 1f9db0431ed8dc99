package metrics

import (
	"net/http"
	"strconv"
	"time"

	"bridge-be/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bridge"

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Metrics owns a private registry so tests and multiple servers in one
// process do not collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	orderOps       *prometheus.CounterVec
	orderLatency   *prometheus.HistogramVec
	ordersByStatus *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		orderOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "operations_total",
			Help:      "Order store operations by outcome.",
		}, []string{"op", "result"}),
		orderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "operation_duration_ms",
			Help:      "Order operation latency in milliseconds, simulated latency included.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"op"}),
		ordersByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "by_status",
			Help:      "Current number of orders per status.",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpLatency,
		m.orderOps,
		m.orderLatency,
		m.ordersByStatus,
	)
	return m
}

// ObserveOperation records one order service call.
func (m *Metrics) ObserveOperation(op string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.orderOps.WithLabelValues(op, result).Inc()
	m.orderLatency.WithLabelValues(op).Observe(float64(elapsed.Milliseconds()))
}

func (m *Metrics) SetOrdersByStatus(counts map[string]int) {
	for status, n := range counts {
		m.ordersByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// Middleware counts requests per chi route pattern, falling back to the raw
// path for unmatched requests.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := StartTimer()
		rec := logger.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.Status)).Inc()
		m.httpLatency.WithLabelValues(route).Observe(float64(timer.Duration().Milliseconds()))
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
