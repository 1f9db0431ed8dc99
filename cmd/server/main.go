package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bridge-be/internal/cache"
	"bridge-be/internal/catalog"
	"bridge-be/internal/config"
	"bridge-be/internal/courier"
	"bridge-be/internal/db"
	"bridge-be/internal/events"
	"bridge-be/internal/handler"
	"bridge-be/internal/logger"
	"bridge-be/internal/metrics"
	"bridge-be/internal/middleware"
	"bridge-be/internal/mockdata"
	"bridge-be/internal/notification"
	"bridge-be/internal/order"
	"bridge-be/internal/user"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var (
	initDBFunc       = db.NewDatabase
	connectRedisFunc = cache.Connect
	startServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	defer logger.Sync()

	infra, cleanup, err := buildInfrastructure(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	app, err := newServer(ctx, cfg, infra)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.orders.Refresh(ctx); err != nil {
		logger.L().Warn("initial order fetch failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("data_source", cfg.DataSource),
		)
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.L().Info("http server stopped")
	return nil
}

type publisher interface {
	order.Publisher
	Close() error
}

// infrastructure holds the backends chosen by configuration.
type infrastructure struct {
	source    order.Source
	sessions  user.SessionStore
	publisher publisher
}

// buildInfrastructure connects the optional backends. Without a database
// orders come from the seeded generator; without Redis sessions stay in
// memory; without brokers events are dropped.
func buildInfrastructure(cfg *config.Config) (infrastructure, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.L().Warn("failed to release resource", zap.Error(err))
			}
		}
	}

	infra := infrastructure{
		sessions:  user.NewMemorySessionStore(),
		publisher: events.Nop{},
	}

	switch cfg.DataSource {
	case config.DataSourcePostgres:
		database, err := initDBFunc(cfg)
		if err != nil {
			return infrastructure{}, func() {}, fmt.Errorf("database: %w", err)
		}
		closers = append(closers, database.Close)
		infra.source = order.NewRepository(database)
	default:
		infra.source = mockdata.NewGenerator(cfg.MockSeed, time.Now().UTC())
	}

	if cfg.RedisAddr != "" {
		rdb, err := connectRedisFunc(cfg)
		if err != nil {
			cleanup()
			return infrastructure{}, func() {}, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, rdb.Close)
		infra.sessions = cache.NewSessionStore(rdb)
	}

	if len(cfg.KafkaBrokers) > 0 {
		p := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		closers = append(closers, p.Close)
		infra.publisher = p
	}

	return infra, cleanup, nil
}

type server struct {
	handler  http.Handler
	orders   order.Service
	hub      *notification.Hub
	registry *notification.Registry
}

func (s *server) Close() {
	s.registry.Close()
	s.hub.Close()
}

// newServer wires the domain services onto infra and builds the router.
// The rate limiter's cleanup loop lives until ctx is done.
func newServer(ctx context.Context, cfg *config.Config, infra infrastructure) (*server, error) {
	seed, err := user.SeedUsers(time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	users := user.NewService(user.NewMemoryRepository(seed...))
	sessions := user.NewSessionManager(users, infra.sessions, cfg.SessionTTL)

	hub := notification.NewHub(cfg.CORSOrigin)
	registry := notification.NewRegistry(hub)

	catalogRepo := catalog.NewDefaultRepository()
	couriers := courier.NewRepository(courier.Defaults()...)
	m := metrics.New()

	orders := order.NewService(order.ServiceDeps{
		Store:     order.NewStore(infra.source, order.WithLatency(cfg.SimulatedLatency)),
		Catalog:   catalogRepo,
		Couriers:  couriers,
		Agents:    users,
		Notifier:  registry,
		Publisher: infra.publisher,
		Recorder:  m,
	})

	router := setupRouter(cfg, m, sessions, middleware.NewRateLimiter(ctx, cfg.InternalSecretKey),
		handler.NewAuthHandler(sessions, cfg.SessionTTL, cfg.AppEnv == "production"),
		handler.NewOrderHandler(orders),
		handler.NewDashboardHandler(orders),
		handler.NewCatalogHandler(catalogRepo, couriers),
		handler.NewNotificationHandler(registry, hub),
		handler.NewUsersHandler(users),
	)

	return &server{handler: router, orders: orders, hub: hub, registry: registry}, nil
}

type routeRegistrar interface {
	RegisterRoutes(router chi.Router)
}

func setupRouter(
	cfg *config.Config,
	m *metrics.Metrics,
	sessions middleware.SessionOpener,
	limiter *middleware.RateLimiter,
	handlers ...routeRegistrar,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(
		logger.RequestIDMiddleware,
		logger.LoggingMiddleware,
		m.Middleware,
		middleware.CORS(cfg.CORSOrigin),
		middleware.Authenticate(sessions),
		limiter.Middleware,
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	})
	r.Handle("/metrics", m.Handler())

	for _, h := range handlers {
		h.RegisterRoutes(r)
	}
	return r
}
