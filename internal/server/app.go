// Package server wires the registration service together: it opens the
// database pool, applies migrations, builds the user service and runs the
// HTTP API next to the gRPC health endpoint until the process is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/hobbytracker/internal/logging"
	"github.com/dmitrijs2005/hobbytracker/internal/server/config"
	"github.com/dmitrijs2005/hobbytracker/internal/server/metrics"
	"github.com/dmitrijs2005/hobbytracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hobbytracker/internal/server/rest"
	"github.com/dmitrijs2005/hobbytracker/internal/server/services"
	"github.com/dmitrijs2005/hobbytracker/internal/server/shared/db"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	gs "github.com/dmitrijs2005/hobbytracker/internal/server/grpc"
)

// server is what App runs concurrently.
type server interface {
	Run(ctx context.Context) error
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sqlx.DB
	httpServer server
	grpcServer server
}

// NewApp builds every component once and hands dependencies down explicitly.
// The returned App owns the pool; Run closes it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	pool, err := db.Open(ctx, c.DatabaseDriver, c.DatabaseDSN, db.PoolConfig{
		MaxOpenConns:    c.DatabaseMaxOpenConns,
		MaxIdleConns:    c.DatabaseMaxIdleConns,
		ConnMaxLifetime: c.DatabaseConnMaxLifetime,
		ConnMaxIdleTime: c.DatabaseConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, pool.DB); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(pool, rm, services.NewBcryptHasher(c.BcryptCost), logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(pool.DB, "hobbytracker"),
	)
	m := metrics.New(reg)

	limit := rate.Limit(c.RegisterRateLimit)
	if c.RegisterRateLimit == 0 {
		limit = rate.Inf
	}

	router := rest.NewRouter(rest.NewHandler(us, pool, m, logger), rest.RouterConfig{
		Logger:        logger,
		Metrics:       m,
		Gatherer:      reg,
		RegisterLimit: limit,
		RegisterBurst: c.RegisterRateBurst,
	})

	return &App{
		config:     c,
		logger:     logger,
		db:         pool,
		httpServer: rest.NewHTTPServer(c.EndpointAddrHTTP, router, logger),
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, pool, c.HealthCheckInterval),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runServer runs s and cancels the whole app if it fails.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, s server) {
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run starts the HTTP and gRPC servers and blocks until ctx is cancelled, a
// signal arrives or either server fails. The pool is closed before returning.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.httpServer)
	}()
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "grpc", app.grpcServer)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
