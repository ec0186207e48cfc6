// Package server wires configuration, storage, credentials and the HTTP API
// into a runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/logging"
	"github.com/dmitrijs2005/soundhub/internal/server/auth"
	"github.com/dmitrijs2005/soundhub/internal/server/config"
	"github.com/dmitrijs2005/soundhub/internal/server/httpapi"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/memory"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soundhub/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const startupTimeout = 15 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	server  *httpapi.Server
	closers []func() error
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if c.InsecureSecret() {
		logger.Warn(ctx, "using the development signing secret; set SOUNDHUB_SECRET_KEY before deploying")
	}

	store, rm, err := app.initStorage(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	strategy, err := app.initStrategy(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hasher := auth.NewBcryptHasher(c.BcryptCost)
	h := httpapi.NewHandler(
		services.NewUserService(store, rm, hasher, logger.With("module", "user_service")),
		services.NewSubscriptionService(store, rm, logger.With("module", "subscription_service")),
		services.NewActivityService(store, rm, logger.With("module", "activity_service")),
		strategy,
		store,
		logger,
		httpapi.NewMetrics(registry),
	)
	router := httpapi.NewRouter(h, httpapi.Options{Gatherer: registry, RequestTimeout: c.RequestTimeout})
	app.server = httpapi.NewServer(c.EndpointAddrHTTP, router, logger)

	return app, nil
}

func (app *App) initStorage(ctx context.Context) (dbx.Store, repomanager.RepositoryManager, error) {
	if app.config.Storage == config.StorageMemory {
		app.logger.Warn(ctx, "using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return store, memory.NewRepositoryManager(store), nil
	}

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	app.closers = append(app.closers, db.Close)

	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, nil, fmt.Errorf("migrations error: %w", err)
	}

	return dbx.NewSQLStore(db, nil), rm, nil
}

func (app *App) initStrategy(ctx context.Context) (auth.Strategy, error) {
	if app.config.AuthMode != config.AuthModeSession {
		tokens := auth.NewTokenService([]byte(app.config.SecretKey), app.config.TokenValidityDuration)
		return auth.NewTokenStrategy(tokens), nil
	}

	opts, err := redis.ParseURL(app.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url error: %w", err)
	}
	rdb := redis.NewClient(opts)
	app.closers = append(app.closers, rdb.Close)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping error: %w", err)
	}

	return auth.NewSessionStrategy(rdb, app.config.SessionValidityDuration, app.config.CookieSecure), nil
}

// Close releases the database pool and the Redis client.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error(context.Background(), "close error", "error", err.Error())
		}
	}
	app.closers = nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...", "auth_mode", app.config.AuthMode, "storage", app.config.Storage)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
