// Package server wires the DzakCloud backend together: the connection
// pool, migrations, the optional legacy import, and the HTTP and gRPC
// servers, which run until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/dzakcloud/internal/dbx"
	"github.com/dmitrijs2005/dzakcloud/internal/logging"
	"github.com/dmitrijs2005/dzakcloud/internal/server/auth"
	"github.com/dmitrijs2005/dzakcloud/internal/server/config"
	"github.com/dmitrijs2005/dzakcloud/internal/server/httpapi"
	"github.com/dmitrijs2005/dzakcloud/internal/server/importer"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dzakcloud/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/dzakcloud/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	redis          *redis.Client
	userService    *services.UserService
	paymentService *services.PaymentService
	contactService *services.ContactService
}

// NewApp opens the pool and builds the services. Nothing is contacted
// until Run.
func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := dbx.Open(c.DatabaseDSN, c.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var rdb *redis.Client
	if c.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword})
	}

	return newApp(c, logger, db, repomanager.NewPostgresRepositoryManager(), rdb), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, m repomanager.RepositoryManager, rdb *redis.Client) *App {
	var store auth.RevocationStore = auth.NewMemoryRevocationStore()
	if rdb != nil {
		store = auth.NewRedisRevocationStore(rdb)
	}
	tokens := auth.NewTokenManager([]byte(c.SecretKey), c.AccessTokenValidityDuration, store)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		repomanager:    m,
		redis:          rdb,
		userService:    services.NewUserService(db, m, tokens),
		paymentService: services.NewPaymentService(db, m),
		contactService: services.NewContactService(db, m),
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) runImport(ctx context.Context) {
	src, err := importer.NewSource(ctx, app.config, app.config.ImportSource)
	if err != nil {
		app.logger.Error(ctx, "Legacy import source error", "error", err)
		return
	}
	if _, err := importer.New(app.db, app.repomanager, app.logger).Run(ctx, src); err != nil {
		app.logger.Error(ctx, "Legacy import interrupted", "error", err)
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(app.userService, app.paymentService, app.contactService, app.db, app.logger,
		httpapi.Options{
			PingMessage:        app.config.PingMessage,
			AdminEmails:        app.config.AdminEmails,
			TrustProxy:         app.config.TrustProxy,
			StaticDir:          app.config.StaticDir,
			RateLimitPerMinute: app.config.RateLimitPerMinute,
			RateLimitBurst:     app.config.RateLimitBurst,
		})

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, h.Routes(), app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db, app.config.HealthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the schema, optionally imports legacy data, and serves until
// ctx is cancelled or a termination signal arrives. Resources are released
// before it returns.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	if app.config.ImportOnStartup {
		app.runImport(ctx)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return nil
}

func (app *App) close() {
	ctx := context.Background()
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
