package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/moltenlabs/credvault/internal/vault/http"
	"github.com/moltenlabs/credvault/internal/vault/service"
	"github.com/moltenlabs/credvault/internal/vault/store"
	"github.com/moltenlabs/credvault/internal/vault/store/drivers/memory"
	"github.com/moltenlabs/credvault/internal/vault/store/drivers/mongo"
	"github.com/moltenlabs/credvault/pkg/cryptox"
	"github.com/moltenlabs/credvault/pkg/jwtx"
	"github.com/moltenlabs/credvault/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"

	// connectTimeout bounds the initial database connection attempt.
	connectTimeout = 15 * time.Second
)

// Application encapsulates the vault service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	userService       *service.UserService
	credentialService *service.CredentialService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "credvault",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SecretKey == "" {
		return nil, errors.New("AUTH_SECRET_KEY is required")
	}

	signer, err := jwtx.NewHMACSigner(cfg.Algorithm, []byte(cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	verifier, err := jwtx.NewHMACVerifier(cfg.Algorithm, []byte(cfg.SecretKey), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices(signer)
	app.initHTTP(verifier)

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("vault service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down vault service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(ctx); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("vault service stopped")
	return nil
}

// initDatabase connects the configured store driver and ensures its indexes.
func (app *Application) initDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch app.cfg.StoreDriver {
	case "memory":
		// Volatile store, useful for local development and tests.
		app.db = memory.NewStore()
		app.logger.Warn("using in-memory store; all data is lost on restart")
	case "mongo":
		db, err := mongo.NewStore(ctx, app.cfg.MongoURI, app.cfg.MongoDBName)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db
	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}

	if err := app.db.EnsureIndexes(ctx); err != nil {
		_ = app.db.Close(ctx)
		return fmt.Errorf("failed to ensure database indexes: %w", err)
	}

	app.logger.Info("database ready", "driver", app.cfg.StoreDriver)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices(signer jwtx.Signer) {
	app.userService = &service.UserService{
		Store:    app.db,
		Hasher:   cryptox.NewHasher(),
		Signer:   signer,
		Issuer:   app.cfg.Issuer,
		TokenTTL: app.cfg.TokenTTL,
	}
	app.credentialService = &service.CredentialService{Store: app.db}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP(verifier jwtx.Verifier) {
	router := httpapi.NewRouter(
		verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.UserService = app.userService
	router.CredentialService = app.credentialService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
