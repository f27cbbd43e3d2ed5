// Package server initializes and runs the auth service: it opens the
// database, applies migrations, wires the services together and starts the
// HTTP server, handling graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkravets/auth-service/internal/logging"
	"github.com/mkravets/auth-service/internal/server/auth"
	"github.com/mkravets/auth-service/internal/server/config"
	"github.com/mkravets/auth-service/internal/server/httpapi"
	"github.com/mkravets/auth-service/internal/server/repositories/repomanager"
	"github.com/mkravets/auth-service/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	keys := auth.NewKeyProvider(cfg.PrivateKey, cfg.PrivateKeyFile)
	verifier := auth.NewJWKSClient(cfg.JWKSURI)

	ts := services.NewTokenService(db, m, keys, cfg, logger)
	us := services.NewUserService(db, m, logger)
	tns := services.NewTenantService(db, m, logger)

	srv := httpapi.NewServer(cfg, logger, db, m, keys, verifier, ts, us, tns)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	var runErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			runErr = err
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}

	return runErr
}
