// Package server initializes and runs the journal application server.
// It opens storage, applies the schema, wires the entry and auth services
// into the HTTP surface and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/johnsonjew/learning-journal/internal/dbx"
	"github.com/johnsonjew/learning-journal/internal/logging"
	"github.com/johnsonjew/learning-journal/internal/markup"
	"github.com/johnsonjew/learning-journal/internal/server/config"
	"github.com/johnsonjew/learning-journal/internal/server/repositories/repomanager"
	"github.com/johnsonjew/learning-journal/internal/server/services"
	"github.com/johnsonjew/learning-journal/internal/server/web"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	renderer     *markup.Renderer
	authService  *services.AuthService
	entryService *services.EntryService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.Debug)

	db, dialect, err := dbx.Open(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewSQLRepositoryManager(dialect, logger)
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	renderer := markup.NewRenderer(markup.DefaultStyle)

	es := services.NewEntryService(db, m, renderer)
	as := services.NewAuthService(c)

	logger.Info(ctx, "Storage ready", "dialect", string(dialect))

	return &App{config: c, logger: logger, db: db, renderer: renderer, authService: as, entryService: es}, nil
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

	s, err := web.NewHTTPServer(app.config.EndpointAddr, app.logger, app.entryService, app.authService, app.db, app.renderer)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err.Error())
	}

	app.logger.Info(ctx, "App stopped")
}
