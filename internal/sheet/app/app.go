package app

import (
	"fmt"
	"log/slog"

	"github.com/arkhamdesk/sheetvault/internal/sheet/autosave"
	"github.com/arkhamdesk/sheetvault/internal/sheet/bus"
	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"github.com/arkhamdesk/sheetvault/internal/sheet/service"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store/drivers/memory"
	redisdriver "github.com/arkhamdesk/sheetvault/internal/sheet/store/drivers/redis"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store/drivers/sqlite"
	"github.com/arkhamdesk/sheetvault/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application holds the explicitly constructed dependency graph for one
// session: a store, the character service on top of it, and the event bus.
// Nothing here is a package-level singleton; the CLI builds one of these and
// passes it down.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	characters *service.CharacterService
	events     *bus.Bus
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "sheetvault",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		events: bus.New(),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.characters = &service.CharacterService{Store: app.db}
	return app, nil
}

// Close releases the backing store.
func (app *Application) Close() error {
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}
	return nil
}

func (app *Application) Logger() *slog.Logger                  { return app.logger }
func (app *Application) Characters() *service.CharacterService { return app.characters }
func (app *Application) Events() *bus.Bus                      { return app.events }

// NewScheduler builds an autosave scheduler bound to this application's
// service and bus. snapshot must return a copy of the live record being
// edited.
func (app *Application) NewScheduler(snapshot func() domain.CharacterRecord) *autosave.Scheduler {
	s := autosave.New(app.characters, snapshot, app.events, app.logger)
	if d := app.cfg.Autosave.Debounce.Std(); d > 0 {
		s.Debounce = d
	}
	return s
}

// initStore selects and opens the configured backend, then prepares its
// schema.
func (app *Application) initStore() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.Storage.Backend {
	case "", "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.Storage.SQLitePath)
		db, err = sqlite.NewStore(dsn)
	case "redis":
		db, err = redisdriver.NewStore(redisdriver.Config{
			Addr:     app.cfg.Storage.Redis.Addr,
			Password: app.cfg.Storage.Redis.Password,
			DB:       app.cfg.Storage.Redis.DB,
		})
	case "memory":
		db = memory.NewStore()
	default:
		return fmt.Errorf("unknown storage backend %q", app.cfg.Storage.Backend)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", app.cfg.Storage.Backend, err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply store migrations: %w", err)
	}

	app.logger.Debug("store ready", "backend", app.cfg.Storage.Backend)
	return nil
}
