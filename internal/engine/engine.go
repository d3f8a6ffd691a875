// Package engine owns an embedded PostgreSQL server instance end-to-end:
// setup (materialize data directory and binaries), start (launch and wait for
// readiness), administrative operations against the running server, and stop
// (graceful shutdown plus resource reclamation).
//
// An Engine is not safe for concurrent mutating calls. Stop must never run
// concurrently with the administrative operations, and Stop is terminal: the
// instance is unusable afterwards regardless of the shutdown's outcome.
package engine

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/chirino/pgembed/internal/config"
)

// State tracks the engine lifecycle.
type State int

const (
	StateUnconfigured State = iota
	StateConfiguring
	StateSettingUp
	StateStarting
	StateRunning
	StateStopped
	StateFailed
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfiguring:
		return "configuring"
	case StateSettingUp:
		return "setting-up"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Engine manages a single embedded PostgreSQL server subprocess together with
// its resolved settings. Each Engine is fully independent: its own process,
// data directory and port. Nothing is shared between instances.
type Engine struct {
	settings config.Settings
	logger   *log.Logger

	pg    *embeddedpostgres.EmbeddedPostgres
	admin *sqlx.DB
	state State
}

// Options carries optional collaborators for an Engine.
type Options struct {
	// Logger receives diagnostic output from this controller and from the
	// engine subprocess itself. Nil discards everything; logging is
	// observability only, never part of the functional contract.
	Logger *log.Logger
}

// New creates an Engine for the given resolved settings. The returned engine
// is configured but not set up or started.
func New(settings config.Settings, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		settings: settings,
		logger:   logger,
		state:    StateConfiguring,
	}
}

// Settings returns the resolved settings this engine was created with.
func (e *Engine) Settings() config.Settings {
	return e.settings
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Setup materializes the engine's runtime prerequisites: the data and runtime
// directories when configured, and the subprocess configuration. It is
// idempotent with respect to existing directories but may run only once per
// Engine.
func (e *Engine) Setup() error {
	if e.state != StateConfiguring {
		if e.state == StateSettingUp {
			return ErrAlreadySetUp
		}
		return NewSetupError("engine initialization failed", ErrAlreadySetUp)
	}

	cfg := embeddedpostgres.DefaultConfig().
		Version(embeddedpostgres.PostgresVersion(e.settings.Version)).
		Port(uint32(e.settings.Port)).
		Username(e.settings.Username).
		Password(e.settings.Password).
		Database(e.settings.Database).
		StartTimeout(e.settings.Timeout).
		Logger(e.logger.Writer())

	if e.settings.DataDir != "" {
		dir, err := materializeDir(e.settings.DataDir)
		if err != nil {
			e.state = StateFailed
			return NewSetupError("engine initialization failed", err)
		}
		e.settings.DataDir = dir
		cfg = cfg.DataPath(dir)
	}
	if e.settings.RuntimeDir != "" {
		dir, err := materializeDir(e.settings.RuntimeDir)
		if err != nil {
			e.state = StateFailed
			return NewSetupError("engine initialization failed", err)
		}
		e.settings.RuntimeDir = dir
		cfg = cfg.RuntimePath(dir)
	}
	if e.settings.BinariesPath != "" {
		cfg = cfg.BinariesPath(e.settings.BinariesPath)
	}

	e.pg = embeddedpostgres.NewDatabase(cfg)
	e.state = StateSettingUp
	e.logger.Printf("engine set up: %s", e.settings)
	return nil
}

// Start launches the engine subprocess and blocks until it accepts
// administrative connections or the settings' timeout elapses. On any failure
// the partially started instance is fully torn down before returning: no
// process and no connection outlives a failed Start.
func (e *Engine) Start() error {
	if e.state != StateSettingUp {
		return NewStartError("engine start failed", ErrNotSetUp)
	}

	e.state = StateStarting
	e.logger.Printf("starting engine on port %d", e.settings.Port)

	if err := e.pg.Start(); err != nil {
		e.state = StateFailed
		return NewStartError("engine start failed", err)
	}

	admin, err := e.openAdmin()
	if err != nil {
		// The subprocess is up but unreachable; tear it down so the
		// failure leaves nothing behind.
		if stopErr := e.pg.Stop(); stopErr != nil {
			e.logger.Printf("teardown after failed start: %v", stopErr)
		}
		e.state = StateFailed
		return NewStartError("engine start failed", err)
	}

	e.admin = admin
	e.state = StateRunning
	e.logger.Printf("engine running: %s", e.settings.ConnectionURL(""))
	return nil
}

// openAdmin opens and verifies the administrative connection to the
// maintenance database.
func (e *Engine) openAdmin() (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", e.settings.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), e.settings.Timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Stop issues a graceful shutdown and releases all resources tied to this
// engine. The destructive teardown happens regardless of whether the shutdown
// itself succeeds; the engine must never be used again after Stop returns.
func (e *Engine) Stop() error {
	switch e.state {
	case StateStopped:
		return ErrStopped
	case StateRunning, StateStarting, StateSettingUp, StateFailed:
	default:
		e.state = StateStopped
		return ErrNotRunning
	}

	var adminErr error
	if e.admin != nil {
		adminErr = e.admin.Close()
		e.admin = nil
	}

	var stopErr error
	if e.pg != nil {
		stopErr = e.pg.Stop()
		e.pg = nil
	} else {
		stopErr = ErrNotRunning
	}
	e.state = StateStopped
	e.logger.Printf("engine stopped")

	if stopErr != nil {
		return NewStopError("engine shutdown failed", stopErr)
	}
	if adminErr != nil {
		return NewStopError("closing admin connection failed", adminErr)
	}
	return nil
}

// ConnectionString builds the URI a driver needs to reach the given database
// on this engine. Empty database falls back to the maintenance database.
func (e *Engine) ConnectionString(database string) (string, error) {
	if e.state != StateRunning {
		return "", ErrNotRunning
	}
	return e.settings.ConnectionURL(database), nil
}

// materializeDir resolves a directory to an absolute path and creates it.
func materializeDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0750); err != nil {
		return "", err
	}
	return abs, nil
}
