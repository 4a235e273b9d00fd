// Package app provides the main application structure and coordination.
// It wires configuration, the event registry, the demo game, the Lua host
// and the trace recorder together and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gamebus/internal/config"
	"github.com/dshills/gamebus/internal/event"
	"github.com/dshills/gamebus/internal/game"
	"github.com/dshills/gamebus/internal/game/events"
	"github.com/dshills/gamebus/internal/manifest"
	"github.com/dshills/gamebus/internal/script"
	"github.com/dshills/gamebus/internal/trace"
)

// ReplayedEvents are the inputs a replay re-fires. Everything else in a
// trace is a consequence the game systems reproduce on their own.
var ReplayedEvents = []event.ID{
	events.PlayerMove,
	events.PlayerAttack,
	events.GameTick,
	events.GameQuit,
}

// Application owns every component of a gamebus session.
type Application struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *event.Registry
	manifest *manifest.Manifest
	recorder *trace.Recorder
	game     *game.Game
	scripts  *script.Host

	// closers run in reverse order on Close.
	closers []func() error
	closed  atomic.Bool

	opts options
}

type options struct {
	logger      *slog.Logger
	traceWriter io.Writer
}

// Option configures the application.
type Option func(*options)

// WithLogger replaces the logger built from the configuration.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTraceWriter records to w instead of the configured trace path.
func WithTraceWriter(w io.Writer) Option {
	return func(o *options) {
		o.traceWriter = w
	}
}

// New creates an Application from cfg and starts every component.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	app := &Application{cfg: cfg}
	for _, opt := range opts {
		opt(&app.opts)
	}

	if err := app.bootstrap(); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Logger
	if err := app.initLogger(); err != nil {
		return &InitError{Component: "logger", Err: err}
	}

	// 2. Registry
	app.registry = event.NewRegistry(
		event.WithLogger(app.logger),
		event.WithCallbackBudget(app.cfg.Events.CallbackBudget.Std()),
	)

	// 3. Manifest
	if path := app.cfg.Events.Manifest; path != "" {
		m, err := manifest.Load(path)
		if err != nil {
			return &InitError{Component: "manifest", Err: err}
		}
		app.manifest = m
		app.logger.Debug("manifest loaded", "path", path, "events", len(m.Events))
	}

	// 4. Trace recorder. Attached before any producer exists, so its
	// subscriptions start out pending.
	if err := app.initTrace(); err != nil {
		return &InitError{Component: "trace", Err: err}
	}

	// 5. Game systems
	g, err := game.New(app.registry, game.Options{
		Width:        app.cfg.Game.ArenaWidth,
		Height:       app.cfg.Game.ArenaHeight,
		Start:        game.Position{X: app.cfg.Game.ArenaWidth / 2, Y: app.cfg.Game.ArenaHeight / 2},
		Enemies:      game.DefaultEnemies(app.cfg.Game.ArenaWidth, app.cfg.Game.ArenaHeight),
		StrictParams: app.cfg.Events.StrictParams,
	})
	if err != nil {
		return &InitError{Component: "game", Err: err}
	}
	app.game = g
	app.closers = append(app.closers, g.Close)

	// 6. Scripts
	if err := app.initScripts(); err != nil {
		return &InitError{Component: "script", Err: err}
	}

	app.checkRegistry()
	return nil
}

func (app *Application) initLogger() error {
	if app.opts.logger != nil {
		app.logger = app.opts.logger
		return nil
	}

	var out io.Writer = os.Stderr
	if path := app.cfg.Log.File; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, f.Close)
		out = f
	}
	app.logger = NewLogger(LoggerConfig{
		Level:  app.cfg.Log.Level,
		Format: app.cfg.Log.Format,
		Output: out,
	})
	return nil
}

func (app *Application) initTrace() error {
	w := app.opts.traceWriter
	if w == nil && app.cfg.Trace.Path != "" {
		f, err := os.Create(app.cfg.Trace.Path)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, f.Close)
		w = f
	}
	if w == nil {
		return nil
	}

	app.recorder = trace.NewRecorder(w, trace.WithLogger(app.logger))
	app.recorder.Attach(app.registry, app.traceIDs()...)
	app.closers = append(app.closers, app.recorder.Close)
	return nil
}

// traceIDs picks what to record: the configured list, else the manifest,
// else every demo event.
func (app *Application) traceIDs() []event.ID {
	if len(app.cfg.Trace.Events) > 0 {
		ids := make([]event.ID, len(app.cfg.Trace.Events))
		for i, s := range app.cfg.Trace.Events {
			ids[i] = event.ID(s)
		}
		return ids
	}
	if app.manifest != nil {
		return app.manifest.IDs()
	}
	return events.All
}

func (app *Application) initScripts() error {
	host := script.NewHost(app.registry,
		script.WithLogger(app.logger),
		script.WithTimeout(app.cfg.Script.Timeout.Std()),
	)
	app.scripts = host
	app.closers = append(app.closers, host.Close)

	registerPayloads(host)
	for _, path := range app.cfg.Script.Paths {
		if err := host.DoFile(path); err != nil {
			return err
		}
	}
	return nil
}

func registerPayloads(host *script.Host) {
	script.RegisterType[game.Direction](host)
	script.RegisterType[game.Position](host)
	script.RegisterType[game.Attack](host)
	script.RegisterType[game.Hit](host)
	script.RegisterType[game.SoundCue](host)
	script.RegisterType[game.Tick](host)
}

// checkRegistry logs pending events nobody created and, with a manifest,
// registered events it does not declare.
func (app *Application) checkRegistry() {
	for _, id := range app.registry.Pending() {
		app.logger.Warn("event has subscribers but no producer", "event", id)
	}

	if app.manifest == nil || !app.cfg.Events.WarnUndeclared {
		return
	}
	undeclared, missing := app.manifest.Diff(app.registry.IDs())
	for _, id := range undeclared {
		app.logger.Warn("event not declared in manifest", "event", id)
	}
	for _, id := range missing {
		app.logger.Debug("declared event unused", "event", id)
	}
}

// Config returns the configuration.
func (app *Application) Config() *config.Config { return app.cfg }

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Registry returns the event registry.
func (app *Application) Registry() *event.Registry { return app.registry }

// Game returns the demo systems.
func (app *Application) Game() *game.Game { return app.game }

// Scripts returns the Lua host.
func (app *Application) Scripts() *script.Host { return app.scripts }

// Recorder returns the trace recorder, or nil when tracing is off.
func (app *Application) Recorder() *trace.Recorder { return app.recorder }

// Run drives the game on screen until ctx is done or the player quits.
func (app *Application) Run(ctx context.Context, screen tcell.Screen) error {
	if app.closed.Load() {
		return ErrClosed
	}
	if screen == nil {
		return ErrNoScreen
	}
	app.logger.Info("game started", "tick", app.cfg.TickInterval())
	return game.Run(ctx, app.game, screen, app.cfg.TickInterval(), app.logger)
}

// Replay re-fires the inputs recorded in r.
func (app *Application) Replay(r io.Reader) (trace.Summary, error) {
	if app.closed.Load() {
		return trace.Summary{}, ErrClosed
	}

	rp := trace.NewReplayer(app.registry, app.logger).Only(ReplayedEvents...)
	trace.RegisterType[game.Direction](rp)
	trace.RegisterType[game.Attack](rp)
	trace.RegisterType[game.Tick](rp)

	sum, err := rp.Replay(r)
	if err != nil {
		return sum, fmt.Errorf("replay: %w", err)
	}
	app.logger.Info("replay finished",
		"lines", sum.Lines, "fired", sum.Fired, "filtered", sum.Filtered,
		"skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

// Stats returns the registry counters.
func (app *Application) Stats() event.Stats {
	return app.registry.Stats()
}

// Close shuts components down in reverse start order.
func (app *Application) Close() error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil

	if app.logger != nil {
		app.logger.Debug("application closed")
	}
	return errors.Join(errs...)
}
