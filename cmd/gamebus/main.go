// Package main is the entry point for the gamebus terminal demo.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v2"

	"github.com/dshills/gamebus/internal/app"
	"github.com/dshills/gamebus/internal/config"
	"github.com/dshills/gamebus/internal/trace"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "gamebus",
		Usage:   "terminal arena driven by an event registry",
		Version: version + " (" + commit + ")",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML configuration file",
				EnvVars: []string{config.EnvPrefix + "CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "write logs to this file",
			},
		},
		Action: runGame,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "play the arena (default)",
				Action: runGame,
			},
			{
				Name:      "replay",
				Usage:     "re-fire the inputs of a trace without a terminal",
				ArgsUsage: "TRACE",
				Action:    replay,
			},
			{
				Name:   "events",
				Usage:  "list registered events and their state",
				Action: listEvents,
			},
		},
	}
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	return cfg, cfg.Validate()
}

func runGame(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// The screen owns the terminal, so logs only go to a file.
	var opts []app.Option
	if cfg.Log.File == "" {
		opts = append(opts, app.WithLogger(slog.New(slog.DiscardHandler)))
	}
	application, err := app.New(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx, screen)
}

func replay(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("replay takes exactly one trace file")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	// Never overwrite the trace being read.
	cfg.Trace.Path = ""

	application, err := app.New(cfg, app.WithLogger(app.NewLogger(app.LoggerConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	sum, err := application.Replay(f)
	if err != nil {
		return err
	}
	printReplay(c.App.Writer, application, sum)
	return nil
}

func printReplay(w io.Writer, application *app.Application, sum trace.Summary) {
	g := application.Game()
	pos := g.Player.Position()
	fmt.Fprintf(w, "lines %d  fired %d  filtered %d  skipped %d  failed %d\n",
		sum.Lines, sum.Fired, sum.Filtered, sum.Skipped, sum.Failed)
	fmt.Fprintf(w, "tick %d  pos %d,%d  enemies %d\n",
		g.Ticks(), pos.X, pos.Y, len(g.Combat.Enemies()))
	for _, e := range g.Combat.Enemies() {
		fmt.Fprintf(w, "  %s at %d,%d hp %d\n", e.Name, e.Pos.X, e.Pos.Y, e.HP)
	}
}

func listEvents(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.Trace.Path = ""

	application, err := app.New(cfg, app.WithLogger(app.NewLogger(app.LoggerConfig{
		Level:  cfg.Log.Level,
		Output: c.App.ErrWriter,
	})))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	reg := application.Registry()
	for _, id := range reg.IDs() {
		n := 0
		if ev, ok := reg.Lookup(id); ok {
			n = ev.Len()
		}
		fmt.Fprintf(c.App.Writer, "%-16s %-8s %d subscribers\n", id, reg.State(id), n)
	}
	s := reg.Stats()
	fmt.Fprintf(c.App.Writer, "%d real, %d pending, %d promotions\n", s.Events, s.Pending, s.Promotions)
	return nil
}
