// Package main is the entry point for eventgen, which turns an event
// manifest into Go constants.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dshills/gamebus/internal/app"
	"github.com/dshills/gamebus/internal/codegen"
	"github.com/dshills/gamebus/internal/manifest"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "eventgen",
		Usage:   "generate event ID constants from a manifest",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			generateCmd(),
			checkCmd(),
			listCmd(),
			watchCmd(),
		},
	}
}

func manifestFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "manifest",
		Aliases:  []string{"m"},
		Usage:    "path to the event manifest (.toml, .yaml)",
		Required: true,
	}
}

func genFlags(outRequired bool) []cli.Flag {
	return []cli.Flag{
		manifestFlag(),
		&cli.StringFlag{
			Name:     "out",
			Aliases:  []string{"o"},
			Usage:    "generated Go file",
			Required: outRequired,
		},
		&cli.StringFlag{
			Name:  "package",
			Usage: "package name, overriding the manifest",
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "prefix for every constant name",
		},
		&cli.StringFlag{
			Name:  "import",
			Value: codegen.DefaultEventImport,
			Usage: "import path of the event package",
		},
	}
}

func options(c *cli.Context) codegen.Options {
	return codegen.Options{
		Package:     c.String("package"),
		Prefix:      c.String("prefix"),
		EventImport: c.String("import"),
	}
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "write the constants file",
		Flags:   genFlags(true),
		Action: func(c *cli.Context) error {
			out := c.String("out")
			changed, err := codegen.GenerateFile(c.String("manifest"), out, options(c))
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
			} else {
				fmt.Fprintf(c.App.Writer, "%s is up to date\n", out)
			}
			return nil
		},
	}
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "validate the manifest and, with --out, fail if the file is stale",
		Flags: genFlags(false),
		Action: func(c *cli.Context) error {
			path := c.String("manifest")
			m, err := manifest.Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s: %d events in %d categories\n",
				path, len(m.Events), len(m.Categories()))

			out := c.String("out")
			if out == "" {
				return nil
			}
			opts := options(c)
			opts.Source = filepath.Base(path)
			src, err := codegen.Generate(m, opts)
			if err != nil {
				return err
			}
			stale, err := codegen.Stale(out, src)
			if err != nil {
				return err
			}
			if stale {
				return fmt.Errorf("%s is stale; run eventgen generate", out)
			}
			fmt.Fprintf(c.App.Writer, "%s is up to date\n", out)
			return nil
		},
	}
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "print the declared events by category",
		Flags: []cli.Flag{manifestFlag()},
		Action: func(c *cli.Context) error {
			m, err := manifest.Load(c.String("manifest"))
			if err != nil {
				return err
			}
			for _, cat := range m.Categories() {
				label := cat
				if label == "" {
					label = "(none)"
				}
				fmt.Fprintf(c.App.Writer, "%s:\n", label)
				for _, e := range m.Events {
					if e.Category != cat {
						continue
					}
					if len(e.Params) > 0 {
						fmt.Fprintf(c.App.Writer, "  %s (%s)\n", e.Name, strings.Join(e.Params, ", "))
					} else {
						fmt.Fprintf(c.App.Writer, "  %s\n", e.Name)
					}
				}
			}
			return nil
		},
	}
}

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "regenerate whenever the manifest changes",
		Flags: append(genFlags(true), &cli.DurationFlag{
			Name:  "debounce",
			Value: codegen.DefaultDebounce,
			Usage: "quiet period before regenerating",
		}),
		Action: func(c *cli.Context) error {
			logger := app.NewLogger(app.LoggerConfig{
				Level:  c.String("log-level"),
				Output: c.App.ErrWriter,
			})

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := c.String("out")
			w := codegen.NewWatcher(c.String("manifest"), out, options(c),
				codegen.WithDebounce(c.Duration("debounce")),
				codegen.WithWatchLogger(logger),
				codegen.WithResultHandler(func(r codegen.Result) {
					if r.Err == nil && r.Changed {
						fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
					}
				}),
			)
			return w.Run(ctx)
		},
	}
}
