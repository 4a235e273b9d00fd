// Package config loads gamebus settings.
//
// Settings come from, in increasing precedence: built-in defaults, a TOML
// file, and GAMEBUS_* environment variables. Command-line flags are applied
// on top by the caller.
//
//	[log]
//	level = "debug"
//	format = "json"
//
//	[events]
//	manifest = "assets/events.toml"
//
//	[script]
//	paths = ["scripts/init.lua"]
//	timeout = "500ms"
//
//	[game]
//	tick_rate = 30
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "GAMEBUS_"

// Config holds all settings.
type Config struct {
	Log    LogConfig    `toml:"log" envPrefix:"LOG_"`
	Events EventsConfig `toml:"events" envPrefix:"EVENTS_"`
	Script ScriptConfig `toml:"script" envPrefix:"SCRIPT_"`
	Trace  TraceConfig  `toml:"trace" envPrefix:"TRACE_"`
	Game   GameConfig   `toml:"game" envPrefix:"GAME_"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" env:"LEVEL"`
	// Format is text or json.
	Format string `toml:"format" env:"FORMAT"`
	// File receives log output instead of stderr when set.
	File string `toml:"file" env:"FILE"`
}

// EventsConfig configures the registry.
type EventsConfig struct {
	// Manifest is the declared event list. Empty disables the check.
	Manifest string `toml:"manifest" env:"MANIFEST"`
	// StrictParams makes game systems fail on missing payload types instead
	// of using zero values.
	StrictParams bool `toml:"strict_params" env:"STRICT_PARAMS"`
	// WarnUndeclared logs registry IDs the manifest does not declare.
	WarnUndeclared bool `toml:"warn_undeclared" env:"WARN_UNDECLARED"`
	// CallbackBudget is how long one subscriber may run before it is
	// logged as slow. Zero disables the check.
	CallbackBudget Duration `toml:"callback_budget" env:"CALLBACK_BUDGET"`
}

// ScriptConfig configures the Lua host.
type ScriptConfig struct {
	Paths   []string `toml:"paths" env:"PATHS" envSeparator:","`
	Timeout Duration `toml:"timeout" env:"TIMEOUT"`
}

// TraceConfig configures the recorder.
type TraceConfig struct {
	// Path is the JSON lines output. Empty disables tracing.
	Path string `toml:"path" env:"PATH"`
	// Events limits recording to these IDs. Empty records every manifest
	// event, or every registered event without a manifest.
	Events []string `toml:"events" env:"EVENTS" envSeparator:","`
}

// GameConfig configures the demo.
type GameConfig struct {
	TickRate    int `toml:"tick_rate" env:"TICK_RATE"`
	ArenaWidth  int `toml:"arena_width" env:"ARENA_WIDTH"`
	ArenaHeight int `toml:"arena_height" env:"ARENA_HEIGHT"`
}

// Duration is a time.Duration that decodes from strings like "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Events: EventsConfig{
			WarnUndeclared: true,
			CallbackBudget: Duration(5 * time.Millisecond),
		},
		Script: ScriptConfig{
			Timeout: Duration(2 * time.Second),
		},
		Game: GameConfig{
			TickRate:    20,
			ArenaWidth:  60,
			ArenaHeight: 20,
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ reads the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, field string, value any, reason string) {
		if !ok {
			errs = append(errs, &FieldError{Field: field, Value: value, Reason: reason})
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		check(false, "log.level", c.Log.Level, "want debug, info, warn or error")
	}
	check(c.Log.Format == "text" || c.Log.Format == "json", "log.format", c.Log.Format, "want text or json")
	check(c.Events.CallbackBudget >= 0, "events.callback_budget", c.Events.CallbackBudget.Std(), "must not be negative")
	check(c.Script.Timeout >= 0, "script.timeout", c.Script.Timeout.Std(), "must not be negative")
	check(c.Game.TickRate >= 1 && c.Game.TickRate <= 1000, "game.tick_rate", c.Game.TickRate, "want 1 to 1000")
	check(c.Game.ArenaWidth >= 10, "game.arena_width", c.Game.ArenaWidth, "want at least 10")
	check(c.Game.ArenaHeight >= 5, "game.arena_height", c.Game.ArenaHeight, "want at least 5")

	return errors.Join(errs...)
}

// TickInterval returns the duration of one game tick.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Game.TickRate)
}
