package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gamebus.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.TickInterval() != 50*time.Millisecond {
		t.Errorf("unexpected tick interval: %v", cfg.TickInterval())
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[events]
manifest = "assets/events.toml"
strict_params = true

[script]
paths = ["a.lua", "b.lua"]
timeout = "250ms"

[game]
tick_rate = 30
`)

	cfg, err := LoadWithEnv(path, map[string]string{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Events.Manifest != "assets/events.toml" || !cfg.Events.StrictParams {
		t.Errorf("unexpected events config: %+v", cfg.Events)
	}
	if !cfg.Events.WarnUndeclared {
		t.Error("unset keys should keep their defaults")
	}
	if !reflect.DeepEqual(cfg.Script.Paths, []string{"a.lua", "b.lua"}) {
		t.Errorf("unexpected script paths: %v", cfg.Script.Paths)
	}
	if cfg.Script.Timeout.Std() != 250*time.Millisecond {
		t.Errorf("unexpected timeout: %v", cfg.Script.Timeout.Std())
	}
	if cfg.Game.TickRate != 30 || cfg.Game.ArenaWidth != 60 {
		t.Errorf("unexpected game config: %+v", cfg.Game)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[log]\nlevel = \"debug\"\n\n[game]\ntick_rate = 30\n")

	cfg, err := LoadWithEnv(path, map[string]string{
		"GAMEBUS_LOG_LEVEL":        "warn",
		"GAMEBUS_SCRIPT_PATHS":     "x.lua,y.lua",
		"GAMEBUS_SCRIPT_TIMEOUT":   "1s",
		"GAMEBUS_TRACE_PATH":       "trace.jsonl",
		"GAMEBUS_GAME_ARENA_WIDTH": "80",
		"LOG_LEVEL":                "error",
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("env should override file, got %q", cfg.Log.Level)
	}
	if cfg.Game.TickRate != 30 {
		t.Errorf("file value should survive, got %d", cfg.Game.TickRate)
	}
	if !reflect.DeepEqual(cfg.Script.Paths, []string{"x.lua", "y.lua"}) {
		t.Errorf("unexpected script paths: %v", cfg.Script.Paths)
	}
	if cfg.Script.Timeout.Std() != time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Script.Timeout.Std())
	}
	if cfg.Trace.Path != "trace.jsonl" || cfg.Game.ArenaWidth != 80 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := LoadWithEnv("", map[string]string{"GAMEBUS_EVENTS_STRICT_PARAMS": "true"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Events.StrictParams {
		t.Error("expected env value without a file")
	}
}

func isParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		environ map[string]string
		check   func(error) bool
	}{
		{
			name:    "syntax",
			content: "[log\n",
			check:   isParseError,
		},
		{
			name:    "unknown key",
			content: "[log]\ncolour = \"red\"\n",
			check:   isParseError,
		},
		{
			name:    "bad duration",
			content: "[script]\ntimeout = \"soon\"\n",
			check:   isParseError,
		},
		{
			name:    "invalid value",
			content: "[log]\nlevel = \"loud\"\n",
			check:   func(err error) bool { return errors.Is(err, ErrValidationFailed) },
		},
		{
			name:    "bad env",
			content: "",
			environ: map[string]string{"GAMEBUS_GAME_TICK_RATE": "fast"},
			check:   func(err error) bool { return err != nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := tt.environ
			if environ == nil {
				environ = map[string]string{}
			}
			_, err := LoadWithEnv(writeConfig(t, tt.content), environ)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "nope.toml"), map[string]string{})
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "xml"
	cfg.Game.TickRate = 0
	cfg.Game.ArenaHeight = 1

	err := cfg.Validate()

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var fe *FieldError
		if errors.As(e, &fe) {
			fields = append(fields, fe.Field)
		}
	}
	want := []string{"log.format", "game.tick_rate", "game.arena_height"}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("fields = %v, want %v", fields, want)
	}
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := LoadWithEnv("../../gamebus.toml", map[string]string{})
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if cfg.Events.Manifest != "assets/events.toml" {
		t.Errorf("manifest = %q", cfg.Events.Manifest)
	}
	if !reflect.DeepEqual(cfg.Script.Paths, []string{"scripts/announcer.lua"}) {
		t.Errorf("script paths = %v", cfg.Script.Paths)
	}
}
