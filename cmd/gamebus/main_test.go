package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gamebus/internal/app"
	"github.com/dshills/gamebus/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp()
	a.Writer = &out
	a.ErrWriter = &errOut
	err := a.Run(append([]string{"gamebus"}, args...))
	return out.String(), err
}

// recordSession plays keys with tracing on and returns the trace path and
// the final position as printed by replay.
func recordSession(t *testing.T, keys string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	cfg := config.Default()
	cfg.Trace.Path = path

	a, err := app.New(cfg, app.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range keys {
		_ = a.Game().HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	pos := a.Game().Player.Position()
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	return path, fmt.Sprintf("pos %d,%d", pos.X, pos.Y)
}

func TestReplay(t *testing.T) {
	path, want := recordSession(t, "ddwwa")

	out, err := run(t, "replay", path)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	for _, s := range []string{"fired 5", want, "goblin at"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in:\n%s", s, out)
		}
	}
}

func TestReplay_Args(t *testing.T) {
	if _, err := run(t, "replay"); err == nil {
		t.Error("expected an error without a trace file")
	}
	if _, err := run(t, "replay", filepath.Join(t.TempDir(), "missing.jsonl")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestReplay_DoesNotOverwriteTrace(t *testing.T) {
	path, _ := recordSession(t, "d")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(t.TempDir(), "gamebus.toml")
	cfgText := fmt.Sprintf("[trace]\npath = %q\n", path)
	if err := os.WriteFile(cfgPath, []byte(cfgText), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "--config", cfgPath, "replay", path); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("replay must leave the trace untouched")
	}
}

func TestEvents(t *testing.T) {
	out, err := run(t, "events")
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}
	for _, s := range []string{"Player.Move", "Combat.Hit", "real", "9 real, 0 pending"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in:\n%s", s, out)
		}
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "gamebus.toml")
	if err := os.WriteFile(cfgPath, []byte("[game]\ntick_rate = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "--config", cfgPath, "events"); err == nil {
		t.Error("expected validation to fail")
	}
}
