package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "warn", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "event", "Player.Move")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	for _, want := range []string{"msg=shown", "app=gamebus", "event=Player.Move"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "debug", Format: "json", Output: &buf})

	logger.Debug("promoted", "event", "Combat.Hit")

	line := buf.String()
	if !gjson.Valid(line) {
		t.Fatalf("expected JSON output, got %q", line)
	}
	if got := gjson.Get(line, "app").String(); got != "gamebus" {
		t.Errorf("app = %q", got)
	}
	if got := gjson.Get(line, "event").String(); got != "Combat.Hit" {
		t.Errorf("event = %q", got)
	}
	if got := gjson.Get(line, "level").String(); got != "DEBUG" {
		t.Errorf("level = %q", got)
	}
}
