package codegen

import (
	"bytes"
	"os"
	"testing"

	"github.com/dshills/gamebus/internal/manifest"
)

// The demo's checked-in constants must match what the generator produces
// from the checked-in manifest.
func TestGenerate_DemoEventsUpToDate(t *testing.T) {
	m, err := manifest.Load("../../assets/events.toml")
	if err != nil {
		t.Fatalf("loading manifest: %v", err)
	}

	want, err := Generate(m, Options{Source: "events.toml"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	got, err := os.ReadFile("../game/events/events_gen.go")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("events_gen.go is stale; run go generate ./internal/game/events\n--- generated ---\n%s", want)
	}
}
