// Package manifest loads the declared list of game events.
//
// A manifest is the asset-side source of event identifiers: designers list
// the events a game uses, and both the runtime and the code generator read
// the same file. TOML and YAML are supported:
//
//	package = "events"
//
//	[[events]]
//	name = "Player.Jump"
//	category = "input"
//	description = "Jump button pressed."
//	params = ["game.JumpHeight"]
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/gamebus/internal/event"
)

// Format is a manifest encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Entry declares one event.
type Entry struct {
	// Name is the event identifier string, e.g. "Player.Jump".
	Name string `toml:"name" yaml:"name"`

	// Category groups related events in generated code.
	Category string `toml:"category,omitempty" yaml:"category,omitempty"`

	// Description becomes the doc comment of the generated constant.
	Description string `toml:"description,omitempty" yaml:"description,omitempty"`

	// Params lists the payload types producers attach. Informational only.
	Params []string `toml:"params,omitempty" yaml:"params,omitempty"`
}

// ID returns the event identifier for the entry.
func (e Entry) ID() event.ID {
	return event.ID(e.Name)
}

// Manifest is a validated list of declared events.
type Manifest struct {
	// Package is the Go package name for generated code.
	Package string `toml:"package,omitempty" yaml:"package,omitempty"`

	// Events are the declared events in file order.
	Events []Entry `toml:"events" yaml:"events"`

	index map[string]int
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := parse(path, data, format)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Parse decodes and validates manifest data.
func Parse(data []byte, format Format) (*Manifest, error) {
	return parse("<data>", data, format)
}

func parse(source string, data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, &ParseError{Path: source, Err: err}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, &ParseError{Path: source, Err: err}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names and rebuilds the lookup index.
func (m *Manifest) Validate() error {
	var problems []error
	m.index = make(map[string]int, len(m.Events))

	for i := range m.Events {
		e := &m.Events[i]
		e.Name = strings.TrimSpace(e.Name)

		switch {
		case e.Name == "":
			problems = append(problems, fmt.Errorf("entry %d: %w", i, ErrEmptyName))
			continue
		case !validName(e.Name):
			problems = append(problems, fmt.Errorf("entry %d %q: %w", i, e.Name, ErrInvalidName))
			continue
		}

		if prev, dup := m.index[e.Name]; dup {
			problems = append(problems, fmt.Errorf("entry %d %q (first at %d): %w", i, e.Name, prev, ErrDuplicateName))
			continue
		}
		m.index[e.Name] = i
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// validName accepts names that start with a letter and contain letters,
// digits, spaces, dots, dashes and underscores.
func validName(name string) bool {
	for i, r := range name {
		switch {
		case unicode.IsLetter(r):
		case i == 0:
			return false
		case unicode.IsDigit(r), r == ' ', r == '.', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Lookup returns the entry named name.
func (m *Manifest) Lookup(name string) (Entry, bool) {
	i, ok := m.index[name]
	if !ok {
		return Entry{}, false
	}
	return m.Events[i], true
}

// IDs returns the identifiers of every entry in file order.
func (m *Manifest) IDs() []event.ID {
	ids := make([]event.ID, len(m.Events))
	for i, e := range m.Events {
		ids[i] = e.ID()
	}
	return ids
}

// Categories returns the distinct categories in first-seen order.
func (m *Manifest) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, e := range m.Events {
		if !seen[e.Category] {
			seen[e.Category] = true
			cats = append(cats, e.Category)
		}
	}
	return cats
}

// Diff compares registered IDs against the manifest. Undeclared lists IDs
// the manifest does not name; missing lists declared entries absent from ids.
func (m *Manifest) Diff(ids []event.ID) (undeclared, missing []event.ID) {
	present := make(map[event.ID]bool, len(ids))
	for _, id := range ids {
		present[id] = true
		if _, ok := m.index[string(id)]; !ok {
			undeclared = append(undeclared, id)
		}
	}
	for _, e := range m.Events {
		if !present[e.ID()] {
			missing = append(missing, e.ID())
		}
	}
	return undeclared, missing
}
