// Package trace records event firings as JSON lines and replays them.
//
// Each line has the shape
//
//	{"seq":1,"event":"Player.Move","time":"2024-01-02T15:04:05Z","params":{"game.Move":{"DX":1,"DY":0}}}
//
// Params are keyed by Go type name, matching the keys Lua subscribers see.
package trace

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/sjson"

	"github.com/dshills/gamebus/internal/event"
)

// Recorder writes one JSON line per firing of the events it is attached to.
type Recorder struct {
	mu     sync.Mutex
	w      io.Writer
	seq    uint64
	subs   []*event.Subscription
	clock  func() time.Time
	logger *slog.Logger
	err    error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock replaces time.Now for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		r.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w io.Writer, opts ...Option) *Recorder {
	r := &Recorder{
		w:      w,
		clock:  time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "trace")
	return r
}

// Attach subscribes the recorder to each id. Events that do not exist yet
// are recorded once their producer registers them.
func (r *Recorder) Attach(reg *event.Registry, ids ...event.ID) {
	for _, id := range ids {
		sub, _ := reg.Subscribe(id, r.callback(id))
		if sub == nil {
			continue
		}
		r.mu.Lock()
		r.subs = append(r.subs, sub)
		r.mu.Unlock()
	}
}

// Record writes one line for a firing of id carrying p.
func (r *Recorder) Record(id event.ID, p *event.Params) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	line, err := encode(r.seq, id, r.clock(), p)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	if _, err := r.w.Write(line); err != nil {
		if r.err == nil {
			r.logger.Error("trace write failed", "error", err)
		}
		r.err = err
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// Count returns the number of lines recorded.
func (r *Recorder) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Err returns the last write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close detaches the recorder from every event. It does not close the writer.
func (r *Recorder) Close() error {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Release()
	}
	return nil
}

func (r *Recorder) callback(id event.ID) event.Callback {
	return func(p *event.Params) error {
		return r.Record(id, p)
	}
}

func encode(seq uint64, id event.ID, at time.Time, p *event.Params) ([]byte, error) {
	line := []byte(`{}`)
	var err error

	if line, err = sjson.SetBytes(line, "seq", seq); err != nil {
		return nil, err
	}
	if line, err = sjson.SetBytes(line, "event", string(id)); err != nil {
		return nil, err
	}
	if line, err = sjson.SetBytes(line, "time", at.UTC().Format(time.RFC3339Nano)); err != nil {
		return nil, err
	}
	if line, err = sjson.SetRawBytes(line, "params", []byte(`{}`)); err != nil {
		return nil, err
	}

	p.Each(func(t reflect.Type, v any) {
		if err != nil {
			return
		}
		path := "params." + escapeKey(t.String())
		if e, ok := v.(error); ok {
			v = e.Error()
		}
		var next []byte
		if next, err = sjson.SetBytes(line, path, v); err != nil {
			// Values JSON cannot represent are kept as their printed form.
			next, err = sjson.SetBytes(line, path, fmt.Sprint(v))
		}
		if err == nil {
			line = next
		}
	})
	if err != nil {
		return nil, fmt.Errorf("encoding trace line: %w", err)
	}
	return line, nil
}

var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`:`, `\:`,
)

// escapeKey escapes sjson/gjson path syntax in a type name such as "game.Move"
// or "map[string]int".
func escapeKey(key string) string {
	return keyEscaper.Replace(key)
}
