package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/gamebus/internal/event"
)

// Entry is one decoded trace line.
type Entry struct {
	Seq    uint64
	Event  event.ID
	Time   time.Time
	Params gjson.Result
}

// ParseLine decodes a single trace line.
func ParseLine(line []byte) (Entry, error) {
	if !gjson.ValidBytes(line) {
		return Entry{}, ErrMalformedLine
	}
	res := gjson.ParseBytes(line)

	name := res.Get("event")
	if !name.Exists() || name.String() == "" {
		return Entry{}, fmt.Errorf("%w: missing event", ErrMalformedLine)
	}

	e := Entry{
		Seq:    res.Get("seq").Uint(),
		Event:  event.ID(name.String()),
		Params: res.Get("params"),
	}
	if ts := res.Get("time"); ts.Exists() {
		t, err := time.Parse(time.RFC3339Nano, ts.String())
		if err != nil {
			return Entry{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		e.Time = t
	}
	return e, nil
}

// Summary reports what a replay did.
type Summary struct {
	Lines        int
	Fired        int
	Skipped      int
	Filtered     int
	Failed       int
	UnknownTypes map[string]int
}

// Replayer re-fires recorded events on a registry.
type Replayer struct {
	registry *event.Registry
	decoders map[string]func(json.RawMessage) (any, error)
	only     map[event.ID]bool
	logger   *slog.Logger
}

// NewReplayer creates a replayer for reg. The types string, int, float64
// and bool are decodable out of the box.
func NewReplayer(reg *event.Registry, logger *slog.Logger) *Replayer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rp := &Replayer{
		registry: reg,
		decoders: make(map[string]func(json.RawMessage) (any, error)),
		logger:   logger.With("component", "trace.replay"),
	}
	RegisterType[string](rp)
	RegisterType[int](rp)
	RegisterType[float64](rp)
	RegisterType[bool](rp)
	return rp
}

// RegisterType makes params of type T decodable during replay.
func RegisterType[T any](rp *Replayer) {
	name := reflect.TypeFor[T]().String()
	rp.decoders[name] = func(raw json.RawMessage) (any, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Only restricts replay to ids. Recorded firings of other events are
// counted as filtered; use it to replay inputs and let the systems
// reproduce the events that follow from them.
func (rp *Replayer) Only(ids ...event.ID) *Replayer {
	rp.only = make(map[event.ID]bool, len(ids))
	for _, id := range ids {
		rp.only[id] = true
	}
	return rp
}

// Replay reads trace lines from r and fires each recorded event.
// Events that are not registered and real are skipped. Subscriber failures
// are counted and do not stop the replay; malformed lines do.
func (rp *Replayer) Replay(r io.Reader) (Summary, error) {
	sum := Summary{UnknownTypes: make(map[string]int)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		sum.Lines++

		e, err := ParseLine(line)
		if err != nil {
			return sum, fmt.Errorf("line %d: %w", sum.Lines, err)
		}

		if rp.only != nil && !rp.only[e.Event] {
			sum.Filtered++
			continue
		}

		ev, ok := rp.registry.Lookup(e.Event)
		if !ok || !ev.IsReal() {
			sum.Skipped++
			rp.logger.Warn("skipping unregistered event", "event", e.Event, "seq", e.Seq)
			continue
		}

		params, err := rp.decode(e.Params, sum.UnknownTypes)
		if err != nil {
			return sum, fmt.Errorf("line %d: %w", sum.Lines, err)
		}

		if err := ev.Invoke(params); err != nil {
			sum.Failed++
			rp.logger.Warn("replayed event had failing subscribers", "event", e.Event, "seq", e.Seq, "error", err)
		}
		sum.Fired++
	}
	if err := sc.Err(); err != nil {
		return sum, fmt.Errorf("reading trace: %w", err)
	}
	return sum, nil
}

func (rp *Replayer) decode(params gjson.Result, unknown map[string]int) (*event.Params, error) {
	p := event.NewParams()
	var err error
	params.ForEach(func(key, value gjson.Result) bool {
		dec, ok := rp.decoders[key.String()]
		if !ok {
			unknown[key.String()]++
			return true
		}
		var v any
		if v, err = dec(json.RawMessage(value.Raw)); err != nil {
			err = fmt.Errorf("decoding %s: %w", key.String(), err)
			return false
		}
		err = p.Put(v)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
