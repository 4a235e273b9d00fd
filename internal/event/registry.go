package event

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/gamebus/internal/event/dispatch"
)

// Registry owns the ID to event mapping and the registration protocol.
//
// Each ID moves through Unregistered → Pending → Real. A subscription that
// arrives before the producer creates a pending event; when the producer
// calls CreateEvent the pending subscriptions are promoted onto the real
// event in their original order. Every ID is real at most once.
//
// All mutators are serialized under one mutex. Invocation never takes the
// registry lock; producers call Invoke on the *Event they registered.
type Registry struct {
	mu     sync.Mutex
	events map[ID]*Event

	config registryConfig
	logger *slog.Logger
	runner *dispatch.Runner

	// Stats
	promotions atomic.Uint64
	rejected   atomic.Uint64
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	config := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&config)
	}
	r := &Registry{
		events: make(map[ID]*Event),
		config: config,
		logger: config.logger.With("component", "event.registry"),
	}
	r.runner = dispatch.NewRunner(
		dispatch.WithPanicHandler(func(label string, v any, _ []byte) {
			r.logger.Error("callback panicked", "event", label, "panic", v)
		}),
		dispatch.WithBudget(config.budget, func(label string, took time.Duration) {
			r.logger.Warn("slow subscriber", "event", label, "took", took, "budget", config.budget)
		}),
	)
	return r
}

// CreateEvent registers ev as the real event for id.
//
// If id has a pending entry its subscriptions are promoted onto ev. If id
// already has a real event, ErrDuplicateEventRegistration is returned and
// the existing event stays registered.
func (r *Registry) CreateEvent(id ID, ev *Event) error {
	switch {
	case !id.Valid():
		return r.reject(id, "create", ErrInvalidID)
	case ev == nil:
		return r.reject(id, "create", ErrNilEvent)
	case ev.ID() != id:
		return r.reject(id, "create", fmt.Errorf("%w: event carries %q", ErrIDMismatch, ev.ID()))
	case !ev.IsReal():
		return r.reject(id, "create", ErrNotReal)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.events[id]
	if !ok {
		r.events[id] = ev
		r.logger.Debug("event created", "event", id)
		return nil
	}
	if existing.IsReal() {
		return r.reject(id, "create", ErrDuplicateEventRegistration)
	}

	moved := existing.promoteTo(ev)
	r.events[id] = ev
	r.promotions.Add(1)
	r.logger.Debug("pending event promoted", "event", id, "subscriptions", moved)
	return nil
}

// Register creates a real event for id with the registry's event options
// and registers it.
func (r *Registry) Register(id ID) (*Event, error) {
	ev := NewEvent(id, r.eventOptions()...)
	if err := r.CreateEvent(id, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// MustRegister is like Register but panics on error.
// It is meant for package-level producers whose IDs are known to be unique.
func (r *Registry) MustRegister(id ID) *Event {
	ev, err := r.Register(id)
	if err != nil {
		panic(err)
	}
	return ev
}

func (r *Registry) eventOptions() []EventOption {
	opts := make([]EventOption, 0, len(r.config.eventOptions)+1)
	opts = append(opts, WithRunner(r.runner))
	return append(opts, r.config.eventOptions...)
}

// Subscribe attaches cb to the event for id.
//
// The returned bool is true only if the event is already real. For an
// unregistered or pending ID the subscription is buffered and takes effect
// when the producer registers; the false result is informational, not a
// failure. An invalid ID or nil callback yields (nil, false).
func (r *Registry) Subscribe(id ID, cb Callback) (*Subscription, bool) {
	if !id.Valid() {
		_ = r.reject(id, "subscribe", ErrInvalidID)
		return nil, false
	}
	if cb == nil {
		_ = r.reject(id, "subscribe", ErrNilCallback)
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[id]
	if !ok {
		ev = newPending(id)
		r.events[id] = ev
	}

	sub := ev.Subscribe(cb)
	if !ev.IsReal() {
		r.logger.Debug("subscribed before event creation", "event", id, "subscription", sub.ID())
		return sub, false
	}
	return sub, true
}

// Unsubscribe removes sub from the event for id.
//
// Unsubscribing from an ID with no entry at all fails with ErrUnknownEvent.
// For a real or pending entry a subscription it does not hold is ignored.
func (r *Registry) Unsubscribe(id ID, sub *Subscription) error {
	r.mu.Lock()
	ev, ok := r.events[id]
	r.mu.Unlock()

	if !ok {
		return r.reject(id, "unsubscribe", ErrUnknownEvent)
	}
	ev.Unsubscribe(sub)
	return nil
}

// Lookup returns the entry for id, real or pending.
func (r *Registry) Lookup(id ID) (*Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[id]
	return ev, ok
}

// State returns the registration state of id.
func (r *Registry) State(id ID) State {
	ev, ok := r.Lookup(id)
	switch {
	case !ok:
		return StateUnregistered
	case ev.IsReal():
		return StateReal
	default:
		return StatePending
	}
}

// IDs returns every ID with an entry, sorted.
func (r *Registry) IDs() []ID {
	return r.collect(func(*Event) bool { return true })
}

// Pending returns the IDs whose producer has not registered yet, sorted.
func (r *Registry) Pending() []ID {
	return r.collect(func(ev *Event) bool { return !ev.IsReal() })
}

func (r *Registry) collect(keep func(*Event) bool) []ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]ID, 0, len(r.events))
	for id, ev := range r.events {
		if keep(ev) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Stats returns current registry statistics.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stats{
		Promotions:    r.promotions.Load(),
		Rejected:      r.rejected.Load(),
		SlowCallbacks: r.runner.Stats().Slow,
	}
	for _, ev := range r.events {
		if ev.IsReal() {
			s.Events++
		} else {
			s.Pending++
		}
		s.Subscriptions += ev.Len()
		s.Invocations += ev.invocations.Load()
		s.CallbacksExecuted += ev.executed.Load()
		s.CallbackErrors += ev.failed.Load()
		s.CallbackPanics += ev.panicked.Load()
	}
	return s
}

// reject records and logs a refused operation and returns it as an error.
func (r *Registry) reject(id ID, op string, err error) error {
	r.rejected.Add(1)
	r.logger.Warn("event registry rejected operation", "op", op, "event", id, "error", err)
	return &RegistrationError{ID: id, Op: op, Err: err}
}
