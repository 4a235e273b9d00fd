package event

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dshills/gamebus/internal/event/dispatch"
)

// Event is the dispatchable unit for one ID: an ordered list of
// subscriptions that Invoke calls in order.
//
// A real event is created by a producer with NewEvent. A pending event is
// created only by the Registry when a subscription arrives before the
// producer; it buffers subscriptions and refuses to be invoked.
type Event struct {
	id   ID
	real bool

	mu   sync.Mutex
	subs []*Subscription

	// forward is set on a pending event once it has been promoted.
	forward *Event

	runner *dispatch.Runner

	// Stats
	invocations atomic.Uint64
	executed    atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
}

// NewEvent creates a real event for id.
func NewEvent(id ID, opts ...EventOption) *Event {
	e := newEvent(id, true)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func newPending(id ID) *Event {
	return newEvent(id, false)
}

func newEvent(id ID, real bool) *Event {
	return &Event{
		id:     id,
		real:   real,
		runner: dispatch.NewRunner(),
	}
}

// ID returns the event identifier.
func (e *Event) ID() ID {
	return e.id
}

// IsReal reports whether the event was created by a producer.
func (e *Event) IsReal() bool {
	return e.real
}

// Len returns the number of subscriptions currently held.
func (e *Event) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Subscribe appends cb to the subscriber list and returns its handle.
// Subscribing the same callback twice makes it run twice.
// A nil callback is ignored and yields a nil handle.
func (e *Event) Subscribe(cb Callback) *Subscription {
	if cb == nil {
		return nil
	}
	return e.attach(newSubscription(e.id, cb))
}

func (e *Event) attach(sub *Subscription) *Subscription {
	e.mu.Lock()
	if fwd := e.forward; fwd != nil {
		e.mu.Unlock()
		return fwd.attach(sub)
	}
	sub.owner.Store(e)
	e.subs = append(e.subs, sub)
	e.mu.Unlock()
	return sub
}

// Unsubscribe removes sub if this event holds it.
// Removing a subscription the event does not hold is a no-op returning false.
func (e *Event) Unsubscribe(sub *Subscription) bool {
	if sub == nil || sub.owner.Load() != e {
		return false
	}
	return sub.Release()
}

// remove deletes sub from the list, keeping the order of the rest.
func (e *Event) remove(sub *Subscription) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.subs {
		if s == sub {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Invoke calls every subscribed callback in subscription order.
//
// The list is snapshotted first, so callbacks may subscribe or unsubscribe
// this event while it runs; subscriptions released mid-invoke are skipped.
// Each callback is isolated: an error or panic is recorded and the next
// callback still runs. The returned error joins every failure.
//
// Invoking a pending event returns ErrInvokedPlaceholder and calls nothing.
func (e *Event) Invoke(p *Params) error {
	e.mu.Lock()
	if !e.real {
		e.mu.Unlock()
		return fmt.Errorf("event %s: %w", e.id, ErrInvokedPlaceholder)
	}
	snapshot := make([]*Subscription, len(e.subs))
	copy(snapshot, e.subs)
	e.mu.Unlock()

	e.invocations.Add(1)

	var errs []error
	for _, sub := range snapshot {
		if !sub.Active() {
			continue
		}
		cb := sub.callback
		result := e.runner.Run(string(e.id), func() error { return cb(p) })
		e.executed.Add(1)

		switch {
		case result.Panicked:
			e.panicked.Add(1)
			errs = append(errs, &PanicError{
				SubscriptionID: sub.id,
				Event:          e.id,
				Value:          result.PanicValue,
				Stack:          string(result.Stack),
			})
		case result.Err != nil:
			e.failed.Add(1)
			errs = append(errs, &CallbackError{
				SubscriptionID: sub.id,
				Event:          e.id,
				Err:            result.Err,
			})
		}
	}

	return errors.Join(errs...)
}

// promoteTo moves every buffered subscription onto target in original
// order. Afterwards e forwards new subscriptions to target.
func (e *Event) promoteTo(target *Event) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	target.mu.Lock()
	defer target.mu.Unlock()

	moved := 0
	for _, sub := range e.subs {
		if !sub.Active() {
			continue
		}
		sub.owner.Store(target)
		target.subs = append(target.subs, sub)
		moved++
	}
	e.subs = nil
	e.forward = target
	return moved
}
