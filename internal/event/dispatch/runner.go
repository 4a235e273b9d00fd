package dispatch

import (
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Func is one subscriber call already bound to its payload.
type Func func() error

// Result is the outcome of one call.
type Result struct {
	Err        error
	Panicked   bool
	PanicValue any
	Stack      []byte
	Duration   time.Duration
}

// Failed reports whether the call returned an error or panicked.
func (r Result) Failed() bool {
	return r.Panicked || r.Err != nil
}

// PanicHandler observes a recovered panic. Label names the call, usually
// the event ID.
type PanicHandler func(label string, value any, stack []byte)

// SlowHandler observes a call that ran past the runner's budget.
type SlowHandler func(label string, took time.Duration)

// Runner calls subscribers on the caller's goroutine. It recovers panics,
// times every call and keeps counters. A Runner may be shared by many
// events and used concurrently.
type Runner struct {
	onPanic PanicHandler
	onSlow  SlowHandler
	budget  time.Duration

	calls  atomic.Uint64
	errs   atomic.Uint64
	panics atomic.Uint64
	slow   atomic.Uint64
	busyNs atomic.Int64
}

// Option configures a Runner.
type Option func(*Runner)

// WithPanicHandler sets the handler called after a recovered panic.
func WithPanicHandler(h PanicHandler) Option {
	return func(r *Runner) {
		r.onPanic = h
	}
}

// WithBudget reports calls longer than d to h. Zero disables the check.
func WithBudget(d time.Duration, h SlowHandler) Option {
	return func(r *Runner) {
		r.budget = d
		r.onSlow = h
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run calls fn and reports what happened. It never panics.
func (r *Runner) Run(label string, fn Func) (res Result) {
	start := time.Now()
	r.calls.Add(1)

	defer func() {
		res.Duration = time.Since(start)
		r.busyNs.Add(int64(res.Duration))

		if v := recover(); v != nil {
			res.Panicked = true
			res.PanicValue = v
			res.Stack = debug.Stack()
			r.panics.Add(1)
			r.observe(func() {
				if r.onPanic != nil {
					r.onPanic(label, v, res.Stack)
				}
			})
		} else if res.Err != nil {
			r.errs.Add(1)
		}

		if r.budget > 0 && res.Duration > r.budget {
			r.slow.Add(1)
			r.observe(func() {
				if r.onSlow != nil {
					r.onSlow(label, res.Duration)
				}
			})
		}
	}()

	res.Err = fn()
	return res
}

// observe runs a handler; a panicking handler is swallowed.
func (r *Runner) observe(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

// Stats is a snapshot of a runner's counters. Fields are loaded one at a
// time, so a snapshot taken during a call may be slightly inconsistent.
type Stats struct {
	Calls  uint64
	Errors uint64
	Panics uint64
	Slow   uint64
	Busy   time.Duration
}

// Stats returns the current counters.
func (r *Runner) Stats() Stats {
	return Stats{
		Calls:  r.calls.Load(),
		Errors: r.errs.Load(),
		Panics: r.panics.Load(),
		Slow:   r.slow.Load(),
		Busy:   time.Duration(r.busyNs.Load()),
	}
}
