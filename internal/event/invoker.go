package event

// Invoker is a producer-side helper that owns one registered event and a
// reusable Params container.
//
// Each firing starts from an empty container; values are keyed by their
// dynamic type and a later value of the same type replaces an earlier one.
// The container is reused across firings, so callbacks must not retain it.
//
// An Invoker is meant to be used by a single producer goroutine.
type Invoker struct {
	id     ID
	event  *Event
	params *Params
}

// NewInvoker registers id with r and returns a helper that fires it.
func NewInvoker(r *Registry, id ID) (*Invoker, error) {
	ev, err := r.Register(id)
	if err != nil {
		return nil, err
	}
	return InvokerFor(ev), nil
}

// InvokerFor wraps an event the caller already registered.
func InvokerFor(ev *Event) *Invoker {
	return &Invoker{
		id:     ev.ID(),
		event:  ev,
		params: NewParams(),
	}
}

// ID returns the event identifier.
func (i *Invoker) ID() ID {
	return i.id
}

// Event returns the underlying event.
func (i *Invoker) Event() *Event {
	return i.event
}

// Params returns the reusable container.
func (i *Invoker) Params() *Params {
	return i.params
}

// Invoke fires the event with values as its payload.
func (i *Invoker) Invoke(values ...any) error {
	i.params.Reset()
	for _, v := range values {
		i.params.Set(v)
	}
	return i.Fire()
}

// With stages v for the next Fire.
func (i *Invoker) With(v any) *Invoker {
	i.params.Set(v)
	return i
}

// WithValue stages v keyed by its static type T, which lets interface
// types such as error be used as keys.
func WithValue[T any](i *Invoker, v T) *Invoker {
	AddOrReplace(i.params, v)
	return i
}

// Fire invokes the event with the staged values and clears them.
func (i *Invoker) Fire() error {
	err := i.event.Invoke(i.params)
	i.params.Reset()
	return err
}
