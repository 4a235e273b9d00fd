package event

// Callback receives the payload of one firing.
// The Params must not be retained after the callback returns; producers
// may reuse the container for the next firing.
type Callback func(p *Params) error

// Action adapts a callback that cannot fail.
func Action(fn func(p *Params)) Callback {
	return func(p *Params) error {
		fn(p)
		return nil
	}
}

// State is the registration state of one ID.
type State int

const (
	// StateUnregistered means the registry has no entry for the ID.
	StateUnregistered State = iota

	// StatePending means subscriptions arrived before the producer registered.
	StatePending

	// StateReal means the producer has registered the event. It is terminal.
	StateReal
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StatePending:
		return "pending"
	case StateReal:
		return "real"
	default:
		return "unknown"
	}
}

// Stats contains registry statistics.
type Stats struct {
	// Events is the number of real events.
	Events int

	// Pending is the number of IDs still waiting for a producer.
	Pending int

	// Subscriptions is the number of live subscriptions across all entries.
	Subscriptions int

	// Promotions is the number of pending events promoted to real ones.
	Promotions uint64

	// Rejected is the number of operations refused by the registry.
	Rejected uint64

	// SlowCallbacks counts calls over the registry's callback budget.
	SlowCallbacks uint64

	// Invocations is the total number of Invoke calls on real events.
	Invocations uint64

	// CallbacksExecuted is the total number of callbacks run.
	CallbacksExecuted uint64

	// CallbackErrors is the number of callbacks that returned errors.
	CallbackErrors uint64

	// CallbackPanics is the number of callbacks that panicked.
	CallbackPanics uint64
}
