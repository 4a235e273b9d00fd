package event

import (
	"errors"
	"strings"
)

// Sentinel errors for the event bus.
var (
	// ErrDuplicateParameterType is returned when Add is called for a type already present in Params.
	ErrDuplicateParameterType = errors.New("duplicate parameter type")

	// ErrParameterTypeNotFound is returned when Read is called for a type never added to Params.
	ErrParameterTypeNotFound = errors.New("parameter type not found")

	// ErrNilParameter is returned when an untyped nil is added to Params.
	ErrNilParameter = errors.New("parameter value cannot be nil")

	// ErrDuplicateEventRegistration is returned when a real event is registered twice for one ID.
	ErrDuplicateEventRegistration = errors.New("event already registered")

	// ErrUnknownEvent is returned when unsubscribing from an ID that has no entry at all.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrInvokedPlaceholder is returned when Invoke is called on an event that is not real.
	ErrInvokedPlaceholder = errors.New("invoked placeholder event")

	// ErrInvalidID is returned when an ID is empty.
	ErrInvalidID = errors.New("invalid event id")

	// ErrIDMismatch is returned when an event is registered under an ID it does not carry.
	ErrIDMismatch = errors.New("event id does not match registration id")

	// ErrNilEvent is returned when a nil event is registered.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrNilCallback is returned when a nil callback is subscribed.
	ErrNilCallback = errors.New("callback cannot be nil")

	// ErrNotReal is returned when a pending event is passed to CreateEvent.
	ErrNotReal = errors.New("event is not real")
)

// ParamError describes a failed Params operation.
type ParamError struct {
	// Op is the operation that failed ("add" or "read").
	Op string

	// Type is the name of the requested type.
	Type string

	// Present lists the type names held by the container at the time of failure.
	Present []string

	// Err is the underlying sentinel.
	Err error
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	msg := "params " + e.Op + " " + e.Type + ": " + e.Err.Error()
	if e.Err == ErrParameterTypeNotFound {
		msg += " (present: [" + strings.Join(e.Present, ", ") + "])"
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ParamError) Unwrap() error {
	return e.Err
}

// RegistrationError wraps a registry failure with the ID involved.
type RegistrationError struct {
	// ID is the event the operation targeted.
	ID ID

	// Op is the registry operation ("create", "subscribe", "unsubscribe").
	Op string

	// Err is the underlying sentinel.
	Err error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	return "registry " + e.Op + " " + string(e.ID) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// CallbackError wraps an error returned by a subscriber callback.
type CallbackError struct {
	// SubscriptionID is the ID of the subscription whose callback failed.
	SubscriptionID string

	// Event is the event being invoked.
	Event ID

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	return "callback error for subscription " + e.SubscriptionID + " on event " + string(e.Event) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic value raised by a subscriber callback.
type PanicError struct {
	// SubscriptionID is the ID of the subscription whose callback panicked.
	SubscriptionID string

	// Event is the event being invoked.
	Event ID

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// ErrCallbackPanic matches any *PanicError through errors.Is.
var ErrCallbackPanic = errors.New("callback panicked")

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "callback panic for subscription " + e.SubscriptionID + " on event " + string(e.Event)
}

// Is allows errors.Is to match PanicError with ErrCallbackPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrCallbackPanic
}
