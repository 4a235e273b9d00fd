package app

import "errors"

// Application errors.
var (
	// ErrClosed indicates the application was already shut down.
	ErrClosed = errors.New("application closed")

	// ErrNoScreen indicates Run was called without a screen.
	ErrNoScreen = errors.New("no screen")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}
