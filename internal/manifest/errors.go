package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for manifest loading and validation.
var (
	// ErrUnknownFormat is returned when a manifest path has an unsupported extension.
	ErrUnknownFormat = errors.New("unknown manifest format")

	// ErrEmptyName is returned when an entry has no name.
	ErrEmptyName = errors.New("event name is empty")

	// ErrInvalidName is returned when a name contains characters that cannot form an identifier.
	ErrInvalidName = errors.New("invalid event name")

	// ErrDuplicateName is returned when two entries share a name.
	ErrDuplicateName = errors.New("duplicate event name")
)

// ParseError reports a manifest that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse manifest %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError collects every problem found in a manifest.
type ValidationError struct {
	Problems []error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return "invalid manifest: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	return e.Problems
}
