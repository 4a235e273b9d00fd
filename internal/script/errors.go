package script

import "errors"

// Errors for script host operations.
var (
	// ErrHostClosed is returned when operating on a closed host.
	ErrHostClosed = errors.New("script host is closed")

	// ErrUnknownType is returned when a script names a payload type the host
	// has not registered.
	ErrUnknownType = errors.New("unknown payload type")

	// ErrConversion is returned when a Lua value cannot be converted to the
	// requested Go type.
	ErrConversion = errors.New("cannot convert lua value")
)
