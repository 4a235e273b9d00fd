package codegen

import "errors"

var (
	// ErrIdentifierCollision indicates two event names map to the same Go identifier.
	ErrIdentifierCollision = errors.New("identifier collision")

	// ErrInvalidIdentifier indicates an event name that yields no usable Go identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidPackage indicates the target package name is not a Go identifier.
	ErrInvalidPackage = errors.New("invalid package name")
)
