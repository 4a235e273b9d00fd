package trace

import "errors"

// ErrMalformedLine is returned for a trace line that is not a JSON object
// naming an event.
var ErrMalformedLine = errors.New("malformed trace line")
