package history

import (
	"errors"
	"fmt"
)

// ErrMissingPayload is wrapped by DecodeError when a required payload is absent.
var ErrMissingPayload = errors.New("payload is missing")

// ErrMissingField is wrapped by DecodeError when a required payload field is empty.
var ErrMissingField = errors.New("required field is empty")

// ErrEventOrder is wrapped by DecodeError when event ids do not strictly increase.
var ErrEventOrder = errors.New("event ids out of order")

// DecodeError reports a payload that could not be decoded into its typed form.
// A DecodeError aborts reconstruction of the whole history.
type DecodeError struct {
	// EventIndex is the position of the offending event in the history.
	EventIndex int

	// EventType is the kind of the offending event.
	EventType EventType

	// Field names the payload field at fault, if any.
	Field string

	Err error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %s at event %d: %s: %v", e.EventType, e.EventIndex, e.Field, e.Err)
	}
	return fmt.Sprintf("decode %s at event %d: %v", e.EventType, e.EventIndex, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is (or wraps) a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
