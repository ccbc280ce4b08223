package packet

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below wrap one of these so callers can
// match with errors.Is.
var (
	// Deserialization errors
	ErrTruncated           = errors.New("pktchain: input too short")
	ErrOutOfBounds         = errors.New("pktchain: window outside buffer")
	ErrInvalidField        = errors.New("pktchain: invalid field value")
	ErrUnknownDiscriminant = errors.New("pktchain: unknown discriminant")
	ErrInvalidVersion      = errors.New("pktchain: invalid version")

	// Value type errors
	ErrInvalidArgument = errors.New("pktchain: invalid argument")

	// Clone errors
	ErrCloneUnsupported = errors.New("pktchain: layer type cannot be cloned")

	// Serialization errors
	ErrInvalidHeader = errors.New("pktchain: header cannot be serialized")
)

// DeserializationError reports a failure to turn a byte window into a
// packet: the window is too short, or a field holds a value outside its
// domain.
type DeserializationError struct {
	Layer  string // layer being decoded, e.g. "IPv4"
	Offset int    // offset of the window inside the buffer
	Detail string
	Err    error
}

func (e *DeserializationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("deserialize %s at offset %d: %v", e.Layer, e.Offset, e.Err)
	}
	return fmt.Sprintf("deserialize %s at offset %d: %v: %s", e.Layer, e.Offset, e.Err, e.Detail)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// ArgumentError is returned by value type constructors given a raw value
// outside the declared domain.
type ArgumentError struct {
	Type  string
	Value any
	Limit string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%v: %s %v out of range %s", ErrInvalidArgument, e.Type, e.Value, e.Limit)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// CloneError reports that a packet could not be cloned.
type CloneError struct {
	Layer string
	Err   error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("clone %s: %v", e.Layer, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

func truncated(layer string, offset, need, have int) error {
	return &DeserializationError{
		Layer:  layer,
		Offset: offset,
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have),
		Err:    ErrTruncated,
	}
}

// Invalid builds a DeserializationError for a field holding an illegal
// value.
func Invalid(layer string, offset int, format string, args ...any) error {
	return &DeserializationError{
		Layer:  layer,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
		Err:    ErrInvalidField,
	}
}
