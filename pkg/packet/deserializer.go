package packet

import "fmt"

// Deserializer turns the window [offset, offset+length) of data into a
// populated packet. Implementations are stateless: they never mutate data
// and never read outside the window, so one Deserializer may be called
// concurrently on independent buffers.
type Deserializer func(data []byte, offset, length int) (Packet, error)

// Deserialize calls d. It lets a Deserializer be passed where a method
// value is expected.
func (d Deserializer) Deserialize(data []byte, offset, length int) (Packet, error) {
	return d(data, offset, length)
}

// CheckInput validates a deserialization window before any field is read.
// The window must lie inside data and hold at least minHeader bytes.
func CheckInput(layer string, data []byte, offset, length, minHeader int) error {
	if offset < 0 || length < 0 || offset > len(data) || length > len(data)-offset {
		return &DeserializationError{
			Layer:  layer,
			Offset: offset,
			Detail: fmt.Sprintf("window [%d, %d+%d) over %d bytes", offset, offset, length, len(data)),
			Err:    ErrOutOfBounds,
		}
	}
	return CheckHeaderLength(layer, offset, length, minHeader)
}

// CheckHeaderLength fails with ErrTruncated when length is below need.
// Leaves with variable headers call it again once the real size is known.
func CheckHeaderLength(layer string, offset, length, need int) error {
	if length < need {
		return truncated(layer, offset, need, length)
	}
	return nil
}
