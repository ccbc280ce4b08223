package packet

import "fmt"

// PeekFunc reads a discriminant from a window without consuming it.
type PeekFunc[K comparable] func(data []byte, offset, length int) (K, error)

// Dispatcher selects a concrete Deserializer from a discriminant found in
// the bytes themselves, e.g. the IP version nibble. The selected
// Deserializer sees the original window, discriminant included.
//
// A Dispatcher is immutable after construction and safe for concurrent use.
type Dispatcher[K comparable] struct {
	name     string
	peek     PeekFunc[K]
	table    map[K]Deserializer
	fallback Deserializer
	unknown  error
}

// DispatchOption configures a Dispatcher.
type DispatchOption[K comparable] func(*Dispatcher[K])

// WithFallback routes unknown discriminants to d instead of failing.
func WithFallback[K comparable](d Deserializer) DispatchOption[K] {
	return func(x *Dispatcher[K]) { x.fallback = d }
}

// WithUnknownError replaces ErrUnknownDiscriminant as the error wrapped
// when no entry matches.
func WithUnknownError[K comparable](err error) DispatchOption[K] {
	return func(x *Dispatcher[K]) { x.unknown = err }
}

// NewDispatcher builds a dispatcher named after the layer it decodes. The
// table is copied.
func NewDispatcher[K comparable](name string, peek PeekFunc[K], table map[K]Deserializer, opts ...DispatchOption[K]) *Dispatcher[K] {
	d := &Dispatcher[K]{
		name:    name,
		peek:    peek,
		table:   make(map[K]Deserializer, len(table)),
		unknown: ErrUnknownDiscriminant,
	}
	for k, v := range table {
		d.table[k] = v
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Lookup returns the Deserializer registered for k, without fallback.
func (d *Dispatcher[K]) Lookup(k K) (Deserializer, bool) {
	fn, ok := d.table[k]
	return fn, ok
}

// Select returns the Deserializer for k, the fallback when k is unknown, or
// an error naming k.
func (d *Dispatcher[K]) Select(k K, offset int) (Deserializer, error) {
	if fn, ok := d.table[k]; ok {
		return fn, nil
	}
	if d.fallback != nil {
		return d.fallback, nil
	}
	return nil, &DeserializationError{
		Layer:  d.name,
		Offset: offset,
		Detail: fmt.Sprintf("%v", k),
		Err:    d.unknown,
	}
}

// Deserialize peeks the discriminant and hands the untouched window to the
// selected Deserializer.
func (d *Dispatcher[K]) Deserialize(data []byte, offset, length int) (Packet, error) {
	k, err := d.peek(data, offset, length)
	if err != nil {
		return nil, err
	}
	fn, err := d.Select(k, offset)
	if err != nil {
		return nil, err
	}
	return fn(data, offset, length)
}

// Deserializer returns d as a plain Deserializer value.
func (d *Dispatcher[K]) Deserializer() Deserializer {
	return d.Deserialize
}

// PeekBits reads width bits starting bitOffset bits into the window, most
// significant bit first. width is at most 32.
func PeekBits(layer string, bitOffset, width uint) PeekFunc[uint32] {
	if width == 0 || width > 32 {
		panic(fmt.Sprintf("packet: PeekBits width %d", width))
	}
	need := int((bitOffset + width + 7) / 8)
	return func(data []byte, offset, length int) (uint32, error) {
		if err := CheckInput(layer, data, offset, length, need); err != nil {
			return 0, err
		}
		var v uint64
		first := offset + int(bitOffset/8)
		for _, c := range data[first : offset+need] {
			v = v<<8 | uint64(c)
		}
		shift := uint(need-int(bitOffset/8))*8 - bitOffset%8 - width
		mask := uint64(1)<<width - 1
		return uint32((v >> shift) & mask), nil
	}
}
