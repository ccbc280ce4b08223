package packet

import (
	"sync"

	"github.com/google/gopacket"
)

type registration struct {
	name  string
	empty func() Packet
}

var (
	registryMu sync.RWMutex
	registry   = make(map[gopacket.LayerType]registration)
)

// RegisterLayer creates a gopacket layer type for a header and records
// empty, the constructor of a zero-valued instance used by Clone and by
// Deserializers built with NewDeserializer.
//
// number follows gopacket's numbering rules: 1000-1999 for application
// types. Registering the same number twice panics, as in gopacket.
func RegisterLayer(number int, name string, empty func() Packet) gopacket.LayerType {
	t := gopacket.RegisterLayerType(number, gopacket.LayerTypeMetadata{
		Name:    name,
		Decoder: gopacketDecoder(NewDeserializer(empty)),
	})

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = registration{name: name, empty: empty}
	return t
}

// New returns an empty instance of a registered layer type.
func New(t gopacket.LayerType) (Packet, bool) {
	registryMu.RLock()
	reg, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, false
	}
	return reg.empty(), true
}

// Registered reports whether t has an empty-instance constructor.
func Registered(t gopacket.LayerType) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[t]
	return ok
}

// NewDeserializer adapts an empty-instance constructor into a Deserializer:
// every call decodes into a fresh instance.
func NewDeserializer(empty func() Packet) Deserializer {
	return func(data []byte, offset, length int) (Packet, error) {
		return empty().Deserialize(data, offset, length)
	}
}

// DeserializerFor returns the Deserializer of a registered layer type.
func DeserializerFor(t gopacket.LayerType) (Deserializer, bool) {
	registryMu.RLock()
	reg, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, false
	}
	return NewDeserializer(reg.empty), true
}

// Clone copies p by round-tripping it through its own Serialize and
// Deserialize:
//
//  1. an empty instance of p's layer type is built from the registry,
//  2. p is serialized,
//  3. the bytes are deserialized into the empty instance,
//  4. p's parent reference is copied onto the result.
//
// The result is a distinct object that shares no buffers with p. Its
// payload is whatever the round trip reconstructed; when p has a payload
// but its Serialize leaves the payload bytes out, a clone of p's payload is
// attached instead so the chain below p is never silently lost.
//
// Correctness depends on Serialize and Deserialize being inverses for the
// concrete type. That is an obligation of each header and is not checked.
func Clone(p Packet) (Packet, error) {
	if p == nil {
		return nil, nil
	}
	t := p.LayerType()
	q, ok := New(t)
	if !ok {
		return nil, &CloneError{Layer: t.String(), Err: ErrCloneUnsupported}
	}

	data, err := p.Serialize()
	if err != nil {
		return nil, &CloneError{Layer: t.String(), Err: err}
	}
	q, err = q.Deserialize(data, 0, len(data))
	if err != nil {
		return nil, &CloneError{Layer: t.String(), Err: err}
	}
	q.SetParent(p.Parent())

	if inner := p.Payload(); inner != nil && q.Payload() == nil {
		innerCopy, err := inner.Clone()
		if err != nil {
			return nil, &CloneError{Layer: t.String(), Err: err}
		}
		Attach(q, innerCopy)
	}
	return q, nil
}
