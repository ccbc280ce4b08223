// Package packet defines the layered packet contract: how protocol headers
// are decoded from byte windows, chained into parent/payload stacks,
// re-serialized and cloned.
//
// A packet graph is a singly linked chain. The outer layer owns its payload;
// the payload keeps a non-owning Parent reference used only to propagate
// checksum invalidation upward. Nodes carry no locks: a graph shared between
// goroutines needs external synchronization.
package packet

import "github.com/google/gopacket"

// Packet is implemented by every protocol header.
type Packet interface {
	// LayerType identifies the concrete header. It keys the clone registry.
	LayerType() gopacket.LayerType

	// Payload returns the next inner layer, or nil.
	Payload() Packet
	// SetPayload attaches the next inner layer. It does not touch the
	// payload's parent; use Attach to link both sides.
	SetPayload(p Packet)
	// Parent returns the enclosing layer, or nil for the outermost one.
	Parent() Packet
	SetParent(p Packet)

	// ResetChecksum marks this layer's checksum dirty and repeats the call
	// on every ancestor up to the outermost layer.
	ResetChecksum()

	// Serialize renders the header. Whether payload bytes follow is up to
	// the concrete header.
	Serialize() ([]byte, error)
	// Deserialize populates the receiver from [offset, offset+length) of
	// data and returns it.
	Deserialize(data []byte, offset, length int) (Packet, error)
	// Clone returns an independent copy of the same concrete type. See Clone.
	Clone() (Packet, error)

	Equal(other Packet) bool
	Hash() uint64
}

// Attach makes inner the payload of outer and outer the parent of inner.
// A nil inner detaches the current payload.
func Attach(outer, inner Packet) {
	if old := outer.Payload(); old != nil && old != inner && old.Parent() == outer {
		old.SetParent(nil)
	}
	outer.SetPayload(inner)
	if inner != nil {
		inner.SetParent(outer)
	}
}

// Layers lists p and all of its payloads, outermost first.
func Layers(p Packet) []Packet {
	var out []Packet
	for cur := p; cur != nil; cur = cur.Payload() {
		out = append(out, cur)
	}
	return out
}

// Outermost follows Parent references up to the root of p's stack.
func Outermost(p Packet) Packet {
	for p != nil && p.Parent() != nil {
		p = p.Parent()
	}
	return p
}

// Find returns the first layer in p's chain with the given type.
func Find(p Packet, t gopacket.LayerType) Packet {
	for cur := p; cur != nil; cur = cur.Payload() {
		if cur.LayerType() == t {
			return cur
		}
	}
	return nil
}
