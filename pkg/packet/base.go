package packet

// hashPrime matches the multiplier used by every built-in header so hashes
// of nested stacks mix the same way.
const hashPrime = 6733

// Base is embedded by concrete headers. It stores the parent/payload links
// and supplies default ResetChecksum, Equal and Hash.
//
// The default Equal and Hash look at the payload only: two headers with
// equal payloads (or both without one) are equal whatever their own fields
// and concrete types are. This is intentionally coarse. Headers that need
// field comparison override both methods and call the Base versions for the
// payload part.
type Base struct {
	parent  Packet
	payload Packet
}

func (b *Base) Payload() Packet { return b.payload }

func (b *Base) SetPayload(p Packet) { b.payload = p }

func (b *Base) Parent() Packet { return b.parent }

func (b *Base) SetParent(p Packet) { b.parent = p }

// ResetChecksum has no checksum of its own to clear; it only propagates to
// the parent. Headers holding a checksum clear it first and then call this.
func (b *Base) ResetChecksum() {
	if b.parent != nil {
		b.parent.ResetChecksum()
	}
}

// Equal reports whether other's payload equals b's payload.
func (b *Base) Equal(other Packet) bool {
	if other == nil {
		return false
	}
	theirs := other.Payload()
	if b.payload == nil || theirs == nil {
		return b.payload == nil && theirs == nil
	}
	return b.payload.Equal(theirs)
}

func (b *Base) Hash() uint64 {
	h := uint64(1)
	if b.payload != nil {
		h = hashPrime*h + b.payload.Hash()
	}
	return h
}

// MixHash folds v into h with the shared multiplier. Headers use it to add
// their own fields on top of Base.Hash.
func MixHash(h uint64, vs ...uint64) uint64 {
	for _, v := range vs {
		h = hashPrime*h + v
	}
	return h
}

// HashBytes folds a byte slice into h.
func HashBytes(h uint64, b []byte) uint64 {
	for _, c := range b {
		h = 31*h + uint64(c)
	}
	return MixHash(h, uint64(len(b)))
}
