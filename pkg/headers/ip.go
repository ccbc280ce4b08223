package headers

import "firestige.xyz/pktchain/pkg/packet"

// IP versions recognised by IPDeserializer.
const (
	IPVersion4 = 4
	IPVersion6 = 6
)

// ipVersions reads the high nibble of the first byte and hands the whole
// window, version byte included, to the matching header. There is no
// fallback: any other version is an error.
var ipVersions = packet.NewDispatcher("IP", packet.PeekBits("IP", 0, 4),
	map[uint32]packet.Deserializer{
		IPVersion4: IPv4Deserializer(),
		IPVersion6: IPv6Deserializer(),
	},
	packet.WithUnknownError[uint32](packet.ErrInvalidVersion),
)

// IPDeserializer decodes an IPv4 or IPv6 header, chosen by the version
// nibble.
func IPDeserializer() packet.Deserializer {
	return ipVersions.Deserializer()
}

// IPVersion peeks the version nibble of the window without decoding it.
func IPVersion(data []byte, offset, length int) (uint8, error) {
	v, err := packet.PeekBits("IP", 0, 4)(data, offset, length)
	return uint8(v), err
}

// serializePayload re-links and renders p's payload, if any.
func serializePayload(p packet.Packet) ([]byte, error) {
	inner := p.Payload()
	if inner == nil {
		return nil, nil
	}
	inner.SetParent(p)
	return inner.Serialize()
}

// attachPayload decodes [offset, offset+length) with d and links the result
// under p. An empty window leaves p without payload.
func attachPayload(p packet.Packet, d packet.Deserializer, data []byte, offset, length int) error {
	packet.Attach(p, nil)
	if length <= 0 {
		return nil
	}
	inner, err := d(data, offset, length)
	if err != nil {
		return err
	}
	packet.Attach(p, inner)
	return nil
}

// copyBytes returns a copy of b, or nil when b is empty.
func copyBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
