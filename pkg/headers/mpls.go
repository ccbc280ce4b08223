package headers

import (
	"encoding/binary"

	"github.com/google/gopacket"

	"firestige.xyz/pktchain/pkg/packet"
)

// MPLSHeaderLength is the size of one label stack entry.
const MPLSHeaderLength = 4

// MPLS is one RFC 3032 label stack entry. Below an entry without the
// bottom-of-stack bit sits another entry; below the last one, an IPv4 or
// IPv6 header picked by its version nibble.
type MPLS struct {
	packet.Base
	Label         packet.MplsLabel
	TrafficClass  uint8 // 3 bits
	BottomOfStack bool
	TTL           uint8
}

// MPLSDeserializer decodes a label stack entry and everything below it.
func MPLSDeserializer() packet.Deserializer {
	return packet.NewDeserializer(func() packet.Packet { return &MPLS{} })
}

func (m *MPLS) LayerType() gopacket.LayerType { return LayerTypeMPLS }

func (m *MPLS) Serialize() ([]byte, error) {
	payload, err := serializePayload(m)
	if err != nil {
		return nil, err
	}
	entry := m.Label.Value()<<12 | uint32(m.TrafficClass&0x7)<<9 | uint32(m.TTL)
	if m.BottomOfStack {
		entry |= 1 << 8
	}
	out := make([]byte, MPLSHeaderLength, MPLSHeaderLength+len(payload))
	binary.BigEndian.PutUint32(out, entry)
	return append(out, payload...), nil
}

func (m *MPLS) Deserialize(data []byte, offset, length int) (packet.Packet, error) {
	if err := packet.CheckInput("MPLS", data, offset, length, MPLSHeaderLength); err != nil {
		return nil, err
	}
	entry := binary.BigEndian.Uint32(data[offset : offset+MPLSHeaderLength])
	m.Label = packet.MplsLabelFromEntry(entry)
	m.TrafficClass = uint8(entry>>9) & 0x7
	m.BottomOfStack = entry&(1<<8) != 0
	m.TTL = uint8(entry)

	inner := MPLSDeserializer()
	if m.BottomOfStack {
		inner = ipVersions.Deserializer()
	}
	err := attachPayload(m, inner, data, offset+MPLSHeaderLength, length-MPLSHeaderLength)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MPLS) Clone() (packet.Packet, error) { return packet.Clone(m) }

func (m *MPLS) Equal(other packet.Packet) bool {
	o, ok := other.(*MPLS)
	if !ok || !m.Base.Equal(other) {
		return false
	}
	return m.Label == o.Label && m.TrafficClass == o.TrafficClass &&
		m.BottomOfStack == o.BottomOfStack && m.TTL == o.TTL
}

func (m *MPLS) Hash() uint64 {
	bos := uint64(0)
	if m.BottomOfStack {
		bos = 1
	}
	return packet.MixHash(m.Base.Hash(),
		uint64(m.Label.Value()), uint64(m.TrafficClass), bos, uint64(m.TTL))
}
