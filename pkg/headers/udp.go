package headers

import (
	"encoding/binary"
	"fmt"

	"github.com/google/gopacket"

	"firestige.xyz/pktchain/pkg/packet"
)

// UDPHeaderLength is the size of a UDP header.
const UDPHeaderLength = 8

// UDP is an RFC 768 header. Everything after it is a Data payload.
type UDP struct {
	packet.Base
	SrcPort  packet.TpPort
	DstPort  packet.TpPort
	Length   uint16
	Checksum uint16
}

// UDPDeserializer decodes a UDP header and its data.
func UDPDeserializer() packet.Deserializer {
	return packet.NewDeserializer(func() packet.Packet { return &UDP{} })
}

func (u *UDP) LayerType() gopacket.LayerType { return LayerTypeUDP }

// ResetChecksum clears the stored checksum and notifies the outer layers,
// whose pseudo-header sums depend on this one.
func (u *UDP) ResetChecksum() {
	u.Checksum = 0
	u.Base.ResetChecksum()
}

// FixLengths sets Length from the header and the serialized payload.
func (u *UDP) FixLengths() error {
	payload, err := serializePayload(u)
	if err != nil {
		return err
	}
	total := UDPHeaderLength + len(payload)
	if total > 0xFFFF {
		return fmt.Errorf("%w: UDP length %d", packet.ErrInvalidHeader, total)
	}
	u.Length = uint16(total)
	return nil
}

func (u *UDP) Serialize() ([]byte, error) {
	payload, err := serializePayload(u)
	if err != nil {
		return nil, err
	}
	out := make([]byte, UDPHeaderLength, UDPHeaderLength+len(payload))
	binary.BigEndian.PutUint16(out[0:2], u.SrcPort.Value())
	binary.BigEndian.PutUint16(out[2:4], u.DstPort.Value())
	binary.BigEndian.PutUint16(out[4:6], u.Length)
	binary.BigEndian.PutUint16(out[6:8], u.Checksum)
	return append(out, payload...), nil
}

func (u *UDP) Deserialize(data []byte, offset, length int) (packet.Packet, error) {
	if err := packet.CheckInput("UDP", data, offset, length, UDPHeaderLength); err != nil {
		return nil, err
	}
	b := data[offset : offset+length]
	u.SrcPort = packet.TpPortFrom(binary.BigEndian.Uint16(b[0:2]))
	u.DstPort = packet.TpPortFrom(binary.BigEndian.Uint16(b[2:4]))
	u.Length = binary.BigEndian.Uint16(b[4:6])
	u.Checksum = binary.BigEndian.Uint16(b[6:8])

	err := attachPayload(u, DataDeserializer(), data, offset+UDPHeaderLength, length-UDPHeaderLength)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (u *UDP) Clone() (packet.Packet, error) { return packet.Clone(u) }

func (u *UDP) Equal(other packet.Packet) bool {
	o, ok := other.(*UDP)
	if !ok || !u.Base.Equal(other) {
		return false
	}
	return u.SrcPort == o.SrcPort && u.DstPort == o.DstPort &&
		u.Length == o.Length && u.Checksum == o.Checksum
}

func (u *UDP) Hash() uint64 {
	return packet.MixHash(u.Base.Hash(),
		uint64(u.SrcPort.Value()), uint64(u.DstPort.Value()), uint64(u.Length), uint64(u.Checksum))
}
