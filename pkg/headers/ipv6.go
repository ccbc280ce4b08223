package headers

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net/netip"

	"github.com/google/gopacket"
	"golang.org/x/net/ipv6"

	"firestige.xyz/pktchain/pkg/packet"
)

// IPv6 is the fixed RFC 8200 header. Extension headers are not decoded;
// they land in a Data payload together with whatever follows them.
type IPv6 struct {
	packet.Base
	TrafficClass  uint8
	FlowLabel     uint32 // 20 bits
	PayloadLength uint16
	NextHeader    uint8
	HopLimit      uint8
	SrcIP         netip.Addr
	DstIP         netip.Addr
	Padding       []byte
}

// IPv6Deserializer decodes an IPv6 header and its payload: UDP for next
// header 17, Data otherwise.
func IPv6Deserializer() packet.Deserializer {
	return packet.NewDeserializer(func() packet.Packet { return &IPv6{} })
}

func (ip *IPv6) LayerType() gopacket.LayerType { return LayerTypeIPv6 }

// FixLengths sets PayloadLength from the serialized payload.
func (ip *IPv6) FixLengths() error {
	payload, err := serializePayload(ip)
	if err != nil {
		return err
	}
	if len(payload) > 0xFFFF {
		return fmt.Errorf("%w: IPv6 payload length %d", packet.ErrInvalidHeader, len(payload))
	}
	ip.PayloadLength = uint16(len(payload))
	return nil
}

func (ip *IPv6) Serialize() ([]byte, error) {
	src, err := addr16(ip.SrcIP)
	if err != nil {
		return nil, err
	}
	dst, err := addr16(ip.DstIP)
	if err != nil {
		return nil, err
	}
	payload, err := serializePayload(ip)
	if err != nil {
		return nil, err
	}

	out := make([]byte, ipv6.HeaderLen, ipv6.HeaderLen+len(payload)+len(ip.Padding))
	binary.BigEndian.PutUint32(out[0:4], uint32(IPVersion6)<<28|uint32(ip.TrafficClass)<<20|ip.FlowLabel&0xFFFFF)
	binary.BigEndian.PutUint16(out[4:6], ip.PayloadLength)
	out[6] = ip.NextHeader
	out[7] = ip.HopLimit
	copy(out[8:24], src[:])
	copy(out[24:40], dst[:])
	out = append(out, payload...)
	return append(out, ip.Padding...), nil
}

func (ip *IPv6) Deserialize(data []byte, offset, length int) (packet.Packet, error) {
	if err := packet.CheckInput("IPv6", data, offset, length, ipv6.HeaderLen); err != nil {
		return nil, err
	}
	b := data[offset : offset+length]
	first := binary.BigEndian.Uint32(b[0:4])
	if version := first >> 28; version != IPVersion6 {
		return nil, &packet.DeserializationError{
			Layer: "IPv6", Offset: offset, Detail: fmt.Sprintf("%d", version), Err: packet.ErrInvalidVersion,
		}
	}
	ip.TrafficClass = uint8(first >> 20)
	ip.FlowLabel = first & 0xFFFFF
	ip.PayloadLength = binary.BigEndian.Uint16(b[4:6])
	ip.NextHeader = b[6]
	ip.HopLimit = b[7]
	ip.SrcIP = netip.AddrFrom16([16]byte(b[8:24]))
	ip.DstIP = netip.AddrFrom16([16]byte(b[24:40]))

	// PayloadLength zero is used by jumbograms and offload; keep the rest
	// of the window as payload then.
	end := length
	if plen := int(ip.PayloadLength); plen > 0 && ipv6.HeaderLen+plen <= length {
		end = ipv6.HeaderLen + plen
	}
	ip.Padding = copyBytes(b[end:])

	inner := DataDeserializer()
	if ip.NextHeader == IPProtocolUDP {
		inner = UDPDeserializer()
	}
	if err := attachPayload(ip, inner, data, offset+ipv6.HeaderLen, end-ipv6.HeaderLen); err != nil {
		return nil, err
	}
	return ip, nil
}

func (ip *IPv6) Clone() (packet.Packet, error) { return packet.Clone(ip) }

func (ip *IPv6) Equal(other packet.Packet) bool {
	o, ok := other.(*IPv6)
	if !ok || !ip.Base.Equal(other) {
		return false
	}
	return ip.TrafficClass == o.TrafficClass &&
		ip.FlowLabel == o.FlowLabel &&
		ip.PayloadLength == o.PayloadLength &&
		ip.NextHeader == o.NextHeader &&
		ip.HopLimit == o.HopLimit &&
		ip.SrcIP == o.SrcIP &&
		ip.DstIP == o.DstIP &&
		bytes.Equal(ip.Padding, o.Padding)
}

func (ip *IPv6) Hash() uint64 {
	h := packet.MixHash(ip.Base.Hash(),
		uint64(ip.TrafficClass), uint64(ip.FlowLabel), uint64(ip.PayloadLength),
		uint64(ip.NextHeader), uint64(ip.HopLimit))
	h = packet.HashBytes(h, ip.SrcIP.AsSlice())
	return packet.HashBytes(h, ip.DstIP.AsSlice())
}

// addr16 renders an address for an IPv6 header. The zero Addr is ::.
func addr16(a netip.Addr) ([16]byte, error) {
	if !a.IsValid() {
		return [16]byte{}, nil
	}
	if !a.Is6() {
		return [16]byte{}, fmt.Errorf("%w: %s is not an IPv6 address", packet.ErrInvalidHeader, a)
	}
	return a.As16(), nil
}
