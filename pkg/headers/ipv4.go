package headers

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net/netip"

	"github.com/google/gopacket"
	gplayers "github.com/google/gopacket/layers"
	"golang.org/x/net/ipv4"

	"firestige.xyz/pktchain/pkg/packet"
)

// IP protocol numbers with a dedicated payload header.
const (
	IPProtocolUDP = uint8(gplayers.IPProtocolUDP)
)

const (
	ipv4MaxHeaderLength = 60
	ipv4MoreFragments   = 0x1
)

// IPv4 is an RFC 791 header. Bytes past TotalLength (link-layer padding)
// are kept in Padding so the frame serializes back unchanged.
type IPv4 struct {
	packet.Base
	TOS            uint8
	TotalLength    uint16
	ID             uint16
	Flags          uint8  // 3 bits: reserved, DF, MF
	FragmentOffset uint16 // 13 bits, in 8-byte units
	TTL            uint8
	Protocol       uint8
	Checksum       uint16
	SrcIP          netip.Addr
	DstIP          netip.Addr
	Options        []byte
	Padding        []byte
}

// IPv4Deserializer decodes an IPv4 header and its payload: UDP for
// unfragmented protocol 17, Data otherwise.
func IPv4Deserializer() packet.Deserializer {
	return packet.NewDeserializer(func() packet.Packet { return &IPv4{} })
}

func (ip *IPv4) LayerType() gopacket.LayerType { return LayerTypeIPv4 }

// HeaderLength is the header size in bytes, options included.
func (ip *IPv4) HeaderLength() int { return ipv4.HeaderLen + len(ip.Options) }

// IsFragment reports whether MF is set or the fragment offset is non-zero.
func (ip *IPv4) IsFragment() bool {
	return ip.Flags&ipv4MoreFragments != 0 || ip.FragmentOffset != 0
}

// ResetChecksum clears the stored header checksum and notifies the outer
// layers.
func (ip *IPv4) ResetChecksum() {
	ip.Checksum = 0
	ip.Base.ResetChecksum()
}

// FixLengths sets TotalLength from the header and the serialized payload.
func (ip *IPv4) FixLengths() error {
	payload, err := serializePayload(ip)
	if err != nil {
		return err
	}
	total := ip.HeaderLength() + len(payload)
	if total > 0xFFFF {
		return fmt.Errorf("%w: IPv4 total length %d", packet.ErrInvalidHeader, total)
	}
	ip.TotalLength = uint16(total)
	return nil
}

func (ip *IPv4) Serialize() ([]byte, error) {
	if len(ip.Options)%4 != 0 || ip.HeaderLength() > ipv4MaxHeaderLength {
		return nil, fmt.Errorf("%w: IPv4 options length %d", packet.ErrInvalidHeader, len(ip.Options))
	}
	src, err := addr4(ip.SrcIP)
	if err != nil {
		return nil, err
	}
	dst, err := addr4(ip.DstIP)
	if err != nil {
		return nil, err
	}
	payload, err := serializePayload(ip)
	if err != nil {
		return nil, err
	}

	hlen := ip.HeaderLength()
	out := make([]byte, hlen, hlen+len(payload)+len(ip.Padding))
	out[0] = IPVersion4<<4 | uint8(hlen/4)
	out[1] = ip.TOS
	binary.BigEndian.PutUint16(out[2:4], ip.TotalLength)
	binary.BigEndian.PutUint16(out[4:6], ip.ID)
	binary.BigEndian.PutUint16(out[6:8], uint16(ip.Flags&0x7)<<13|ip.FragmentOffset&0x1FFF)
	out[8] = ip.TTL
	out[9] = ip.Protocol
	binary.BigEndian.PutUint16(out[10:12], ip.Checksum)
	copy(out[12:16], src[:])
	copy(out[16:20], dst[:])
	copy(out[ipv4.HeaderLen:], ip.Options)
	out = append(out, payload...)
	return append(out, ip.Padding...), nil
}

func (ip *IPv4) Deserialize(data []byte, offset, length int) (packet.Packet, error) {
	if err := packet.CheckInput("IPv4", data, offset, length, ipv4.HeaderLen); err != nil {
		return nil, err
	}
	b := data[offset : offset+length]
	if version := b[0] >> 4; version != IPVersion4 {
		return nil, &packet.DeserializationError{
			Layer: "IPv4", Offset: offset, Detail: fmt.Sprintf("%d", version), Err: packet.ErrInvalidVersion,
		}
	}
	hlen := int(b[0]&0x0F) * 4
	if hlen < ipv4.HeaderLen {
		return nil, packet.Invalid("IPv4", offset, "header length %d", hlen)
	}
	if err := packet.CheckHeaderLength("IPv4", offset, length, hlen); err != nil {
		return nil, err
	}

	ip.TOS = b[1]
	ip.TotalLength = binary.BigEndian.Uint16(b[2:4])
	ip.ID = binary.BigEndian.Uint16(b[4:6])
	flagsOffset := binary.BigEndian.Uint16(b[6:8])
	ip.Flags = uint8(flagsOffset >> 13)
	ip.FragmentOffset = flagsOffset & 0x1FFF
	ip.TTL = b[8]
	ip.Protocol = b[9]
	ip.Checksum = binary.BigEndian.Uint16(b[10:12])
	ip.SrcIP = netip.AddrFrom4([4]byte(b[12:16]))
	ip.DstIP = netip.AddrFrom4([4]byte(b[16:20]))
	ip.Options = copyBytes(b[ipv4.HeaderLen:hlen])

	// A TotalLength of zero (segmentation offload) or one past the window
	// leaves everything after the header to the payload.
	end := length
	if total := int(ip.TotalLength); total >= hlen && total <= length {
		end = total
	}
	ip.Padding = copyBytes(b[end:])

	inner := DataDeserializer()
	if ip.Protocol == IPProtocolUDP && !ip.IsFragment() {
		inner = UDPDeserializer()
	}
	if err := attachPayload(ip, inner, data, offset+hlen, end-hlen); err != nil {
		return nil, err
	}
	return ip, nil
}

func (ip *IPv4) Clone() (packet.Packet, error) { return packet.Clone(ip) }

func (ip *IPv4) Equal(other packet.Packet) bool {
	o, ok := other.(*IPv4)
	if !ok || !ip.Base.Equal(other) {
		return false
	}
	return ip.TOS == o.TOS &&
		ip.TotalLength == o.TotalLength &&
		ip.ID == o.ID &&
		ip.Flags == o.Flags &&
		ip.FragmentOffset == o.FragmentOffset &&
		ip.TTL == o.TTL &&
		ip.Protocol == o.Protocol &&
		ip.Checksum == o.Checksum &&
		ip.SrcIP == o.SrcIP &&
		ip.DstIP == o.DstIP &&
		bytes.Equal(ip.Options, o.Options) &&
		bytes.Equal(ip.Padding, o.Padding)
}

func (ip *IPv4) Hash() uint64 {
	h := packet.MixHash(ip.Base.Hash(),
		uint64(ip.TOS), uint64(ip.TotalLength), uint64(ip.ID), uint64(ip.Flags),
		uint64(ip.FragmentOffset), uint64(ip.TTL), uint64(ip.Protocol), uint64(ip.Checksum))
	h = packet.HashBytes(h, ip.SrcIP.AsSlice())
	h = packet.HashBytes(h, ip.DstIP.AsSlice())
	return packet.HashBytes(h, ip.Options)
}

// addr4 renders an address for an IPv4 header. The zero Addr is 0.0.0.0.
func addr4(a netip.Addr) ([4]byte, error) {
	if !a.IsValid() {
		return [4]byte{}, nil
	}
	if !a.Is4() && !a.Is4In6() {
		return [4]byte{}, fmt.Errorf("%w: %s is not an IPv4 address", packet.ErrInvalidHeader, a)
	}
	return a.As4(), nil
}
