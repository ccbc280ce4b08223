package headers

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"slices"

	"github.com/google/gopacket"
	gplayers "github.com/google/gopacket/layers"

	"firestige.xyz/pktchain/pkg/packet"
)

// EtherType values the Ethernet header dispatches on or tags with.
const (
	EtherTypeIPv4          = uint16(gplayers.EthernetTypeIPv4)
	EtherTypeIPv6          = uint16(gplayers.EthernetTypeIPv6)
	EtherTypeARP           = uint16(gplayers.EthernetTypeARP)
	EtherTypeVLAN          = uint16(gplayers.EthernetTypeDot1Q)
	EtherTypeQinQ          = uint16(gplayers.EthernetTypeQinQ)
	EtherTypeMPLSUnicast   = uint16(gplayers.EthernetTypeMPLSUnicast)
	EtherTypeMPLSMulticast = uint16(gplayers.EthernetTypeMPLSMulticast)
	EtherTypeLLDP          = uint16(gplayers.EthernetTypeLinkLayerDiscovery)
)

const (
	EthernetHeaderLength = 14
	VLANHeaderLength     = 4

	// MaxVLANTags is the tag depth decoded: one service tag and one
	// customer tag.
	MaxVLANTags = 2

	// maxDot3Length is the largest 802.3 length field; larger values are
	// EtherTypes.
	maxDot3Length  = 1500
	minFrameLength = 60
)

// etherTypes maps an EtherType to the payload header. Unknown types decode
// as Data.
var etherTypes = packet.NewDispatcher[uint16]("Ethernet", nil,
	map[uint16]packet.Deserializer{
		EtherTypeIPv4:          IPv4Deserializer(),
		EtherTypeIPv6:          IPv6Deserializer(),
		EtherTypeMPLSUnicast:   MPLSDeserializer(),
		EtherTypeMPLSMulticast: MPLSDeserializer(),
	},
	packet.WithFallback[uint16](DataDeserializer()),
)

// VLANTag is one 802.1Q or 802.1ad tag.
type VLANTag struct {
	TPID         uint16 // EtherTypeVLAN or EtherTypeQinQ
	Priority     uint8  // 3 bits
	DropEligible bool
	ID           packet.VlanID
}

func (t VLANTag) tci() uint16 {
	tci := uint16(t.Priority&0x7)<<13 | t.ID.Value()
	if t.DropEligible {
		tci |= 1 << 12
	}
	return tci
}

// Ethernet is an Ethernet II or 802.3 header with up to two VLAN tags.
type Ethernet struct {
	packet.Base
	DstMAC net.HardwareAddr
	SrcMAC net.HardwareAddr
	// VLANs lists tags outermost first.
	VLANs []VLANTag
	// EtherType is the type (or 802.3 length) after the last tag.
	EtherType uint16
	// Pad zero-fills serialized frames shorter than 60 bytes.
	Pad bool
}

// EthernetDeserializer decodes an Ethernet header and everything inside it.
func EthernetDeserializer() packet.Deserializer {
	return packet.NewDeserializer(func() packet.Packet { return &Ethernet{} })
}

func (e *Ethernet) LayerType() gopacket.LayerType { return LayerTypeEthernet }

// HeaderLength is the header size including tags.
func (e *Ethernet) HeaderLength() int {
	return EthernetHeaderLength + VLANHeaderLength*len(e.VLANs)
}

// VLAN returns the innermost VLAN tag.
func (e *Ethernet) VLAN() (VLANTag, bool) {
	if len(e.VLANs) == 0 {
		return VLANTag{}, false
	}
	return e.VLANs[len(e.VLANs)-1], true
}

func (e *Ethernet) IsBroadcast() bool {
	return bytes.Equal(e.DstMAC, net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
}

func (e *Ethernet) IsMulticast() bool {
	return len(e.DstMAC) > 0 && e.DstMAC[0]&0x01 != 0 && !e.IsBroadcast()
}

func (e *Ethernet) Serialize() ([]byte, error) {
	if len(e.VLANs) > MaxVLANTags {
		return nil, fmt.Errorf("%w: %d VLAN tags", packet.ErrInvalidHeader, len(e.VLANs))
	}
	payload, err := serializePayload(e)
	if err != nil {
		return nil, err
	}

	hlen := e.HeaderLength()
	size := hlen + len(payload)
	if e.Pad && size < minFrameLength {
		size = minFrameLength
	}
	out := make([]byte, size)
	if err := putMAC(out[0:6], e.DstMAC); err != nil {
		return nil, err
	}
	if err := putMAC(out[6:12], e.SrcMAC); err != nil {
		return nil, err
	}
	pos := 12
	for _, tag := range e.VLANs {
		binary.BigEndian.PutUint16(out[pos:], tag.TPID)
		binary.BigEndian.PutUint16(out[pos+2:], tag.tci())
		pos += VLANHeaderLength
	}
	binary.BigEndian.PutUint16(out[pos:], e.EtherType)
	copy(out[hlen:], payload)
	return out, nil
}

// Deserialize decodes the header and its payload. A payload that fails to
// decode is kept as Data, so a broken inner header never loses the frame.
func (e *Ethernet) Deserialize(data []byte, offset, length int) (packet.Packet, error) {
	if err := packet.CheckInput("Ethernet", data, offset, length, EthernetHeaderLength); err != nil {
		return nil, err
	}
	b := data[offset : offset+length]
	e.DstMAC = net.HardwareAddr(copyBytes(b[0:6]))
	e.SrcMAC = net.HardwareAddr(copyBytes(b[6:12]))
	e.Pad = false
	e.VLANs = nil

	etherType := binary.BigEndian.Uint16(b[12:14])
	pos := EthernetHeaderLength
	for (etherType == EtherTypeQinQ || etherType == EtherTypeVLAN) && len(e.VLANs) < MaxVLANTags {
		if err := packet.CheckHeaderLength("Ethernet", offset, length, pos+VLANHeaderLength); err != nil {
			return nil, err
		}
		tci := binary.BigEndian.Uint16(b[pos : pos+2])
		e.VLANs = append(e.VLANs, VLANTag{
			TPID:         etherType,
			Priority:     uint8(tci >> 13),
			DropEligible: tci&(1<<12) != 0,
			ID:           packet.VlanIDFromTCI(tci),
		})
		etherType = binary.BigEndian.Uint16(b[pos+2 : pos+4])
		pos += VLANHeaderLength
	}
	e.EtherType = etherType

	var inner packet.Deserializer
	if etherType <= maxDot3Length {
		inner = LLCDeserializer()
	} else {
		var err error
		if inner, err = etherTypes.Select(etherType, offset+pos); err != nil {
			return nil, err
		}
	}
	if err := attachPayload(e, inner, data, offset+pos, length-pos); err != nil {
		if err := attachPayload(e, DataDeserializer(), data, offset+pos, length-pos); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Ethernet) Clone() (packet.Packet, error) { return packet.Clone(e) }

func (e *Ethernet) Equal(other packet.Packet) bool {
	o, ok := other.(*Ethernet)
	if !ok || !e.Base.Equal(other) {
		return false
	}
	return bytes.Equal(e.DstMAC, o.DstMAC) &&
		bytes.Equal(e.SrcMAC, o.SrcMAC) &&
		slices.Equal(e.VLANs, o.VLANs) &&
		e.EtherType == o.EtherType &&
		e.Pad == o.Pad
}

func (e *Ethernet) Hash() uint64 {
	h := packet.HashBytes(e.Base.Hash(), e.DstMAC)
	h = packet.HashBytes(h, e.SrcMAC)
	for _, tag := range e.VLANs {
		h = packet.MixHash(h, uint64(tag.TPID), uint64(tag.tci()))
	}
	pad := uint64(1237)
	if e.Pad {
		pad = 1231
	}
	return packet.MixHash(h, uint64(e.EtherType), pad)
}

// putMAC writes a 6-byte address. A nil address is all zeros.
func putMAC(dst []byte, mac net.HardwareAddr) error {
	if mac == nil {
		return nil
	}
	if len(mac) != 6 {
		return fmt.Errorf("%w: MAC address %s is not 6 bytes", packet.ErrInvalidHeader, mac)
	}
	copy(dst, mac)
	return nil
}
