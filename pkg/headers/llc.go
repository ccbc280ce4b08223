package headers

import (
	"github.com/google/gopacket"

	"firestige.xyz/pktchain/pkg/packet"
)

// LLCHeaderLength is the size of an 802.2 link control header.
const LLCHeaderLength = 3

// LLC is an IEEE 802.2 logical link control header. Bytes following the
// three header bytes become a Data payload.
//
// LLC keeps the payload-only Equal and Hash of packet.Base.
type LLC struct {
	packet.Base
	DSAP    uint8
	SSAP    uint8
	Control uint8
}

// LLCDeserializer decodes an LLC header.
func LLCDeserializer() packet.Deserializer {
	return packet.NewDeserializer(func() packet.Packet { return &LLC{} })
}

func (l *LLC) LayerType() gopacket.LayerType { return LayerTypeLLC }

func (l *LLC) Serialize() ([]byte, error) {
	payload, err := serializePayload(l)
	if err != nil {
		return nil, err
	}
	return append([]byte{l.DSAP, l.SSAP, l.Control}, payload...), nil
}

func (l *LLC) Deserialize(data []byte, offset, length int) (packet.Packet, error) {
	if err := packet.CheckInput("LLC", data, offset, length, LLCHeaderLength); err != nil {
		return nil, err
	}
	l.DSAP = data[offset]
	l.SSAP = data[offset+1]
	l.Control = data[offset+2]

	err := attachPayload(l, DataDeserializer(), data, offset+LLCHeaderLength, length-LLCHeaderLength)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LLC) Clone() (packet.Packet, error) { return packet.Clone(l) }
