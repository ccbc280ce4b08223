package headers

import (
	"bytes"

	"github.com/google/gopacket"

	"firestige.xyz/pktchain/pkg/packet"
)

// Data holds bytes no other header claimed. It is the innermost layer.
type Data struct {
	packet.Base
	Bytes []byte
}

// DataDeserializer copies the whole window, which may be empty.
func DataDeserializer() packet.Deserializer {
	return packet.NewDeserializer(func() packet.Packet { return &Data{} })
}

func (d *Data) LayerType() gopacket.LayerType { return LayerTypeData }

func (d *Data) Serialize() ([]byte, error) {
	return bytes.Clone(d.Bytes), nil
}

func (d *Data) Deserialize(data []byte, offset, length int) (packet.Packet, error) {
	if err := packet.CheckInput("Data", data, offset, length, 0); err != nil {
		return nil, err
	}
	d.Bytes = make([]byte, length)
	copy(d.Bytes, data[offset:offset+length])
	return d, nil
}

func (d *Data) Clone() (packet.Packet, error) { return packet.Clone(d) }

func (d *Data) Equal(other packet.Packet) bool {
	o, ok := other.(*Data)
	if !ok || !d.Base.Equal(other) {
		return false
	}
	return bytes.Equal(d.Bytes, o.Bytes)
}

func (d *Data) Hash() uint64 {
	return packet.HashBytes(d.Base.Hash(), d.Bytes)
}
