package packet

import "github.com/google/gopacket"

// GopacketLayer exposes a packet chain as a gopacket.Layer, so headers
// registered through RegisterLayer can be decoded with gopacket.NewPacket.
// The whole decoded window is reported as layer contents.
type GopacketLayer struct {
	Packet
	contents []byte
}

func (l *GopacketLayer) LayerContents() []byte { return l.contents }

func (l *GopacketLayer) LayerPayload() []byte { return nil }

func gopacketDecoder(d Deserializer) gopacket.Decoder {
	return gopacket.DecodeFunc(func(data []byte, pb gopacket.PacketBuilder) error {
		p, err := d(data, 0, len(data))
		if err != nil {
			return err
		}
		pb.AddLayer(&GopacketLayer{Packet: p, contents: data})
		return nil
	})
}

// FromGopacket returns the chain decoded by gopacket for layer type t, or
// false if gp holds no such layer.
func FromGopacket(gp gopacket.Packet, t gopacket.LayerType) (Packet, bool) {
	l, ok := gp.Layer(t).(*GopacketLayer)
	if !ok {
		return nil, false
	}
	return l.Packet, true
}
