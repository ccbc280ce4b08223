package headers

import (
	"testing"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/require"

	"firestige.xyz/pktchain/pkg/packet"
)

// serializeLayers renders a reference frame with gopacket's own encoders.
func serializeLayers(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return buf.Bytes()
}

func layerTypes(p packet.Packet) []gopacket.LayerType {
	var out []gopacket.LayerType
	for _, l := range packet.Layers(p) {
		out = append(out, l.LayerType())
	}
	return out
}

// roundTrip decodes data with d and returns the chain and its re-encoding.
func roundTrip(t *testing.T, d packet.Deserializer, data []byte) (packet.Packet, []byte) {
	t.Helper()
	p, err := d(data, 0, len(data))
	require.NoError(t, err)
	out, err := p.Serialize()
	require.NoError(t, err)
	return p, out
}
