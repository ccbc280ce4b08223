package headers

import (
	"net"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/ipv4"

	"firestige.xyz/pktchain/pkg/packet"
)

// ipv4UDP is a 32-byte IPv4/UDP datagram with a 4-byte body.
var ipv4UDP = []byte{
	0x45,           // Version 4, IHL 5
	0x00,           // TOS
	0x00, 0x20,     // Total Length: 32
	0x12, 0x34,     // Identification
	0x40, 0x00,     // Flags: DF, Fragment Offset 0
	0x40,           // TTL: 64
	0x11,           // Protocol: UDP
	0xAB, 0xCD,     // Checksum
	192, 168, 1, 1, // Src IP
	192, 168, 1, 2, // Dst IP
	0x30, 0x39,     // Src Port: 12345
	0x00, 0x35,     // Dst Port: 53
	0x00, 0x0C,     // Length: 12
	0x00, 0x00,     // Checksum
	0x01, 0x02, 0x03, 0x04,
}

func TestIPv4Decode(t *testing.T) {
	p, out := roundTrip(t, IPv4Deserializer(), ipv4UDP)

	ip := p.(*IPv4)
	if ip.TotalLength != 32 {
		t.Errorf("Expected TotalLength 32, got %d", ip.TotalLength)
	}
	if ip.Flags != 0x2 || ip.IsFragment() {
		t.Errorf("Expected DF only, got flags %#x", ip.Flags)
	}
	if ip.TTL != 64 || ip.Protocol != IPProtocolUDP {
		t.Errorf("Expected TTL 64 proto 17, got %d %d", ip.TTL, ip.Protocol)
	}
	if ip.Checksum != 0xABCD {
		t.Errorf("Expected checksum 0xABCD, got %#x", ip.Checksum)
	}
	if want := netip.MustParseAddr("192.168.1.1"); ip.SrcIP != want {
		t.Errorf("Expected SrcIP %v, got %v", want, ip.SrcIP)
	}
	if want := netip.MustParseAddr("192.168.1.2"); ip.DstIP != want {
		t.Errorf("Expected DstIP %v, got %v", want, ip.DstIP)
	}

	udp, ok := ip.Payload().(*UDP)
	require.True(t, ok, "payload is %T", ip.Payload())
	assert.Equal(t, packet.MustTpPort(12345), udp.SrcPort)
	assert.Equal(t, packet.MustTpPort(53), udp.DstPort)
	assert.Equal(t, []byte{1, 2, 3, 4}, udp.Payload().(*Data).Bytes)

	if diff := cmp.Diff(ipv4UDP, out); diff != "" {
		t.Errorf("Serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestIPv4KeepsLinkPadding(t *testing.T) {
	data := append(append([]byte(nil), ipv4UDP...), 0, 0, 0, 0, 0, 0)

	p, out := roundTrip(t, IPv4Deserializer(), data)

	ip := p.(*IPv4)
	assert.Len(t, ip.Padding, 6)
	assert.Len(t, ip.Payload().(*UDP).Payload().(*Data).Bytes, 4, "padding stays out of the datagram")
	assert.Equal(t, data, out)
}

func TestIPv4TotalLengthPastWindow(t *testing.T) {
	data := append([]byte(nil), ipv4UDP...)
	data[2], data[3] = 0x01, 0x00 // Total Length: 256

	p, out := roundTrip(t, IPv4Deserializer(), data)

	assert.Empty(t, p.(*IPv4).Padding)
	assert.Equal(t, data, out)
}

func TestIPv4Options(t *testing.T) {
	data := []byte{
		0x46, 0x00, 0x00, 0x18, // IHL 6, Total Length 24
		0x00, 0x01, 0x00, 0x00,
		0x01, 0x06, 0x00, 0x00, // TTL 1, proto 6
		10, 0, 0, 1,
		10, 0, 0, 2,
		0x94, 0x04, 0x00, 0x00, // Router Alert
	}

	p, out := roundTrip(t, IPv4Deserializer(), data)

	ip := p.(*IPv4)
	assert.Equal(t, []byte{0x94, 0x04, 0x00, 0x00}, ip.Options)
	assert.Equal(t, 24, ip.HeaderLength())
	assert.Nil(t, ip.Payload())
	assert.Equal(t, data, out)
}

func TestIPv4FragmentCarriesData(t *testing.T) {
	data := append([]byte(nil), ipv4UDP...)
	data[6] = 0x20 // MF

	p, out := roundTrip(t, IPv4Deserializer(), data)

	ip := p.(*IPv4)
	assert.True(t, ip.IsFragment())
	assert.IsType(t, &Data{}, ip.Payload())
	assert.Equal(t, data, out)
}

func TestIPv4DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", ipv4UDP[:19], packet.ErrTruncated},
		{"version", append([]byte{0x65}, ipv4UDP[1:]...), packet.ErrInvalidVersion},
		{"ihl below 5", append([]byte{0x44}, ipv4UDP[1:]...), packet.ErrInvalidField},
		{"options past window", append([]byte{0x4F}, ipv4UDP[1:]...), packet.ErrTruncated},
		{"short udp", append(append([]byte(nil), ipv4UDP[:20]...), 0x00, 0x35), packet.ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IPv4Deserializer()(tt.data, 0, len(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIPv4SerializeMatchesXNet(t *testing.T) {
	ip := &IPv4{
		TOS:      0x10,
		ID:       0xBEEF,
		Flags:    0x2,
		TTL:      32,
		Protocol: IPProtocolUDP,
		SrcIP:    netip.MustParseAddr("10.1.2.3"),
		DstIP:    netip.MustParseAddr("10.4.5.6"),
	}
	packet.Attach(ip, &UDP{SrcPort: packet.MustTpPort(68), DstPort: packet.MustTpPort(67)})
	require.NoError(t, FixLengths(ip))

	b, err := ip.Serialize()
	require.NoError(t, err)

	h, err := ipv4.ParseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, 4, h.Version)
	assert.Equal(t, ipv4.HeaderLen, h.Len)
	assert.Equal(t, 0x10, h.TOS)
	assert.Equal(t, ipv4.HeaderLen+UDPHeaderLength, h.TotalLen)
	assert.Equal(t, 0xBEEF, h.ID)
	assert.Equal(t, ipv4.DontFragment, h.Flags)
	assert.Equal(t, 32, h.TTL)
	assert.Equal(t, 17, h.Protocol)
	assert.True(t, h.Src.Equal(net.IPv4(10, 1, 2, 3)))
	assert.True(t, h.Dst.Equal(net.IPv4(10, 4, 5, 6)))
}

func TestIPv4SerializeRejectsBadHeader(t *testing.T) {
	_, err := (&IPv4{Options: []byte{1, 2, 3}}).Serialize()
	assert.ErrorIs(t, err, packet.ErrInvalidHeader)

	_, err = (&IPv4{Options: make([]byte, 44)}).Serialize()
	assert.ErrorIs(t, err, packet.ErrInvalidHeader)

	_, err = (&IPv4{SrcIP: netip.MustParseAddr("2001:db8::1")}).Serialize()
	assert.ErrorIs(t, err, packet.ErrInvalidHeader)
}

func TestIPv4ResetChecksumClearsOuterChecksums(t *testing.T) {
	p, err := IPv4Deserializer()(ipv4UDP, 0, len(ipv4UDP))
	require.NoError(t, err)
	ip := p.(*IPv4)
	udp := ip.Payload().(*UDP)
	udp.Checksum = 0x1111

	udp.Payload().ResetChecksum()

	assert.Zero(t, udp.Checksum)
	assert.Zero(t, ip.Checksum)
}

func TestIPv4EqualAndHash(t *testing.T) {
	a, err := IPv4Deserializer()(ipv4UDP, 0, len(ipv4UDP))
	require.NoError(t, err)
	b, err := IPv4Deserializer()(ipv4UDP, 0, len(ipv4UDP))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	b.(*IPv4).TTL = 1
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Hash(), b.Hash())

	assert.False(t, a.Equal(&IPv6{}))
}

func TestIPv4Clone(t *testing.T) {
	p, err := IPv4Deserializer()(ipv4UDP, 0, len(ipv4UDP))
	require.NoError(t, err)
	udp := p.Payload()

	got, err := udp.Clone()
	require.NoError(t, err)

	assert.True(t, got.Equal(udp))
	assert.NotSame(t, udp, got)
	assert.Same(t, p, got.Parent())
	assert.Same(t, udp, p.Payload(), "parent keeps the original payload")
}
