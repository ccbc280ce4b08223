// Package inspect turns decoded packet chains into printable summaries.
package inspect

import (
	"encoding/hex"
	"fmt"

	"firestige.xyz/pktchain/pkg/headers"
	"firestige.xyz/pktchain/pkg/packet"
)

// maxDataBytes bounds the hex dump of opaque payloads.
const maxDataBytes = 32

// DHCPv6 client and server ports.
const (
	dhcpv6ClientPort = 546
	dhcpv6ServerPort = 547
)

// Field is one named header value, already formatted.
type Field struct {
	Key   string
	Value string
}

// Fields keeps header fields in wire order.
type Fields []Field

func (fs *Fields) add(key, format string, args ...any) {
	*fs = append(*fs, Field{Key: key, Value: fmt.Sprintf(format, args...)})
}

// Layer summarizes one header of a chain.
type Layer struct {
	Type   string `json:"type" yaml:"type"`
	Length int    `json:"length" yaml:"length"` // serialized bytes, payload included
	Fields Fields `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Frame summarizes one decoded buffer.
type Frame struct {
	Number int     `json:"frame,omitempty" yaml:"frame,omitempty"`
	Length int     `json:"length" yaml:"length"`
	Layers []Layer `json:"layers,omitempty" yaml:"layers,omitempty"`
	Error  string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewFrame summarizes the chain decoded from data, or the error that
// prevented decoding.
func NewFrame(number int, data []byte, p packet.Packet, err error) Frame {
	f := Frame{Number: number, Length: len(data)}
	if err != nil {
		f.Error = err.Error()
		return f
	}
	f.Layers = Describe(p)
	return f
}

// Describe summarizes every layer of p's chain, outermost first.
func Describe(p packet.Packet) []Layer {
	var out []Layer
	for _, l := range packet.Layers(p) {
		layer := Layer{Type: l.LayerType().String(), Fields: describe(l)}
		if b, err := l.Serialize(); err == nil {
			layer.Length = len(b)
		}
		out = append(out, layer)
	}
	return out
}

func describe(p packet.Packet) Fields {
	var fs Fields
	switch h := p.(type) {
	case *headers.Ethernet:
		fs.add("dst", "%s", h.DstMAC)
		fs.add("src", "%s", h.SrcMAC)
		for _, tag := range h.VLANs {
			fs.add("vlan", "tpid=0x%04x pcp=%d dei=%t id=%s", tag.TPID, tag.Priority, tag.DropEligible, tag.ID)
		}
		fs.add("ethertype", "0x%04x", h.EtherType)
	case *headers.LLC:
		fs.add("dsap", "0x%02x", h.DSAP)
		fs.add("ssap", "0x%02x", h.SSAP)
		fs.add("control", "0x%02x", h.Control)
	case *headers.MPLS:
		fs.add("label", "%s", h.Label)
		fs.add("tc", "%d", h.TrafficClass)
		fs.add("bos", "%t", h.BottomOfStack)
		fs.add("ttl", "%d", h.TTL)
	case *headers.IPv4:
		fs.add("src", "%s", h.SrcIP)
		fs.add("dst", "%s", h.DstIP)
		fs.add("tos", "0x%02x", h.TOS)
		fs.add("total_length", "%d", h.TotalLength)
		fs.add("id", "0x%04x", h.ID)
		fs.add("flags", "0x%x", h.Flags)
		fs.add("frag_offset", "%d", h.FragmentOffset)
		fs.add("ttl", "%d", h.TTL)
		fs.add("protocol", "%d", h.Protocol)
		fs.add("checksum", "0x%04x", h.Checksum)
		if len(h.Options) > 0 {
			fs.add("options", "%s", hex.EncodeToString(h.Options))
		}
		if len(h.Padding) > 0 {
			fs.add("padding", "%d", len(h.Padding))
		}
	case *headers.IPv6:
		fs.add("src", "%s", h.SrcIP)
		fs.add("dst", "%s", h.DstIP)
		fs.add("traffic_class", "0x%02x", h.TrafficClass)
		fs.add("flow_label", "0x%05x", h.FlowLabel)
		fs.add("payload_length", "%d", h.PayloadLength)
		fs.add("next_header", "%d", h.NextHeader)
		fs.add("hop_limit", "%d", h.HopLimit)
		if len(h.Padding) > 0 {
			fs.add("padding", "%d", len(h.Padding))
		}
	case *headers.UDP:
		fs.add("src_port", "%s", h.SrcPort)
		fs.add("dst_port", "%s", h.DstPort)
		fs.add("length", "%d", h.Length)
		fs.add("checksum", "0x%04x", h.Checksum)
	case *headers.Data:
		fs.add("bytes", "%d", len(h.Bytes))
		if len(h.Bytes) > 0 {
			dump := h.Bytes
			if len(dump) > maxDataBytes {
				dump = dump[:maxDataBytes]
			}
			fs.add("hex", "%s", hex.EncodeToString(dump))
		}
		fs = append(fs, dhcpv6Options(h)...)
	}
	return fs
}

// dhcpv6Options lists the options of a client/server DHCPv6 message carried
// in UDP data. Relay messages and anything that does not parse are skipped.
func dhcpv6Options(d *headers.Data) Fields {
	udp, ok := d.Parent().(*headers.UDP)
	if !ok {
		return nil
	}
	if !isDHCPv6Port(udp.SrcPort) && !isDHCPv6Port(udp.DstPort) {
		return nil
	}
	// msg-type(1) transaction-id(3); relay-forw/relay-repl use a longer header
	const msgHeader = 4
	if len(d.Bytes) < msgHeader || d.Bytes[0] >= 12 {
		return nil
	}
	opts, err := headers.ParseDHCPOptions(d.Bytes, msgHeader, len(d.Bytes)-msgHeader)
	if err != nil {
		return nil
	}
	var fs Fields
	fs.add("dhcpv6_msg_type", "%d", d.Bytes[0])
	for _, o := range opts {
		fs.add("dhcpv6_option", "%s (%d) len=%d", o.Name(), o.Code, o.Length)
	}
	return fs
}

func isDHCPv6Port(p packet.TpPort) bool {
	return p.Value() == dhcpv6ClientPort || p.Value() == dhcpv6ServerPort
}
