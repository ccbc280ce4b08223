package cmd

import (
	"fmt"

	"github.com/google/gopacket/layers"

	"firestige.xyz/pktchain/pkg/headers"
	"firestige.xyz/pktchain/pkg/packet"
)

// linkDeserializers maps the --link names to the outermost header.
var linkDeserializers = map[string]func() packet.Deserializer{
	"ethernet": headers.EthernetDeserializer,
	"ip":       headers.IPDeserializer,
	"llc":      headers.LLCDeserializer,
	"mpls":     headers.MPLSDeserializer,
}

// linkFromCapture names the outermost header of a capture file link type.
func linkFromCapture(lt layers.LinkType) (string, error) {
	switch lt {
	case layers.LinkTypeEthernet:
		return "ethernet", nil
	case layers.LinkTypeRaw, layers.LinkTypeIPv4, layers.LinkTypeIPv6:
		return "ip", nil
	default:
		return "", fmt.Errorf("unsupported capture link type %s; set --link", lt)
	}
}

// resolveLink picks the deserializer from, in order: the --link flag, the
// config file, the capture file link type.
func resolveLink(flag, configured string, capture *layers.LinkType) (string, packet.Deserializer, error) {
	name := flag
	if name == "" {
		name = configured
	}
	if name == "" && capture != nil {
		var err error
		if name, err = linkFromCapture(*capture); err != nil {
			return "", nil, err
		}
	}
	if name == "" {
		name = "ethernet"
	}
	d, ok := linkDeserializers[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown link %q (must be ethernet/ip/llc/mpls)", name)
	}
	return name, d(), nil
}
