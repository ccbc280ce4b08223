// Package headers provides concrete protocol headers built on the packet
// contract: link control, Ethernet with 802.1Q/QinQ tags, MPLS, IPv4,
// IPv6, UDP, opaque data, and DHCP option records.
package headers

import "firestige.xyz/pktchain/pkg/packet"

// Layer types of the headers in this package. Numbers sit in gopacket's
// fast application range.
var (
	LayerTypeData     = packet.RegisterLayer(1100, "Data", func() packet.Packet { return &Data{} })
	LayerTypeLLC      = packet.RegisterLayer(1101, "LLC", func() packet.Packet { return &LLC{} })
	LayerTypeEthernet = packet.RegisterLayer(1102, "Ethernet", func() packet.Packet { return &Ethernet{} })
	LayerTypeMPLS     = packet.RegisterLayer(1103, "MPLS", func() packet.Packet { return &MPLS{} })
	LayerTypeIPv4     = packet.RegisterLayer(1104, "IPv4", func() packet.Packet { return &IPv4{} })
	LayerTypeIPv6     = packet.RegisterLayer(1105, "IPv6", func() packet.Packet { return &IPv6{} })
	LayerTypeUDP      = packet.RegisterLayer(1106, "UDP", func() packet.Packet { return &UDP{} })
)
