package headers

import (
	"bytes"
	"encoding/binary"

	"github.com/insomniacslk/dhcp/dhcpv6"

	"firestige.xyz/pktchain/pkg/packet"
)

// DHCPOptionHeaderLength is the size of the code and length fields.
const DHCPOptionHeaderLength = 4

// DHCPOption is a DHCPv6-style option record. It is plain data: Length is
// written as stored and is not checked against len(Data).
type DHCPOption struct {
	Code   uint16
	Length uint16
	Data   []byte
}

// NewDHCPOption builds an option whose Length matches data.
func NewDHCPOption(code uint16, data []byte) DHCPOption {
	return DHCPOption{Code: code, Length: uint16(len(data)), Data: copyBytes(data)}
}

// Name is the IANA option name, e.g. "Client Identifier".
func (o DHCPOption) Name() string {
	return dhcpv6.OptionCode(o.Code).String()
}

func (o DHCPOption) Serialize() []byte {
	out := make([]byte, DHCPOptionHeaderLength, DHCPOptionHeaderLength+len(o.Data))
	binary.BigEndian.PutUint16(out[0:2], o.Code)
	binary.BigEndian.PutUint16(out[2:4], o.Length)
	return append(out, o.Data...)
}

func (o DHCPOption) Equal(other DHCPOption) bool {
	return o.Code == other.Code && o.Length == other.Length && bytes.Equal(o.Data, other.Data)
}

// ToDHCPv6 converts the record to an insomniacslk/dhcp generic option.
func (o DHCPOption) ToDHCPv6() *dhcpv6.OptionGeneric {
	return &dhcpv6.OptionGeneric{OptionCode: dhcpv6.OptionCode(o.Code), OptionData: copyBytes(o.Data)}
}

// DHCPOptionFromDHCPv6 converts any insomniacslk/dhcp option to a record.
func DHCPOptionFromDHCPv6(opt dhcpv6.Option) DHCPOption {
	return NewDHCPOption(uint16(opt.Code()), opt.ToBytes())
}

// ParseDHCPOption reads one record from the window and returns it with the
// number of bytes consumed.
func ParseDHCPOption(data []byte, offset, length int) (DHCPOption, int, error) {
	if err := packet.CheckInput("DHCPOption", data, offset, length, DHCPOptionHeaderLength); err != nil {
		return DHCPOption{}, 0, err
	}
	o := DHCPOption{
		Code:   binary.BigEndian.Uint16(data[offset : offset+2]),
		Length: binary.BigEndian.Uint16(data[offset+2 : offset+4]),
	}
	n := DHCPOptionHeaderLength + int(o.Length)
	if err := packet.CheckHeaderLength("DHCPOption", offset, length, n); err != nil {
		return DHCPOption{}, 0, err
	}
	o.Data = copyBytes(data[offset+DHCPOptionHeaderLength : offset+n])
	return o, n, nil
}

// ParseDHCPOptions reads records until the window is used up.
func ParseDHCPOptions(data []byte, offset, length int) ([]DHCPOption, error) {
	if err := packet.CheckInput("DHCPOption", data, offset, length, 0); err != nil {
		return nil, err
	}
	var opts []DHCPOption
	for length > 0 {
		o, n, err := ParseDHCPOption(data, offset, length)
		if err != nil {
			return nil, err
		}
		opts = append(opts, o)
		offset += n
		length -= n
	}
	return opts, nil
}
