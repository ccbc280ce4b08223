package packet

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// minChassisOctets is the shortest rendering, the width of a MAC address.
const minChassisOctets = 6

// ChassisID identifies a device chassis, typically a MAC-derived 64-bit
// value as carried in LLDP.
type ChassisID struct {
	v uint64
}

// NewChassisID wraps v. Every uint64 is a valid chassis identifier.
func NewChassisID(v uint64) ChassisID { return ChassisID{v: v} }

// ParseChassisID accepts colon-separated octets ("00:1b:21:3c:4d:5e"),
// or a hex number with or without a 0x prefix.
func ParseChassisID(s string) (ChassisID, error) {
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 8 {
			return ChassisID{}, &ArgumentError{Type: "ChassisID", Value: s, Limit: "at most 8 octets"}
		}
		var v uint64
		for _, part := range parts {
			if len(part) == 0 || len(part) > 2 {
				return ChassisID{}, &ArgumentError{Type: "ChassisID", Value: s, Limit: "octets of 1-2 hex digits"}
			}
			o, err := strconv.ParseUint(part, 16, 8)
			if err != nil {
				return ChassisID{}, &ArgumentError{Type: "ChassisID", Value: s, Limit: "hex octets"}
			}
			v = v<<8 | o
		}
		return ChassisID{v: v}, nil
	}
	hex := strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return ChassisID{}, &ArgumentError{Type: "ChassisID", Value: s, Limit: "64-bit hex"}
	}
	return ChassisID{v: v}, nil
}

func (c ChassisID) Value() uint64 { return c.v }

// String renders the value as colon-separated lower-case hex octets,
// dropping leading zero octets down to six.
func (c ChassisID) String() string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], c.v)
	start := 0
	for start < len(b)-minChassisOctets && b[start] == 0 {
		start++
	}
	parts := make([]string, 0, len(b)-start)
	for _, o := range b[start:] {
		parts = append(parts, fmt.Sprintf("%02x", o))
	}
	return strings.Join(parts, ":")
}
