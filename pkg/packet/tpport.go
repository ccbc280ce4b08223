package packet

import "strconv"

// MaxTpPort is the largest transport port.
const MaxTpPort = 0xFFFF

// TpPort is a transport-layer port number.
type TpPort struct {
	v uint16
}

// NewTpPort validates v against 0..65535.
func NewTpPort(v int) (TpPort, error) {
	if v < 0 || v > MaxTpPort {
		return TpPort{}, &ArgumentError{Type: "TpPort", Value: v, Limit: "0..65535"}
	}
	return TpPort{v: uint16(v)}, nil
}

// MustTpPort is NewTpPort that panics on error.
func MustTpPort(v int) TpPort {
	p, err := NewTpPort(v)
	if err != nil {
		panic(err)
	}
	return p
}

// TpPortFrom wraps a wire value; every uint16 is in range.
func TpPortFrom(v uint16) TpPort { return TpPort{v: v} }

func (p TpPort) Value() uint16 { return p.v }

func (p TpPort) String() string { return strconv.Itoa(int(p.v)) }
