package packet

import "strconv"

// MaxVlanID is the largest 12-bit VLAN identifier.
const MaxVlanID = 0x0FFF

// VlanID is an IEEE 802.1Q VLAN identifier.
type VlanID struct {
	v uint16
}

// NewVlanID validates v against 0..4095.
func NewVlanID(v int) (VlanID, error) {
	if v < 0 || v > MaxVlanID {
		return VlanID{}, &ArgumentError{Type: "VlanID", Value: v, Limit: "0..4095"}
	}
	return VlanID{v: uint16(v)}, nil
}

// MustVlanID is NewVlanID that panics on error.
func MustVlanID(v int) VlanID {
	id, err := NewVlanID(v)
	if err != nil {
		panic(err)
	}
	return id
}

// VlanIDFromTCI extracts the VLAN identifier from a tag control field.
func VlanIDFromTCI(tci uint16) VlanID { return VlanID{v: tci & MaxVlanID} }

func (id VlanID) Value() uint16 { return id.v }

// IsReserved reports the values 802.1Q sets aside: 0 (priority tag only)
// and 4095.
func (id VlanID) IsReserved() bool { return id.v == 0 || id.v == MaxVlanID }

func (id VlanID) String() string { return strconv.Itoa(int(id.v)) }
