package packet

import "strconv"

// MaxMplsLabel is the largest 20-bit MPLS label.
const MaxMplsLabel = 0xFFFFF

// Reserved labels, RFC 3032 and RFC 7274.
var (
	MplsIPv4ExplicitNull = MplsLabel{v: 0}
	MplsRouterAlert      = MplsLabel{v: 1}
	MplsIPv6ExplicitNull = MplsLabel{v: 2}
	MplsImplicitNull     = MplsLabel{v: 3}
	MplsEntropyIndicator = MplsLabel{v: 7}
	MplsGAL              = MplsLabel{v: 13}
	MplsOAMAlert         = MplsLabel{v: 14}
	MplsExtension        = MplsLabel{v: 15}
)

// MplsLabel is an MPLS label value.
type MplsLabel struct {
	v uint32
}

// NewMplsLabel validates v against 0..0xFFFFF.
func NewMplsLabel(v int) (MplsLabel, error) {
	if v < 0 || v > MaxMplsLabel {
		return MplsLabel{}, &ArgumentError{Type: "MplsLabel", Value: v, Limit: "0..1048575"}
	}
	return MplsLabel{v: uint32(v)}, nil
}

// MustMplsLabel is NewMplsLabel that panics on error.
func MustMplsLabel(v int) MplsLabel {
	l, err := NewMplsLabel(v)
	if err != nil {
		panic(err)
	}
	return l
}

// MplsLabelFromEntry extracts the label from a 32-bit label stack entry.
func MplsLabelFromEntry(entry uint32) MplsLabel { return MplsLabel{v: entry >> 12} }

func (l MplsLabel) Value() uint32 { return l.v }

// IsReserved reports labels 0 through 15.
func (l MplsLabel) IsReserved() bool { return l.v <= 15 }

func (l MplsLabel) String() string { return strconv.FormatUint(uint64(l.v), 10) }
