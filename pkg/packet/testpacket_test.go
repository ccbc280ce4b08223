package packet

import "github.com/google/gopacket"

var (
	layerTypeCounter  = RegisterLayer(1990, "TestCounter", func() Packet { return &counter{} })
	layerTypeLeafOnly = RegisterLayer(1991, "TestLeafOnly", func() Packet { return &leafOnly{} })
	// never registered
	layerTypeOrphan = gopacket.LayerType(1992)
)

// counter is a one-byte header whose payload is another counter. It counts
// ResetChecksum calls and keeps the payload-only equality of Base.
type counter struct {
	Base
	Value  uint8
	resets int
}

func (c *counter) LayerType() gopacket.LayerType { return layerTypeCounter }

func (c *counter) ResetChecksum() {
	c.resets++
	c.Base.ResetChecksum()
}

func (c *counter) Serialize() ([]byte, error) {
	out := []byte{c.Value}
	if c.Payload() != nil {
		inner, err := c.Payload().Serialize()
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}
	return out, nil
}

func (c *counter) Deserialize(data []byte, offset, length int) (Packet, error) {
	if err := CheckInput("TestCounter", data, offset, length, 1); err != nil {
		return nil, err
	}
	c.Value = data[offset]
	Attach(c, nil)
	if length > 1 {
		inner, err := NewDeserializer(func() Packet { return &counter{} })(data, offset+1, length-1)
		if err != nil {
			return nil, err
		}
		Attach(c, inner)
	}
	return c, nil
}

func (c *counter) Clone() (Packet, error) { return Clone(c) }

// leafOnly serializes its own byte and never its payload.
type leafOnly struct {
	Base
	Value uint8
}

func (l *leafOnly) LayerType() gopacket.LayerType { return layerTypeLeafOnly }

func (l *leafOnly) Serialize() ([]byte, error) { return []byte{l.Value}, nil }

func (l *leafOnly) Deserialize(data []byte, offset, length int) (Packet, error) {
	if err := CheckInput("TestLeafOnly", data, offset, length, 1); err != nil {
		return nil, err
	}
	l.Value = data[offset]
	return l, nil
}

func (l *leafOnly) Clone() (Packet, error) { return Clone(l) }

// orphan has no registered empty constructor.
type orphan struct {
	Base
}

func (o *orphan) LayerType() gopacket.LayerType { return layerTypeOrphan }

func (o *orphan) Serialize() ([]byte, error) { return nil, nil }

func (o *orphan) Deserialize(data []byte, offset, length int) (Packet, error) { return o, nil }

func (o *orphan) Clone() (Packet, error) { return Clone(o) }

// chain builds counters with the given values, outermost first.
func chain(values ...uint8) []*counter {
	out := make([]*counter, len(values))
	for i, v := range values {
		out[i] = &counter{Value: v}
		if i > 0 {
			Attach(out[i-1], out[i])
		}
	}
	return out
}
