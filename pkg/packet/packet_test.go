package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachLinksBothSides(t *testing.T) {
	outer := &counter{Value: 1}
	inner := &counter{Value: 2}

	Attach(outer, inner)

	assert.Same(t, inner, outer.Payload())
	assert.Same(t, outer, inner.Parent())
}

func TestAttachNilDetachesPayload(t *testing.T) {
	c := chain(1, 2)

	Attach(c[0], nil)

	assert.Nil(t, c[0].Payload())
	assert.Nil(t, c[1].Parent())
}

func TestSetPayloadLeavesParentAlone(t *testing.T) {
	outer := &counter{Value: 1}
	inner := &counter{Value: 2}

	outer.SetPayload(inner)

	assert.Same(t, inner, outer.Payload())
	assert.Nil(t, inner.Parent())
}

func TestResetChecksumPropagatesToAncestors(t *testing.T) {
	c := chain(1, 2, 3, 4)

	c[2].ResetChecksum()

	assert.Equal(t, 1, c[0].resets, "outermost")
	assert.Equal(t, 1, c[1].resets)
	assert.Equal(t, 1, c[2].resets, "caller")
	assert.Equal(t, 0, c[3].resets, "descendant")
}

func TestResetChecksumSingleLayer(t *testing.T) {
	c := &counter{Value: 1}

	c.ResetChecksum()
	c.ResetChecksum()

	assert.Equal(t, 2, c.resets)
}

func TestResetChecksumIsIdempotent(t *testing.T) {
	c := chain(1, 2, 3)

	c[2].ResetChecksum()
	c[2].ResetChecksum()

	for i, layer := range c {
		assert.Equal(t, 2, layer.resets, "layer %d", i)
	}
}

func TestBaseEqualIgnoresOwnFields(t *testing.T) {
	a := &counter{Value: 1}
	b := &counter{Value: 200}

	assert.True(t, a.Equal(b), "both without payload")
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestBaseEqualComparesPayloads(t *testing.T) {
	a := chain(1, 7)
	b := chain(99, 42)
	c := chain(5)

	// inner counters compare equal by payload too (both have none)
	assert.True(t, a[0].Equal(b[0]))
	assert.False(t, a[0].Equal(c[0]), "one side without payload")
	assert.False(t, c[0].Equal(a[0]))
	assert.False(t, a[0].Equal(nil))
}

func TestBaseEqualAcrossConcreteTypes(t *testing.T) {
	assert.True(t, (&counter{Value: 1}).Equal(&leafOnly{Value: 2}))
}

func TestLayersOutermostFind(t *testing.T) {
	c := chain(1, 2, 3)

	layers := Layers(c[0])
	require.Len(t, layers, 3)
	assert.Same(t, c[2], layers[2])

	assert.Same(t, c[0], Outermost(c[2]))
	assert.Same(t, c[0], Outermost(c[0]))
	assert.Nil(t, Outermost(nil))

	assert.Same(t, c[0], Find(c[0], layerTypeCounter))
	assert.Nil(t, Find(c[0], layerTypeLeafOnly))
	assert.Empty(t, Layers(nil))
}

func TestCheckInput(t *testing.T) {
	data := make([]byte, 10)

	assert.NoError(t, CheckInput("x", data, 0, 10, 10))
	assert.NoError(t, CheckInput("x", data, 10, 0, 0))
	assert.ErrorIs(t, CheckInput("x", data, 2, 3, 4), ErrTruncated)
	assert.ErrorIs(t, CheckInput("x", data, 8, 3, 1), ErrOutOfBounds)
	assert.ErrorIs(t, CheckInput("x", data, -1, 3, 1), ErrOutOfBounds)
	assert.ErrorIs(t, CheckInput("x", data, 0, -1, 0), ErrOutOfBounds)
	assert.ErrorIs(t, CheckInput("x", nil, 0, 1, 0), ErrOutOfBounds)

	var de *DeserializationError
	require.ErrorAs(t, CheckInput("LLC", data, 4, 2, 3), &de)
	assert.Equal(t, "LLC", de.Layer)
	assert.Equal(t, 4, de.Offset)
	assert.Contains(t, de.Error(), "need 3 bytes, have 2")
}

func TestDeserializerNeverReadsPastWindow(t *testing.T) {
	// window covers the middle two bytes only
	data := []byte{0xEE, 0x01, 0x02, 0xEE}

	p, err := NewDeserializer(func() Packet { return &counter{} })(data, 1, 2)
	require.NoError(t, err)

	out, err := p.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, out)
	assert.Equal(t, []byte{0xEE, 0x01, 0x02, 0xEE}, data, "input untouched")
}
