package packet

import (
	"testing"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGopacketDecodesRegisteredLayer(t *testing.T) {
	gp := gopacket.NewPacket([]byte{1, 2, 3}, layerTypeCounter, gopacket.Default)
	require.Nil(t, gp.ErrorLayer())

	p, ok := FromGopacket(gp, layerTypeCounter)
	require.True(t, ok)
	assert.Len(t, Layers(p), 3)
	assert.Equal(t, []byte{1, 2, 3}, gp.Layer(layerTypeCounter).LayerContents())

	_, ok = FromGopacket(gp, layerTypeLeafOnly)
	assert.False(t, ok)
}

func TestGopacketReportsDecodeError(t *testing.T) {
	gp := gopacket.NewPacket(nil, layerTypeCounter, gopacket.Default)

	require.NotNil(t, gp.ErrorLayer())
	assert.ErrorIs(t, gp.ErrorLayer().Error(), ErrTruncated)
}
