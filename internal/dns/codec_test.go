package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNameProducesLengthPrefixedLabels(t *testing.T) {
	b, err := EncodeName("cachewarden.test")
	require.NoError(t, err)
	assert.Equal(t, []byte{11, 'c', 'a', 'c', 'h', 'e', 'w', 'a', 'r', 'd', 'e', 'n', 4, 't', 'e', 's', 't', 0}, b)
}

func TestEncodeNameRejectsLabelOver63Bytes(t *testing.T) {
	label := make([]byte, 64)
	for i := range label {
		label[i] = 'a'
	}
	_, err := EncodeName(string(label) + ".test")
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestEncodeNameRejectsNonASCII(t *testing.T) {
	_, err := EncodeName("café.test")
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestDecodeNameReadsUncompressedLabels(t *testing.T) {
	msg := []byte{5, 'c', 'a', 'c', 'h', 'e', 11, 'c', 'a', 'c', 'h', 'e', 'w', 'a', 'r', 'd', 'e', 'n', 4, 't', 'e', 's', 't', 0}

	off := 0
	name, err := DecodeName(msg, &off)
	require.NoError(t, err)
	assert.Equal(t, "cache.cachewarden.test", name)
	assert.Equal(t, len(msg), off)
}

func TestDecodeNameFollowsCompressionPointer(t *testing.T) {
	// "cachewarden.test" spelled out at offset 0, then a second name,
	// "www.cachewarden.test", that reuses it via a pointer back to 0.
	base := []byte{11, 'c', 'a', 'c', 'h', 'e', 'w', 'a', 'r', 'd', 'e', 'n', 4, 't', 'e', 's', 't', 0}
	pointingName := []byte{3, 'w', 'w', 'w', 0xC0, 0x00} // "www" + pointer to offset 0
	msg := append(append([]byte{}, base...), pointingName...)

	off := len(base)
	name, err := DecodeName(msg, &off)
	require.NoError(t, err)
	assert.Equal(t, "www.cachewarden.test", name)
	assert.Equal(t, len(msg), off)
}

func TestDecodeNameDetectsCompressionPointerLoop(t *testing.T) {
	// A pointer at offset 0 that points right back at offset 0.
	msg := []byte{0xC0, 0x00}

	off := 0
	_, err := DecodeName(msg, &off)
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestDecodeNameRejectsReservedLabelBits(t *testing.T) {
	msg := []byte{0x40, 0x00} // high bits 01: reserved, not a valid label or pointer
	off := 0
	_, err := DecodeName(msg, &off)
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestNameRoundTripsThroughEncodeDecode(t *testing.T) {
	b, err := EncodeName("edge-01.cachewarden.test")
	require.NoError(t, err)

	off := 0
	name, err := DecodeName(b, &off)
	require.NoError(t, err)
	assert.Equal(t, "edge-01.cachewarden.test", name)
}
