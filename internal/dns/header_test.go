package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderMarshalEncodesFieldsBigEndian(t *testing.T) {
	h := Header{
		ID:      0x4242,
		Flags:   0x8180, // QR=1, RD=1, RA=1, RCODE=0: a plain successful reply
		QDCount: 1,
		ANCount: 2,
		NSCount: 0,
		ARCount: 1,
	}

	b, err := h.Marshal()
	require.NoError(t, err)
	require.Len(t, b, HeaderSize)

	assert.Equal(t, []byte{0x42, 0x42}, b[0:2], "ID")
	assert.Equal(t, []byte{0x81, 0x80}, b[2:4], "Flags")
	assert.Equal(t, []byte{0x00, 0x01}, b[4:6], "QDCount")
	assert.Equal(t, []byte{0x00, 0x02}, b[6:8], "ANCount")
	assert.Equal(t, []byte{0x00, 0x00}, b[8:10], "NSCount")
	assert.Equal(t, []byte{0x00, 0x01}, b[10:12], "ARCount")
}

func TestParseHeaderDecodesFieldsAndAdvancesOffset(t *testing.T) {
	msg := []byte{
		0x42, 0x42, // ID
		0x81, 0x80, // Flags
		0x00, 0x01, // QDCount
		0x00, 0x02, // ANCount
		0x00, 0x00, // NSCount
		0x00, 0x01, // ARCount
	}

	off := 0
	h, err := ParseHeader(msg, &off)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x4242), h.ID)
	assert.Equal(t, uint16(0x8180), h.Flags)
	assert.Equal(t, uint16(1), h.QDCount)
	assert.Equal(t, uint16(2), h.ANCount)
	assert.Equal(t, uint16(0), h.NSCount)
	assert.Equal(t, uint16(1), h.ARCount)
	assert.Equal(t, HeaderSize, off, "offset must land exactly past the 12-byte header")
}

func TestParseHeaderRejectsTruncatedInput(t *testing.T) {
	for name, n := range map[string]int{"empty": 0, "one field": 2, "eleven bytes": 11} {
		t.Run(name, func(t *testing.T) {
			off := 0
			_, err := ParseHeader(make([]byte, n), &off)
			assert.ErrorIs(t, err, ErrDNSError)
		})
	}
}

func TestParseHeaderReadsFromNonZeroOffset(t *testing.T) {
	const preamble = 7
	msg := make([]byte, preamble+HeaderSize)
	msg[preamble] = 0xBE
	msg[preamble+1] = 0xEF

	off := preamble
	h, err := ParseHeader(msg, &off)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), h.ID)
	assert.Equal(t, preamble+HeaderSize, off)
}

func TestHeaderRoundTripsThroughWireFormat(t *testing.T) {
	original := Header{
		ID:      0x9001,
		Flags:   0x0100, // standard query, recursion desired
		QDCount: 1,
	}

	b, err := original.Marshal()
	require.NoError(t, err)

	off := 0
	parsed, err := ParseHeader(b, &off)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}
