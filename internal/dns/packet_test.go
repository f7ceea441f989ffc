package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketMarshalEncodesHeaderCountsFromSectionLengths(t *testing.T) {
	pkt := Packet{
		Header:    Header{ID: 0x0700, Flags: 0x0100},
		Questions: []Question{{Name: "cache.cachewarden.test", Type: uint16(TypeA), Class: uint16(ClassIN)}},
	}

	b, err := pkt.Marshal()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(b), HeaderSize)
	assert.Equal(t, []byte{0x07, 0x00}, b[0:2])
	// QDCount lives at bytes 4:6 and must reflect len(Questions), not
	// whatever Header.QDCount happened to be set to.
	assert.Equal(t, []byte{0x00, 0x01}, b[4:6])
}

func TestPacketMarshalWithAllFourSections(t *testing.T) {
	pkt := Packet{
		Header: Header{ID: 0xFEED, Flags: 0x8180},
		Questions: []Question{
			{Name: "resolver.cachewarden.test", Type: uint16(TypeA), Class: uint16(ClassIN)},
		},
		Answers: []Record{
			{Name: "resolver.cachewarden.test", Type: uint16(TypeA), Class: uint16(ClassIN), TTL: 300, Data: []byte{10, 1, 2, 3}},
		},
		Authorities: []Record{
			{Name: "cachewarden.test", Type: uint16(TypeNS), Class: uint16(ClassIN), TTL: 86400, Data: "ns1.cachewarden.test"},
		},
		Additionals: []Record{
			{Name: "ns1.cachewarden.test", Type: uint16(TypeA), Class: uint16(ClassIN), TTL: 86400, Data: []byte{10, 0, 0, 1}},
		},
	}

	b, err := pkt.Marshal()
	require.NoError(t, err)
	assert.NotEmpty(t, b)

	parsed, err := ParsePacket(b)
	require.NoError(t, err)
	assert.Len(t, parsed.Questions, 1)
	assert.Len(t, parsed.Answers, 1)
	assert.Len(t, parsed.Authorities, 1)
	assert.Len(t, parsed.Additionals, 1)
}

func TestPacketMarshalPropagatesQuestionEncodingError(t *testing.T) {
	overlongLabel := make([]byte, 70)
	for i := range overlongLabel {
		overlongLabel[i] = 'a'
	}
	pkt := Packet{
		Header:    Header{ID: 1, Flags: 0x0100, QDCount: 1},
		Questions: []Question{{Name: string(overlongLabel) + ".test", Type: uint16(TypeA), Class: uint16(ClassIN)}},
	}

	_, err := pkt.Marshal()
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestParsePacketReadsQuestionOnlyMessage(t *testing.T) {
	pkt := Packet{
		Header:    Header{ID: 0x2222, Flags: 0x0100, QDCount: 1},
		Questions: []Question{{Name: "cache.cachewarden.test", Type: uint16(TypeA), Class: uint16(ClassIN)}},
	}
	b, err := pkt.Marshal()
	require.NoError(t, err)

	parsed, err := ParsePacket(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x2222), parsed.Header.ID)
	require.Len(t, parsed.Questions, 1)
	assert.Equal(t, "cache.cachewarden.test", parsed.Questions[0].Name)
}

func TestParsePacketReadsAnswerSection(t *testing.T) {
	pkt := Packet{
		Header:    Header{ID: 0x3333, Flags: 0x8180, QDCount: 1, ANCount: 1},
		Questions: []Question{{Name: "cache.cachewarden.test", Type: uint16(TypeA), Class: uint16(ClassIN)}},
		Answers: []Record{
			{Name: "cache.cachewarden.test", Type: uint16(TypeA), Class: uint16(ClassIN), TTL: 300, Data: []byte{192, 0, 2, 1}},
		},
	}
	b, err := pkt.Marshal()
	require.NoError(t, err)

	parsed, err := ParsePacket(b)
	require.NoError(t, err)
	require.Len(t, parsed.Answers, 1)
	assert.Equal(t, "cache.cachewarden.test", parsed.Answers[0].Name)
}

func TestParsePacketRejectsMessageShorterThanHeader(t *testing.T) {
	_, err := ParsePacket([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestParsePacketRejectsTruncatedQuestion(t *testing.T) {
	msg := []byte{
		0x12, 0x34, // ID
		0x01, 0x00, // Flags
		0x00, 0x01, // QDCount = 1
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // AN/NS/AR = 0
		3, 'w', 'w', // label claims 3 bytes but only 2 follow
	}

	_, err := ParsePacket(msg)
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestParsePacketIgnoresOversizedSectionCountsBeyondCap(t *testing.T) {
	// A header claiming far more answers than MaxRRPerSection must not
	// blow up the preallocation; ParsePacket still fails once it actually
	// tries to read a record that isn't there, but it must fail from a
	// bounds check, not an out-of-memory allocation.
	msg := []byte{
		0x00, 0x01, 0x81, 0x80,
		0x00, 0x00, // QDCount = 0
		0xFF, 0xFF, // ANCount = 65535
		0x00, 0x00, 0x00, 0x00,
	}

	_, err := ParsePacket(msg)
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestPacketRoundTripsThroughWireFormat(t *testing.T) {
	original := Packet{
		Header: Header{ID: 0xABCD, Flags: 0x8580, QDCount: 1, ANCount: 2},
		Questions: []Question{
			{Name: "multi.cachewarden.test", Type: uint16(TypeA), Class: uint16(ClassIN)},
		},
		Answers: []Record{
			{Name: "multi.cachewarden.test", Type: uint16(TypeA), Class: uint16(ClassIN), TTL: 300, Data: []byte{10, 0, 0, 1}},
			{Name: "multi.cachewarden.test", Type: uint16(TypeA), Class: uint16(ClassIN), TTL: 300, Data: []byte{10, 0, 0, 2}},
		},
	}

	b, err := original.Marshal()
	require.NoError(t, err)

	parsed, err := ParsePacket(b)
	require.NoError(t, err)
	assert.Equal(t, original.Header.ID, parsed.Header.ID)
	assert.Equal(t, original.Header.Flags, parsed.Header.Flags)
	assert.Len(t, parsed.Questions, len(original.Questions))
	assert.Len(t, parsed.Answers, len(original.Answers))
}
