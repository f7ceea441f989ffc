package capture

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeSlot(length uint16, ts uint64, payload []byte) []byte {
	slot := make([]byte, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint16(slot[0:2], length)
	binary.LittleEndian.PutUint64(slot[2:10], ts)
	copy(slot[frameHeaderSize:], payload)
	return slot
}

func TestDecodeFrameRoundTrip(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	slot := encodeSlot(uint16(len(payload)), 123456789, payload)

	f, err := DecodeFrame(slot)
	require.NoError(t, err)
	assert.Equal(t, uint16(len(payload)), f.Length)
	assert.Equal(t, uint64(123456789), f.KernelMonotonicNS)
	assert.Equal(t, payload, f.Payload)
}

func TestDecodeFrameRejectsShortHeader(t *testing.T) {
	_, err := DecodeFrame([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrame)
}

func TestDecodeFrameRejectsOverLengthEncoding(t *testing.T) {
	slot := encodeSlot(MaxFrameLength+1, 0, make([]byte, MaxFrameLength+1))
	_, err := DecodeFrame(slot)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrame)
}

func TestDecodeFrameAcceptsMaxLength(t *testing.T) {
	payload := make([]byte, MaxFrameLength)
	slot := encodeSlot(MaxFrameLength, 1, payload)
	f, err := DecodeFrame(slot)
	require.NoError(t, err)
	assert.Equal(t, uint16(MaxFrameLength), f.Length)
}

func TestDecodeFrameRejectsTruncatedPayload(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04}
	slot := encodeSlot(10, 0, payload) // claims 10 bytes, only 4 present
	_, err := DecodeFrame(slot)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrame)
}

func TestDecodeFrameZeroLengthPayload(t *testing.T) {
	slot := encodeSlot(0, 42, nil)
	f, err := DecodeFrame(slot)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), f.Length)
	assert.Empty(t, f.Payload)
}

func TestKernelTimestamp(t *testing.T) {
	f := Frame{KernelMonotonicNS: uint64(5 * time.Second)}
	assert.Equal(t, 5*time.Second, f.KernelTimestamp())
}
