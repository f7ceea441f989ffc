// Package capture implements the userspace half of the packet observer
// pipeline: decoding ring buffer frames (spec §3, §4.B) and driving the
// Ring Consumer (spec §4.C) that turns them into Answers.
package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// MaxFrameLength is the largest payload a ring slot can carry (spec §4.A
// step 6 / §4.B: slots are fixed at 1510 bytes, 10 of which are the
// length+timestamp header).
const MaxFrameLength = 1500

// frameHeaderSize is the 2-byte length prefix plus the 8-byte kernel
// timestamp written at the start of every ring slot (spec §3).
const frameHeaderSize = 2 + 8

// ErrFrame is the sentinel wrapped by every frame-decoding error.
var ErrFrame = errors.New("capture: malformed ring buffer frame")

// Frame is one captured, timestamped Ethernet frame drained from the
// shared ring buffer.
type Frame struct {
	Length            uint16
	KernelMonotonicNS uint64
	Payload           []byte
}

// DecodeFrame parses one ring buffer record: a u16 length, a u64
// monotonic-nanosecond kernel timestamp, then exactly Length bytes of raw
// Ethernet frame, all written unaligned in host byte order (spec §3, §6).
func DecodeFrame(raw []byte) (Frame, error) {
	if len(raw) < frameHeaderSize {
		return Frame{}, fmt.Errorf("%w: slot shorter than header (%d bytes)", ErrFrame, len(raw))
	}
	length := binary.LittleEndian.Uint16(raw[0:2])
	ts := binary.LittleEndian.Uint64(raw[2:10])

	if int(length) > MaxFrameLength {
		return Frame{}, fmt.Errorf("%w: encoded length %d exceeds %d", ErrFrame, length, MaxFrameLength)
	}
	if frameHeaderSize+int(length) > len(raw) {
		return Frame{}, fmt.Errorf("%w: encoded length %d overruns slot (%d bytes available)", ErrFrame, length, len(raw)-frameHeaderSize)
	}

	payload := make([]byte, length)
	copy(payload, raw[frameHeaderSize:frameHeaderSize+int(length)])
	return Frame{Length: length, KernelMonotonicNS: ts, Payload: payload}, nil
}

// KernelTimestamp converts the embedded monotonic nanosecond counter to a
// duration since boot. Unused downstream in favor of the consumer's own
// wall-clock observed_at (spec §9 Open Question (a)); kept for
// implementations that later want sub-millisecond accuracy.
func (f Frame) KernelTimestamp() time.Duration {
	return time.Duration(f.KernelMonotonicNS)
}
