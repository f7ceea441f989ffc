package capture

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/pcapgo"
)

// PcapSource replays a pcap file as a FrameSource, standing in for the
// kernel ring buffer in tests (spec §9's design note that the Observer
// may be realized, for testing, as an in-process packet tap over a pcap
// file). Frames are synthesized with a monotonically increasing
// KernelMonotonicNS counter since pcap per-packet timestamps are
// wall-clock, not the kernel monotonic clock the real Observer uses.
type PcapSource struct {
	file    *os.File
	reader  *pcapgo.Reader
	counter uint64
}

// NewPcapSource opens path as a classic pcap capture file.
func NewPcapSource(path string) (*PcapSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: opening pcap file %s: %w", path, err)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("capture: reading pcap header %s: %w", path, err)
	}
	return &PcapSource{file: f, reader: r}, nil
}

// Read returns the next captured frame, or io.EOF once the file is
// exhausted.
func (p *PcapSource) Read(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	data, _, err := p.reader.ReadPacketData()
	if err != nil {
		if err == io.EOF {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("capture: reading pcap packet: %w", err)
	}

	length := len(data)
	if length > MaxFrameLength {
		length = MaxFrameLength
		data = data[:length]
	}
	p.counter++
	payload := make([]byte, length)
	copy(payload, data)
	return Frame{Length: uint16(length), KernelMonotonicNS: p.counter, Payload: payload}, nil
}

// Close releases the underlying file handle.
func (p *PcapSource) Close() error {
	return p.file.Close()
}
