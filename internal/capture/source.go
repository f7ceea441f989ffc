package capture

import (
	"context"
	"fmt"
	"net"
)

// FrameSource abstracts the shared ring buffer's consumer side. The Ring
// Consumer cannot tell whether frames arrive from a kernel-resident BPF
// ring buffer or an in-process pcap replay (spec §9's design note); both
// the production Observer and the test PcapSource implement it.
type FrameSource interface {
	// Read blocks until a frame is available, ctx is cancelled, or the
	// source is exhausted/closed, in which case it returns an error.
	Read(ctx context.Context) (Frame, error)
	Close() error
}

func interfaceByName(name string) (*net.Interface, error) {
	ifc, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("interface %s: %w", name, err)
	}
	return ifc, nil
}
