package capture

import (
	"context"
	"fmt"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/ringbuf"
	"github.com/cilium/ebpf/rlimit"
)

// Observer owns the loaded BPF program, its attachment to an interface,
// and the ring buffer map it writes frames into (spec §4.A, §4.B).
type Observer struct {
	coll   *ebpf.Collection
	link   link.Link
	reader *ringbuf.Reader
}

// LoadObserver loads the compiled packet-classification program from
// objPath (produced by the bpf2go toolchain from bpf/dns_observer.c, see
// the go:generate directive in generate.go) and attaches it to iface at
// the earliest receive hook.
func LoadObserver(objPath, iface string) (*Observer, error) {
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, fmt.Errorf("capture: raising locked-memory rlimit: %w", err)
	}

	spec, err := ebpf.LoadCollectionSpec(objPath)
	if err != nil {
		return nil, fmt.Errorf("capture: loading BPF object %s: %w", objPath, err)
	}
	coll, err := ebpf.NewCollection(spec)
	if err != nil {
		return nil, fmt.Errorf("capture: loading BPF collection: %w", err)
	}

	prog, ok := coll.Programs["observe_dns_reply"]
	if !ok {
		coll.Close()
		return nil, fmt.Errorf("capture: BPF object missing program observe_dns_reply")
	}
	ringMap, ok := coll.Maps["frames"]
	if !ok {
		coll.Close()
		return nil, fmt.Errorf("capture: BPF object missing ring buffer map frames")
	}

	ifc, err := interfaceByName(iface)
	if err != nil {
		coll.Close()
		return nil, fmt.Errorf("capture: resolving interface %s: %w", iface, err)
	}

	lnk, err := link.AttachXDP(link.XDPOptions{
		Program:   prog,
		Interface: ifc.Index,
	})
	if err != nil {
		coll.Close()
		return nil, fmt.Errorf("capture: attaching to %s (try skb-mode): %w", iface, err)
	}

	reader, err := ringbuf.NewReader(ringMap)
	if err != nil {
		lnk.Close()
		coll.Close()
		return nil, fmt.Errorf("capture: opening ring buffer reader: %w", err)
	}

	return &Observer{coll: coll, link: lnk, reader: reader}, nil
}

// Read blocks until a frame is ready, ctx is cancelled, or the reader is
// closed.
func (o *Observer) Read(ctx context.Context) (Frame, error) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			o.reader.Close()
		case <-done:
		}
	}()
	defer close(done)

	rec, err := o.reader.Read()
	if err != nil {
		if ctx.Err() != nil {
			return Frame{}, ctx.Err()
		}
		return Frame{}, err
	}
	return DecodeFrame(rec.RawSample)
}

// Close detaches the program and releases the ring buffer reader.
func (o *Observer) Close() error {
	var errs []error
	if err := o.reader.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := o.link.Close(); err != nil {
		errs = append(errs, err)
	}
	o.coll.Close()
	if len(errs) > 0 {
		return fmt.Errorf("capture: closing observer: %v", errs)
	}
	return nil
}
