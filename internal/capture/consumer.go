package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cachewarden/cachewarden/internal/answer"
	"github.com/cachewarden/cachewarden/internal/dns"
	"github.com/cachewarden/cachewarden/internal/pool"
)

// dnsPayloadOffset is the fixed offset of the DNS payload within a
// captured Ethernet frame: 14 (Ethernet) + 20 (IPv4, no options) + 8 (UDP)
// (spec §4.C).
const dnsPayloadOffset = 42

// Consumer is the Ring Consumer (Component C): it drains Frames from a
// FrameSource, parses each one's DNS payload, and forwards the resulting
// Answers to the Aggregator as one batch per frame over a bounded
// channel.
type Consumer struct {
	source FrameSource
	out    chan<- []answer.Answer
	logger *slog.Logger

	scratch *pool.Pool[[]answer.Answer]

	dropped atomic.Int64
}

// NewConsumer returns a Consumer reading from source and publishing
// batches to out.
func NewConsumer(source FrameSource, out chan<- []answer.Answer, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		source:  source,
		out:     out,
		logger:  logger,
		scratch: pool.New(func() []answer.Answer { return make([]answer.Answer, 0, 16) }),
	}
}

// Run drains the source until ctx is cancelled or the source is
// exhausted/fails. A frame source failure is fatal to the consumer task,
// matching spec §7's propagation policy for a dead upstream.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		frame, err := c.source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		batch := c.parseFrame(frame)
		if len(batch) == 0 {
			continue
		}

		select {
		case c.out <- batch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// parseFrame attempts to parse the DNS payload at the fixed offset,
// falling back to a bounded linear search (spec §4.C), and converts every
// answer resource record into a canonical Answer.
func (c *Consumer) parseFrame(frame Frame) []answer.Answer {
	observedAt := time.Now()

	pkt, ok := tryParse(frame.Payload)
	if !ok {
		c.dropped.Add(1)
		c.logger.Debug("dropping frame: no offset parsed as DNS", slog.Int("length", int(frame.Length)))
		return nil
	}
	if len(pkt.Answers) == 0 {
		return nil
	}

	scratch := c.scratch.Get()[:0]
	for _, rr := range pkt.Answers {
		a, err := answer.New(
			rr.Name,
			answer.RecordTypeFromWire(dns.RecordType(rr.Type)),
			dns.RecordClass(rr.Class),
			rr.TTL,
			observedAt,
		)
		if err != nil {
			continue
		}
		scratch = append(scratch, a)
	}

	out := make([]answer.Answer, len(scratch))
	copy(out, scratch)
	c.scratch.Put(scratch)
	return out
}

// tryParse parses the DNS payload at the fixed offset first, then falls
// back to a bounded linear search over every remaining offset (spec §4.C,
// §9's "pragmatic workaround" note).
func tryParse(payload []byte) (dns.Packet, bool) {
	if dnsPayloadOffset < len(payload) {
		if pkt, err := dns.ParsePacket(payload[dnsPayloadOffset:]); err == nil {
			return pkt, true
		}
	}

	for i := 0; i < len(payload); i++ {
		if i == dnsPayloadOffset {
			continue
		}
		if pkt, err := dns.ParsePacket(payload[i:]); err == nil {
			return pkt, true
		}
	}
	return dns.Packet{}, false
}

// DroppedFrames returns the lifetime count of frames that parsed at no
// offset.
func (c *Consumer) DroppedFrames() int64 {
	return c.dropped.Load()
}
