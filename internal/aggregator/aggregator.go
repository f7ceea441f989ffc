// Package aggregator implements Component E (spec §4.E): the single task
// that receives batches of freshly parsed Answers from the Ring Consumer,
// applies the TTL retention policy, and inserts survivors into the Answer
// Index under one lock acquisition per batch.
package aggregator

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/cachewarden/cachewarden/internal/answer"
	"github.com/cachewarden/cachewarden/internal/index"
)

// Aggregator filters and indexes Answer batches produced by the Ring
// Consumer.
type Aggregator struct {
	idx    *index.Index
	minTTL uint32
	maxTTL uint32
	logger *slog.Logger

	dropped  atomic.Int64
	inserted atomic.Int64
}

// New returns an Aggregator that retains only Answers with
// minTTL < ttl < maxTTL (strict on both bounds, spec §4.E).
func New(idx *index.Index, minTTL, maxTTL uint32, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{idx: idx, minTTL: minTTL, maxTTL: maxTTL, logger: logger}
}

// Run consumes batches until ctx is cancelled or the channel is closed.
func (a *Aggregator) Run(ctx context.Context, batches <-chan []answer.Answer) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-batches:
			if !ok {
				return
			}
			a.process(batch)
		}
	}
}

func (a *Aggregator) process(batch []answer.Answer) {
	kept := make([]answer.Answer, 0, len(batch))
	for _, ans := range batch {
		if a.accepts(ans.TTL) {
			kept = append(kept, ans)
		} else {
			a.dropped.Add(1)
		}
	}
	if len(kept) == 0 {
		return
	}
	a.idx.InsertBatch(kept)
	a.inserted.Add(int64(len(kept)))
	a.logger.Debug("aggregated answer batch",
		slog.Int("received", len(batch)),
		slog.Int("kept", len(kept)))
}

// accepts applies the strict TTL retention bounds: ttl == minTTL and
// ttl == maxTTL are both rejected.
func (a *Aggregator) accepts(ttl uint32) bool {
	return ttl > a.minTTL && ttl < a.maxTTL
}

// Stats returns lifetime counts for observability; not part of the
// Prometheus surface (spec §4.G names no aggregator metric) but useful for
// debug logging and tests.
func (a *Aggregator) Stats() (inserted, dropped int64) {
	return a.inserted.Load(), a.dropped.Load()
}
