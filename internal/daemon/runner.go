// Package daemon wires the Packet Observer's userspace half, the Answer
// Index, the Aggregator, and the Refresh Scheduler into one supervised
// pipeline, and optionally persists the index to durable storage.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cachewarden/cachewarden/internal/aggregator"
	"github.com/cachewarden/cachewarden/internal/answer"
	"github.com/cachewarden/cachewarden/internal/capture"
	"github.com/cachewarden/cachewarden/internal/config"
	"github.com/cachewarden/cachewarden/internal/index"
	"github.com/cachewarden/cachewarden/internal/metrics"
	"github.com/cachewarden/cachewarden/internal/persistence"
	"github.com/cachewarden/cachewarden/internal/scheduler"
)

// batchChannelDepth bounds how many unconsumed per-frame batches can queue
// between the Ring Consumer and the Aggregator before the consumer blocks.
const batchChannelDepth = 256

// persistenceFlushInterval is how often the index snapshot is written to
// the optional SQLite store, when persistence is enabled.
const persistenceFlushInterval = 30 * time.Second

// Runner supervises one daemon lifecycle: consumer, aggregator, and
// scheduler all run until ctx is cancelled or any of them fails, at which
// point the whole pipeline is torn down together — unlike the Refresh
// Scheduler's own subprocess fan-out, a dead core loop here is fatal to
// its siblings, because a stalled consumer means no more answers will
// ever reach the index.
type Runner struct {
	logger *slog.Logger
}

// NewRunner returns a Runner logging through logger.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run blocks until ctx is cancelled or a component fails.
func (r *Runner) Run(ctx context.Context, source capture.FrameSource, cfg *config.Config, idx *index.Index, m *metrics.Metrics, store *persistence.Store) error {
	batches := make(chan []answer.Answer, batchChannelDepth)

	consumer := capture.NewConsumer(source, batches, r.logger)
	agg := aggregator.New(idx, cfg.Refresh.MinTTLToKeepRecord, cfg.Refresh.MaxTTLToKeepRecord, r.logger)
	sched := scheduler.New(idx, cfg.Refresh, m, r.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := consumer.Run(gctx)
		close(batches)
		return err
	})
	g.Go(func() error {
		agg.Run(gctx, batches)
		return nil
	})
	g.Go(func() error {
		return sched.Run(gctx)
	})

	if store != nil {
		g.Go(func() error {
			return r.runPersistenceFlush(gctx, idx, store)
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		// The caller asked for shutdown; every component unwinding with
		// ctx.Err() is expected, not a failure.
		return nil
	}
	return err
}

// runPersistenceFlush periodically writes the index snapshot to store so a
// restarted daemon can reload recent observations instead of starting
// cold.
func (r *Runner) runPersistenceFlush(ctx context.Context, idx *index.Index, store *persistence.Store) error {
	ticker := time.NewTicker(persistenceFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			snapshot := idx.Snapshot()
			if len(snapshot) == 0 {
				continue
			}
			if err := store.SaveBatch(ctx, snapshot); err != nil {
				r.logger.Warn("persistence flush failed", slog.Any("err", err))
			}
		}
	}
}
