package player

import (
	"context"
	"log/slog"
	"time"

	"multirpg/internal/dependencies/clock"
	"multirpg/internal/metrics"
	"multirpg/internal/storage"
)

const (
	mirrorQueueSize  = 4096
	mirrorRetries    = 3
	mirrorRetryDelay = 250 * time.Millisecond
)

type mirrorOp struct {
	label string
	fn    func(ctx context.Context) error
}

// mirrorWriter drains durable-store writes on a background goroutine so
// that no storage latency is ever paid under the table lock
type mirrorWriter struct {
	storage storage.Store
	clock   clock.Clock
	logger  *slog.Logger
	ops     chan mirrorOp
}

func newMirrorWriter(store storage.Store, clk clock.Clock, logger *slog.Logger) *mirrorWriter {
	return &mirrorWriter{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "mirror-writer")),
		ops:     make(chan mirrorOp, mirrorQueueSize),
	}
}

// enqueue never blocks: if the queue is full the write is dropped and
// counted, and the in-memory state stays authoritative
func (w *mirrorWriter) enqueue(label string, fn func(ctx context.Context) error) {
	select {
	case w.ops <- mirrorOp{label: label, fn: fn}:
	default:
		metrics.RecordMirrorWriteFailure()
		w.logger.Warn("mirror queue full, dropping write", slog.String("op", label))
	}
}

func (w *mirrorWriter) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case op := <-w.ops:
			w.apply(ctx, op)
		}
	}
}

// drain flushes whatever is queued at shutdown with a short deadline
func (w *mirrorWriter) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for {
		select {
		case op := <-w.ops:
			w.apply(ctx, op)
		default:
			return
		}
	}
}

func (w *mirrorWriter) apply(ctx context.Context, op mirrorOp) {
	var err error
	for attempt := 0; attempt < mirrorRetries; attempt++ {
		if err = op.fn(ctx); err == nil {
			return
		}
		w.clock.Sleep(ctx, mirrorRetryDelay)
	}
	metrics.RecordMirrorWriteFailure()
	w.logger.Error("mirror write failed",
		slog.String("op", op.label), slog.String("error", err.Error()))
}
