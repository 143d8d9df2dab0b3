// Package dispatch buffers outbound chat messages per connection.
//
// Enqueue always accepts; the mute filter applies at delivery time, so a
// CLEARQ has well-defined semantics regardless of the current mute level.
// The queue is unbounded, matching the behavior of a connection that is
// expected to drain within a few ticks.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"multirpg/internal/dependencies/clock"
	"multirpg/internal/metrics"
)

// MessageKind classifies an outbound message for mute filtering
type MessageKind int

const (
	// KindChannel is a broadcast to the network's channel
	KindChannel MessageKind = iota
	// KindPrivate is a private message to a nick
	KindPrivate
	// KindNotice is a notice to a nick
	KindNotice
)

func (k MessageKind) String() string {
	switch k {
	case KindChannel:
		return "CHANNEL"
	case KindPrivate:
		return "PRIVATE"
	case KindNotice:
		return "NOTICE"
	}
	return "UNKNOWN"
}

// MuteLevel selects which message kinds are suppressed at delivery
type MuteLevel int32

const (
	// MuteNone delivers everything
	MuteNone MuteLevel = iota
	// MuteChannel suppresses channel broadcasts
	MuteChannel
	// MutePrivate suppresses private messages and notices
	MutePrivate
	// MuteAll suppresses everything
	MuteAll
)

// Suppresses reports whether a message of the given kind is dropped at
// this mute level
func (m MuteLevel) Suppresses(kind MessageKind) bool {
	switch m {
	case MuteChannel:
		return kind == KindChannel
	case MutePrivate:
		return kind == KindPrivate || kind == KindNotice
	case MuteAll:
		return true
	}
	return false
}

// Destination addresses one outbound message
type Destination struct {
	Kind   MessageKind
	Target string // channel name or nick
}

// MuteSource yields the current mute level; consulted once per delivery
type MuteSource interface {
	MuteLevel() MuteLevel
}

// SendFunc delivers one raw line to the connection
type SendFunc func(ctx context.Context, dest Destination, text string) error

type message struct {
	dest Destination
	text string
}

// Config holds queue delivery settings
type Config struct {
	// MinDelay is the minimum gap between deliveries to this connection
	MinDelay time.Duration
}

// DefaultConfig returns the flood-safe delivery defaults
func DefaultConfig() Config {
	return Config{MinDelay: 500 * time.Millisecond}
}

// Queue is a per-connection FIFO outbound buffer
type Queue struct {
	name   string
	send   SendFunc
	mute   MuteSource
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	pending []message

	// deliverMu serializes FlushDeliver calls so overlapping flushes
	// cannot reorder messages
	deliverMu sync.Mutex
}

// New creates a queue for one connection
func New(name string, send SendFunc, mute MuteSource, clk clock.Clock, cfg Config, logger *slog.Logger) *Queue {
	if cfg.MinDelay == 0 {
		cfg.MinDelay = DefaultConfig().MinDelay
	}
	return &Queue{
		name:   name,
		send:   send,
		mute:   mute,
		clock:  clk,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "dispatch"), slog.String("network", name)),
	}
}

// Enqueue appends a message. It never fails and never filters; muted
// messages are dropped later, at delivery.
func (q *Queue) Enqueue(dest Destination, text string) {
	q.mu.Lock()
	q.pending = append(q.pending, message{dest: dest, text: text})
	q.mu.Unlock()
}

// Len returns the number of queued messages
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Clear discards all queued messages unconditionally and returns how many
// were dropped
func (q *Queue) Clear() int {
	q.mu.Lock()
	n := len(q.pending)
	q.pending = nil
	q.mu.Unlock()
	metrics.RecordCleared(n)
	return n
}

// FlushDeliver pops messages FIFO and delivers them, applying the mute
// filter and enforcing the minimum inter-message delay. Suppressed
// messages are dropped, not requeued. Messages enqueued after the flush
// starts wait for the next flush. Safe to call concurrently; calls are
// serialized.
func (q *Queue) FlushDeliver(ctx context.Context) {
	q.deliverMu.Lock()
	defer q.deliverMu.Unlock()

	q.mu.Lock()
	batch := len(q.pending)
	q.mu.Unlock()

	sent := false
	for i := 0; i < batch; i++ {
		// Pop one at a time so a concurrent Clear takes effect mid-flush
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		msg := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		if q.mute.MuteLevel().Suppresses(msg.dest.Kind) {
			metrics.RecordSuppressed()
			continue
		}

		if sent {
			q.clock.Sleep(ctx, q.cfg.MinDelay)
			if ctx.Err() != nil {
				return
			}
		}

		if err := q.send(ctx, msg.dest, msg.text); err != nil {
			q.logger.Warn("send failed", slog.String("target", msg.dest.Target), slog.Any("error", err))
			continue
		}
		metrics.RecordDelivered()
		sent = true
	}
}
