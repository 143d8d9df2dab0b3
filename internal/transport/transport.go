// Package transport fans game broadcasts out to the connected chat
// networks. Each network has one connection and one dispatch queue; the
// router maps broadcast scopes onto queue destinations.
package transport

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"multirpg/internal/dependencies/clock"
	"multirpg/internal/dispatch"
	"multirpg/internal/model"
)

// Conn is one chat-protocol connection. Implementations deliver a single
// outbound message; pacing and muting happen in the dispatch queue above.
type Conn interface {
	Network() string
	Send(ctx context.Context, dest dispatch.Destination, text string) error
}

type entry struct {
	conn    Conn
	channel string
	queue   *dispatch.Queue
}

// Registry tracks the connected networks and their outbound queues
type Registry struct {
	mute   dispatch.MuteSource
	clock  clock.Clock
	cfg    dispatch.Config
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]*entry

	flushWG sync.WaitGroup
}

// NewRegistry creates an empty network registry. All queues share the mute
// source and delivery settings.
func NewRegistry(mute dispatch.MuteSource, clk clock.Clock, cfg dispatch.Config, logger *slog.Logger) *Registry {
	return &Registry{
		mute:    mute,
		clock:   clk,
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Register adds a connection and creates its dispatch queue. The channel is
// where that network's game traffic goes.
func (r *Registry) Register(conn Conn, channel string) {
	network := conn.Network()
	queue := dispatch.New(network, conn.Send, r.mute, r.clock, r.cfg, r.logger)

	r.mu.Lock()
	r.entries[network] = &entry{conn: conn, channel: channel, queue: queue}
	r.mu.Unlock()
}

// Unregister drops a network, discarding whatever its queue still holds
func (r *Registry) Unregister(network string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[network]; ok {
		e.queue.Clear()
		delete(r.entries, network)
	}
}

// Networks returns the registered network names, sorted
func (r *Registry) Networks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Route enqueues one broadcast onto the queues its scope addresses
func (r *Registry) Route(b model.Broadcast) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch b.Scope {
	case model.ScopeAll:
		for _, e := range r.entries {
			e.queue.Enqueue(dispatch.Destination{
				Kind: dispatch.KindChannel, Target: e.channel,
			}, b.Text)
		}
	case model.ScopeNetwork:
		if e, ok := r.entries[b.Network]; ok {
			e.queue.Enqueue(dispatch.Destination{
				Kind: dispatch.KindChannel, Target: e.channel,
			}, b.Text)
		}
	case model.ScopeNotice:
		if e, ok := r.entries[b.Network]; ok {
			e.queue.Enqueue(dispatch.Destination{
				Kind: dispatch.KindNotice, Target: b.Nick,
			}, b.Text)
		}
	case model.ScopePrivate:
		if e, ok := r.entries[b.Network]; ok {
			e.queue.Enqueue(dispatch.Destination{
				Kind: dispatch.KindPrivate, Target: b.Nick,
			}, b.Text)
		}
	}
}

// RouteAll enqueues a batch of broadcasts in order
func (r *Registry) RouteAll(broadcasts []model.Broadcast) {
	for _, b := range broadcasts {
		r.Route(b)
	}
}

// FlushAll starts delivery of every queue's pending messages and returns
// without waiting. Each queue drains on its own goroutine, so one slow or
// flow-controlled connection never delays the caller or the other
// networks; overlapping flushes of the same queue are serialized inside
// the queue.
func (r *Registry) FlushAll(ctx context.Context) {
	r.mu.RLock()
	queues := make([]*dispatch.Queue, 0, len(r.entries))
	for _, e := range r.entries {
		queues = append(queues, e.queue)
	}
	r.mu.RUnlock()

	for _, q := range queues {
		r.flushWG.Add(1)
		go func(q *dispatch.Queue) {
			defer r.flushWG.Done()
			q.FlushDeliver(ctx)
		}(q)
	}
}

// Wait blocks until every in-flight flush has finished. Called on
// shutdown to drain deliveries.
func (r *Registry) Wait() {
	r.flushWG.Wait()
}

// ClearAll drops all pending messages on every queue and returns the total
func (r *Registry) ClearAll() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, e := range r.entries {
		total += e.queue.Clear()
	}
	return total
}
