package world

import (
	"context"
	"log/slog"
	"time"

	"multirpg/internal/dependencies/clock"
	"multirpg/internal/metrics"
)

// TickFunc runs one game tick covering elapsed whole seconds
type TickFunc func(elapsed int)

// Clock drives the tick loop. While the world is paused, ticks are dropped
// and the elapsed window resets, so paused time never reaches the game.
type Clock struct {
	state    *State
	clk      clock.Clock
	interval time.Duration
	tick     TickFunc
	logger   *slog.Logger
}

// NewClock creates the tick loop driver
func NewClock(state *State, clk clock.Clock, interval time.Duration, tick TickFunc, logger *slog.Logger) *Clock {
	return &Clock{
		state:    state,
		clk:      clk,
		interval: interval,
		tick:     tick,
		logger:   logger.With(slog.String("component", "world-clock")),
	}
}

// Run ticks until ctx is done
func (c *Clock) Run(ctx context.Context) {
	ticks, stop := c.clk.Tick(c.interval)
	defer stop()

	last := c.clk.Now()
	c.logger.Info("tick loop started", slog.Duration("interval", c.interval))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("tick loop stopped")
			return
		case <-ticks:
			now := c.clk.Now()
			if c.state.Paused() {
				// paused time is never replayed
				last = now
				continue
			}
			elapsed := int(now.Sub(last).Seconds())
			if elapsed <= 0 {
				continue
			}
			c.tick(elapsed)
			metrics.RecordTick()
			last = now
		}
	}
}
