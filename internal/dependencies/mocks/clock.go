package mocks

import (
	"context"
	"time"

	"multirpg/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing
type MockClock struct {
	CurrentTime time.Time

	// Slept records every Sleep duration; the sleep itself advances the
	// clock instead of blocking
	Slept []time.Duration

	ticks chan time.Time
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t, ticks: make(chan time.Time)}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

// Sleep records the duration and advances the clock without blocking
func (c *MockClock) Sleep(_ context.Context, d time.Duration) {
	c.Slept = append(c.Slept, d)
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Tick returns the manually fired tick channel; the interval is ignored
func (c *MockClock) Tick(time.Duration) (<-chan time.Time, func()) {
	return c.ticks, func() {}
}

// FireTick advances the clock by d and delivers one tick, blocking until
// the consumer receives it
func (c *MockClock) FireTick(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
	c.ticks <- c.CurrentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.CurrentTime = t
}
