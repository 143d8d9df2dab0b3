package world

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multirpg/internal/dependencies/mocks"
)

func startClock(t *testing.T, clk *mocks.MockClock, state *State) (<-chan int, func()) {
	t.Helper()
	got := make(chan int, 8)
	c := NewClock(state, clk, 5*time.Second, func(elapsed int) {
		got <- elapsed
	}, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()
	return got, func() {
		cancel()
		<-done
	}
}

func TestClockDeliversElapsedSeconds(t *testing.T) {
	clk := mocks.NewMockClock(testStart)
	state := NewState(testStart.Add(time.Hour))
	got, stop := startClock(t, clk, state)

	clk.FireTick(5 * time.Second)
	assert.Equal(t, 5, <-got)

	clk.FireTick(7 * time.Second)
	assert.Equal(t, 7, <-got)

	stop()
}

func TestClockDropsPausedTime(t *testing.T) {
	clk := mocks.NewMockClock(testStart)
	state := NewState(testStart.Add(time.Hour))
	got, stop := startClock(t, clk, state)

	clk.FireTick(5 * time.Second)
	require.Equal(t, 5, <-got)

	require.True(t, state.TogglePause())
	clk.FireTick(5 * time.Second)
	clk.FireTick(30 * time.Second)
	// a zero-advance tick pushes the dropped ones through the loop
	// before the pause state changes again
	clk.FireTick(0)
	require.False(t, state.TogglePause())

	// the elapsed window restarts at the resume point, so the 35
	// paused seconds never reach the game
	clk.FireTick(5 * time.Second)
	assert.Equal(t, 5, <-got)

	stop()
	select {
	case elapsed := <-got:
		t.Fatalf("unexpected tick of %d seconds", elapsed)
	default:
	}
}
