package dispatch

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multirpg/internal/dependencies/mocks"
)

type fixedMute struct{ level MuteLevel }

func (m *fixedMute) MuteLevel() MuteLevel { return m.level }

type sentMsg struct {
	dest Destination
	text string
}

func newTestQueue(mute *fixedMute) (*Queue, *[]sentMsg, *mocks.MockClock) {
	var sent []sentMsg
	send := func(_ context.Context, dest Destination, text string) error {
		sent = append(sent, sentMsg{dest: dest, text: text})
		return nil
	}
	clk := mocks.NewMockClock(time.Unix(1700000000, 0))
	q := New("libera", send, mute, clk, Config{MinDelay: 500 * time.Millisecond}, slog.Default())
	return q, &sent, clk
}

func TestFlushDeliversFIFO(t *testing.T) {
	q, sent, _ := newTestQueue(&fixedMute{})

	q.Enqueue(Destination{Kind: KindChannel, Target: "#rpg"}, "one")
	q.Enqueue(Destination{Kind: KindChannel, Target: "#rpg"}, "two")
	q.Enqueue(Destination{Kind: KindNotice, Target: "alice"}, "three")

	q.FlushDeliver(context.Background())

	require.Len(t, *sent, 3)
	assert.Equal(t, "one", (*sent)[0].text)
	assert.Equal(t, "two", (*sent)[1].text)
	assert.Equal(t, "three", (*sent)[2].text)
	assert.Equal(t, 0, q.Len())
}

func TestFlushEnforcesDelayBetweenDeliveries(t *testing.T) {
	q, sent, clk := newTestQueue(&fixedMute{})

	q.Enqueue(Destination{Kind: KindChannel, Target: "#rpg"}, "one")
	q.Enqueue(Destination{Kind: KindChannel, Target: "#rpg"}, "two")
	q.FlushDeliver(context.Background())

	require.Len(t, *sent, 2)
	// One gap between two messages, none before the first
	require.Len(t, clk.Slept, 1)
	assert.Equal(t, 500*time.Millisecond, clk.Slept[0])
}

func TestMuteFiltersAtDeliveryNotEnqueue(t *testing.T) {
	mute := &fixedMute{level: MuteChannel}
	q, sent, _ := newTestQueue(mute)

	q.Enqueue(Destination{Kind: KindChannel, Target: "#rpg"}, "broadcast")
	q.Enqueue(Destination{Kind: KindNotice, Target: "alice"}, "notice")
	assert.Equal(t, 2, q.Len(), "muted messages still enqueue")

	q.FlushDeliver(context.Background())

	require.Len(t, *sent, 1)
	assert.Equal(t, "notice", (*sent)[0].text)
}

func TestMutePrivateDropsNoticesAndPMs(t *testing.T) {
	mute := &fixedMute{level: MutePrivate}
	q, sent, _ := newTestQueue(mute)

	q.Enqueue(Destination{Kind: KindChannel, Target: "#rpg"}, "broadcast")
	q.Enqueue(Destination{Kind: KindPrivate, Target: "alice"}, "pm")
	q.Enqueue(Destination{Kind: KindNotice, Target: "alice"}, "notice")

	q.FlushDeliver(context.Background())

	require.Len(t, *sent, 1)
	assert.Equal(t, "broadcast", (*sent)[0].text)
}

func TestMuteAllDeliversNothing(t *testing.T) {
	mute := &fixedMute{level: MuteAll}
	q, sent, _ := newTestQueue(mute)

	q.Enqueue(Destination{Kind: KindChannel, Target: "#rpg"}, "broadcast")
	q.Enqueue(Destination{Kind: KindPrivate, Target: "alice"}, "pm")
	q.FlushDeliver(context.Background())

	assert.Empty(t, *sent)
	assert.Equal(t, 0, q.Len(), "suppressed messages are dropped, not requeued")
}

func TestClearThenFlushDeliversNothing(t *testing.T) {
	mute := &fixedMute{level: MuteAll}
	q, sent, _ := newTestQueue(mute)

	q.Enqueue(Destination{Kind: KindChannel, Target: "#rpg"}, "one")
	q.Enqueue(Destination{Kind: KindNotice, Target: "alice"}, "two")

	n := q.Clear()
	assert.Equal(t, 2, n, "clear drops everything regardless of mute level")

	mute.level = MuteNone
	q.FlushDeliver(context.Background())
	assert.Empty(t, *sent)
}

func TestFlushOnlyCoversMessagesPresentAtStart(t *testing.T) {
	var q *Queue
	var sent []sentMsg
	send := func(_ context.Context, dest Destination, text string) error {
		sent = append(sent, sentMsg{dest: dest, text: text})
		if text == "one" {
			// Enqueued mid-flush; must wait for the next flush
			q.Enqueue(Destination{Kind: KindChannel, Target: "#rpg"}, "late")
		}
		return nil
	}
	clk := mocks.NewMockClock(time.Unix(1700000000, 0))
	q = New("libera", send, &fixedMute{}, clk, Config{MinDelay: time.Millisecond}, slog.Default())

	q.Enqueue(Destination{Kind: KindChannel, Target: "#rpg"}, "one")
	q.FlushDeliver(context.Background())

	require.Len(t, sent, 1)
	assert.Equal(t, 1, q.Len())

	q.FlushDeliver(context.Background())
	require.Len(t, sent, 2)
	assert.Equal(t, "late", sent[1].text)
}

func TestSuppressionLevels(t *testing.T) {
	assert.False(t, MuteNone.Suppresses(KindChannel))
	assert.False(t, MuteNone.Suppresses(KindPrivate))
	assert.True(t, MuteChannel.Suppresses(KindChannel))
	assert.False(t, MuteChannel.Suppresses(KindNotice))
	assert.False(t, MutePrivate.Suppresses(KindChannel))
	assert.True(t, MutePrivate.Suppresses(KindPrivate))
	assert.True(t, MutePrivate.Suppresses(KindNotice))
	assert.True(t, MuteAll.Suppresses(KindChannel))
	assert.True(t, MuteAll.Suppresses(KindNotice))
}
