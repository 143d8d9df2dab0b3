package transport

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multirpg/internal/dependencies/mocks"
	"multirpg/internal/dispatch"
	"multirpg/internal/model"
)

type fixedMute struct{ level dispatch.MuteLevel }

func (m fixedMute) MuteLevel() dispatch.MuteLevel { return m.level }

func newRegistry(t *testing.T, mute dispatch.MuteSource) (*Registry, *RecordingConn, *RecordingConn) {
	t.Helper()
	clk := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	reg := NewRegistry(mute, clk, dispatch.Config{}, slog.New(slog.DiscardHandler))
	libera := NewRecordingConn("libera")
	oftc := NewRecordingConn("oftc")
	reg.Register(libera, "#rpg")
	reg.Register(oftc, "#idle")
	return reg, libera, oftc
}

func TestRouteAllScopeReachesEveryNetwork(t *testing.T) {
	reg, libera, oftc := newRegistry(t, fixedMute{})

	reg.Route(model.BroadcastAll("the realm trembles"))
	reg.FlushAll(context.Background())
	reg.Wait()

	liberaSent := libera.Sent()
	require.Len(t, liberaSent, 1)
	assert.Equal(t, dispatch.KindChannel, liberaSent[0].Dest.Kind)
	assert.Equal(t, "#rpg", liberaSent[0].Dest.Target)
	assert.Equal(t, "the realm trembles", liberaSent[0].Text)

	oftcSent := oftc.Sent()
	require.Len(t, oftcSent, 1)
	assert.Equal(t, "#idle", oftcSent[0].Dest.Target)
}

func TestRouteNetworkScopeIsTargeted(t *testing.T) {
	reg, libera, oftc := newRegistry(t, fixedMute{})

	reg.Route(model.BroadcastNet("libera", "alice@libera has parted."))
	reg.FlushAll(context.Background())
	reg.Wait()

	assert.Len(t, libera.Sent(), 1)
	assert.Empty(t, oftc.Sent())
}

func TestRouteNoticeGoesToNick(t *testing.T) {
	reg, libera, _ := newRegistry(t, fixedMute{})

	reg.Route(model.BroadcastNotice("libera", "alice_nick", "Penalty added."))
	reg.FlushAll(context.Background())
	reg.Wait()

	sent := libera.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, dispatch.KindNotice, sent[0].Dest.Kind)
	assert.Equal(t, "alice_nick", sent[0].Dest.Target)
}

func TestMutedChannelTrafficDropped(t *testing.T) {
	reg, libera, _ := newRegistry(t, fixedMute{level: dispatch.MuteChannel})

	reg.RouteAll([]model.Broadcast{
		model.BroadcastAll("channel text"),
		model.BroadcastNotice("libera", "alice_nick", "notice text"),
	})
	reg.FlushAll(context.Background())
	reg.Wait()

	sent := libera.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "notice text", sent[0].Text)
}

func TestClearAllCounts(t *testing.T) {
	reg, libera, oftc := newRegistry(t, fixedMute{})

	reg.Route(model.BroadcastAll("one"))
	reg.Route(model.BroadcastAll("two"))
	assert.Equal(t, 4, reg.ClearAll())

	reg.FlushAll(context.Background())
	reg.Wait()
	assert.Empty(t, libera.Sent())
	assert.Empty(t, oftc.Sent())
}

type stuckConn struct {
	network string
	release chan struct{}
	done    chan struct{}
}

func (c *stuckConn) Network() string { return c.network }

func (c *stuckConn) Send(_ context.Context, _ dispatch.Destination, _ string) error {
	<-c.release
	close(c.done)
	return nil
}

func TestFlushAllDoesNotBlockOnSlowConnection(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	reg := NewRegistry(fixedMute{}, clk, dispatch.Config{}, slog.New(slog.DiscardHandler))

	stuck := &stuckConn{
		network: "libera",
		release: make(chan struct{}),
		done:    make(chan struct{}),
	}
	oftc := NewRecordingConn("oftc")
	reg.Register(stuck, "#rpg")
	reg.Register(oftc, "#idle")

	reg.Route(model.BroadcastAll("the gods stir"))

	// returns immediately even though libera's send is stuck
	flushed := make(chan struct{})
	go func() {
		reg.FlushAll(context.Background())
		close(flushed)
	}()
	select {
	case <-flushed:
	case <-time.After(time.Second):
		t.Fatal("FlushAll blocked on a stuck connection")
	}

	// the healthy network delivers while the stuck one waits
	require.Eventually(t, func() bool {
		return len(oftc.Sent()) == 1
	}, time.Second, 5*time.Millisecond)

	close(stuck.release)
	reg.Wait()
	select {
	case <-stuck.done:
	default:
		t.Fatal("stuck connection never delivered after release")
	}
}

func TestWriterConnEmitsLines(t *testing.T) {
	var buf bytes.Buffer
	conn := NewWriterConn("libera", &buf)

	require.NoError(t, conn.Send(context.Background(),
		dispatch.Destination{Kind: dispatch.KindChannel, Target: "#rpg"},
		"alice has attained level 3!"))
	require.NoError(t, conn.Send(context.Background(),
		dispatch.Destination{Kind: dispatch.KindNotice, Target: "bob"},
		"Penalty of 12 seconds for talking."))

	assert.Equal(t,
		"libera CHANNEL #rpg :alice has attained level 3!\n"+
			"libera NOTICE bob :Penalty of 12 seconds for talking.\n",
		buf.String())
}

func TestUnregisterDropsQueue(t *testing.T) {
	reg, _, oftc := newRegistry(t, fixedMute{})

	reg.Route(model.BroadcastAll("pending"))
	reg.Unregister("libera")
	assert.Equal(t, []string{"oftc"}, reg.Networks())

	reg.FlushAll(context.Background())
	reg.Wait()
	assert.Len(t, oftc.Sent(), 1)
}
