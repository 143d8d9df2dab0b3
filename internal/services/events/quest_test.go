package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multirpg/internal/model"
	"multirpg/internal/services/player"
	"multirpg/internal/world"
)

// questablePlayers registers four level-40+ players who have been online
// long enough to quest
func (f *fixture) questablePlayers(t *testing.T) []*model.Player {
	t.Helper()
	players := make([]*model.Player, 4)
	for i, name := range []string{"ann", "ben", "cat", "dan"} {
		players[i] = f.register(t, name, 45, 100000)
	}
	f.clk.Advance(11 * time.Hour)
	return players
}

func TestQuestStartsAfterCooldown(t *testing.T) {
	f := newFixture(t)
	f.questablePlayers(t)

	// pick the first template, a timed quest of minimum duration
	f.random.QueueIntn(0)
	f.random.QueueRange(43200)

	var msgs []model.Broadcast
	f.store.Pass(func(tx *player.Tx) {
		msgs = f.svc.checkQuest(tx, tx.Online())
	})

	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "have been chosen by the gods to slay the dragon")

	q := f.state.Quest()
	require.NotNil(t, q)
	assert.Equal(t, world.QuestTimed, q.Type)
	assert.Len(t, q.Questers, 4)
}

func TestQuestNeedsFourEligible(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"ann", "ben", "cat"} {
		f.register(t, name, 45, 100000)
	}
	f.clk.Advance(11 * time.Hour)

	f.store.Pass(func(tx *player.Tx) {
		assert.Empty(t, f.svc.checkQuest(tx, tx.Online()))
	})
	assert.Nil(t, f.state.Quest())
}

func TestLowLevelPlayersNotEligible(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"ann", "ben", "cat", "dan"} {
		f.register(t, name, 10, 100000)
	}
	f.clk.Advance(11 * time.Hour)

	f.store.Pass(func(tx *player.Tx) {
		assert.Empty(t, f.svc.checkQuest(tx, tx.Online()))
	})
	assert.Nil(t, f.state.Quest())
}

func TestTimedQuestCompletes(t *testing.T) {
	f := newFixture(t)
	players := f.questablePlayers(t)

	questers := make([]world.Quester, len(players))
	for i, p := range players {
		questers[i] = world.Quester{ID: p.ID, Handle: p.Handle()}
	}
	f.state.SetQuest(&world.Quest{
		Questers: questers,
		Type:     world.QuestTimed,
		Deadline: f.clk.Now().Add(time.Hour),
		Text:     "slay the dragon terrorising the realm",
	})

	// deadline passes
	f.clk.Advance(2 * time.Hour)

	var msgs []model.Broadcast
	f.store.Pass(func(tx *player.Tx) {
		msgs = f.svc.checkQuest(tx, tx.Online())
	})

	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "blessed the realm by completing their quest")
	assert.Nil(t, f.state.Quest())

	// each quester keeps 75% of their countdown
	got, err := f.store.Get(players[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 75000, got.TTL)
}

func TestGridQuestAdvancesThenCompletes(t *testing.T) {
	f := newFixture(t)
	players := f.questablePlayers(t)

	questers := make([]world.Quester, len(players))
	for i, p := range players {
		questers[i] = world.Quester{ID: p.ID, Handle: p.Handle()}
		_, err := f.store.ApplyDelta(p.ID, func(pl *model.Player) { pl.X = 7; pl.Y = 9 })
		require.NoError(t, err)
	}
	f.state.SetQuest(&world.Quest{
		Questers: questers,
		Type:     world.QuestGrid,
		Stage:    1,
		P1X:      7, P1Y: 9,
		P2X: 100, P2Y: 200,
		Text: "cleanse the Temple of the Shadow God",
	})

	f.store.Pass(func(tx *player.Tx) {
		assert.Empty(t, f.svc.checkQuest(tx, tx.Online()))
	})
	q := f.state.Quest()
	require.NotNil(t, q)
	assert.Equal(t, 2, q.Stage)

	// everyone arrives at the second waypoint
	for _, p := range players {
		_, err := f.store.ApplyDelta(p.ID, func(pl *model.Player) { pl.X = 100; pl.Y = 200 })
		require.NoError(t, err)
	}
	var msgs []model.Broadcast
	f.store.Pass(func(tx *player.Tx) {
		msgs = f.svc.checkQuest(tx, tx.Online())
	})
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "completed their journey")
	assert.Nil(t, f.state.Quest())
}

func TestGridQuestWaitsForStragglers(t *testing.T) {
	f := newFixture(t)
	players := f.questablePlayers(t)

	questers := make([]world.Quester, len(players))
	for i, p := range players {
		questers[i] = world.Quester{ID: p.ID, Handle: p.Handle()}
		x := 7
		if i == 3 {
			x = 8 // one quester is a square short
		}
		_, err := f.store.ApplyDelta(p.ID, func(pl *model.Player) { pl.X = x; pl.Y = 9 })
		require.NoError(t, err)
	}
	f.state.SetQuest(&world.Quest{
		Questers: questers,
		Type:     world.QuestGrid,
		Stage:    1,
		P1X:      7, P1Y: 9,
		P2X: 100, P2Y: 200,
	})

	f.store.Pass(func(tx *player.Tx) {
		assert.Empty(t, f.svc.checkQuest(tx, tx.Online()))
	})
	q := f.state.Quest()
	require.NotNil(t, q)
	assert.Equal(t, 1, q.Stage)
}
