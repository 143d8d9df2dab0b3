package progression

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multirpg/internal/dependencies/mocks"
	"multirpg/internal/game/penalty"
	"multirpg/internal/model"
	"multirpg/internal/services/player"
	"multirpg/internal/storage/memory"
)

func newFixture(t *testing.T) (*player.Service, *Service, *mocks.MockRandom) {
	t.Helper()
	rnd := mocks.NewMockRandom()
	clk := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := player.New(memory.New(), clk, rnd, slog.New(slog.DiscardHandler))
	engine := New(rnd, slog.New(slog.DiscardHandler), Config{SelfClock: 1})
	return store, engine, rnd
}

func registerAt(t *testing.T, store *player.Service, name string, x, y int) *model.Player {
	t.Helper()
	p, err := store.Register(name, "libera", name, "#rpg", name+"!u@h", "pw", "tester")
	require.NoError(t, err)
	p, err = store.ApplyDelta(p.ID, func(p *model.Player) { p.X = x; p.Y = y })
	require.NoError(t, err)
	return p
}

func TestTickDecrementsCountdown(t *testing.T) {
	store, engine, _ := newFixture(t)
	p := registerAt(t, store, "alice", 100, 100)
	before := p.TTL

	store.Pass(func(tx *player.Tx) {
		result := engine.Tick(tx, 30, QuestTarget{})
		assert.Empty(t, result.LeveledUp)
	})

	got, err := store.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, before-30, got.TTL)
}

func TestTickSkipsOfflinePlayers(t *testing.T) {
	store, engine, _ := newFixture(t)
	p := registerAt(t, store, "alice", 100, 100)
	before := p.TTL
	store.SetOffline(p.ID)

	store.Pass(func(tx *player.Tx) {
		engine.Tick(tx, 30, QuestTarget{})
	})

	got, err := store.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, before, got.TTL)
	assert.Equal(t, 0, got.IdleTotal)
}

func TestTickAccruesIdleTime(t *testing.T) {
	store, engine, _ := newFixture(t)
	p := registerAt(t, store, "alice", 100, 100)

	store.Pass(func(tx *player.Tx) {
		engine.Tick(tx, 30, QuestTarget{})
	})
	store.Pass(func(tx *player.Tx) {
		engine.Tick(tx, 15, QuestTarget{})
	})

	got, err := store.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, got.IdleTotal)
}

func TestTickLevelsUpAtZero(t *testing.T) {
	store, engine, _ := newFixture(t)
	p := registerAt(t, store, "alice", 100, 100)
	_, err := store.ApplyDelta(p.ID, func(p *model.Player) { p.TTL = 10 })
	require.NoError(t, err)

	var result TickResult
	store.Pass(func(tx *player.Tx) {
		result = engine.Tick(tx, 10, QuestTarget{})
	})

	require.Len(t, result.LeveledUp, 1)
	got, err := store.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, penalty.BaseTTL(1), got.TTL)

	require.NotEmpty(t, result.Broadcasts)
	assert.Equal(t, model.ScopeAll, result.Broadcasts[0].Scope)
	assert.Contains(t, result.Broadcasts[0].Text, "has attained level 1")

	events := store.RecentEvents(10)
	require.NotEmpty(t, events)
	assert.Equal(t, model.EventLevelUp, events[0].Kind)
}

func TestLevelUpFindsItem(t *testing.T) {
	store, engine, rnd := newFixture(t)
	p := registerAt(t, store, "alice", 100, 100)
	_, err := store.ApplyDelta(p.ID, func(p *model.Player) { p.TTL = 1; p.Level = 10 })
	require.NoError(t, err)

	// mundane roll: item level 1 in the first slot, which beats the
	// starting level 0 item
	rnd.QueueFloat64(0.0)
	rnd.QueueIntn(0)

	var result TickResult
	store.Pass(func(tx *player.Tx) {
		result = engine.Tick(tx, 5, QuestTarget{})
	})

	var notice *model.Broadcast
	for i := range result.Broadcasts {
		if result.Broadcasts[i].Scope == model.ScopeNotice {
			notice = &result.Broadcasts[i]
		}
	}
	require.NotNil(t, notice)
	assert.Contains(t, notice.Text, "Luck is with you")

	items, err := store.Items(p.ID)
	require.NoError(t, err)
	sum := 0
	for _, item := range items {
		sum += item.Level
	}
	assert.Greater(t, sum, 0)
}

func TestUniqueItemDrop(t *testing.T) {
	store, engine, rnd := newFixture(t)
	p := registerAt(t, store, "alice", 100, 100)
	_, err := store.ApplyDelta(p.ID, func(p *model.Player) { p.TTL = 1; p.Level = 29 })
	require.NoError(t, err)

	// first unique candidate hits its 1-in-40 roll
	rnd.QueueFloat64(0.001)
	rnd.QueueRange(60)

	var result TickResult
	store.Pass(func(tx *player.Tx) {
		result = engine.Tick(tx, 5, QuestTarget{})
	})

	items, err := store.Items(p.ID)
	require.NoError(t, err)
	helm := items[model.SlotHelm]
	assert.True(t, helm.Unique)
	assert.Equal(t, "Mattt's Omniscience Grand Crown", helm.Name)
	assert.Equal(t, 60, helm.Level)

	found := false
	for _, b := range result.Broadcasts {
		if b.Scope == model.ScopeNotice && b.Nick == "alice" {
			assert.Contains(t, b.Text, "light of the gods")
			found = true
		}
	}
	assert.True(t, found)
}

func TestMovementClampsAtMapEdge(t *testing.T) {
	store, engine, rnd := newFixture(t)
	p := registerAt(t, store, "alice", 0, model.MapHeight-1)

	// always step down-left, which the map edge absorbs
	rnd.QueueRange(-1, 1)

	store.Pass(func(tx *player.Tx) {
		engine.Tick(tx, 1, QuestTarget{})
	})

	got, err := store.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.X)
	assert.Equal(t, model.MapHeight-1, got.Y)
}

func TestQuesterDriftsTowardWaypoint(t *testing.T) {
	store, engine, rnd := newFixture(t)
	p := registerAt(t, store, "alice", 10, 20)

	// quest pull fires on the first step
	rnd.QueueFloat64(0.001)

	quest := QuestTarget{
		Active:   true,
		Questers: map[model.PlayerID]bool{p.ID: true},
		X:        50,
		Y:        5,
	}
	store.Pass(func(tx *player.Tx) {
		engine.Tick(tx, 1, quest)
	})

	got, err := store.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, got.X)
	assert.Equal(t, 19, got.Y)
}

func TestCollisionSelectsDuel(t *testing.T) {
	store, engine, rnd := newFixture(t)
	a := registerAt(t, store, "alice", 10, 10)
	b := registerAt(t, store, "bob", 10, 10)

	// both players stand still, then the 1/n duel roll succeeds
	rnd.QueueRange(0, 0, 0, 0)
	rnd.QueueFloat64(0.0)

	var result TickResult
	store.Pass(func(tx *player.Tx) {
		result = engine.Tick(tx, 1, QuestTarget{})
	})

	require.Len(t, result.Collisions, 1)
	ids := []model.PlayerID{result.Collisions[0].A, result.Collisions[0].B}
	assert.Contains(t, ids, a.ID)
	assert.Contains(t, ids, b.ID)
}
