package events

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multirpg/internal/dependencies/mocks"
	"multirpg/internal/dependencies/random"
	"multirpg/internal/model"
	"multirpg/internal/services/player"
	"multirpg/internal/services/progression"
	"multirpg/internal/storage/memory"
	"multirpg/internal/world"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store  *player.Service
	svc    *Service
	state  *world.State
	clk    *mocks.MockClock
	random *mocks.MockRandom
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := mocks.NewMockClock(testStart)
	rnd := mocks.NewMockRandom()
	state := world.NewState(testStart.Add(time.Hour))
	store := player.New(memory.New(), clk, rnd, slog.New(slog.DiscardHandler))
	svc := New(rnd, clk, state, slog.New(slog.DiscardHandler), DefaultConfig())
	return &fixture{store: store, svc: svc, state: state, clk: clk, random: rnd}
}

func (f *fixture) register(t *testing.T, name string, level, ttl int) *model.Player {
	t.Helper()
	p, err := f.store.Register(name, "libera", name, "#rpg", name+"!u@h", "pw", "tester")
	require.NoError(t, err)
	p, err = f.store.ApplyDelta(p.ID, func(p *model.Player) {
		p.Level = level
		p.TTL = ttl
	})
	require.NoError(t, err)
	return p
}

func TestHandOfGodHelps(t *testing.T) {
	f := newFixture(t)
	p := f.register(t, "alice", 10, 10000)

	// player pick, helping roll (>0), then magnitude 5+20 = 25%
	f.random.QueueIntn(0)
	f.random.QueueRange(1, 20)

	var msgs []model.Broadcast
	f.store.Pass(func(tx *player.Tx) {
		msgs = f.svc.HandOfGod(tx, tx.Online())
	})

	got, err := f.store.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7500, got.TTL)

	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Text, "blessed hand of God carried alice@libera")
	assert.Contains(t, msgs[1].Text, "reaches next level in")

	events := f.store.RecentEvents(1)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventHandOfGod, events[0].Kind)
}

func TestHandOfGodHurts(t *testing.T) {
	f := newFixture(t)
	p := f.register(t, "alice", 10, 10000)

	// helping roll of 0 means the hand burns
	f.random.QueueIntn(0)
	f.random.QueueRange(0, 20)

	f.store.Pass(func(tx *player.Tx) {
		msgs := f.svc.HandOfGod(tx, tx.Online())
		require.NotEmpty(t, msgs)
		assert.Contains(t, msgs[0].Text, "consumed alice@libera with fire")
	})

	got, err := f.store.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12500, got.TTL)
}

func TestHandOfGodHelpsFourOfFiveTimes(t *testing.T) {
	f := newFixture(t)
	p := f.register(t, "alice", 10, 1000000)

	clk := mocks.NewMockClock(testStart)
	svc := New(random.NewSeeded(7, 11), clk, f.state, slog.New(slog.DiscardHandler), DefaultConfig())

	helped := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		before, err := f.store.Get(p.ID)
		require.NoError(t, err)
		f.store.Pass(func(tx *player.Tx) {
			svc.HandOfGod(tx, tx.Online())
		})
		after, err := f.store.Get(p.ID)
		require.NoError(t, err)
		if after.TTL < before.TTL {
			helped++
		}
		_, err = f.store.ApplyDelta(p.ID, func(pl *model.Player) { pl.TTL = 1000000 })
		require.NoError(t, err)
	}

	ratio := float64(helped) / trials
	assert.InDelta(t, 0.8, ratio, 0.05)
}

func TestBattleWinner(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "alice", 20, 10000)
	b := f.register(t, "bob", 20, 10000)
	require.NoError(t, f.store.SetItem(a.ID, &model.Item{Slot: model.SlotWeapon, Level: 100}))
	require.NoError(t, f.store.SetItem(b.ID, &model.Item{Slot: model.SlotWeapon, Level: 100}))

	// challenger rolls 90, opponent 10: challenger wins; no crit, no steal
	f.random.QueueRange(90, 10)
	f.random.QueueIntn(1, 1)

	var msgs []model.Broadcast
	f.store.Pass(func(tx *player.Tx) {
		msgs = f.svc.resolveBattle(tx, a.ID, b.ID, false)
	})

	// gain = max(20/4, 7)/100 * 10000 = 700
	got, err := f.store.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 9300, got.TTL)

	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Text, "has challenged")
	assert.Contains(t, msgs[0].Text, "and won!")
}

func TestBattleLoserPenalized(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "alice", 20, 10000)
	b := f.register(t, "bob", 20, 10000)
	require.NoError(t, f.store.SetItem(a.ID, &model.Item{Slot: model.SlotWeapon, Level: 100}))
	require.NoError(t, f.store.SetItem(b.ID, &model.Item{Slot: model.SlotWeapon, Level: 100}))

	// challenger rolls 10, opponent 90: challenger loses
	f.random.QueueRange(10, 90)

	f.store.Pass(func(tx *player.Tx) {
		msgs := f.svc.resolveBattle(tx, a.ID, b.ID, false)
		require.Len(t, msgs, 2)
		assert.Contains(t, msgs[0].Text, "and lost!")
	})

	// pen = max(20/7, 7)/100 * 10000 = 700
	got, err := f.store.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10700, got.TTL)
}

func TestBattleCriticalStrike(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "alice", 20, 10000)
	b := f.register(t, "bob", 20, 10000)
	require.NoError(t, f.store.SetItem(a.ID, &model.Item{Slot: model.SlotWeapon, Level: 100}))
	require.NoError(t, f.store.SetItem(b.ID, &model.Item{Slot: model.SlotWeapon, Level: 100}))

	// challenger wins, the crit die comes up zero, magnitude 5+15 = 20%
	f.random.QueueRange(90, 10, 15)
	f.random.QueueIntn(0)

	f.store.Pass(func(tx *player.Tx) {
		msgs := f.svc.resolveBattle(tx, a.ID, b.ID, false)
		require.Len(t, msgs, 3)
		assert.Contains(t, msgs[2].Text, "Critical Strike!")
	})

	// loser takes 20% of their 10000 clock on top
	got, err := f.store.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 12000, got.TTL)
}

func TestTeamBattle(t *testing.T) {
	f := newFixture(t)
	players := make([]*model.Player, 6)
	names := []string{"ann", "ben", "cat", "dan", "eve", "fox"}
	for i, name := range names {
		players[i] = f.register(t, name, 10, 10000+i*1000)
		require.NoError(t, f.store.SetItem(players[i].ID, &model.Item{Slot: model.SlotWeapon, Level: 50}))
	}

	// identity permutation picks ann..cat vs dan..fox; team A out-rolls B
	f.random.QueueRange(100, 10)

	var msgs []model.Broadcast
	f.store.Pass(func(tx *player.Tx) {
		msgs = f.svc.teamBattle(tx, tx.Online())
	})

	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "team battled")
	assert.Contains(t, msgs[0].Text, "won!")

	// stake is a fifth of team A's lowest clock
	got, err := f.store.Get(players[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 10000-2000, got.TTL)
}

func TestGoodnessNeedsTwoGoodPlayers(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "alice", 10, 10000)
	_, err := f.store.ApplyDelta(a.ID, func(p *model.Player) { p.Alignment = model.AlignGood })
	require.NoError(t, err)

	f.store.Pass(func(tx *player.Tx) {
		assert.Empty(t, f.svc.goodness(tx, tx.Online()))
	})
}

func TestEvilnessStealsFromGood(t *testing.T) {
	f := newFixture(t)
	thief := f.register(t, "alice", 10, 10000)
	victim := f.register(t, "bob", 10, 10000)
	_, err := f.store.ApplyDelta(thief.ID, func(p *model.Player) { p.Alignment = model.AlignEvil })
	require.NoError(t, err)
	_, err = f.store.ApplyDelta(victim.ID, func(p *model.Player) { p.Alignment = model.AlignGood })
	require.NoError(t, err)
	require.NoError(t, f.store.SetItem(victim.ID, &model.Item{Slot: model.SlotShield, Level: 40}))

	// evil pick, steal branch, target pick, candidate slot pick
	f.random.QueueIntn(0, 0, 0)
	f.random.QueueFloat64(0.1)

	f.store.Pass(func(tx *player.Tx) {
		msgs := f.svc.evilness(tx, tx.Online())
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0].Text, "stole bob@libera's level 40 shield!")
	})

	items, err := f.store.Items(thief.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, items[model.SlotShield].Level)
}

func TestCalamityDamagesItem(t *testing.T) {
	f := newFixture(t)
	p := f.register(t, "alice", 10, 10000)
	require.NoError(t, f.store.SetItem(p.ID, &model.Item{Slot: model.SlotAmulet, Level: 50}))

	// player pick, 10% item branch, slot pick (amulet is first)
	f.random.QueueIntn(0, 0)
	f.random.QueueFloat64(0.05)

	f.store.Pass(func(tx *player.Tx) {
		msgs := f.svc.calamity(tx, tx.Online())
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0].Text, "amulet loses 10% effectiveness")
	})

	items, err := f.store.Items(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, items[model.SlotAmulet].Level)
}

func TestGodsendShortensCountdown(t *testing.T) {
	f := newFixture(t)
	p := f.register(t, "alice", 10, 10000)

	// player pick, miss the item branch, magnitude 5+3 = 8%, text pick
	f.random.QueueIntn(0, 0)
	f.random.QueueFloat64(0.9)
	f.random.QueueRange(3)

	f.store.Pass(func(tx *player.Tx) {
		msgs := f.svc.godsend(tx, tx.Online())
		require.Len(t, msgs, 2)
		assert.Contains(t, msgs[0].Text, "godsend accelerated them")
	})

	got, err := f.store.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9200, got.TTL)
}

func TestTopReportFiresWithCoarseTick(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", 10, 4000)

	// 7000-second ticks do not divide the 36000-second report period,
	// so the report must fire on the tick that crosses it
	svc := New(f.random, f.clk, f.state, slog.New(slog.DiscardHandler), Config{SelfClock: 7000})

	tick := func() []model.Broadcast {
		var msgs []model.Broadcast
		f.store.Pass(func(tx *player.Tx) {
			msgs = svc.Tick(tx, progression.TickResult{})
		})
		return msgs
	}

	for i := 0; i < 5; i++ {
		assert.Empty(t, tick())
	}

	msgs := tick()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Idle RPG Top Players:", msgs[0].Text)
	assert.Contains(t, msgs[1].Text, "is #1!")

	// the overshoot carries over rather than resetting to zero
	for i := 0; i < 4; i++ {
		assert.Empty(t, tick())
	}
	assert.NotEmpty(t, tick())
}
