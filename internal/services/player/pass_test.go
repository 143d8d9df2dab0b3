package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multirpg/internal/game/penalty"
	"multirpg/internal/model"
)

func TestPassOnlineSnapshotIsStable(t *testing.T) {
	svc, _, _ := newTestService(t)

	a := register(t, svc, "alice")
	register(t, svc, "bob")

	svc.Pass(func(tx *Tx) {
		online := tx.Online()
		require.Len(t, online, 2)

		tx.SetOffline(a.ID)
		// the snapshot taken at pass start does not shrink
		assert.Len(t, tx.Online(), 2)
	})

	assert.Len(t, svc.OnlineSnapshot(), 1)
}

func TestPassLevelUp(t *testing.T) {
	svc, _, _ := newTestService(t)

	a := register(t, svc, "alice")
	svc.Pass(func(tx *Tx) {
		p, ok := tx.LevelUp(a.ID)
		require.True(t, ok)
		assert.Equal(t, 1, p.Level)
		assert.Equal(t, penalty.BaseTTL(1), p.TTL)
	})
}

func TestPassAdjustTTLFloorsAtZero(t *testing.T) {
	svc, _, _ := newTestService(t)

	a := register(t, svc, "alice")
	svc.Pass(func(tx *Tx) {
		tx.AdjustTTL(a.ID, -penalty.BaseTTL(0)-100)
		p, ok := tx.Get(a.ID)
		require.True(t, ok)
		assert.Equal(t, 0, p.TTL)
	})
}

func TestPassStealItemSwapsLevels(t *testing.T) {
	svc, _, _ := newTestService(t)

	thief := register(t, svc, "alice")
	victim := register(t, svc, "bob")

	require.NoError(t, svc.SetItem(thief.ID, &model.Item{Slot: model.SlotWeapon, Level: 3}))
	require.NoError(t, svc.SetItem(victim.ID, &model.Item{
		Slot: model.SlotWeapon, Level: 10, Name: "Jeff's Cluehammer of Doom", Unique: true,
	}))

	svc.Pass(func(tx *Tx) {
		slots := tx.StealableSlots(thief.ID, victim.ID)
		require.Equal(t, []model.Slot{model.SlotWeapon}, slots)

		stolen, old, ok := tx.StealItem(thief.ID, victim.ID, model.SlotWeapon)
		require.True(t, ok)
		assert.Equal(t, 10, stolen)
		assert.Equal(t, 3, old)
	})

	thiefItems, err := svc.Items(thief.ID)
	require.NoError(t, err)
	victimItems, err := svc.Items(victim.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, thiefItems[model.SlotWeapon].Level)
	assert.Equal(t, 3, victimItems[model.SlotWeapon].Level)
	// the stolen unique loses its name in the handoff
	assert.False(t, thiefItems[model.SlotWeapon].Unique)
	assert.Empty(t, thiefItems[model.SlotWeapon].Name)
}

func TestPassModifyItemLevelPct(t *testing.T) {
	svc, _, _ := newTestService(t)

	a := register(t, svc, "alice")
	require.NoError(t, svc.SetItem(a.ID, &model.Item{Slot: model.SlotHelm, Level: 50}))

	svc.Pass(func(tx *Tx) {
		level, ok := tx.ModifyItemLevelPct(a.ID, model.SlotHelm, -0.10)
		require.True(t, ok)
		assert.Equal(t, 45, level)

		// level-zero items are untouched
		_, ok = tx.ModifyItemLevelPct(a.ID, model.SlotRing, 0.10)
		assert.False(t, ok)
	})
}

func TestEffectiveSumScalesByAlignment(t *testing.T) {
	svc, _, _ := newTestService(t)

	a := register(t, svc, "alice")
	require.NoError(t, svc.SetItem(a.ID, &model.Item{Slot: model.SlotWeapon, Level: 100}))

	sum, err := svc.EffectiveSum(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, sum)

	_, err = svc.ApplyDelta(a.ID, func(p *model.Player) { p.Alignment = model.AlignGood })
	require.NoError(t, err)
	sum, err = svc.EffectiveSum(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 110, sum)

	_, err = svc.ApplyDelta(a.ID, func(p *model.Player) { p.Alignment = model.AlignEvil })
	require.NoError(t, err)
	sum, err = svc.EffectiveSum(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, sum)
}

func TestPassLogEventVisibleInRecent(t *testing.T) {
	svc, _, _ := newTestService(t)

	a := register(t, svc, "alice")
	svc.Pass(func(tx *Tx) {
		tx.LogEvent(model.EventLevelUp, "alice reached level 1", a.ID, "")
	})

	events := svc.RecentEvents(10)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventLevelUp, events[0].Kind)
	assert.Equal(t, a.ID, events[0].Player1)
}
