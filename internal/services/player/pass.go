package player

import (
	"math"
	"sort"

	"multirpg/internal/game/penalty"
	"multirpg/internal/metrics"
	"multirpg/internal/model"
)

// Pass runs fn inside the table's critical section. The world clock uses
// this to run a whole tick (countdown, movement, random events) as one
// linearizable unit. fn must not call any other Service method; it mutates
// exclusively through the Tx.
func (s *Service) Pass(fn func(tx *Tx)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{s: s, online: s.onlineSnapshotLocked()}
	fn(tx)
}

// Tx is the view handed to a tick pass. Online returns a snapshot taken
// when the pass began, so a pass iterates a consistent set even as it
// mutates players.
type Tx struct {
	s      *Service
	online []*model.Player
}

// Online returns the copies of players who were online at the start of the
// pass. Mutations made through the Tx are not reflected in these copies.
func (tx *Tx) Online() []*model.Player {
	return tx.online
}

// Get returns the live state of one player
func (tx *Tx) Get(id model.PlayerID) (*model.Player, bool) {
	p, ok := tx.s.players[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// AdjustTTL adds delta seconds to the countdown, flooring at zero
func (tx *Tx) AdjustTTL(id model.PlayerID, delta int) {
	p, ok := tx.s.players[id]
	if !ok {
		return
	}
	p.TTL += delta
	if p.TTL < 0 {
		p.TTL = 0
	}
	tx.s.saveMirrorLocked(p)
}

// AddIdle credits seconds of online time to the cumulative idle counter
func (tx *Tx) AddIdle(id model.PlayerID, seconds int) {
	p, ok := tx.s.players[id]
	if !ok {
		return
	}
	p.IdleTotal += seconds
	tx.s.saveMirrorLocked(p)
}

// AddPenalty applies a penalty inside a pass
func (tx *Tx) AddPenalty(id model.PlayerID, kind penalty.Kind, seconds int) {
	p, ok := tx.s.players[id]
	if !ok {
		return
	}
	applyPenalty(p, kind, seconds)
	tx.s.saveMirrorLocked(p)
}

// LevelUp advances a player to the next level and resets their countdown
func (tx *Tx) LevelUp(id model.PlayerID) (*model.Player, bool) {
	p, ok := tx.s.players[id]
	if !ok {
		return nil, false
	}
	p.Level++
	p.TTL = penalty.BaseTTL(p.Level)
	p.NextTTL = penalty.BaseTTL(p.Level)
	metrics.RecordLevelUp()
	tx.s.saveMirrorLocked(p)
	cp := *p
	return &cp, true
}

// SetPosition moves a player on the map
func (tx *Tx) SetPosition(id model.PlayerID, x, y int) {
	p, ok := tx.s.players[id]
	if !ok {
		return
	}
	p.X = x
	p.Y = y
	tx.s.saveMirrorLocked(p)
}

// SetAlignment changes a player's alignment
func (tx *Tx) SetAlignment(id model.PlayerID, a model.Alignment) {
	p, ok := tx.s.players[id]
	if !ok {
		return
	}
	p.Alignment = a
	tx.s.saveMirrorLocked(p)
}

// SetOffline marks a player offline inside a pass
func (tx *Tx) SetOffline(id model.PlayerID) {
	p, ok := tx.s.players[id]
	if !ok {
		return
	}
	tx.s.setOfflineLocked(p)
	tx.s.saveMirrorLocked(p)
}

// Items returns copies of a player's items
func (tx *Tx) Items(id model.PlayerID) map[model.Slot]*model.Item {
	slots, ok := tx.s.items[id]
	if !ok {
		return nil
	}
	out := make(map[model.Slot]*model.Item, len(slots))
	for slot, item := range slots {
		cp := *item
		out[slot] = &cp
	}
	return out
}

// SetItem replaces an item inside a pass
func (tx *Tx) SetItem(id model.PlayerID, item *model.Item) error {
	return tx.s.setItemLocked(id, item)
}

// StealableSlots returns the slots where the victim's item outlevels the
// thief's, which are the only slots a steal may target
func (tx *Tx) StealableSlots(thief, victim model.PlayerID) []model.Slot {
	thiefSlots, ok := tx.s.items[thief]
	if !ok {
		return nil
	}
	victimSlots, ok := tx.s.items[victim]
	if !ok {
		return nil
	}
	var out []model.Slot
	for _, slot := range model.Slots {
		t, v := thiefSlots[slot], victimSlots[slot]
		if t != nil && v != nil && v.Level > t.Level {
			out = append(out, slot)
		}
	}
	return out
}

// StealItem swaps the item levels in slot between thief and victim. Both
// items come out plain: stolen uniques lose their name.
func (tx *Tx) StealItem(thief, victim model.PlayerID, slot model.Slot) (stolen, old int, ok bool) {
	thiefSlots, tok := tx.s.items[thief]
	victimSlots, vok := tx.s.items[victim]
	if !tok || !vok {
		return 0, 0, false
	}
	t, v := thiefSlots[slot], victimSlots[slot]
	if t == nil || v == nil {
		return 0, 0, false
	}

	stolen, old = v.Level, t.Level
	t.Level, t.Name, t.Unique = stolen, "", false
	v.Level, v.Name, v.Unique = old, "", false
	tx.s.saveItemMirrorLocked(t)
	tx.s.saveItemMirrorLocked(v)
	return stolen, old, true
}

// ModifyItemLevelPct scales an item's level by (1 + pct), rounding to the
// nearest level. Level-zero items are unaffected.
func (tx *Tx) ModifyItemLevelPct(id model.PlayerID, slot model.Slot, pct float64) (int, bool) {
	slots, ok := tx.s.items[id]
	if !ok {
		return 0, false
	}
	item, ok := slots[slot]
	if !ok || item.Level == 0 {
		return 0, false
	}
	item.Level = int(math.Round(float64(item.Level) * (1 + pct)))
	if item.Level < 0 {
		item.Level = 0
	}
	tx.s.saveItemMirrorLocked(item)
	return item.Level, true
}

// ItemSum returns the raw item-level sum inside a pass
func (tx *Tx) ItemSum(id model.PlayerID) int {
	sum, _ := tx.s.itemSumLocked(id)
	return sum
}

// EffectiveSum returns the alignment-scaled item sum inside a pass
func (tx *Tx) EffectiveSum(id model.PlayerID) int {
	sum, _ := tx.s.effectiveSumLocked(id)
	return sum
}

// LogEvent records a world event inside a pass
func (tx *Tx) LogEvent(kind model.EventKind, message string, p1, p2 model.PlayerID) {
	tx.s.appendEventLocked(kind, message, p1, p2)
}

// Top returns copies of the n highest-ranked players, online or not, by
// level descending then countdown ascending
func (tx *Tx) Top(n int) []*model.Player {
	all := make([]*model.Player, 0, len(tx.s.players))
	for _, p := range tx.s.players {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Level != all[j].Level {
			return all[i].Level > all[j].Level
		}
		return all[i].TTL < all[j].TTL
	})
	if n < len(all) {
		all = all[:n]
	}
	return all
}
