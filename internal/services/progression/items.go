package progression

import (
	"fmt"
	"math"

	"multirpg/internal/model"
)

// uniqueItem is one of the legendary drops available past level 25
type uniqueItem struct {
	name     string
	slot     model.Slot
	minLevel int
	maxLevel int // exclusive
	reqLevel int
	found    string
}

var uniqueItems = []uniqueItem{
	{"Mattt's Omniscience Grand Crown", model.SlotHelm, 50, 74, 25,
		"Your enemies fall before you as you anticipate their every move."},
	{"Juliet's Glorious Ring of Sparkliness", model.SlotRing, 50, 74, 25,
		"Your enemies are blinded by its glory and their greed."},
	{"Res0's Protectorate Plate Mail", model.SlotTunic, 75, 99, 30,
		"Your enemies cower as their attacks have no effect."},
	{"Dwyn's Storm Magic Amulet", model.SlotAmulet, 100, 124, 35,
		"Your enemies are swept away by elemental fury."},
	{"Jotun's Fury Colossal Sword", model.SlotWeapon, 150, 174, 40,
		"Your enemies are crushed by the blow."},
	{"Drdink's Cane of Blind Rage", model.SlotWeapon, 175, 200, 45,
		"You blindly swing, hitting stuff."},
	{"Mrquick's Magical Boots of Swiftness", model.SlotBoots, 250, 300, 48,
		"Your enemies choke on your dust."},
	{"Jeff's Cluehammer of Doom", model.SlotWeapon, 300, 350, 52,
		"Your enemies gain sudden clarity... as you relieve them of it."},
}

const uniqueChance = 1.0 / 40

// rollItem picks what a player finds on level-up. Past level 25 each
// eligible unique gets its own 1-in-40 shot before the mundane roll.
func (s *Service) rollItem(playerLevel int) (model.Slot, int, *uniqueItem) {
	if playerLevel >= 25 {
		for i := range uniqueItems {
			u := &uniqueItems[i]
			if playerLevel >= u.reqLevel && s.random.Float64() < uniqueChance {
				return u.slot, s.random.Range(u.minLevel, u.maxLevel-1), u
			}
		}
	}

	maxLevel := playerLevel * 3 / 2
	level := 1
	for num := 1; num <= maxLevel; num++ {
		if s.random.Float64() < 1/math.Pow(1.4, float64(num)/4) {
			level = num
		}
	}
	return model.Slots[s.random.Intn(len(model.Slots))], level, nil
}

// findItem rolls a drop for a freshly levelled player and equips it if it
// beats the current item in that slot. The result is a notice to the player
// only, never a channel message.
func (s *Service) findItem(tx txView, p *model.Player, level int) model.Broadcast {
	slot, itemLevel, unique := s.rollItem(level)

	current := 0
	if item, ok := tx.Items(p.ID)[slot]; ok {
		current = item.Level
	}

	nick := p.Nick
	if nick == "" {
		nick = p.Username
	}

	if unique != nil && itemLevel > current {
		_ = tx.SetItem(p.ID, &model.Item{
			Slot: slot, Level: itemLevel, Name: unique.name, Unique: true,
		})
		return model.BroadcastNotice(p.Network, nick, fmt.Sprintf(
			"The light of the gods shines down! You found the level %d %s! %s",
			itemLevel, unique.name, unique.found))
	}
	if itemLevel > current {
		_ = tx.SetItem(p.ID, &model.Item{Slot: slot, Level: itemLevel})
		return model.BroadcastNotice(p.Network, nick, fmt.Sprintf(
			"You found a level %d %s! Your current %s is only level %d, "+
				"so it seems Luck is with you!", itemLevel, slot, slot, current))
	}
	return model.BroadcastNotice(p.Network, nick, fmt.Sprintf(
		"You found a level %d %s. Your current %s is level %d, "+
			"so it seems Luck is against you. You toss the %s.",
		itemLevel, slot, slot, current, slot))
}
