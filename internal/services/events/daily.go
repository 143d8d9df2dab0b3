package events

import (
	"fmt"
	"strings"

	"multirpg/internal/model"
	"multirpg/internal/services/player"
)

// itemEventChance is how often a calamity or godsend hits an item instead
// of the countdown
const itemEventChance = 0.1

var calamityItemTexts = map[model.Slot]string{
	model.SlotAmulet:   "%s fell, chipping their amulet",
	model.SlotCharm:    "%s dropped their charm in a bog",
	model.SlotWeapon:   "%s left their weapon out in the rain",
	model.SlotTunic:    "%s spilled a shrinking potion on their tunic",
	model.SlotShield:   "%s's shield was scorched by dragon fire",
	model.SlotLeggings: "%s burned a hole in their leggings while ironing",
}

var calamityTexts = []string{
	"%s tripped over their own feet",
	"%s was startled by a loud noise",
	"%s drank a potion of Extreme Clumsiness by mistake",
	"%s got lost in the Enchanted Woods",
}

var godsendItemTexts = map[model.Slot]string{
	model.SlotAmulet:   "%s's amulet was blessed by a cleric",
	model.SlotCharm:    "%s's charm absorbed a bolt of lightning",
	model.SlotWeapon:   "%s sharpened their weapon",
	model.SlotTunic:    "A magician cast Rigidity on %s's tunic",
	model.SlotShield:   "%s reinforced their shield with dragon scales",
	model.SlotLeggings: "A wizard imbued %s's leggings with Fortitude",
}

var godsendTexts = []string{
	"%s found a four-leaf clover",
	"%s received a blessing from a wandering priest",
	"%s stumbled upon an enchanted spring",
	"%s was touched by an angel",
}

// eventSlots is the fixed order item events pick from
var eventSlots = []model.Slot{
	model.SlotAmulet, model.SlotCharm, model.SlotWeapon,
	model.SlotTunic, model.SlotShield, model.SlotLeggings,
}

func (s *Service) calamity(tx *player.Tx, online []*model.Player) []model.Broadcast {
	if len(online) == 0 {
		return nil
	}
	p := online[s.random.Intn(len(online))]

	if s.random.Float64() < itemEventChance {
		slot := eventSlots[s.random.Intn(len(eventSlots))]
		tx.ModifyItemLevelPct(p.ID, slot, -0.10)
		msg := fmt.Sprintf(calamityItemTexts[slot], p.Handle())
		msg = fmt.Sprintf("%s! %s's %s loses 10%% effectiveness.", msg, p.Handle(), slot)
		tx.LogEvent(model.EventCalamity, msg, p.ID, "")
		return []model.Broadcast{model.BroadcastAll(msg)}
	}

	live, ok := tx.Get(p.ID)
	if !ok {
		return nil
	}
	t := int(float64(5+s.random.Range(0, 7)) / 100 * float64(live.TTL))
	tx.AdjustTTL(live.ID, t)
	text := calamityTexts[s.random.Intn(len(calamityTexts))]
	msg := fmt.Sprintf("%s. This calamity slowed them %s from level %d.",
		fmt.Sprintf(text, live.Handle()), model.FormatSeconds(t), live.Level+1)

	msgs := []model.Broadcast{model.BroadcastAll(msg)}
	if fresh, ok := tx.Get(live.ID); ok {
		msgs = append(msgs, model.BroadcastAll(fmt.Sprintf(
			"%s reaches next level in %s.", fresh.Handle(), model.FormatSeconds(fresh.TTL))))
	}
	tx.LogEvent(model.EventCalamity, msg, live.ID, "")
	return msgs
}

func (s *Service) godsend(tx *player.Tx, online []*model.Player) []model.Broadcast {
	if len(online) == 0 {
		return nil
	}
	p := online[s.random.Intn(len(online))]

	if s.random.Float64() < itemEventChance {
		slot := eventSlots[s.random.Intn(len(eventSlots))]
		tx.ModifyItemLevelPct(p.ID, slot, 0.10)
		msg := fmt.Sprintf(godsendItemTexts[slot], p.Handle())
		msg = fmt.Sprintf("%s! %s's %s gains 10%% effectiveness.", msg, p.Handle(), slot)
		tx.LogEvent(model.EventGodsend, msg, p.ID, "")
		return []model.Broadcast{model.BroadcastAll(msg)}
	}

	live, ok := tx.Get(p.ID)
	if !ok {
		return nil
	}
	t := int(float64(5+s.random.Range(0, 7)) / 100 * float64(live.TTL))
	tx.AdjustTTL(live.ID, -t)
	text := godsendTexts[s.random.Intn(len(godsendTexts))]
	msg := fmt.Sprintf("%s! This godsend accelerated them %s towards level %d.",
		fmt.Sprintf(text, live.Handle()), model.FormatSeconds(t), live.Level+1)

	msgs := []model.Broadcast{model.BroadcastAll(msg)}
	if fresh, ok := tx.Get(live.ID); ok {
		msgs = append(msgs, model.BroadcastAll(fmt.Sprintf(
			"%s reaches next level in %s.", fresh.Handle(), model.FormatSeconds(fresh.TTL))))
	}
	tx.LogEvent(model.EventGodsend, msg, live.ID, "")
	return msgs
}

// goodness removes a shared slice of time from two good players
func (s *Service) goodness(tx *player.Tx, online []*model.Player) []model.Broadcast {
	var good []*model.Player
	for _, p := range online {
		if p.Alignment == model.AlignGood {
			good = append(good, p)
		}
	}
	if len(good) < 2 {
		return nil
	}
	pair := s.sample(good, 2)
	gain := 5 + s.random.Range(0, 7)

	msg := fmt.Sprintf("%s and %s have prayed together. %d%% of their time is removed.",
		pair[0].Handle(), pair[1].Handle(), gain)
	msgs := []model.Broadcast{model.BroadcastAll(msg)}
	for _, p := range pair {
		live, ok := tx.Get(p.ID)
		if !ok {
			continue
		}
		newTTL := live.TTL * (100 - gain) / 100
		tx.AdjustTTL(live.ID, newTTL-live.TTL)
		msgs = append(msgs, model.BroadcastAll(fmt.Sprintf(
			"%s reaches next level in %s.", live.Handle(), model.FormatSeconds(newTTL))))
	}
	tx.LogEvent(model.EventGodsend, msg, pair[0].ID, pair[1].ID)
	return msgs
}

// evilness lets an evil player steal from the good, or pay for their sins
func (s *Service) evilness(tx *player.Tx, online []*model.Player) []model.Broadcast {
	var evil []*model.Player
	for _, p := range online {
		if p.Alignment == model.AlignEvil {
			evil = append(evil, p)
		}
	}
	if len(evil) == 0 {
		return nil
	}
	me := evil[s.random.Intn(len(evil))]

	if s.random.Float64() < 0.5 {
		var good []*model.Player
		for _, p := range online {
			if p.Alignment == model.AlignGood {
				good = append(good, p)
			}
		}
		if len(good) == 0 {
			return nil
		}
		target := good[s.random.Intn(len(good))]
		candidates := tx.StealableSlots(me.ID, target.ID)
		if len(candidates) == 0 {
			return nil
		}
		slot := candidates[s.random.Intn(len(candidates))]
		stolen, old, ok := tx.StealItem(me.ID, target.ID, slot)
		if !ok {
			return nil
		}
		msg := fmt.Sprintf("%s stole %s's level %d %s! Leaves their old level %d %s behind.",
			me.Handle(), target.Handle(), stolen, slot, old, slot)
		tx.LogEvent(model.EventSteal, msg, me.ID, target.ID)
		return []model.Broadcast{model.BroadcastAll(msg)}
	}

	live, ok := tx.Get(me.ID)
	if !ok {
		return nil
	}
	t := live.TTL * (1 + s.random.Range(0, 4)) / 100
	tx.AdjustTTL(live.ID, t)
	msg := fmt.Sprintf("%s is forsaken by their evil god. %s added to their clock.",
		live.Handle(), model.FormatSeconds(t))
	msgs := []model.Broadcast{model.BroadcastAll(msg)}
	if fresh, ok := tx.Get(live.ID); ok {
		msgs = append(msgs, model.BroadcastAll(fmt.Sprintf(
			"%s reaches next level in %s.", fresh.Handle(), model.FormatSeconds(fresh.TTL))))
	}
	tx.LogEvent(model.EventCalamity, msg, live.ID, "")
	return msgs
}

// teamBattle throws three random players against three others; the stake is
// a fifth of the first team's lowest countdown
func (s *Service) teamBattle(tx *player.Tx, online []*model.Player) []model.Broadcast {
	if len(online) < 6 {
		return nil
	}
	picked := s.sample(online, 6)
	a, b := picked[:3], picked[3:]

	sumA, sumB := 0, 0
	for _, p := range a {
		sumA += tx.EffectiveSum(p.ID)
	}
	for _, p := range b {
		sumB += tx.EffectiveSum(p.ID)
	}
	rollA := s.random.Range(0, max(sumA-1, 0))
	rollB := s.random.Range(0, max(sumB-1, 0))
	won := rollA >= rollB

	lowest := a[0].TTL
	for _, p := range a[1:] {
		if p.TTL < lowest {
			lowest = p.TTL
		}
	}
	gain := lowest / 5

	verb, dir := "won", "removed from"
	if !won {
		verb, dir = "lost", "added to"
	}
	msg := fmt.Sprintf("%s [%d/%d] team battled %s [%d/%d] and %s! %s %s their clocks.",
		handles(a), rollA, sumA, handles(b), rollB, sumB, verb,
		model.FormatSeconds(gain), dir)

	for _, p := range a {
		if won {
			tx.AdjustTTL(p.ID, -gain)
		} else {
			tx.AdjustTTL(p.ID, gain)
		}
	}
	tx.LogEvent(model.EventTeamBattle, msg, "", "")
	return []model.Broadcast{model.BroadcastAll(msg)}
}

func handles(players []*model.Player) string {
	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = p.Handle()
	}
	return strings.Join(parts, ", ")
}
