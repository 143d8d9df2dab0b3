package events

import (
	"fmt"
	"math"

	"multirpg/internal/model"
	"multirpg/internal/services/player"
)

// critScale returns how unlikely a critical strike is for a winner of the
// given alignment: good players crit rarely, evil players often
func critScale(a model.Alignment) int {
	switch a {
	case model.AlignGood:
		return 50
	case model.AlignEvil:
		return 20
	default:
		return 35
	}
}

// resolveBattle fights challenger against opponent. Both are re-read from
// the transaction so countdowns are current. The winner's clock shrinks by
// a share of the loser's level; a losing challenger is penalized instead.
func (s *Service) resolveBattle(tx *player.Tx, challengerID, opponentID model.PlayerID, collision bool) []model.Broadcast {
	c, ok := tx.Get(challengerID)
	if !ok {
		return nil
	}
	o, ok := tx.Get(opponentID)
	if !ok || c.ID == o.ID {
		return nil
	}

	cSum := tx.EffectiveSum(c.ID)
	oSum := tx.EffectiveSum(o.ID)
	cRoll := s.random.Range(0, max(cSum-1, 0))
	oRoll := s.random.Range(0, max(oSum-1, 0))
	won := cRoll >= oRoll

	winner, loser := c, o
	if !won {
		winner, loser = o, c
	}

	var verb string
	if collision {
		outcome := "taken them in"
		if !won {
			outcome = "been defeated in"
		}
		verb = fmt.Sprintf("%s has come upon %s and %s combat!", c.Tag(), o.Tag(), outcome)
	} else {
		outcome := "won"
		if !won {
			outcome = "lost"
		}
		verb = fmt.Sprintf("%s has challenged %s in combat and %s!", c.Tag(), o.Tag(), outcome)
	}

	var msgs []model.Broadcast
	var msg string
	if won {
		gain := int(math.Max(float64(loser.Level)/4, 7) / 100 * float64(winner.TTL))
		newTTL := max(winner.TTL-gain, 0)
		tx.AdjustTTL(winner.ID, -gain)
		msg = fmt.Sprintf("%s %s is removed from %s's clock.",
			verb, model.FormatSeconds(gain), winner.Handle())
		msgs = append(msgs,
			model.BroadcastAll(msg),
			model.BroadcastAll(fmt.Sprintf("%s reaches next level in %s.",
				winner.Handle(), model.FormatSeconds(newTTL))))

		if s.random.Intn(critScale(c.Alignment)) == 0 {
			crit := int(float64(5+s.random.Range(0, 19)) / 100 * float64(loser.TTL))
			tx.AdjustTTL(loser.ID, crit)
			critMsg := fmt.Sprintf("%s dealt %s a Critical Strike! %s added to %s's clock.",
				winner.Handle(), loser.Handle(), model.FormatSeconds(crit), loser.Handle())
			msgs = append(msgs, model.BroadcastAll(critMsg))
			tx.LogEvent(model.EventCritical, critMsg, winner.ID, loser.ID)
		} else if s.random.Intn(25) == 0 && winner.Level > 19 {
			if stealMsg, ok := s.battleSteal(tx, winner, loser); ok {
				msgs = append(msgs, model.BroadcastAll(stealMsg))
			}
		}
	} else {
		pen := int(math.Max(float64(loser.Level)/7, 7) / 100 * float64(c.TTL))
		tx.AdjustTTL(c.ID, pen)
		msg = fmt.Sprintf("%s %s is added to %s's clock.",
			verb, model.FormatSeconds(pen), c.Handle())
		msgs = append(msgs,
			model.BroadcastAll(msg),
			model.BroadcastAll(fmt.Sprintf("%s reaches next level in %s.",
				c.Handle(), model.FormatSeconds(c.TTL+pen))))
	}

	tx.LogEvent(model.EventBattle, msg, c.ID, o.ID)
	return msgs
}

func (s *Service) battleSteal(tx *player.Tx, winner, loser *model.Player) (string, bool) {
	candidates := tx.StealableSlots(winner.ID, loser.ID)
	if len(candidates) == 0 {
		return "", false
	}
	slot := candidates[s.random.Intn(len(candidates))]
	stolen, old, ok := tx.StealItem(winner.ID, loser.ID, slot)
	if !ok {
		return "", false
	}
	msg := fmt.Sprintf("In battle, %s dropped their level %d %s! "+
		"%s picks it up, tossing their old level %d %s.",
		loser.Handle(), stolen, slot, winner.Handle(), old, slot)
	tx.LogEvent(model.EventSteal, msg, winner.ID, loser.ID)
	return msg, true
}
