package player

import (
	"multirpg/internal/model"
)

// alignment battle modifiers: good fights at 110%, evil at 90%
const (
	goodBattleFactor = 1.1
	evilBattleFactor = 0.9
)

// Items returns copies of a player's items keyed by slot
func (s *Service) Items(id model.PlayerID) (map[model.Slot]*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, ok := s.items[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	out := make(map[model.Slot]*model.Item, len(slots))
	for slot, item := range slots {
		cp := *item
		out[slot] = &cp
	}
	return out, nil
}

// ItemSum returns the sum of a player's item levels
func (s *Service) ItemSum(id model.PlayerID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemSumLocked(id)
}

func (s *Service) itemSumLocked(id model.PlayerID) (int, error) {
	slots, ok := s.items[id]
	if !ok {
		return 0, model.ErrPlayerNotFound
	}
	sum := 0
	for _, item := range slots {
		sum += item.Level
	}
	return sum, nil
}

// EffectiveSum returns the item sum scaled by the player's alignment
func (s *Service) EffectiveSum(id model.PlayerID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveSumLocked(id)
}

func (s *Service) effectiveSumLocked(id model.PlayerID) (int, error) {
	sum, err := s.itemSumLocked(id)
	if err != nil {
		return 0, err
	}
	p, ok := s.players[id]
	if !ok {
		return 0, model.ErrPlayerNotFound
	}
	return scaleByAlignment(sum, p.Alignment), nil
}

func scaleByAlignment(sum int, a model.Alignment) int {
	switch a {
	case model.AlignGood:
		return int(float64(sum) * goodBattleFactor)
	case model.AlignEvil:
		return int(float64(sum) * evilBattleFactor)
	default:
		return sum
	}
}

func (s *Service) setItemLocked(id model.PlayerID, item *model.Item) error {
	slots, ok := s.items[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if !model.ValidSlot(item.Slot) {
		return model.ErrInvalidSlot
	}
	cp := *item
	cp.PlayerID = id
	slots[item.Slot] = &cp
	s.saveItemMirrorLocked(&cp)
	return nil
}

// SetItem replaces the item in a slot
func (s *Service) SetItem(id model.PlayerID, item *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setItemLocked(id, item)
}
