package memory

import (
	"context"
	"sync"

	"multirpg/internal/model"
	"multirpg/internal/storage"
)

// Storage is an in-memory implementation of the storage interface, used in
// tests and when no redis URL is configured
type Storage struct {
	mu sync.RWMutex

	players map[model.PlayerID]*model.Player
	items   map[itemKey]*model.Item
	events  []*model.Event
}

type itemKey struct {
	playerID model.PlayerID
	slot     model.Slot
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
		items:   make(map[itemKey]*model.Item),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Player records

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *player
	s.players[player.ID] = &cp
	return nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *Storage) LoadPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		players = append(players, &cp)
	}
	return players, nil
}

// Item records

func (s *Storage) SaveItem(ctx context.Context, item *model.Item) error {
	if !model.ValidSlot(item.Slot) {
		return model.ErrInvalidSlot
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.items[itemKey{playerID: item.PlayerID, slot: item.Slot}] = &cp
	return nil
}

func (s *Storage) DeleteItems(ctx context.Context, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.items {
		if key.playerID == playerID {
			delete(s.items, key)
		}
	}
	return nil
}

func (s *Storage) LoadItems(ctx context.Context, playerID model.PlayerID) ([]*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []*model.Item
	for key, item := range s.items {
		if key.playerID == playerID {
			cp := *item
			items = append(items, &cp)
		}
	}
	return items, nil
}

// Event records

func (s *Storage) AppendEvent(ctx context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *event
	s.events = append(s.events, &cp)
	return nil
}

func (s *Storage) RecentEvents(ctx context.Context, limit int) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	// Newest first
	events := make([]*model.Event, 0, limit)
	for i := len(s.events) - 1; i >= len(s.events)-limit; i-- {
		cp := *s.events[i]
		events = append(events, &cp)
	}
	return events, nil
}

func (s *Storage) Close() error {
	return nil
}
