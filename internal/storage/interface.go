package storage

import (
	"context"

	"multirpg/internal/model"
)

// Store defines the interface of the durable record mirror. The in-memory
// player table is authoritative for gameplay; the mirror is written behind
// it and read only at startup and by ad-hoc tooling.
type Store interface {
	// Player records
	SavePlayer(ctx context.Context, player *model.Player) error
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	LoadPlayers(ctx context.Context) ([]*model.Player, error)

	// Item records, unique per (player, slot); deleting a player's items
	// is the cascade half of player deletion
	SaveItem(ctx context.Context, item *model.Item) error
	DeleteItems(ctx context.Context, playerID model.PlayerID) error
	LoadItems(ctx context.Context, playerID model.PlayerID) ([]*model.Item, error)

	// Event records, append-only
	AppendEvent(ctx context.Context, event *model.Event) error
	RecentEvents(ctx context.Context, limit int) ([]*model.Event, error)

	Close() error
}
