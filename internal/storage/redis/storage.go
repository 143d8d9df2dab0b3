package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"multirpg/internal/model"
	"multirpg/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Player records

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + index updates
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.ID), data, 0)
	pipe.SAdd(ctx, playersIndexKey(), string(player.ID))
	pipe.Set(ctx, usernameIndexKey(player.Username), string(player.ID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	// Fetch first so the username index entry can be removed too
	player, err := s.getPlayer(ctx, id)
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.SRem(ctx, playersIndexKey(), string(id))
	if player != nil {
		pipe.Del(ctx, usernameIndexKey(player.Username))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) LoadPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		player, err := s.getPlayer(ctx, model.PlayerID(id))
		if errors.Is(err, redis.Nil) {
			// Index entry without a record; skip rather than fail the load
			continue
		}
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

func (s *Storage) getPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Item records

func (s *Storage) SaveItem(ctx context.Context, item *model.Item) error {
	if !model.ValidSlot(item.Slot) {
		return model.ErrInvalidSlot
	}
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, itemsKey(item.PlayerID), string(item.Slot), data).Err()
}

func (s *Storage) DeleteItems(ctx context.Context, playerID model.PlayerID) error {
	return s.client.Del(ctx, itemsKey(playerID)).Err()
}

func (s *Storage) LoadItems(ctx context.Context, playerID model.PlayerID) ([]*model.Item, error) {
	fields, err := s.client.HGetAll(ctx, itemsKey(playerID)).Result()
	if err != nil {
		return nil, err
	}

	items := make([]*model.Item, 0, len(fields))
	for _, data := range fields {
		var item model.Item
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

// Event records

func (s *Storage) AppendEvent(ctx context.Context, event *model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, eventsKey(), data)
	if s.cfg.MaxEvents > 0 {
		pipe.LTrim(ctx, eventsKey(), 0, int64(s.cfg.MaxEvents-1))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) RecentEvents(ctx context.Context, limit int) ([]*model.Event, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raw, err := s.client.LRange(ctx, eventsKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*model.Event, 0, len(raw))
	for _, data := range raw {
		var event model.Event
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}
	return events, nil
}
