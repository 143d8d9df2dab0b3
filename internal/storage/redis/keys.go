package redis

import (
	"fmt"
	"strings"

	"multirpg/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "multirpg"

// playerKey returns the Redis key for a Player record
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playersIndexKey returns the Redis key of the SET of all player ids
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// usernameIndexKey returns the Redis key for the username -> player_id
// index. Usernames are unique case-insensitively, so the index is keyed by
// the folded form.
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, strings.ToLower(username))
}

// itemsKey returns the Redis key of the HASH of a player's items, keyed by slot
func itemsKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:items:%s", keyPrefix, playerID)
}

// eventsKey returns the Redis key of the LIST of event records, newest first
func eventsKey() string {
	return fmt.Sprintf("%s:events", keyPrefix)
}
