// Package progression advances the deterministic part of a world tick:
// countdown decrement, level-ups with item drops, and map movement with
// collision detection. Random encounters triggered by what happens here
// (duels on collision, challenge battles on level-up) are resolved by the
// events engine from the TickResult.
package progression

import (
	"fmt"
	"log/slog"

	"multirpg/internal/dependencies/random"
	"multirpg/internal/model"
)

// txView is the slice of the player store's pass transaction that
// progression needs
type txView interface {
	Online() []*model.Player
	AddIdle(id model.PlayerID, seconds int)
	AdjustTTL(id model.PlayerID, delta int)
	LevelUp(id model.PlayerID) (*model.Player, bool)
	SetPosition(id model.PlayerID, x, y int)
	Items(id model.PlayerID) map[model.Slot]*model.Item
	SetItem(id model.PlayerID, item *model.Item) error
	LogEvent(kind model.EventKind, message string, p1, p2 model.PlayerID)
}

// QuestTarget tells movement about an active grid quest so questers can
// drift toward the waypoint
type QuestTarget struct {
	Active   bool
	Questers map[model.PlayerID]bool
	X, Y     int
}

// Collision is a pair of players who landed on the same square during
// movement and were selected for a duel
type Collision struct {
	A, B model.PlayerID
}

// TickResult is what one progression pass produced
type TickResult struct {
	Broadcasts []model.Broadcast
	Collisions []Collision
	LeveledUp  []*model.Player
}

// Config tunes the progression engine
type Config struct {
	// SelfClock is the tick interval in seconds, which is also how many
	// one-square movement steps each player takes per tick
	SelfClock int
}

// DefaultConfig returns the standard tuning
func DefaultConfig() Config {
	return Config{SelfClock: 5}
}

// Service is the progression engine
type Service struct {
	random random.Random
	logger *slog.Logger
	cfg    Config
}

// New creates a progression engine
func New(rnd random.Random, logger *slog.Logger, cfg Config) *Service {
	if cfg.SelfClock <= 0 {
		cfg.SelfClock = DefaultConfig().SelfClock
	}
	return &Service{
		random: rnd,
		logger: logger.With(slog.String("component", "progression")),
		cfg:    cfg,
	}
}

// Tick advances every online player by elapsed seconds of countdown and one
// round of movement. It must run inside a player-store pass.
func (s *Service) Tick(tx txView, elapsed int, quest QuestTarget) TickResult {
	var result TickResult
	online := tx.Online()
	if len(online) == 0 || elapsed <= 0 {
		return result
	}

	for _, p := range online {
		tx.AddIdle(p.ID, elapsed)
		if p.TTL-elapsed < 1 {
			s.levelUp(tx, p.ID, &result)
		} else {
			tx.AdjustTTL(p.ID, -elapsed)
		}
	}

	s.move(tx, online, quest, &result)
	return result
}

func (s *Service) levelUp(tx txView, id model.PlayerID, result *TickResult) {
	p, ok := tx.LevelUp(id)
	if !ok {
		return
	}
	s.logger.Info("level up",
		slog.String("player", p.Username), slog.Int("level", p.Level))

	result.Broadcasts = append(result.Broadcasts, model.BroadcastAll(fmt.Sprintf(
		"%s, the %s, has attained level %d! Next level in %s.",
		p.Handle(), p.Class, p.Level, model.FormatSeconds(p.TTL))))
	tx.LogEvent(model.EventLevelUp,
		fmt.Sprintf("%s reached level %d", p.Username, p.Level), p.ID, "")

	result.Broadcasts = append(result.Broadcasts, s.findItem(tx, p, p.Level))
	result.LeveledUp = append(result.LeveledUp, p)
}

// questStepChance is how often a grid quester is pulled toward the waypoint
// instead of wandering
const questStepChance = 0.01

func (s *Service) move(tx txView, online []*model.Player, quest QuestTarget, result *TickResult) {
	n := len(online)

	type pos struct{ x, y int }
	state := make(map[model.PlayerID]pos, n)
	for _, p := range online {
		state[p.ID] = pos{p.X, p.Y}
	}

	for step := 0; step < s.cfg.SelfClock; step++ {
		occupied := make(map[pos]model.PlayerID, n)
		battled := make(map[pos]bool, n)

		for _, p := range online {
			cur := state[p.ID]
			var dx, dy int
			if quest.Active && quest.Questers[p.ID] && s.random.Float64() < questStepChance {
				dx = stepToward(cur.x, quest.X)
				dy = stepToward(cur.y, quest.Y)
			} else {
				dx = s.random.Range(-1, 1)
				dy = s.random.Range(-1, 1)
			}

			next := pos{
				clamp(cur.x+dx, 0, model.MapWidth-1),
				clamp(cur.y+dy, 0, model.MapHeight-1),
			}
			state[p.ID] = next
			tx.SetPosition(p.ID, next.x, next.y)

			if other, taken := occupied[next]; taken && !battled[next] {
				if other != p.ID && n > 1 && s.random.Float64() < 1/float64(n) {
					battled[next] = true
					result.Collisions = append(result.Collisions, Collision{A: p.ID, B: other})
				}
			} else {
				occupied[next] = p.ID
			}
		}
	}
}

func stepToward(cur, target int) int {
	switch {
	case cur < target:
		return 1
	case cur > target:
		return -1
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
