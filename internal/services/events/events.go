// Package events rolls and resolves the random fortunes of the realm:
// hand-of-god interventions, calamities and godsends, alignment events,
// battles, and the quest lifecycle. Everything here runs inside a player
// store pass, driven by the tick.
package events

import (
	"fmt"
	"log/slog"

	"multirpg/internal/dependencies/clock"
	"multirpg/internal/dependencies/random"
	"multirpg/internal/model"
	"multirpg/internal/services/player"
	"multirpg/internal/services/progression"
	"multirpg/internal/world"
)

// Daily event rates: each event fires on average this many times per
// online player per day (scaled by tick length in Tick)
const (
	hogDays        = 20
	teamBattleDays = 24
	calamityDays   = 8
	godsendDays    = 4
	evilnessDays   = 8
	goodnessDays   = 12

	secondsPerDay = 86400

	// Periodic announcements, in accumulated tick seconds
	topReportPeriod = 36000
	battlePeriod    = 1200
)

// Config tunes the event engine
type Config struct {
	// SelfClock is the tick interval in seconds
	SelfClock int
}

// DefaultConfig returns the standard tuning
func DefaultConfig() Config {
	return Config{SelfClock: 5}
}

// Service is the event engine
type Service struct {
	random random.Random
	clock  clock.Clock
	state  *world.State
	logger *slog.Logger
	cfg    Config

	// topReport and battleReport accumulate tick seconds toward the
	// periodic announcements, so the periods fire even when the tick
	// interval does not divide them evenly
	topReport    int
	battleReport int
}

// New creates an event engine
func New(rnd random.Random, clk clock.Clock, state *world.State, logger *slog.Logger, cfg Config) *Service {
	if cfg.SelfClock <= 0 {
		cfg.SelfClock = DefaultConfig().SelfClock
	}
	return &Service{
		random: rnd,
		clock:  clk,
		state:  state,
		logger: logger.With(slog.String("component", "events")),
		cfg:    cfg,
	}
}

// Tick resolves everything the progression pass set up and then rolls the
// random events for this tick. Must run inside the same player store pass
// as the progression tick it consumes.
func (s *Service) Tick(tx *player.Tx, prog progression.TickResult) []model.Broadcast {
	var msgs []model.Broadcast

	online := tx.Online()
	if len(online) == 0 {
		return msgs
	}

	// Challenge battles for players who just levelled
	for _, p := range prog.LeveledUp {
		msgs = append(msgs, s.challengeBattle(tx, p, online)...)
	}

	// Duels between players who collided during movement
	for _, c := range prog.Collisions {
		msgs = append(msgs, s.resolveBattle(tx, c.A, c.B, true)...)
	}

	n := len(online)
	nGood, nEvil := 0, 0
	for _, p := range online {
		switch p.Alignment {
		case model.AlignGood:
			nGood++
		case model.AlignEvil:
			nEvil++
		}
	}
	sc := float64(s.cfg.SelfClock)

	if s.random.Float64() < float64(n)*sc/(hogDays*secondsPerDay) {
		msgs = append(msgs, s.HandOfGod(tx, online)...)
	}
	if s.random.Float64() < float64(n)*sc/(teamBattleDays*secondsPerDay) {
		msgs = append(msgs, s.teamBattle(tx, online)...)
	}
	if s.random.Float64() < float64(n)*sc/(calamityDays*secondsPerDay) {
		msgs = append(msgs, s.calamity(tx, online)...)
	}
	if s.random.Float64() < float64(n)*sc/(godsendDays*secondsPerDay) {
		msgs = append(msgs, s.godsend(tx, online)...)
	}
	if s.random.Float64() < float64(nEvil)*sc/(evilnessDays*secondsPerDay) {
		msgs = append(msgs, s.evilness(tx, online)...)
	}
	if s.random.Float64() < float64(nGood)*sc/(goodnessDays*secondsPerDay) {
		msgs = append(msgs, s.goodness(tx, online)...)
	}

	s.topReport += s.cfg.SelfClock
	if s.topReport >= topReportPeriod {
		s.topReport -= topReportPeriod
		msgs = append(msgs, s.announceTop(tx)...)
	}
	s.battleReport += s.cfg.SelfClock
	if s.battleReport >= battlePeriod {
		s.battleReport -= battlePeriod
		msgs = append(msgs, s.highLevelBattle(tx, online)...)
	}

	msgs = append(msgs, s.checkQuest(tx, online)...)
	return msgs
}

// challengeBattle pits a freshly levelled player against a random online
// opponent. Below level 25 the challenge only happens a quarter of the time.
func (s *Service) challengeBattle(tx *player.Tx, p *model.Player, online []*model.Player) []model.Broadcast {
	var opponents []*model.Player
	for _, o := range online {
		if o.ID != p.ID {
			opponents = append(opponents, o)
		}
	}
	if len(opponents) == 0 {
		return nil
	}
	if p.Level < 25 && s.random.Float64() >= 0.25 {
		return nil
	}
	opponent := opponents[s.random.Intn(len(opponents))]
	return s.resolveBattle(tx, p.ID, opponent.ID, false)
}

// HandOfGod strikes one random online player: four times out of five the
// hand helps, otherwise it burns. Exported so the admin HOG command can
// invoke it directly.
func (s *Service) HandOfGod(tx *player.Tx, online []*model.Player) []model.Broadcast {
	if len(online) == 0 {
		return nil
	}
	p := online[s.random.Intn(len(online))]
	live, ok := tx.Get(p.ID)
	if !ok {
		return nil
	}

	helping := s.random.Range(0, 4) > 0
	pct := float64(5+s.random.Range(0, 70)) / 100
	t := int(pct * float64(live.TTL))

	var msg string
	if helping {
		tx.AdjustTTL(live.ID, -t)
		msg = fmt.Sprintf("Verily I say unto thee, the Heavens have burst forth, "+
			"and the blessed hand of God carried %s %s toward level %d.",
			live.Handle(), model.FormatSeconds(t), live.Level+1)
	} else {
		tx.AdjustTTL(live.ID, t)
		msg = fmt.Sprintf("Thereupon He stretched out His little finger among them "+
			"and consumed %s with fire, slowing the heathen %s from level %d.",
			live.Handle(), model.FormatSeconds(t), live.Level+1)
	}

	msgs := []model.Broadcast{model.BroadcastAll(msg)}
	if fresh, ok := tx.Get(live.ID); ok {
		msgs = append(msgs, model.BroadcastAll(fmt.Sprintf(
			"%s reaches next level in %s.", fresh.Handle(), model.FormatSeconds(fresh.TTL))))
	}
	tx.LogEvent(model.EventHandOfGod, msg, live.ID, "")
	return msgs
}

// announceTop reports the three highest players
func (s *Service) announceTop(tx *player.Tx) []model.Broadcast {
	top := tx.Top(3)
	if len(top) == 0 {
		return nil
	}
	msgs := []model.Broadcast{model.BroadcastAll("Idle RPG Top Players:")}
	for i, p := range top {
		msgs = append(msgs, model.BroadcastAll(fmt.Sprintf(
			"%s, the level %d %s, is #%d! Next level in %s.",
			p.Handle(), p.Level, p.Class, i+1, model.FormatSeconds(p.TTL))))
	}
	return msgs
}

// highLevelBattle occasionally throws a level-45+ player into combat when
// the high end of the leaderboard is crowded enough
func (s *Service) highLevelBattle(tx *player.Tx, online []*model.Player) []model.Broadcast {
	var high []*model.Player
	for _, p := range online {
		if p.Level >= 45 {
			high = append(high, p)
		}
	}
	if len(high) == 0 || float64(len(high))/float64(len(online)) <= 0.15 {
		return nil
	}
	c := high[s.random.Intn(len(high))]
	var others []*model.Player
	for _, p := range online {
		if p.ID != c.ID {
			others = append(others, p)
		}
	}
	if len(others) == 0 {
		return nil
	}
	return s.resolveBattle(tx, c.ID, others[s.random.Intn(len(others))].ID, false)
}

// sample picks k distinct players without replacement
func (s *Service) sample(players []*model.Player, k int) []*model.Player {
	perm := s.random.Perm(len(players))
	out := make([]*model.Player, 0, k)
	for _, idx := range perm[:k] {
		out = append(out, players[idx])
	}
	return out
}
