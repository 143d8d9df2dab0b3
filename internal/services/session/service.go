// Package session translates inbound chat-protocol activity into game
// effects: presence penalties, login and registration, and the private
// message command table.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"multirpg/internal/dependencies/clock"
	"multirpg/internal/game/penalty"
	"multirpg/internal/model"
	"multirpg/internal/services/player"
	"multirpg/internal/world"
)

// questDisruptionCooldown delays the next quest after a quester misbehaves
const questDisruptionCooldown = 12 * time.Hour

// Config tunes the session service
type Config struct {
	// LimitPen caps any single presence penalty, in seconds. Zero means
	// uncapped.
	LimitPen int
}

// Service handles inbound protocol events and player commands
type Service struct {
	store  *player.Service
	state  *world.State
	clock  clock.Clock
	logger *slog.Logger
	cfg    Config
}

// New creates a session service
func New(store *player.Service, state *world.State, clk clock.Clock, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		store:  store,
		state:  state,
		clock:  clk,
		logger: logger.With(slog.String("component", "session")),
		cfg:    cfg,
	}
}

// Result is what an inbound event produced: an optional private reply to
// the acting nick plus any broadcasts for the channels
type Result struct {
	Reply      string
	Broadcasts []model.Broadcast
}

// OnMessage penalizes an online player for talking in the channel
func (s *Service) OnMessage(nick, network, message string) Result {
	p, err := s.store.GetByNick(nick, network)
	if err != nil {
		return Result{}
	}
	pen := penalty.Cost(penalty.KindMessage, p.Level, len(message), s.cfg.LimitPen)
	if _, err := s.store.AddPenalty(p.ID, penalty.KindMessage, pen); err != nil {
		return Result{}
	}
	return Result{
		Broadcasts: append([]model.Broadcast{
			model.BroadcastNotice(network, nick, fmt.Sprintf(
				"Penalty of %s added to your timer for talking.", model.FormatSeconds(pen))),
		}, s.disruptIfQuester(p)...),
	}
}

// OnNickChange penalizes a nick change and tracks the new nick
func (s *Service) OnNickChange(oldNick, newNick, network string) Result {
	p, err := s.store.GetByNick(oldNick, network)
	if err != nil {
		return Result{}
	}
	pen := penalty.Cost(penalty.KindNick, p.Level, 0, s.cfg.LimitPen)
	_, err = s.store.ApplyDelta(p.ID, func(p *model.Player) {
		p.TTL += pen
		p.PenNick += pen
		p.Nick = newNick
	})
	if err != nil {
		return Result{}
	}
	return Result{
		Broadcasts: append([]model.Broadcast{
			model.BroadcastNotice(network, newNick, fmt.Sprintf(
				"Penalty of %s added to your timer for nick change.", model.FormatSeconds(pen))),
		}, s.disruptIfQuester(p)...),
	}
}

// OnPart penalizes leaving the channel and logs the player out
func (s *Service) OnPart(nick, network string) Result {
	p, err := s.store.GetByNick(nick, network)
	if err != nil {
		return Result{}
	}
	pen := penalty.Cost(penalty.KindPart, p.Level, 0, s.cfg.LimitPen)
	if _, err := s.store.AddPenalty(p.ID, penalty.KindPart, pen); err != nil {
		return Result{}
	}
	s.store.SetOffline(p.ID)
	return Result{
		Broadcasts: append([]model.Broadcast{
			model.BroadcastNet(network, fmt.Sprintf(
				"%s has parted. Penalty: %s.", p.Handle(), model.FormatSeconds(pen))),
		}, s.disruptIfQuester(p)...),
	}
}

// OnQuit penalizes a quit silently and logs the player out
func (s *Service) OnQuit(nick, network string) Result {
	p, err := s.store.GetByNick(nick, network)
	if err != nil {
		return Result{}
	}
	pen := penalty.Cost(penalty.KindQuit, p.Level, 0, s.cfg.LimitPen)
	if _, err := s.store.AddPenalty(p.ID, penalty.KindQuit, pen); err != nil {
		return Result{}
	}
	s.store.SetOffline(p.ID)
	return Result{Broadcasts: s.disruptIfQuester(p)}
}

// OnKick penalizes being kicked and logs the player out
func (s *Service) OnKick(nick, network string) Result {
	p, err := s.store.GetByNick(nick, network)
	if err != nil {
		return Result{}
	}
	pen := penalty.Cost(penalty.KindKick, p.Level, 0, s.cfg.LimitPen)
	if _, err := s.store.AddPenalty(p.ID, penalty.KindKick, pen); err != nil {
		return Result{}
	}
	s.store.SetOffline(p.ID)
	return Result{
		Broadcasts: append([]model.Broadcast{
			model.BroadcastNet(network, fmt.Sprintf(
				"%s was kicked! Penalty: %s.", p.Handle(), model.FormatSeconds(pen))),
		}, s.disruptIfQuester(p)...),
	}
}

// OnDisconnect logs out every player on a dropped network
func (s *Service) OnDisconnect(network string) {
	n := s.store.SetOfflineByNetwork(network)
	if n > 0 {
		s.logger.Info("network dropped, players logged out",
			slog.String("network", network), slog.Int("players", n))
	}
}

// OnJoin handles a single nick joining the channel. Joining costs nothing;
// if the host matches a registered player they are logged back in.
func (s *Service) OnJoin(nick, network, channel, userhost string) Result {
	return s.RestoreOnline(network, channel, map[string]string{nick: userhost})
}

// RestoreOnline logs players back in after a network reconnect. userhosts
// maps present nicks to user@host; players whose stored host matches come
// back online without a LOGIN. Each restored player gets a notice.
func (s *Service) RestoreOnline(network, channel string, userhosts map[string]string) Result {
	restored := s.store.RestoreOnline(network, channel, userhosts)
	if len(restored) == 0 {
		return Result{}
	}
	s.logger.Info("players auto-logged-in after reconnect",
		slog.String("network", network), slog.Int("players", len(restored)))

	var res Result
	for _, name := range restored {
		p, err := s.store.GetByName(name)
		if err != nil {
			continue
		}
		res.Broadcasts = append(res.Broadcasts, model.BroadcastNotice(network, p.Nick,
			fmt.Sprintf("Welcome back, %s. You are automatically logged in.", p.Username)))
	}
	return res
}

// logoutPenalty charges the voluntary-logout cost
func (s *Service) logoutPenalty(p *model.Player) int {
	pen := penalty.Cost(penalty.KindLogout, p.Level, 0, s.cfg.LimitPen)
	if _, err := s.store.AddPenalty(p.ID, penalty.KindLogout, pen); err != nil {
		return 0
	}
	return pen
}

// disruptIfQuester wipes the active quest if the acting player is on it,
// penalizing everyone online for the quester's sin
func (s *Service) disruptIfQuester(p *model.Player) []model.Broadcast {
	q := s.state.Quest()
	if q == nil || !q.QuesterIDs()[p.ID] {
		return nil
	}
	s.state.ClearQuest(s.clock.Now().Add(questDisruptionCooldown))
	for _, online := range s.store.OnlineSnapshot() {
		pen := penalty.QuestDisruption(online.Level)
		if _, err := s.store.AddPenalty(online.ID, penalty.KindQuest, pen); err != nil &&
			!errors.Is(err, model.ErrPlayerNotFound) {
			s.logger.Error("quest disruption penalty failed",
				slog.String("player", online.Username), slog.String("error", err.Error()))
		}
	}
	s.logger.Info("quest disrupted", slog.String("player", p.Username))
	return []model.Broadcast{model.BroadcastAll(fmt.Sprintf(
		"%s's actions have brought the wrath of the gods upon the realm. "+
			"Hell rains down upon you all.", p.Handle()))}
}
