// Package player owns the authoritative in-memory table of players and
// items. Every mutation, whether from a connection's inbound event, the world
// clock's tick pass, or an admin command, goes through this package
// under one table-wide lock, which is the single-writer discipline the rest
// of the system relies on. The durable store is a passive mirror written
// behind the in-memory state.
package player

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"multirpg/internal/dependencies/clock"
	"multirpg/internal/dependencies/random"
	"multirpg/internal/game/penalty"
	"multirpg/internal/metrics"
	"multirpg/internal/model"
	"multirpg/internal/storage"
)

const (
	maxUsernameLen = 16
	maxClassLen    = 30

	// recentEventsCap bounds the in-memory event window kept for the
	// dashboard; the mirror keeps the longer history
	recentEventsCap = 500
)

// Service is the player store
type Service struct {
	storage storage.Store
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu      sync.Mutex
	players map[model.PlayerID]*model.Player
	byName  map[string]model.PlayerID // folded username -> id
	items   map[model.PlayerID]map[model.Slot]*model.Item
	recent  []*model.Event

	mirror *mirrorWriter
}

// New creates a player store backed by the given durable mirror
func New(store storage.Store, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Service {
	logger = logger.With(slog.String("component", "player-store"))
	return &Service{
		storage: store,
		clock:   clk,
		random:  rnd,
		logger:  logger,
		players: make(map[model.PlayerID]*model.Player),
		byName:  make(map[string]model.PlayerID),
		items:   make(map[model.PlayerID]map[model.Slot]*model.Item),
		mirror:  newMirrorWriter(store, clk, logger),
	}
}

// Run starts the background mirror writer; it returns when ctx is done and
// the write queue has drained
func (s *Service) Run(ctx context.Context) {
	s.mirror.run(ctx)
}

// Load populates the in-memory table from the durable mirror. Called once
// at startup, before any connection is up, so it takes the lock plainly.
func (s *Service) Load(ctx context.Context) error {
	players, err := s.storage.LoadPlayers(ctx)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range players {
		cp := *p
		s.players[p.ID] = &cp
		s.byName[foldName(p.Username)] = p.ID

		items, err := s.storage.LoadItems(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("load items for %s: %w", p.Username, err)
		}
		slotMap := make(map[model.Slot]*model.Item, len(items))
		for _, item := range items {
			ic := *item
			slotMap[item.Slot] = &ic
		}
		s.items[p.ID] = slotMap
	}

	events, err := s.storage.RecentEvents(ctx, recentEventsCap)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	// Mirror returns newest first; the ring is oldest first
	for i := len(events) - 1; i >= 0; i-- {
		s.recent = append(s.recent, events[i])
	}

	s.logger.Info("player table loaded", slog.Int("players", len(s.players)))
	return nil
}

func foldName(username string) string {
	return strings.ToLower(username)
}

// Register creates a new player. The username is reserved world-wide,
// case-insensitively, not per network.
func (s *Service) Register(username, network, nick, channel, userhost, password, class string) (*model.Player, error) {
	if l := len(username); l < 1 || l > maxUsernameLen {
		return nil, fmt.Errorf("%w: character names must be 1-%d chars", model.ErrValidation, maxUsernameLen)
	}
	if strings.HasPrefix(username, "#") {
		return nil, fmt.Errorf("%w: character names may not begin with #", model.ErrValidation)
	}
	if len(class) > maxClassLen {
		return nil, fmt.Errorf("%w: character classes must be at most %d chars", model.ErrValidation, maxClassLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[foldName(username)]; taken {
		return nil, model.ErrDuplicateName
	}

	now := s.clock.Now()
	p := &model.Player{
		ID:           model.PlayerID(uuid.NewString()),
		Username:     username,
		Network:      network,
		PasswordHash: string(hash),
		Class:        class,
		Alignment:    model.AlignNeutral,
		X:            s.random.Intn(model.MapWidth),
		Y:            s.random.Intn(model.MapHeight),
		TTL:          penalty.BaseTTL(0),
		NextTTL:      penalty.BaseTTL(0),
		CreatedAt:    now,
		LastLogin:    now,
	}
	s.players[p.ID] = p
	s.byName[foldName(username)] = p.ID

	slotMap := make(map[model.Slot]*model.Item, len(model.Slots))
	for _, slot := range model.Slots {
		slotMap[slot] = &model.Item{PlayerID: p.ID, Slot: slot}
	}
	s.items[p.ID] = slotMap

	s.setOnlineLocked(p, nick, channel, userhost)

	s.saveMirrorLocked(p)
	for _, item := range slotMap {
		s.saveItemMirrorLocked(item)
	}

	s.logger.Info("player registered",
		slog.String("username", username), slog.String("network", network))
	cp := *p
	return &cp, nil
}

// Login authenticates and marks the player online. Usernames are looked up
// across all networks.
func (s *Service) Login(username, password, nick, channel, userhost string) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.byNameLocked(username)
	if p == nil {
		return nil, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if p.Online {
		return nil, model.ErrAlreadyOnline
	}

	s.setOnlineLocked(p, nick, channel, userhost)
	s.saveMirrorLocked(p)

	cp := *p
	return &cp, nil
}

// Authenticate verifies credentials without changing online state
func (s *Service) Authenticate(username, password string) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.byNameLocked(username)
	if p == nil {
		return nil, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	cp := *p
	return &cp, nil
}

func (s *Service) setOnlineLocked(p *model.Player, nick, channel, userhost string) {
	now := s.clock.Now()
	p.Online = true
	p.Nick = nick
	p.Channel = channel
	p.Userhost = userhost
	p.OnlineSince = now
	p.LastLogin = now
	metrics.SetPlayersOnline(s.onlineCountLocked())
}

func (s *Service) setOfflineLocked(p *model.Player) {
	// Userhost is kept so RestoreOnline can match a rejoin from the
	// same host
	p.Online = false
	p.Nick = ""
	p.Channel = ""
	metrics.SetPlayersOnline(s.onlineCountLocked())
}

func (s *Service) onlineCountLocked() int {
	n := 0
	for _, p := range s.players {
		if p.Online {
			n++
		}
	}
	return n
}

// SetOffline marks a player offline
func (s *Service) SetOffline(id model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return
	}
	s.setOfflineLocked(p)
	s.saveMirrorLocked(p)
}

// SetOfflineByNetwork marks every player of one network offline; used when
// a connection drops
func (s *Service) SetOfflineByNetwork(network string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.players {
		if p.Online && p.Network == network {
			s.setOfflineLocked(p)
			s.saveMirrorLocked(p)
			n++
		}
	}
	return n
}

// RestoreOnline logs players back in after a reconnect. userhosts maps the
// nicks present in the channel to their user@host; any offline player of the
// network whose stored userhost matches comes back online under that nick.
// Returns the usernames restored.
func (s *Service) RestoreOnline(network, channel string, userhosts map[string]string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var restored []string
	for _, p := range s.players {
		if p.Online || p.Network != network || p.Userhost == "" {
			continue
		}
		for nick, userhost := range userhosts {
			if userhost == p.Userhost {
				s.setOnlineLocked(p, nick, channel, userhost)
				s.saveMirrorLocked(p)
				restored = append(restored, p.Username)
				break
			}
		}
	}
	sort.Strings(restored)
	return restored
}

// ApplyDelta is the single mutation entry point for an individual player.
// fn runs under the table lock against the latest in-memory state and is
// linearizable with every other mutation and every tick pass.
func (s *Service) ApplyDelta(id model.PlayerID, fn func(p *model.Player)) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	fn(p)
	if p.TTL < 0 {
		p.TTL = 0
	}
	s.saveMirrorLocked(p)
	cp := *p
	return &cp, nil
}

// AddPenalty adds seconds to a player's countdown and the per-kind counter
func (s *Service) AddPenalty(id model.PlayerID, kind penalty.Kind, seconds int) (*model.Player, error) {
	return s.ApplyDelta(id, func(p *model.Player) {
		applyPenalty(p, kind, seconds)
	})
}

func applyPenalty(p *model.Player, kind penalty.Kind, seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	p.TTL += seconds
	switch kind {
	case penalty.KindMessage:
		p.PenMessage += seconds
	case penalty.KindNick:
		p.PenNick += seconds
	case penalty.KindPart:
		p.PenPart += seconds
	case penalty.KindKick:
		p.PenKick += seconds
	case penalty.KindQuit:
		p.PenQuit += seconds
	case penalty.KindLogout:
		p.PenLogout += seconds
	case penalty.KindQuest:
		p.PenQuest += seconds
	}
}

// Rename changes a player's username, revalidating global uniqueness
func (s *Service) Rename(id model.PlayerID, newName string) error {
	if l := len(newName); l < 1 || l > maxUsernameLen {
		return fmt.Errorf("%w: new name must be 1-%d characters", model.ErrValidation, maxUsernameLen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if existing, taken := s.byName[foldName(newName)]; taken && existing != id {
		return model.ErrDuplicateName
	}

	delete(s.byName, foldName(p.Username))
	p.Username = newName
	s.byName[foldName(newName)] = id
	s.saveMirrorLocked(p)
	return nil
}

// ChangePassword replaces a player's credential hash
func (s *Service) ChangePassword(id model.PlayerID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.ApplyDelta(id, func(p *model.Player) {
		p.PasswordHash = string(hash)
	})
	return err
}

// Delete removes a player and cascades deletion of their items
func (s *Service) Delete(id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *Service) deleteLocked(id model.PlayerID) error {
	p, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	delete(s.byName, foldName(p.Username))
	delete(s.players, id)
	delete(s.items, id)
	metrics.SetPlayersOnline(s.onlineCountLocked())

	s.mirror.enqueue(fmt.Sprintf("delete player %s", p.Username), func(ctx context.Context) error {
		if err := s.storage.DeleteItems(ctx, id); err != nil {
			return err
		}
		return s.storage.DeletePlayer(ctx, id)
	})
	return nil
}

// DeleteInactive removes offline accounts whose last login is older than
// the given number of days, returning how many were removed
func (s *Service) DeleteInactive(days float64) int {
	cutoff := s.clock.Now().Add(-time.Duration(days * 24 * float64(time.Hour)))

	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []model.PlayerID
	for id, p := range s.players {
		if !p.Online && p.LastLogin.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		_ = s.deleteLocked(id)
	}
	return len(stale)
}

// SetAdmin grants or revokes the admin flag by username
func (s *Service) SetAdmin(username string, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byNameLocked(username)
	if p == nil {
		return model.ErrPlayerNotFound
	}
	p.Admin = admin
	s.saveMirrorLocked(p)
	return nil
}

// Lookups

func (s *Service) byNameLocked(username string) *model.Player {
	id, ok := s.byName[foldName(username)]
	if !ok {
		return nil
	}
	return s.players[id]
}

// GetByName returns a copy of the named player, matched case-insensitively
// across all networks
func (s *Service) GetByName(username string) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byNameLocked(username)
	if p == nil {
		return nil, model.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

// GetByNick returns a copy of the online player currently using nick on the
// given network
func (s *Service) GetByNick(nick, network string) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.Online && p.Network == network && p.Nick == nick {
			cp := *p
			return &cp, nil
		}
	}
	return nil, model.ErrPlayerNotFound
}

// Get returns a copy of the player with the given id
func (s *Service) Get(id model.PlayerID) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

// Snapshot returns copies of all players in leaderboard order: level
// descending, then countdown ascending
func (s *Service) Snapshot() []*model.Player {
	s.mu.Lock()
	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		players = append(players, &cp)
	}
	s.mu.Unlock()

	sort.Slice(players, func(i, j int) bool {
		if players[i].Level != players[j].Level {
			return players[i].Level > players[j].Level
		}
		return players[i].TTL < players[j].TTL
	})
	return players
}

// OnlineSnapshot returns copies of all online players
func (s *Service) OnlineSnapshot() []*model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onlineSnapshotLocked()
}

func (s *Service) onlineSnapshotLocked() []*model.Player {
	var online []*model.Player
	for _, p := range s.players {
		if p.Online {
			cp := *p
			online = append(online, &cp)
		}
	}
	sort.Slice(online, func(i, j int) bool { return online[i].Username < online[j].Username })
	return online
}

func (s *Service) saveMirrorLocked(p *model.Player) {
	cp := *p
	s.mirror.enqueue(fmt.Sprintf("save player %s", p.Username), func(ctx context.Context) error {
		return s.storage.SavePlayer(ctx, &cp)
	})
}

func (s *Service) saveItemMirrorLocked(item *model.Item) {
	cp := *item
	s.mirror.enqueue(fmt.Sprintf("save item %s/%s", item.PlayerID, item.Slot), func(ctx context.Context) error {
		return s.storage.SaveItem(ctx, &cp)
	})
}
