// Package admin implements the privileged command set: world interventions,
// pause and mute control, queue clearing, and account surgery. Every command
// is gated on the caller's admin flag.
package admin

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"multirpg/internal/dispatch"
	"multirpg/internal/model"
	"multirpg/internal/services/events"
	"multirpg/internal/services/player"
	"multirpg/internal/world"
)

// QueueClearer drops pending outbound messages; the transport registry
// implements it
type QueueClearer interface {
	ClearAll() int
}

// Service handles admin commands
type Service struct {
	store  *player.Service
	state  *world.State
	events *events.Service
	queues QueueClearer
	logger *slog.Logger
}

// New creates an admin service
func New(store *player.Service, state *world.State, ev *events.Service, queues QueueClearer, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		state:  state,
		events: ev,
		queues: queues,
		logger: logger.With(slog.String("component", "admin")),
	}
}

// Handles reports whether word is an admin command, so callers can route a
// line here instead of the session command table
func Handles(word string) bool {
	switch strings.ToUpper(word) {
	case "HOG", "PAUSE", "SILENT", "CLEARQ", "PUSH", "CHPASS", "CHCLASS",
		"CHUSER", "DEL", "DELOLD", "MKADMIN", "DELADMIN":
		return true
	}
	return false
}

// Result is an admin command's private reply plus any channel broadcasts
type Result struct {
	Reply      string
	Broadcasts []model.Broadcast
}

// HandleCommand processes one admin command line from nick on network. The
// caller must be logged in with the admin flag set.
func (s *Service) HandleCommand(nick, network, line string) Result {
	caller, err := s.store.GetByNick(nick, network)
	if err != nil || !caller.Admin {
		return Result{Reply: "You are not authorized to do that."}
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{Reply: "Admin commands: HOG, PAUSE, SILENT <0-3>, CLEARQ, " +
			"PUSH <name> <seconds>, CHPASS <name> <password>, CHCLASS <name> <class>, " +
			"CHUSER <name> <newname>, DEL <name>, DELOLD <days>, MKADMIN <name>, DELADMIN <name>"}
	}
	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	s.logger.Info("admin command",
		slog.String("admin", caller.Username), slog.String("command", cmd))

	switch cmd {
	case "HOG":
		return s.cmdHOG()
	case "PAUSE":
		return s.cmdPause()
	case "SILENT":
		return s.cmdSilent(args)
	case "CLEARQ":
		return Result{Reply: fmt.Sprintf("%d queued messages cleared.", s.queues.ClearAll())}
	case "PUSH":
		return s.cmdPush(nick, args)
	case "CHPASS":
		return s.cmdChPass(args)
	case "CHCLASS":
		return s.cmdChClass(args)
	case "CHUSER":
		return s.cmdChUser(args)
	case "DEL":
		return s.cmdDel(args)
	case "DELOLD":
		return s.cmdDelOld(args)
	case "MKADMIN":
		return s.cmdSetAdmin(args, true)
	case "DELADMIN":
		return s.cmdSetAdmin(args, false)
	default:
		return Result{Reply: fmt.Sprintf("Unknown admin command %s.", cmd)}
	}
}

func (s *Service) cmdHOG() Result {
	var msgs []model.Broadcast
	s.store.Pass(func(tx *player.Tx) {
		msgs = s.events.HandOfGod(tx, tx.Online())
	})
	if len(msgs) == 0 {
		return Result{Reply: "No online players to smite or bless."}
	}
	return Result{Reply: "Done.", Broadcasts: msgs}
}

func (s *Service) cmdPause() Result {
	if s.state.TogglePause() {
		return Result{Reply: "Game PAUSED: tick loop suspended."}
	}
	return Result{Reply: "Game RESUMED: tick loop running."}
}

var silentLabels = map[dispatch.MuteLevel]string{
	dispatch.MuteNone:    "all messages enabled",
	dispatch.MuteChannel: "channel messages disabled",
	dispatch.MutePrivate: "private messages disabled",
	dispatch.MuteAll:     "all messages disabled",
}

func (s *Service) cmdSilent(args []string) Result {
	if len(args) < 1 {
		return Result{Reply: "Usage: SILENT <0-3>"}
	}
	mode, err := strconv.Atoi(args[0])
	if err != nil || mode < 0 || mode > 3 {
		return Result{Reply: "Usage: SILENT <0-3>"}
	}
	level := dispatch.MuteLevel(mode)
	s.state.SetMuteLevel(level)
	return Result{Reply: fmt.Sprintf("Silent mode %d: %s.", mode, silentLabels[level])}
}

func (s *Service) cmdPush(adminNick string, args []string) Result {
	if len(args) < 2 {
		return Result{Reply: "Usage: PUSH <name> <seconds>"}
	}
	seconds, err := strconv.Atoi(args[1])
	if err != nil || seconds == 0 {
		return Result{Reply: "Usage: PUSH <name> <seconds>"}
	}
	p, err := s.store.GetByName(args[0])
	if err != nil {
		return Result{Reply: fmt.Sprintf("No such username %s.", args[0])}
	}

	// A positive push cannot take the countdown below zero; a negative
	// push adds time without limit
	if seconds > p.TTL {
		seconds = p.TTL
	}
	updated, err := s.store.ApplyDelta(p.ID, func(p *model.Player) {
		p.TTL -= seconds
	})
	if err != nil {
		return Result{Reply: fmt.Sprintf("No such username %s.", args[0])}
	}
	direction := "toward"
	if seconds < 0 {
		direction = "away from"
	}
	return Result{
		Reply: "Done.",
		Broadcasts: []model.Broadcast{model.BroadcastAll(fmt.Sprintf(
			"%s pushed %s %s %s level %d. Next level in %s.",
			adminNick, p.Handle(), model.FormatSeconds(seconds), direction,
			p.Level+1, model.FormatSeconds(updated.TTL)))},
	}
}

func (s *Service) cmdChPass(args []string) Result {
	if len(args) < 2 {
		return Result{Reply: "Usage: CHPASS <name> <password>"}
	}
	p, err := s.store.GetByName(args[0])
	if err != nil {
		return Result{Reply: fmt.Sprintf("No such username %s.", args[0])}
	}
	if err := s.store.ChangePassword(p.ID, args[1]); err != nil {
		return Result{Reply: "Password change failed."}
	}
	return Result{Reply: fmt.Sprintf("Password for %s changed.", p.Username)}
}

func (s *Service) cmdChClass(args []string) Result {
	if len(args) < 2 {
		return Result{Reply: "Usage: CHCLASS <name> <class>"}
	}
	p, err := s.store.GetByName(args[0])
	if err != nil {
		return Result{Reply: fmt.Sprintf("No such username %s.", args[0])}
	}
	class := strings.Join(args[1:], " ")
	if _, err := s.store.ApplyDelta(p.ID, func(p *model.Player) {
		p.Class = class
	}); err != nil {
		return Result{Reply: "Class change failed."}
	}
	return Result{Reply: fmt.Sprintf("Class for %s changed to %s.", p.Username, class)}
}

func (s *Service) cmdChUser(args []string) Result {
	if len(args) < 2 {
		return Result{Reply: "Usage: CHUSER <name> <newname>"}
	}
	p, err := s.store.GetByName(args[0])
	if err != nil {
		return Result{Reply: fmt.Sprintf("No such username %s.", args[0])}
	}
	if err := s.store.Rename(p.ID, args[1]); err != nil {
		switch {
		case errors.Is(err, model.ErrDuplicateName):
			return Result{Reply: fmt.Sprintf("The name %s is already taken.", args[1])}
		case errors.Is(err, model.ErrValidation):
			return Result{Reply: "New name must be 1-16 characters."}
		default:
			return Result{Reply: "Rename failed."}
		}
	}
	return Result{Reply: fmt.Sprintf("Username changed from %s to %s.", p.Username, args[1])}
}

func (s *Service) cmdDel(args []string) Result {
	if len(args) < 1 {
		return Result{Reply: "Usage: DEL <name>"}
	}
	p, err := s.store.GetByName(args[0])
	if err != nil {
		return Result{Reply: fmt.Sprintf("No such username %s.", args[0])}
	}
	if err := s.store.Delete(p.ID); err != nil {
		return Result{Reply: "Deletion failed."}
	}
	return Result{Reply: fmt.Sprintf("Account %s removed.", p.Username)}
}

func (s *Service) cmdDelOld(args []string) Result {
	if len(args) < 1 {
		return Result{Reply: "Usage: DELOLD <days>"}
	}
	days, err := strconv.ParseFloat(args[0], 64)
	if err != nil || days <= 0 {
		return Result{Reply: "Usage: DELOLD <days>"}
	}
	n := s.store.DeleteInactive(days)
	return Result{Reply: fmt.Sprintf("%d accounts removed.", n)}
}

func (s *Service) cmdSetAdmin(args []string, admin bool) Result {
	if len(args) < 1 {
		if admin {
			return Result{Reply: "Usage: MKADMIN <name>"}
		}
		return Result{Reply: "Usage: DELADMIN <name>"}
	}
	if err := s.store.SetAdmin(args[0], admin); err != nil {
		return Result{Reply: fmt.Sprintf("No such username %s.", args[0])}
	}
	if admin {
		return Result{Reply: fmt.Sprintf("%s is now an admin.", args[0])}
	}
	return Result{Reply: fmt.Sprintf("%s is no longer an admin.", args[0])}
}
