package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"multirpg/internal/model"
	"multirpg/internal/world"
)

const helpText = "Commands: REGISTER <name> <password> <class>, LOGIN <name> <password>, " +
	"LOGOUT, NEWPASS <password>, ALIGN <good|neutral|evil>, REMOVEME, WHOAMI, " +
	"STATUS [name], QUEST, TOP, HELP. The point of the game is to idle; " +
	"anything you say or do in the channel costs you time."

// HandleCommand processes one private-message command line from nick on
// network. Unauthenticated nicks may only REGISTER, LOGIN, or ask for HELP.
func (s *Service) HandleCommand(nick, network, channel, userhost, line string) Result {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{Reply: helpText}
	}
	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	switch cmd {
	case "HELP":
		return Result{Reply: helpText}
	case "REGISTER":
		return s.cmdRegister(nick, network, channel, userhost, args)
	case "LOGIN":
		return s.cmdLogin(nick, network, channel, userhost, args)
	}

	p, err := s.store.GetByNick(nick, network)
	if err != nil {
		return Result{Reply: "You are not logged in. Use LOGIN or REGISTER."}
	}

	switch cmd {
	case "LOGOUT":
		return s.cmdLogout(p)
	case "NEWPASS":
		return s.cmdNewPass(p, args)
	case "ALIGN":
		return s.cmdAlign(p, args)
	case "REMOVEME":
		return s.cmdRemoveMe(p, nick)
	case "WHOAMI":
		return Result{Reply: fmt.Sprintf(
			"You are %s, the level %d %s. Next level in %s.",
			p.Username, p.Level, p.Class, model.FormatSeconds(p.TTL))}
	case "STATUS":
		return s.cmdStatus(p, args)
	case "QUEST":
		return Result{Reply: s.questStatus()}
	case "TOP":
		return s.cmdTop()
	default:
		return Result{Reply: fmt.Sprintf("Unknown command %s. Try HELP.", cmd)}
	}
}

func (s *Service) cmdRegister(nick, network, channel, userhost string, args []string) Result {
	if len(args) < 3 {
		return Result{Reply: "Usage: REGISTER <name> <password> <class>"}
	}
	name, password := args[0], args[1]
	class := strings.Join(args[2:], " ")

	p, err := s.store.Register(name, network, nick, channel, userhost, password, class)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDuplicateName):
			return Result{Reply: fmt.Sprintf("Sorry, the name %s is already taken.", name)}
		case errors.Is(err, model.ErrValidation):
			return Result{Reply: capitalizeError(err)}
		default:
			s.logger.Error("register failed", slog.String("error", err.Error()))
			return Result{Reply: "Registration failed. Try again later."}
		}
	}

	return Result{
		Reply: fmt.Sprintf("Success! Account %s created. You have %s until level 1. "+
			"NOTE: The point of the game is to idle. Talking, parting, quitting, "+
			"and nick changes all penalize you!",
			p.Username, model.FormatSeconds(p.TTL)),
		Broadcasts: []model.Broadcast{model.BroadcastAll(fmt.Sprintf(
			"Welcome %s@%s's new player %s, the %s! Next level in %s.",
			nick, network, p.Username, p.Class, model.FormatSeconds(p.TTL)))},
	}
}

func (s *Service) cmdLogin(nick, network, channel, userhost string, args []string) Result {
	if len(args) < 2 {
		return Result{Reply: "Usage: LOGIN <name> <password>"}
	}
	p, err := s.store.Login(args[0], args[1], nick, channel, userhost)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			return Result{Reply: "Wrong username or password."}
		case errors.Is(err, model.ErrAlreadyOnline):
			return Result{Reply: "You are already logged in."}
		default:
			s.logger.Error("login failed", slog.String("error", err.Error()))
			return Result{Reply: "Login failed. Try again later."}
		}
	}
	return Result{Reply: fmt.Sprintf(
		"Logon successful. %s, the level %d %s. Next level in %s.",
		p.Username, p.Level, p.Class, model.FormatSeconds(p.TTL))}
}

func (s *Service) cmdLogout(p *model.Player) Result {
	pen := s.logoutPenalty(p)
	s.store.SetOffline(p.ID)
	return Result{
		Reply: fmt.Sprintf("You have been logged out. Penalty of %s added to your timer.",
			model.FormatSeconds(pen)),
		Broadcasts: s.disruptIfQuester(p),
	}
}

func (s *Service) cmdNewPass(p *model.Player, args []string) Result {
	if len(args) < 1 {
		return Result{Reply: "Usage: NEWPASS <password>"}
	}
	if err := s.store.ChangePassword(p.ID, args[0]); err != nil {
		s.logger.Error("password change failed", slog.String("error", err.Error()))
		return Result{Reply: "Password change failed. Try again later."}
	}
	return Result{Reply: "Password changed."}
}

func (s *Service) cmdAlign(p *model.Player, args []string) Result {
	if len(args) < 1 {
		return Result{Reply: "Usage: ALIGN <good|neutral|evil>"}
	}
	alignment, ok := model.ParseAlignment(strings.ToLower(args[0]))
	if !ok {
		return Result{Reply: "Usage: ALIGN <good|neutral|evil>"}
	}
	if _, err := s.store.ApplyDelta(p.ID, func(p *model.Player) {
		p.Alignment = alignment
	}); err != nil {
		return Result{Reply: "You are not logged in."}
	}
	return Result{
		Reply: fmt.Sprintf("Your alignment is now %s.", alignment),
		Broadcasts: []model.Broadcast{model.BroadcastAll(fmt.Sprintf(
			"%s changed alignment to: %s.", p.Handle(), alignment))},
	}
}

func (s *Service) cmdRemoveMe(p *model.Player, nick string) Result {
	if err := s.store.Delete(p.ID); err != nil {
		return Result{Reply: "Account removal failed."}
	}
	return Result{
		Reply: fmt.Sprintf("Account %s removed.", p.Username),
		Broadcasts: []model.Broadcast{model.BroadcastAll(fmt.Sprintf(
			"%s removed their account, %s, the %s.", nick, p.Handle(), p.Class))},
	}
}

func (s *Service) cmdStatus(p *model.Player, args []string) Result {
	target := p
	if len(args) > 0 {
		t, err := s.store.GetByName(args[0])
		if err != nil {
			return Result{Reply: "No such user."}
		}
		target = t
	}

	sum, err := s.store.ItemSum(target.ID)
	if err != nil {
		return Result{Reply: "No such user."}
	}
	status := "Offline"
	if target.Online {
		status = "Online"
	}
	return Result{Reply: fmt.Sprintf(
		"%s | Level %d %s (%s) | %s | TTL: %s | Pos: [%d/%d] | Items: %d",
		target.Handle(), target.Level, target.Class, target.Alignment, status,
		model.FormatSeconds(target.TTL), target.X, target.Y, sum)}
}

func (s *Service) cmdTop() Result {
	players := s.store.Snapshot()
	if len(players) == 0 {
		return Result{Reply: "No players yet."}
	}
	if len(players) > 3 {
		players = players[:3]
	}
	lines := make([]string, 0, len(players))
	for i, p := range players {
		lines = append(lines, fmt.Sprintf("#%d: %s, the level %d %s, next level in %s",
			i+1, p.Handle(), p.Level, p.Class, model.FormatSeconds(p.TTL)))
	}
	return Result{Reply: strings.Join(lines, " | ")}
}

func (s *Service) questStatus() string {
	q := s.state.Quest()
	if q == nil {
		return "There is no active quest."
	}
	names := questerNames(q)
	if q.Type == world.QuestTimed {
		remaining := int(q.Deadline.Sub(s.clock.Now()).Seconds())
		return fmt.Sprintf("%s are questing to %s. Ends in %s.",
			names, q.Text, model.FormatSeconds(remaining))
	}
	wx, wy := q.Target()
	return fmt.Sprintf("%s are questing to %s. Must reach [%d,%d] then [%d,%d]. "+
		"Heading to [%d,%d].", names, q.Text, q.P1X, q.P1Y, q.P2X, q.P2Y, wx, wy)
}

func questerNames(q *world.Quest) string {
	names := make([]string, len(q.Questers))
	for i, quester := range q.Questers {
		names[i] = quester.Handle
	}
	return strings.Join(names, ", ")
}

// capitalizeError renders a validation error as a user-facing sentence
func capitalizeError(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, model.ErrValidation.Error()+": ")
	if msg == "" {
		return "Invalid input."
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
