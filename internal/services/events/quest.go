package events

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"multirpg/internal/model"
	"multirpg/internal/services/player"
	"multirpg/internal/world"
)

// Quest eligibility: level 40+ players online for ten hours straight
const (
	questMinLevel  = 40
	questMinOnline = 10 * time.Hour
	questerCount   = 4
)

// Cooldowns before the next quest may begin
const (
	questCooldownComplete = 6 * time.Hour
	questCooldownGrid     = time.Hour
)

// questCompletionFactor is the share of the countdown a quester keeps
const questCompletionFactor = 0.75

type questTemplate struct {
	typ  world.QuestType
	text string
}

var questTemplates = []questTemplate{
	{world.QuestTimed, "slay the dragon terrorising the realm"},
	{world.QuestTimed, "retrieve the sacred chalice from the dark temple"},
	{world.QuestTimed, "escort the princess safely across the mountains"},
	{world.QuestGrid, "cleanse the Temple of the Shadow God"},
	{world.QuestGrid, "recover the Lost Tome of Forbidden Knowledge"},
}

// checkQuest drives the quest state machine: starts a quest when the
// cooldown has passed, completes timed quests at their deadline, and walks
// grid quests through their waypoints
func (s *Service) checkQuest(tx *player.Tx, online []*model.Player) []model.Broadcast {
	now := s.clock.Now()
	q := s.state.Quest()

	if q == nil {
		if now.After(s.state.NextQuestAt()) {
			return s.startQuest(tx, online, now)
		}
		return nil
	}

	switch q.Type {
	case world.QuestTimed:
		if now.After(q.Deadline) {
			return s.completeQuest(tx, q, now,
				"%s have blessed the realm by completing their quest! "+
					"25%% of their burden is eliminated.")
		}
	case world.QuestGrid:
		return s.checkGridQuest(tx, q, now)
	}
	return nil
}

func (s *Service) checkGridQuest(tx *player.Tx, q *world.Quest, now time.Time) []model.Broadcast {
	wx, wy := q.Target()
	for _, quester := range q.Questers {
		p, ok := tx.Get(quester.ID)
		if !ok || p.X != wx || p.Y != wy {
			return nil
		}
	}
	if q.Stage == 1 {
		s.state.AdvanceQuestStage()
		return nil
	}
	return s.completeQuest(tx, q, now,
		"%s have completed their journey! 25%% of their burden is eliminated.")
}

func (s *Service) completeQuest(tx *player.Tx, q *world.Quest, now time.Time, format string) []model.Broadcast {
	msg := fmt.Sprintf(format, questerNames(q.Questers))
	for _, quester := range q.Questers {
		if p, ok := tx.Get(quester.ID); ok {
			newTTL := int(float64(p.TTL) * questCompletionFactor)
			tx.AdjustTTL(p.ID, newTTL-p.TTL)
		}
	}
	cooldown := questCooldownComplete
	if q.Type == world.QuestGrid {
		cooldown = questCooldownGrid
	}
	s.state.ClearQuest(now.Add(cooldown))
	tx.LogEvent(model.EventQuest, msg, "", "")
	s.logger.Info("quest completed", slog.Int("questers", len(q.Questers)))
	return []model.Broadcast{model.BroadcastAll(msg)}
}

func (s *Service) startQuest(tx *player.Tx, online []*model.Player, now time.Time) []model.Broadcast {
	var eligible []*model.Player
	for _, p := range online {
		if p.Level >= questMinLevel && !p.OnlineSince.IsZero() &&
			now.Sub(p.OnlineSince) >= questMinOnline {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) < questerCount {
		return nil
	}

	picked := s.sample(eligible, questerCount)
	questers := make([]world.Quester, len(picked))
	qids := make(map[model.PlayerID]bool, len(picked))
	for i, p := range picked {
		questers[i] = world.Quester{ID: p.ID, Handle: p.Handle()}
		qids[p.ID] = true
	}

	tpl := questTemplates[s.random.Intn(len(questTemplates))]
	q := &world.Quest{Questers: questers, Type: tpl.typ, Stage: 1, Text: tpl.text}

	var msg string
	if tpl.typ == world.QuestTimed {
		dur := time.Duration(s.random.Range(43200, 86400)) * time.Second
		q.Deadline = now.Add(dur)
		msg = fmt.Sprintf("%s have been chosen by the gods to %s. Quest ends in %s.",
			questerNames(questers), tpl.text, model.FormatSeconds(int(dur.Seconds())))
	} else {
		q.P1X = s.random.Intn(model.MapWidth)
		q.P1Y = s.random.Intn(model.MapHeight)
		q.P2X = s.random.Intn(model.MapWidth)
		q.P2Y = s.random.Intn(model.MapHeight)
		msg = fmt.Sprintf("%s have been chosen by the gods to %s. "+
			"First reach [%d,%d], then [%d,%d].",
			questerNames(questers), tpl.text, q.P1X, q.P1Y, q.P2X, q.P2Y)
	}

	s.state.SetQuest(q)
	tx.LogEvent(model.EventQuest, msg, "", "")
	s.logger.Info("quest started",
		slog.Int("type", int(tpl.typ)), slog.Int("questers", len(questers)))
	return []model.Broadcast{model.BroadcastAll(msg)}
}

func questerNames(questers []world.Quester) string {
	names := make([]string, len(questers))
	for i, q := range questers {
		names[i] = q.Handle
	}
	return strings.Join(names, ", ")
}
