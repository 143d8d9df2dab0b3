package model

import "time"

// EventKind classifies a logged world occurrence
type EventKind string

const (
	EventLevelUp    EventKind = "levelup"
	EventBattle     EventKind = "battle"
	EventHandOfGod  EventKind = "hog"
	EventQuest      EventKind = "quest"
	EventCalamity   EventKind = "calamity"
	EventGodsend    EventKind = "godsend"
	EventCritical   EventKind = "critical"
	EventSteal      EventKind = "steal"
	EventTeamBattle EventKind = "team_battle"
)

// Event is an immutable append-only record of a notable occurrence. It is
// read by the dashboard and never by game logic. Participant references are
// informational and survive player deletion.
type Event struct {
	ID        string
	Kind      EventKind
	Message   string
	Player1   PlayerID // optional
	Player2   PlayerID // optional
	CreatedAt time.Time
}
