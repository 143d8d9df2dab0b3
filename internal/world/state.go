// Package world holds the global runtime state of the realm: the pause
// flag, the mute level, the quest singleton, and the tick loop that drives
// the game forward.
package world

import (
	"sync"
	"sync/atomic"
	"time"

	"multirpg/internal/dispatch"
	"multirpg/internal/model"
)

// QuestType distinguishes the two quest shapes
type QuestType int

const (
	// QuestTimed quests complete when the deadline passes with all
	// questers still online
	QuestTimed QuestType = 1
	// QuestGrid quests complete when all questers reach two map
	// waypoints in order
	QuestGrid QuestType = 2
)

// Quester identifies one quest participant
type Quester struct {
	ID     model.PlayerID
	Handle string
}

// Quest is the single realm-wide quest. At most one runs at a time.
type Quest struct {
	Questers []Quester
	Type     QuestType
	Stage    int // grid quests: 1 while heading to P1, 2 for P2
	P1X, P1Y int
	P2X, P2Y int
	Deadline time.Time // timed quests only
	Text     string
}

// Target returns the waypoint a grid quest is currently heading for
func (q *Quest) Target() (int, int) {
	if q.Stage == 1 {
		return q.P1X, q.P1Y
	}
	return q.P2X, q.P2Y
}

// QuesterIDs returns quest membership as a set
func (q *Quest) QuesterIDs() map[model.PlayerID]bool {
	ids := make(map[model.PlayerID]bool, len(q.Questers))
	for _, quester := range q.Questers {
		ids[quester.ID] = true
	}
	return ids
}

// State is the shared mutable world state. Pause and mute are read on hot
// paths so they are atomics; the quest is guarded by a mutex.
type State struct {
	paused atomic.Bool
	mute   atomic.Int32

	mu        sync.Mutex
	quest     *Quest
	nextQuest time.Time
}

// NewState creates world state with no quest scheduled before nextQuest
func NewState(nextQuest time.Time) *State {
	return &State{nextQuest: nextQuest}
}

// Paused reports whether tick processing is suspended
func (s *State) Paused() bool {
	return s.paused.Load()
}

// TogglePause flips the pause flag and returns the new value
func (s *State) TogglePause() bool {
	for {
		old := s.paused.Load()
		if s.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// MuteLevel implements dispatch.MuteSource
func (s *State) MuteLevel() dispatch.MuteLevel {
	return dispatch.MuteLevel(s.mute.Load())
}

// SetMuteLevel sets the realm-wide mute level
func (s *State) SetMuteLevel(level dispatch.MuteLevel) {
	s.mute.Store(int32(level))
}

// Quest returns a copy of the active quest, or nil if none is running
func (s *State) Quest() *Quest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quest == nil {
		return nil
	}
	cp := *s.quest
	cp.Questers = append([]Quester(nil), s.quest.Questers...)
	return &cp
}

// SetQuest installs a new active quest
func (s *State) SetQuest(q *Quest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quest = q
}

// AdvanceQuestStage moves a grid quest to its second waypoint
func (s *State) AdvanceQuestStage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quest != nil {
		s.quest.Stage = 2
	}
}

// ClearQuest ends the active quest and schedules the earliest start time
// of the next one
func (s *State) ClearQuest(nextQuest time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quest = nil
	s.nextQuest = nextQuest
}

// NextQuestAt returns when a new quest may start
func (s *State) NextQuestAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextQuest
}
