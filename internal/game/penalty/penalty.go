// Package penalty holds the pure time-cost formulas of the game: penalties
// for disruptive actions and the countdown baseline per level.
package penalty

import "math"

// Kind names a penalized action
type Kind string

const (
	KindMessage Kind = "message"
	KindNick    Kind = "nick"
	KindPart    Kind = "part"
	KindQuit    Kind = "quit"
	KindLogout  Kind = "logout"
	KindKick    Kind = "kick"

	// KindQuest is the shared penalty when a quester's action wipes an
	// active quest; it has no Cost base, use QuestDisruption
	KindQuest Kind = "quest"
)

const (
	// ttlBase and ttlStep define the level-up countdown curve
	ttlBase = 600
	ttlStep = 1.16

	// penStep is the per-level penalty multiplier
	penStep = 1.14
)

var baseSeconds = map[Kind]int{
	KindNick:   30,
	KindPart:   200,
	KindQuit:   20,
	KindLogout: 20,
	KindKick:   250,
}

// Cost returns the penalty in whole seconds for an action by a player of the
// given level. For KindMessage the base is msgLen; other kinds ignore msgLen.
// A nonzero limit caps the result.
func Cost(kind Kind, level, msgLen, limit int) int {
	base := baseSeconds[kind]
	if kind == KindMessage {
		base = msgLen
	}
	pen := int(float64(base) * math.Pow(penStep, float64(level)))
	if pen < 0 {
		pen = 0
	}
	if limit > 0 && pen > limit {
		pen = limit
	}
	return pen
}

// BaseTTL returns the full countdown a player faces after reaching level.
// Past level 60 the curve goes linear: one extra day per level.
func BaseTTL(level int) int {
	if level > 60 {
		return int(ttlBase*math.Pow(ttlStep, 60)) + 86400*(level-60)
	}
	return int(ttlBase * math.Pow(ttlStep, float64(level)))
}

// QuestDisruption returns the seconds added to every online player when a
// quester's misbehavior wipes an active quest
func QuestDisruption(level int) int {
	return int(15 * math.Pow(penStep, float64(level)))
}
