package model

import (
	"fmt"
	"time"
)

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Alignment is a player's moral alignment. It scales item effectiveness in
// battle and selects which world events can target the player.
type Alignment string

const (
	AlignGood    Alignment = "good"
	AlignNeutral Alignment = "neutral"
	AlignEvil    Alignment = "evil"
)

// ParseAlignment converts user input to an Alignment
func ParseAlignment(s string) (Alignment, bool) {
	switch s {
	case "good":
		return AlignGood, true
	case "neutral":
		return AlignNeutral, true
	case "evil":
		return AlignEvil, true
	}
	return "", false
}

// Player is the authoritative record of a game participant.
//
// A player is online iff Online is true, in which case Nick and Channel are
// set. Userhost survives going offline so a rejoin from the same host can be
// logged back in automatically. Offline players never advance their countdown
// and are exempt from world-event selection.
type Player struct {
	ID           PlayerID
	Username     string // globally unique, case-insensitive, across all networks
	Network      string // network of origin
	PasswordHash string // bcrypt hash
	Class        string
	Admin        bool

	Online   bool
	Nick     string
	Channel  string
	Userhost string

	X, Y      int
	Alignment Alignment

	Level   int
	TTL     int // seconds until next level-up
	NextTTL int // countdown baseline for the current level, for progress display

	// Accumulated penalty seconds by cause
	PenMessage int
	PenNick    int
	PenPart    int
	PenKick    int
	PenQuit    int
	PenQuest   int
	PenLogout  int

	// IdleTotal is cumulative seconds spent online, across all sessions
	IdleTotal int

	CreatedAt   time.Time
	LastLogin   time.Time
	OnlineSince time.Time
}

// Handle returns the username@network form used in channel-visible messages
func (p *Player) Handle() string {
	return p.Username + "@" + p.Network
}

// Tag returns the handle with the player's map position appended
func (p *Player) Tag() string {
	return fmt.Sprintf("%s [%d/%d]", p.Handle(), p.X, p.Y)
}
