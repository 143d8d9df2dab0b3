package model

import "fmt"

// BroadcastScope selects which connections a broadcast reaches
type BroadcastScope string

const (
	// ScopeAll goes to every network's channel
	ScopeAll BroadcastScope = "all"
	// ScopeNetwork goes to one network's channel
	ScopeNetwork BroadcastScope = "network"
	// ScopeNotice is a NOTICE to one nick on one network
	ScopeNotice BroadcastScope = "notice"
	// ScopePrivate is a private message to one nick on one network
	ScopePrivate BroadcastScope = "private"
)

// Broadcast is an outbound message produced by game logic, routed to
// per-connection dispatch queues by the transport layer
type Broadcast struct {
	Scope   BroadcastScope
	Network string // empty for ScopeAll
	Nick    string // set for ScopeNotice/ScopePrivate
	Text    string
}

// BroadcastAll addresses every network's channel
func BroadcastAll(text string) Broadcast {
	return Broadcast{Scope: ScopeAll, Text: text}
}

// BroadcastNet addresses one network's channel
func BroadcastNet(network, text string) Broadcast {
	return Broadcast{Scope: ScopeNetwork, Network: network, Text: text}
}

// BroadcastNotice addresses one nick on one network
func BroadcastNotice(network, nick, text string) Broadcast {
	return Broadcast{Scope: ScopeNotice, Network: network, Nick: nick, Text: text}
}

// FormatSeconds renders a second count as "N days, HH:MM:SS", the form used
// in every countdown-related message
func FormatSeconds(seconds int) string {
	s := seconds
	if s < 0 {
		s = -s
	}
	d := s / 86400
	s %= 86400
	h := s / 3600
	s %= 3600
	m := s / 60
	s %= 60
	unit := "days"
	if d == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%d %s, %02d:%02d:%02d", d, unit, h, m, s)
}
