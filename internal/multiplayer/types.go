// Package multiplayer runs versus matches between two sessions: a lobby
// coordinator pairs sessions by join code and an authoritative match loop
// steps the game and broadcasts snapshots.
package multiplayer

import (
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-netris/internal/core"
)

// PlayerID is core.PlayerID, re-exported for the transport code.
type PlayerID = core.PlayerID

const (
	Player1 = core.Player1
	Player2 = core.Player2
)

// SessionID identifies a connected client, typically one SSH session.
type SessionID string

// NewSessionID returns a random session id.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// MatchID identifies one match.
type MatchID string

// NewMatchID returns a random match id.
func NewMatchID() MatchID {
	return MatchID(uuid.NewString())
}

// MatchMode tells the front-end who controls Player2.
type MatchMode int

const (
	MatchModeSolo MatchMode = iota
	MatchModeVsCPU
	MatchModeOnlinePvP
)

// String returns a human-readable name.
func (m MatchMode) String() string {
	switch m {
	case MatchModeSolo:
		return "Solo"
	case MatchModeVsCPU:
		return "vs CPU"
	case MatchModeOnlinePvP:
		return "Online"
	default:
		return "Unknown"
	}
}
