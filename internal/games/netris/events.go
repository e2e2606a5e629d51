package netris

import (
	"fmt"

	"github.com/vovakirdan/tui-netris/internal/core"
)

// EventKind identifies a game event.
type EventKind int

const (
	EventLinesCleared EventKind = iota
	EventBravo
	EventJunkSent
	EventJunkReceived
	EventGameOver
)

func (k EventKind) String() string {
	switch k {
	case EventLinesCleared:
		return "lines"
	case EventBravo:
		return "bravo"
	case EventJunkSent:
		return "junk-sent"
	case EventJunkReceived:
		return "junk-received"
	case EventGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Event is something the front-end may want to react to, such as playing
// a sound when lines are cleared.
type Event struct {
	Kind   EventKind
	Player core.PlayerID
	Count  int // lines or junk rows
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s %d", e.Player, e.Kind, e.Count)
}

// EventSource is implemented by games that report events.
type EventSource interface {
	// Events returns and clears the events since the last call.
	Events() []Event
}
