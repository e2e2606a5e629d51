// Package tui is the Bubble Tea front-end: the game loop model, the menu,
// the scoreboard, the online lobby and the SSH server built on Wish.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg triggers one simulation tick of the game model with the same
// generation. Ticks of a model that was replaced are ignored.
type TickMsg struct {
	Gen uint64
	At  time.Time
}

var generations atomic.Uint64

// nextGeneration returns a fresh tick generation.
func nextGeneration() uint64 {
	return generations.Add(1)
}

// tickCmd schedules the next tick at tickRate ticks per second.
func tickCmd(tickRate int, gen uint64) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Gen: gen, At: t}
	})
}
