package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-netris/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
type KeyMapper struct {
	bindings map[string]core.Action
}

// NewKeyMapper creates a key mapper with the netris bindings: arrows,
// vi keys (j/k/l/m) and WASD all move the piece.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{bindings: map[string]core.Action{
		"left":   core.ActionLeft,
		"j":      core.ActionLeft,
		"a":      core.ActionLeft,
		"right":  core.ActionRight,
		"l":      core.ActionRight,
		"d":      core.ActionRight,
		"up":     core.ActionRotateCCW,
		"k":      core.ActionRotateCCW,
		"w":      core.ActionRotateCCW,
		"z":      core.ActionRotateCW,
		"down":   core.ActionSoftDrop,
		"m":      core.ActionSoftDrop,
		"s":      core.ActionSoftDrop,
		" ":      core.ActionHardDrop,
		"enter":  core.ActionConfirm,
		"p":      core.ActionPause,
		"r":      core.ActionRestart,
		"esc":    core.ActionBack,
		"b":      core.ActionBack,
		"q":      core.ActionQuit,
		"ctrl+c": core.ActionQuit,
	}}
}

// MapKey returns the action bound to msg and whether it asks to quit.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	action, ok := km.bindings[msg.String()]
	if !ok {
		return core.ActionNone, false
	}
	return action, action == core.ActionQuit
}

// MapKeyToFrame sets the bound action on frame. It returns true on quit.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := km.MapKey(msg)
	if action != core.ActionNone && !isQuit {
		frame.Set(action)
	}
	return isQuit
}

// MenuAction is a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionScoreboard
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	}
	return MenuActionNone
}
