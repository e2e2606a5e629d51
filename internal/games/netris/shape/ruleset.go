package shape

import (
	"fmt"
	"strings"
)

// Ruleset selects spawn placement and wall-kick behaviour.
// It is resolved once per session and passed explicitly to the engine.
type Ruleset int

const (
	// Classic is the legacy ruleset: no spawn offsets, no wall kicks.
	Classic Ruleset = iota
	// TGM reproduces the arcade ruleset: box-aligned spawn offsets and
	// one-column wall kicks on rotation.
	TGM
)

// String returns the config name of the ruleset.
func (r Ruleset) String() string {
	switch r {
	case Classic:
		return "classic"
	case TGM:
		return "tgm"
	default:
		return "unknown"
	}
}

// Title returns a human-readable name for HUDs and menus.
func (r Ruleset) Title() string {
	switch r {
	case TGM:
		return "TGM"
	default:
		return "Classic"
	}
}

// ParseRuleset parses a ruleset name. The empty string means Classic.
func ParseRuleset(s string) (Ruleset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "classic", "legacy":
		return Classic, nil
	case "tgm", "arcade":
		return TGM, nil
	default:
		return Classic, fmt.Errorf("shape: unknown ruleset %q", s)
	}
}

// Kicks reports whether rotations may shift the piece sideways.
func (r Ruleset) Kicks() bool {
	return r == TGM
}

// UsesOffsets reports whether rotation states apply their spawn offsets.
func (r Ruleset) UsesOffsets() bool {
	return r == TGM
}
