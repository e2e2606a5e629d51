// Package netris is the game loop around the falling-block engine: gravity,
// lock delay, scoring and junk exchange, plus the canvas that turns board
// publishes into screen cells.
//
// Registered games:
//
//	netris         solo, ruleset from the config (classic by default)
//	netris_tgm     solo, TGM ruleset
//	netris_cpu     versus the robot
//	netris_versus  online versus, served by the match loop
package netris

import (
	"strings"
	"time"

	"github.com/vovakirdan/tui-netris/internal/config"
	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
)

// Game ids.
const (
	IDSolo   = "netris"
	IDTGM    = "netris_tgm"
	IDCPU    = "netris_cpu"
	IDVersus = "netris_versus"
)

var (
	configPath       string
	difficultyPreset config.DifficultyPreset
	rulesetOverride  string
)

// SetConfigPath sets the YAML file read on the next Reset.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset selects easy, normal, hard or fixed. Unknown names
// clear the preset.
func SetDifficultyPreset(preset string) {
	p, err := config.ParsePreset(preset)
	if err != nil || strings.TrimSpace(preset) == "" {
		difficultyPreset = ""
		return
	}
	difficultyPreset = p
}

// SetRuleset overrides the ruleset of the config file for netris,
// netris_cpu and netris_versus.
func SetRuleset(name string) {
	rulesetOverride = name
}

// loadConfig returns a valid config. Unreadable files fall back to the
// defaults so a bad file never prevents play.
func loadConfig() config.NetrisConfig {
	cfg, err := config.LoadNetris(configPath)
	if err != nil {
		cfg = config.DefaultNetrisConfig()
	}
	if difficultyPreset != "" {
		config.ApplyPreset(&cfg, difficultyPreset)
	}
	if rulesetOverride != "" {
		cfg.Ruleset = rulesetOverride
	}
	return cfg
}

// rulesetOf resolves the config ruleset, falling back to Classic.
func rulesetOf(cfg config.NetrisConfig) shape.Ruleset {
	r, err := shape.ParseRuleset(cfg.Ruleset)
	if err != nil {
		return shape.Classic
	}
	return r
}

func seedOf(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}
