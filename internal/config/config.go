// Package config loads the YAML configuration of the game and turns its
// difficulty section into fall speeds.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// NetrisConfig is the complete game configuration.
type NetrisConfig struct {
	Board      BoardConfig      `yaml:"board"`
	Ruleset    string           `yaml:"ruleset"` // "classic" or "tgm"
	Randomizer RandomizerConfig `yaml:"randomizer"`
	Timing     TimingConfig     `yaml:"timing"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Junk       JunkConfig       `yaml:"junk"`
	CPU        CPUConfig        `yaml:"cpu"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// BoardConfig sizes the play field.
type BoardConfig struct {
	Height  int `yaml:"height"`  // total rows, hidden spawn rows included
	Visible int `yaml:"visible"` // rows drawn on screen
	Width   int `yaml:"width"`
}

// RandomizerConfig tunes the piece history.
type RandomizerConfig struct {
	History int `yaml:"history"`
	Tries   int `yaml:"tries"`
}

// TimingConfig is expressed in simulation ticks.
type TimingConfig struct {
	FallTicks      int `yaml:"fall_ticks"`       // ticks per row at the start
	MinFallTicks   int `yaml:"min_fall_ticks"`   // fastest gravity
	LockDelayTicks int `yaml:"lock_delay_ticks"` // grace period once a piece lands
}

// ScoringConfig defines the points awarded by the game loop.
type ScoringConfig struct {
	Single          int `yaml:"single"`
	Double          int `yaml:"double"`
	Triple          int `yaml:"triple"`
	Netris          int `yaml:"netris"`
	BravoMultiplier int `yaml:"bravo_multiplier"`
	HardDropPerRow  int `yaml:"hard_drop_per_row"`
	LinesPerLevel   int `yaml:"lines_per_level"`
}

// JunkConfig maps cleared lines to rows sent to the opponent.
type JunkConfig struct {
	Enabled bool `yaml:"enabled"`
	Double  int  `yaml:"double"`
	Triple  int  `yaml:"triple"`
	Netris  int  `yaml:"netris"`
}

// CPUConfig drives the robot opponent.
type CPUConfig struct {
	MoveEveryTicks int     `yaml:"move_every_ticks"`
	Lines          float64 `yaml:"lines"`
	Height         float64 `yaml:"height"`
	Holes          float64 `yaml:"holes"`
	Bumpiness      float64 `yaml:"bumpiness"`
}

// DifficultyConfig defines how gravity speeds up.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines what drives the difficulty level.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "lines", "time" or "none"
	MaxAt int    `yaml:"max_at"` // lines or ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // extra speed at max difficulty
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Validate reports the first unusable setting.
func (c NetrisConfig) Validate() error {
	b := c.Board
	switch {
	case b.Width <= 0 || b.Width > 64:
		return fmt.Errorf("%w: board width %d not in (0,64]", ErrInvalidConfig, b.Width)
	case b.Visible <= 0 || b.Visible > b.Height:
		return fmt.Errorf("%w: visible rows %d not in (0,%d]", ErrInvalidConfig, b.Visible, b.Height)
	case c.Randomizer.History <= 0 || c.Randomizer.Tries <= 0:
		return fmt.Errorf("%w: randomizer history and tries must be positive", ErrInvalidConfig)
	case c.Timing.FallTicks <= 0 || c.Timing.MinFallTicks <= 0:
		return fmt.Errorf("%w: fall ticks must be positive", ErrInvalidConfig)
	case c.Timing.LockDelayTicks < 0:
		return fmt.Errorf("%w: lock delay %d is negative", ErrInvalidConfig, c.Timing.LockDelayTicks)
	case c.Scoring.LinesPerLevel <= 0:
		return fmt.Errorf("%w: lines per level must be positive", ErrInvalidConfig)
	}
	switch c.Difficulty.Progression.Type {
	case "lines", "time", "none", "":
	default:
		return fmt.Errorf("%w: unknown progression %q", ErrInvalidConfig, c.Difficulty.Progression.Type)
	}
	switch strings.ToLower(c.Ruleset) {
	case "", "classic", "legacy", "tgm", "arcade":
	default:
		return fmt.Errorf("%w: unknown ruleset %q", ErrInvalidConfig, c.Ruleset)
	}
	return nil
}

// JunkFor returns how many junk rows clearing n lines sends.
func (j JunkConfig) JunkFor(n int) int {
	if !j.Enabled {
		return 0
	}
	switch {
	case n >= 4:
		return j.Netris
	case n == 3:
		return j.Triple
	case n == 2:
		return j.Double
	default:
		return 0
	}
}

// PointsFor returns the line-clear points for n lines before level scaling.
func (s ScoringConfig) PointsFor(n int) int {
	switch {
	case n >= 4:
		return s.Netris
	case n == 3:
		return s.Triple
	case n == 2:
		return s.Double
	case n == 1:
		return s.Single
	default:
		return 0
	}
}

// DifficultyPreset is a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name; empty means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(s)); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (easy, normal, hard, fixed)", s)
	}
}

// InitialLevelForPreset returns the starting difficulty of a preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// ApplyPreset adjusts gravity and the robot to a preset.
func ApplyPreset(cfg *NetrisConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
		return
	}
	cfg.Difficulty.Enabled = true
	cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)

	switch preset {
	case DifficultyEasy:
		cfg.CPU.MoveEveryTicks = 20
		cfg.Timing.LockDelayTicks = 45
	case DifficultyHard:
		cfg.CPU.MoveEveryTicks = 4
		cfg.Timing.LockDelayTicks = 15
	}
}
