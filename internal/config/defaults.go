package config

import (
	_ "embed"
)

//go:embed defaults/netris.yaml
var defaultNetrisYAML []byte

// DefaultNetrisConfig returns the built-in configuration. It matches
// defaults/netris.yaml and is used when even the embedded file fails.
func DefaultNetrisConfig() NetrisConfig {
	return NetrisConfig{
		Board: BoardConfig{
			Height:  24,
			Visible: 20,
			Width:   10,
		},
		Ruleset: "classic",
		Randomizer: RandomizerConfig{
			History: 4,
			Tries:   4,
		},
		Timing: TimingConfig{
			FallTicks:      48,
			MinFallTicks:   3,
			LockDelayTicks: 30,
		},
		Scoring: ScoringConfig{
			Single:          40,
			Double:          100,
			Triple:          300,
			Netris:          1200,
			BravoMultiplier: 4,
			HardDropPerRow:  1,
			LinesPerLevel:   10,
		},
		Junk: JunkConfig{
			Enabled: true,
			Double:  1,
			Triple:  2,
			Netris:  4,
		},
		CPU: CPUConfig{
			MoveEveryTicks: 8,
			Lines:          0.76,
			Height:         0.51,
			Holes:          0.36,
			Bumpiness:      0.18,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "lines",
				MaxAt: 150,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 15.0,
			},
		},
	}
}
