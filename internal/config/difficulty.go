package config

import "math"

// DifficultyManager turns cleared lines or elapsed ticks into gravity.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// NewDifficultyManager creates a manager for cfg.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: clampF(cfg.InitialLevel, 0.0, 1.0),
	}
}

// IsEnabled reports whether difficulty progresses at all.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != "none"
}

// Level returns the difficulty (0.0 to 1.0) after lines cleared and ticks played.
func (d *DifficultyManager) Level(lines, ticks int) float64 {
	if !d.IsEnabled() {
		return d.initialLevel
	}

	maxAt := float64(d.cfg.Progression.MaxAt)
	if maxAt <= 0 {
		maxAt = 1
	}

	var progress float64
	switch d.cfg.Progression.Type {
	case "lines", "":
		progress = float64(lines) / maxAt
	case "time":
		progress = float64(ticks) / maxAt
	default:
		return d.initialLevel
	}

	progress = clampF(progress, 0.0, 1.0)
	return d.initialLevel + progress*(1.0-d.initialLevel)
}

// Speed scales baseSpeed by the current level.
func (d *DifficultyManager) Speed(baseSpeed float64, lines, ticks int) float64 {
	return baseSpeed * (1.0 + d.Level(lines, ticks)*d.cfg.Scaling.SpeedMultiplier)
}

// FallInterval returns how many ticks a piece waits before falling a row.
// It never drops below minTicks or 1.
func (d *DifficultyManager) FallInterval(baseTicks, minTicks, lines, ticks int) int {
	interval := int(math.Round(float64(baseTicks) / d.Speed(1.0, lines, ticks)))
	return max(interval, minTicks, 1)
}

func clampF(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
