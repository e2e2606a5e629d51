// Package bag selects the next piece kind with a short memory of recent
// picks, making quick repeats unlikely without forbidding them.
package bag

import (
	"math/rand"

	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
)

// Defaults used when a Config leaves a field at zero.
const (
	DefaultHistory = 4
	DefaultTries   = 4
)

// Source yields independent uniform integers in [lo, hi).
type Source interface {
	UniformInt(lo, hi int) int
}

// RandSource is a Source backed by a seeded math/rand generator.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource returns a deterministic source for the given seed.
func NewRandSource(seed int64) *RandSource {
	return &RandSource{rng: rand.New(rand.NewSource(seed))}
}

// UniformInt returns a value in [lo, hi). hi must exceed lo.
func (s *RandSource) UniformInt(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo)
}

// Config sizes the randomizer.
type Config struct {
	History int        // remembered kinds
	Tries   int        // draws before a repeat is accepted
	Seed    shape.Kind // kind the history starts filled with
}

// DefaultConfig returns the usual 4 history / 4 tries setup primed with Z.
func DefaultConfig() Config {
	return Config{History: DefaultHistory, Tries: DefaultTries, Seed: shape.KindZ}
}

// Randomizer is owned by one play session.
type Randomizer struct {
	src     Source
	tries   int
	history []shape.Kind
	next    int // oldest history slot
}

// New creates a randomizer drawing from src.
func New(src Source, cfg Config) *Randomizer {
	if cfg.History <= 0 {
		cfg.History = DefaultHistory
	}
	if cfg.Tries <= 0 {
		cfg.Tries = DefaultTries
	}
	r := &Randomizer{
		src:     src,
		tries:   cfg.Tries,
		history: make([]shape.Kind, cfg.History),
	}
	for i := range r.history {
		r.history[i] = cfg.Seed
	}
	return r
}

// Kind draws the next piece kind and records it in the history.
func (r *Randomizer) Kind() shape.Kind {
	var k shape.Kind
	for range r.tries {
		k = shape.Kind(r.src.UniformInt(0, shape.KindCount))
		if !r.remembers(k) {
			break
		}
	}
	r.history[r.next] = k
	r.next = (r.next + 1) % len(r.history)
	return k
}

// SelectNext draws the next piece and returns its spawn orientation.
func (r *Randomizer) SelectNext() *shape.State {
	return shape.Canonical(r.Kind())
}

// History returns the remembered kinds, oldest first.
func (r *Randomizer) History() []shape.Kind {
	out := make([]shape.Kind, 0, len(r.history))
	for i := range len(r.history) {
		out = append(out, r.history[(r.next+i)%len(r.history)])
	}
	return out
}

func (r *Randomizer) remembers(k shape.Kind) bool {
	for _, h := range r.history {
		if h == k {
			return true
		}
	}
	return false
}
