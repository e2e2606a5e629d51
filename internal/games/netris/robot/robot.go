// Package robot plays a board: it searches every reachable orientation and
// column of the active piece on a cloned board, scores the resulting stack
// and then steers the real piece towards the best placement.
package robot

import (
	"math"

	"github.com/vovakirdan/tui-netris/internal/games/netris/board"
	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
)

// Action is one input the robot wants applied to its board.
type Action int

const (
	Idle Action = iota
	Left
	Right
	RotateCCW
	Drop
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Idle:
		return "idle"
	case Left:
		return "left"
	case Right:
		return "right"
	case RotateCCW:
		return "rotate"
	case Drop:
		return "drop"
	default:
		return "unknown"
	}
}

// Weights balance the placement heuristics.
type Weights struct {
	Lines     float64
	Height    float64
	Holes     float64
	Bumpiness float64
}

// DefaultWeights is a well-balanced general purpose setting.
func DefaultWeights() Weights {
	return Weights{Lines: 0.76, Height: 0.51, Holes: 0.36, Bumpiness: 0.18}
}

// Plan is a target placement for the active piece.
type Plan struct {
	State shape.ID
	Col   int
	Lines int
	Score float64
}

// Best searches every placement of the active piece of b. It returns false
// when b has no active piece. b itself is not modified.
func Best(b *board.Board, w Weights) (Plan, bool) {
	st := b.ActiveState()
	if st == nil {
		return Plan{}, false
	}

	best := Plan{Score: math.Inf(-1)}
	found := false
	base := b.Clone()
	for range st.RingSize() {
		probe := base.Clone()
		for probe.Move(0, -1) {
		}
		for {
			if p, ok := evaluate(probe, w); ok && p.Score > best.Score {
				best, found = p, true
			}
			if !probe.Move(0, 1) {
				break
			}
		}
		before := base.Piece().State
		base.Rotate(true)
		if base.Piece().State == before {
			break
		}
	}
	return best, found
}

func evaluate(b *board.Board, w Weights) (Plan, bool) {
	piece := b.Piece()
	if !piece.Present {
		return Plan{}, false
	}
	trial := b.Clone()
	trial.Drop()
	trial.Freeze()
	lines := trial.ClearFullLines()

	m := Measure(trial)
	score := w.Lines*float64(lines) -
		w.Height*float64(m.Height) -
		w.Holes*float64(m.Holes) -
		w.Bumpiness*float64(m.Bumpiness)
	return Plan{State: piece.State, Col: piece.Col, Lines: lines, Score: score}, true
}

// Metrics describe the settled stack of a board.
type Metrics struct {
	Height    int // sum of column heights
	Holes     int // empty cells with a filled cell above
	Bumpiness int // sum of height differences of neighbouring columns
}

// Measure computes the stack metrics of b.
func Measure(b *board.Board) Metrics {
	var m Metrics
	prev := -1
	for x := 0; x < b.Width(); x++ {
		h := 0
		for y := b.Height() - 1; y >= 0; y-- {
			if b.ReadCell(y, x) != shape.None {
				if h == 0 {
					h = y + 1
				}
			} else if h > 0 {
				m.Holes++
			}
		}
		m.Height += h
		if prev >= 0 {
			m.Bumpiness += abs(h - prev)
		}
		prev = h
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Robot steers the active piece of a board towards its best placement,
// emitting at most one action every few ticks.
type Robot struct {
	weights Weights
	every   int

	ticks   int
	plan    Plan
	planned bool
	steps   int
}

// maxSteps bounds the actions spent on one piece before it is dropped.
const maxSteps = 24

// New creates a robot that acts every `every` ticks.
func New(w Weights, every int) *Robot {
	if every <= 0 {
		every = 1
	}
	return &Robot{weights: w, every: every}
}

// Forget drops the current plan; the next action replans.
func (r *Robot) Forget() {
	r.planned = false
	r.steps = 0
}

// Plan returns the current target and whether one exists.
func (r *Robot) Plan() (Plan, bool) {
	return r.plan, r.planned
}

// Step advances the robot by one tick and returns the action to apply.
func (r *Robot) Step(b *board.Board) Action {
	r.ticks++
	if r.ticks%r.every != 0 {
		return Idle
	}
	return r.Next(b)
}

// Next returns the next action towards the plan, replanning if needed.
func (r *Robot) Next(b *board.Board) Action {
	piece := b.Piece()
	if !piece.Present {
		r.Forget()
		return Idle
	}
	if !r.planned {
		p, ok := Best(b, r.weights)
		if !ok {
			return Idle
		}
		r.plan, r.planned = p, true
	}

	r.steps++
	switch {
	case r.steps > maxSteps:
		return r.drop()
	case piece.State != r.plan.State:
		return RotateCCW
	case piece.Col > r.plan.Col:
		return Left
	case piece.Col < r.plan.Col:
		return Right
	default:
		return r.drop()
	}
}

func (r *Robot) drop() Action {
	r.Forget()
	return Drop
}
