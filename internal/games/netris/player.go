package netris

import (
	"fmt"

	"github.com/vovakirdan/tui-netris/internal/config"
	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/games/netris/bag"
	"github.com/vovakirdan/tui-netris/internal/games/netris/board"
	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
)

// player is one side of a game: a play board, its randomizer and the
// gravity and lock timers that turn ticks into engine calls.
type player struct {
	id    core.PlayerID
	cfg   config.NetrisConfig
	diff  *config.DifficultyManager
	board *board.Board
	bag   *bag.Randomizer
	holes bag.Source
	next  *shape.State

	ticks     int
	fallTimer int
	lockTimer int

	score  int
	lines  int
	junk   int // rows queued for the next lock
	pieces int // pieces spawned so far
	over   bool

	events []Event
}

func newPlayer(id core.PlayerID, boardID board.ID, cfg config.NetrisConfig, rules shape.Ruleset, seed int64, holes bag.Source) *player {
	dims := board.Dimensions{Height: cfg.Board.Height, Visible: cfg.Board.Visible, Width: cfg.Board.Width}
	b, err := board.New(boardID, dims, rules)
	if err != nil {
		panic(fmt.Sprintf("netris: validated config rejected: %v", err))
	}
	diff := config.NewDifficultyManager(cfg.Difficulty)
	return &player{
		id:    id,
		cfg:   cfg,
		diff:  diff,
		board: b,
		bag: bag.New(bag.NewRandSource(seed), bag.Config{
			History: cfg.Randomizer.History,
			Tries:   cfg.Randomizer.Tries,
			Seed:    shape.KindZ,
		}),
		holes: holes,
	}
}

// start draws the first two pieces and spawns the first one.
func (p *player) start() bool {
	p.next = p.bag.SelectNext()
	return p.spawn()
}

func (p *player) spawn() bool {
	st := p.next
	p.next = p.bag.SelectNext()
	p.fallTimer, p.lockTimer = 0, 0
	p.pieces++
	if !p.board.Spawn(st) {
		p.over = true
		p.emit(EventGameOver, 0)
		return false
	}
	return true
}

func (p *player) level() int {
	return p.lines / p.cfg.Scoring.LinesPerLevel
}

func (p *player) fallInterval() int {
	t := p.cfg.Timing
	return p.diff.FallInterval(t.FallTicks, t.MinFallTicks, p.lines, p.ticks)
}

// step applies one tick of input and gravity and returns the number of
// lines cleared by a lock during this tick.
func (p *player) step(in core.InputFrame) int {
	if p.over {
		return 0
	}
	p.ticks++

	switch {
	case in.Has(core.ActionLeft):
		p.board.Move(0, -1)
	case in.Has(core.ActionRight):
		p.board.Move(0, 1)
	}
	switch {
	case in.Has(core.ActionRotateCCW):
		p.board.Rotate(true)
	case in.Has(core.ActionRotateCW):
		p.board.Rotate(false)
	}
	if in.Has(core.ActionHardDrop) {
		p.score += p.board.Drop() * p.cfg.Scoring.HardDropPerRow
		return p.lock()
	}
	if in.Has(core.ActionSoftDrop) && p.board.Move(-1, 0) {
		p.fallTimer = 0
	}

	p.fallTimer++
	if p.fallTimer >= p.fallInterval() {
		p.fallTimer = 0
		p.board.Move(-1, 0)
	}

	if !p.board.Landed() {
		p.lockTimer = 0
		return 0
	}
	p.lockTimer++
	if p.lockTimer <= p.cfg.Timing.LockDelayTicks {
		return 0
	}
	return p.lock()
}

// lock freezes the piece, clears lines, takes queued junk and spawns the
// next piece.
func (p *player) lock() int {
	p.board.Freeze()
	n := p.board.ClearFullLines()
	if n > 0 {
		points := p.cfg.Scoring.PointsFor(n) * (p.level() + 1)
		if p.board.CheckBravo() {
			points *= max(1, p.cfg.Scoring.BravoMultiplier)
			p.emit(EventBravo, n)
		}
		p.score += points
		p.lines += n
		p.emit(EventLinesCleared, n)
	}
	if p.junk > 0 {
		p.board.InsertJunk(p.junk, p.holes.UniformInt(0, p.board.Width()))
		p.emit(EventJunkReceived, p.junk)
		p.junk = 0
	}
	p.spawn()
	return n
}

func (p *player) emit(kind EventKind, count int) {
	p.events = append(p.events, Event{Kind: kind, Player: p.id, Count: count})
}

func (p *player) drainEvents() []Event {
	ev := p.events
	p.events = nil
	return ev
}
