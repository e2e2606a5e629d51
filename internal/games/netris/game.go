package netris

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-netris/internal/config"
	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/games/netris/bag"
	"github.com/vovakirdan/tui-netris/internal/games/netris/board"
	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
)

// PreviewDimensions sizes the next-piece pane.
var PreviewDimensions = board.Dimensions{Height: 4, Visible: 4, Width: 6}

// Screen layout of the solo game.
const (
	boardX = 1 // column of board cell 0; the wall sits left of it
	boardY = 1
	hudGap = 3
)

// Game is the solo game: one play board and a preview of the next piece.
type Game struct {
	id     string
	forced *shape.Ruleset

	cfg     config.NetrisConfig
	runtime core.RuntimeConfig
	ruleset shape.Ruleset

	player  *player
	preview *board.Board
	shown   *shape.State
	canvas  *Canvas

	external board.Renderer
	logger   *log.Logger

	tick    uint64
	paused  bool
	refresh bool
	events  []Event
}

// New creates the solo game using the configured ruleset.
func New() *Game {
	return &Game{id: IDSolo}
}

// NewTGM creates the solo game with the TGM ruleset.
func NewTGM() *Game {
	tgm := shape.TGM
	return &Game{id: IDTGM, forced: &tgm}
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Title returns the display name.
func (g *Game) Title() string {
	if g.id == IDTGM {
		return "Netris (TGM)"
	}
	return "Netris"
}

// Reset loads the config and starts a new game.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	g.cfg = loadConfig()
	g.ruleset = rulesetOf(g.cfg)
	if g.forced != nil {
		g.ruleset = *g.forced
	}

	seed := seedOf(runtime.Seed)
	g.player = newPlayer(core.Player1, board.LocalID, g.cfg, g.ruleset, seed, bag.NewRandSource(seed+1))

	preview, err := board.New(board.PreviewID, PreviewDimensions, g.ruleset)
	if err != nil {
		panic(fmt.Sprintf("netris: preview: %v", err))
	}
	g.preview = preview
	g.shown = nil

	w := g.player.board.Width()
	hudX := boardX + 2*w + hudGap
	g.canvas = NewCanvas(hudX+max(2*PreviewDimensions.Width, 20), boardY+g.player.board.Visible()+1)
	g.canvas.Place(g.player.board, boardX, boardY, true)
	g.canvas.Place(g.preview, hudX, boardY+8, false)
	g.attach()

	g.tick = 0
	g.paused = false
	g.events = nil
	g.player.start()
	g.drawPreview()
	g.publish()
}

// attach routes board publishes to the canvas and the external renderer.
func (g *Game) attach() {
	r := renderers(g.canvas, g.external)
	g.player.board.SetRenderer(r)
	g.preview.SetRenderer(r)
	g.player.board.SetRowObserver(rowTracer(g.logger))
}

// Layout returns where the boards are drawn, for renderers installed
// with SetRenderer. It changes on every Reset.
func (g *Game) Layout() *Layout {
	return g.canvas.Layout()
}

// SetRenderer sends every plotted cell to r as well as to the internal
// canvas, and replays the current boards to it. nil detaches it.
func (g *Game) SetRenderer(r board.Renderer) {
	g.external = r
	if g.player == nil {
		return
	}
	g.attach()
	g.player.board.Redraw()
	g.preview.Redraw()
	g.publish()
}

// SetLogger enables the debug trace of published rows.
func (g *Game) SetLogger(l *log.Logger) {
	g.logger = l
	if g.player != nil {
		g.player.board.SetRowObserver(rowTracer(l))
	}
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionPause) && !g.player.over {
		g.paused = !g.paused
		g.refresh = true
	}
	if g.paused || g.player.over {
		return core.StepResult{State: g.State(), Refresh: g.TakeRefresh()}
	}

	g.tick++
	g.player.step(in)
	g.events = append(g.events, g.player.drainEvents()...)
	g.drawPreview()
	g.publish()

	return core.StepResult{State: g.State(), Refresh: g.TakeRefresh()}
}

func (g *Game) publish() {
	a := g.player.board.PublishChanges()
	b := g.preview.PublishChanges()
	g.refresh = g.refresh || a || b
}

// drawPreview replaces the preview when the next piece changed.
func (g *Game) drawPreview() {
	next := g.player.next
	if next == g.shown {
		return
	}
	g.shown = next
	g.preview.Reset()
	if next == nil {
		return
	}
	row, col := centerIn(g.preview, next)
	g.preview.Plot(next, row, col, false)
}

// centerIn returns the anchor that centres st on b.
func centerIn(b *board.Board, st *shape.State) (row, col int) {
	cells := shape.Cells(st, b.Ruleset(), 0, 0)
	minR, maxR, minC, maxC := cells[0].Row, cells[0].Row, cells[0].Col, cells[0].Col
	for _, c := range cells[1:] {
		minR, maxR = min(minR, c.Row), max(maxR, c.Row)
		minC, maxC = min(minC, c.Col), max(maxC, c.Col)
	}
	row = (b.Visible()-(maxR-minR+1))/2 - minR
	col = (b.Width()-(maxC-minC+1))/2 - minC
	return row, col
}

// TakeRefresh reports whether anything was drawn since the last call.
func (g *Game) TakeRefresh() bool {
	r := g.refresh
	g.refresh = false
	return r
}

// Events returns and clears the events since the last call.
func (g *Game) Events() []Event {
	ev := g.events
	g.events = nil
	return ev
}

// Render draws the canvas and the HUD.
func (g *Game) Render(dst *core.Screen) {
	dst.CopyFrom(g.canvas.Screen())

	hudX := boardX + 2*g.player.board.Width() + hudGap
	p := g.player
	dst.DrawTextColor(hudX, boardY, "NETRIS", core.ColorBrightWhite)
	dst.DrawTextColor(hudX, boardY+1, g.ruleset.Title(), core.ColorGray)
	dst.DrawText(hudX, boardY+3, fmt.Sprintf("Score %7d", p.score))
	dst.DrawText(hudX, boardY+4, fmt.Sprintf("Lines %7d", p.lines))
	dst.DrawText(hudX, boardY+5, fmt.Sprintf("Level %7d", p.level()))
	dst.DrawText(hudX, boardY+7, "Next")

	switch {
	case p.over:
		drawBanner(dst, boardX, boardY, p.board, "GAME OVER", "R: restart")
	case g.paused:
		drawBanner(dst, boardX, boardY, p.board, "PAUSED", "P: resume")
	}
}

// drawBanner writes two centred lines over the middle of a board.
func drawBanner(dst *core.Screen, x, y int, b *board.Board, title, hint string) {
	w := 2 * b.Width()
	mid := y + b.Visible()/2
	for i, text := range []string{title, hint} {
		line := text
		if len(line) > w {
			line = line[:w]
		}
		pad := (w - len(line)) / 2
		line = strings.Repeat(" ", pad) + line + strings.Repeat(" ", w-len(line)-pad)
		dst.DrawTextColor(x, mid-1+i, line, core.ColorBrightWhite)
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.player.score,
		Lines:    g.player.lines,
		Level:    g.player.level(),
		GameOver: g.player.over,
		Paused:   g.paused,
	}
}

// Board returns the play board.
func (g *Game) Board() *board.Board {
	return g.player.board
}

// Preview returns the next-piece pane.
func (g *Game) Preview() *board.Board {
	return g.preview
}

// Next returns the piece that spawns after the current one.
func (g *Game) Next() *shape.State {
	return g.player.next
}

// Ruleset returns the ruleset of the running game.
func (g *Game) Ruleset() shape.Ruleset {
	return g.ruleset
}

// Snapshot returns the state of the play board and counters.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Tick:     g.tick,
		Players:  []PlayerSnapshot{snapshotOf(g.player)},
		GameOver: g.player.over,
	}
}

// rowTracer logs every published row at debug level. nil disables it.
func rowTracer(l *log.Logger) board.RowObserver {
	if l == nil {
		return nil
	}
	return func(id board.ID, row int, cells []shape.Block) {
		l.Debug("row update", "board", int(id), "row", row, "cells", formatRow(cells))
	}
}

func formatRow(cells []shape.Block) string {
	var sb strings.Builder
	for _, c := range cells {
		switch {
		case c == shape.None:
			sb.WriteByte('.')
		case c.Falling():
			sb.WriteByte('*')
		default:
			sb.WriteByte('#')
		}
	}
	return sb.String()
}
