package netris

import (
	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/games/netris/board"
	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
)

// Glyphs of the board view. Every board cell is two characters wide.
const (
	blockGlyph   = "[]"
	emptyGlyph   = "  "
	fallingGlyph = "=="
	restingGlyph = "--"
	// WallRune is drawn on both sides of a framed board.
	WallRune = '|'
)

// BlockColor maps a block kind to a screen colour.
func BlockColor(b shape.Block) core.Color {
	switch b.Abs() {
	case shape.White:
		return core.ColorWhite
	case shape.Blue:
		return core.ColorBlue
	case shape.Magenta:
		return core.ColorMagenta
	case shape.Cyan:
		return core.ColorCyan
	case shape.Yellow:
		return core.ColorYellow
	case shape.Green:
		return core.ColorGreen
	case shape.Red:
		return core.ColorRed
	default:
		return core.ColorDefault
	}
}

type placement struct {
	x, y    int // top-left screen cell of the top visible row
	visible int
	width   int
	markers bool
}

// Layout records where each board sits on screen and turns render calls
// into positioned glyphs. Backends other than the canvas share it.
type Layout struct {
	places map[board.ID]placement
}

func newLayout() *Layout {
	return &Layout{places: make(map[board.ID]placement)}
}

// Cell returns the text drawn for a board cell. Row 0 is the bottom row
// of the board; ok is false for cells outside the visible area.
func (l *Layout) Cell(id board.ID, row, col int, b shape.Block) (x, y int, text string, color core.Color, ok bool) {
	p, found := l.places[id]
	if !found || row < 0 || row >= p.visible || col < 0 || col >= p.width {
		return 0, 0, "", 0, false
	}
	text = emptyGlyph
	if b != shape.None {
		text = blockGlyph
	}
	return p.x + 2*col, p.y + p.visible - 1 - row, text, BlockColor(b), true
}

// Marker returns the cue drawn under a column of a framed board.
func (l *Layout) Marker(id board.ID, col int, falling bool) (x, y int, text string, color core.Color, ok bool) {
	p, found := l.places[id]
	if !found || !p.markers || col < 0 || col >= p.width {
		return 0, 0, "", 0, false
	}
	text, color = restingGlyph, core.ColorGray
	if falling {
		text, color = fallingGlyph, core.ColorBrightWhite
	}
	return p.x + 2*col, p.y + p.visible, text, color, true
}

// Walls returns the screen cells of the side walls of framed boards.
func (l *Layout) Walls() []core.Rect {
	var walls []core.Rect
	for _, p := range l.places {
		if !p.markers {
			continue
		}
		walls = append(walls,
			core.NewRect(p.x-1, p.y, 1, p.visible),
			core.NewRect(p.x+2*p.width, p.y, 1, p.visible),
		)
	}
	return walls
}

// Canvas is a board.Renderer that keeps a persistent screen. Boards only
// publish what changed, so the screen is never cleared between frames.
type Canvas struct {
	screen *core.Screen
	layout *Layout
}

// NewCanvas creates a blank canvas of w x h characters.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		screen: core.NewScreen(w, h),
		layout: newLayout(),
	}
}

// Screen returns the canvas contents.
func (c *Canvas) Screen() *core.Screen {
	return c.screen
}

// Layout returns the board positions of the canvas.
func (c *Canvas) Layout() *Layout {
	return c.layout
}

// Place lays b out with its top visible row at screen row y and column 0 at
// screen column x. Framed boards get side walls and a falling-marker row
// underneath; the frame is drawn immediately.
func (c *Canvas) Place(b *board.Board, x, y int, framed bool) {
	c.layout.places[b.ID()] = placement{x: x, y: y, visible: b.Visible(), width: b.Width(), markers: framed}
	if !framed {
		return
	}
	for _, wall := range c.layout.Walls() {
		for row := wall.Y; row < wall.Bottom(); row++ {
			c.screen.SetColor(wall.X, row, WallRune, core.ColorGray)
		}
	}
	for col := 0; col < b.Width(); col++ {
		c.PlotFallingMarker(b.ID(), col, false)
	}
}

// PlotCell draws one visible cell.
func (c *Canvas) PlotCell(id board.ID, row, col int, b shape.Block) {
	if x, y, text, color, ok := c.layout.Cell(id, row, col, b); ok {
		c.screen.DrawTextColor(x, y, text, color)
	}
}

// PlotFallingMarker draws the cue under a column that holds falling cells.
func (c *Canvas) PlotFallingMarker(id board.ID, col int, falling bool) {
	if x, y, text, color, ok := c.layout.Marker(id, col, falling); ok {
		c.screen.DrawTextColor(x, y, text, color)
	}
}

// fanout forwards render calls to several renderers.
type fanout []board.Renderer

func (f fanout) PlotCell(id board.ID, row, col int, b shape.Block) {
	for _, r := range f {
		r.PlotCell(id, row, col, b)
	}
}

func (f fanout) PlotFallingMarker(id board.ID, col int, falling bool) {
	for _, r := range f {
		r.PlotFallingMarker(id, col, falling)
	}
}

// renderers returns the canvas, followed by extra when it is set.
func renderers(c *Canvas, extra board.Renderer) board.Renderer {
	if extra == nil {
		return c
	}
	return fanout{c, extra}
}
