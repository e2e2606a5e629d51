// Package board implements the per-board cell store of the engine together
// with the operations layered on it: the render-diff publisher, the active
// piece controller and the line clearing engine.
//
// A Board is not safe for concurrent use. Distinct boards share nothing and
// may be driven from different goroutines.
package board

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
)

// MaxWidth is the widest supported board; one dirty bit per column.
const MaxWidth = 64

// ErrInvalidDimensions is returned by New for unusable board sizes.
var ErrInvalidDimensions = errors.New("board: invalid dimensions")

// ID distinguishes boards towards the renderer.
type ID int

// Conventional board ids used by the game loop.
const (
	LocalID    ID = 0
	OpponentID ID = 1
	PreviewID  ID = 2
)

// Dimensions describe a board. Rows at or above Visible exist but are never
// published; pieces spawn into them under the classic ruleset.
type Dimensions struct {
	Height  int
	Visible int
	Width   int
}

// DefaultDimensions is the classic 10 by 20 play field with four hidden rows.
func DefaultDimensions() Dimensions {
	return Dimensions{Height: 24, Visible: 20, Width: 10}
}

// Validate reports whether the dimensions can back a board.
func (d Dimensions) Validate() error {
	switch {
	case d.Width <= 0 || d.Width > MaxWidth:
		return fmt.Errorf("%w: width %d not in (0,%d]", ErrInvalidDimensions, d.Width, MaxWidth)
	case d.Visible <= 0:
		return fmt.Errorf("%w: visible height %d must be positive", ErrInvalidDimensions, d.Visible)
	case d.Visible > d.Height:
		return fmt.Errorf("%w: visible height %d exceeds height %d", ErrInvalidDimensions, d.Visible, d.Height)
	}
	return nil
}

// Renderer receives the minimal redraw calls produced by PublishChanges.
// Implementations must not call back into the board.
type Renderer interface {
	// PlotCell draws or clears one visible cell. b is never negative.
	PlotCell(id ID, row, col int, b shape.Block)
	// PlotFallingMarker draws the cue beneath a column holding falling cells.
	PlotFallingMarker(id ID, col int, falling bool)
}

// RowObserver is told about every published row with its signed contents.
// The slice is only valid for the duration of the call.
type RowObserver func(id ID, row int, cells []shape.Block)

// Board is one play field.
type Board struct {
	id    ID
	dims  Dimensions
	rules shape.Ruleset

	cells  [][]shape.Block
	shadow [][]shape.Block
	dirty  []uint64

	falling       []int
	shadowFalling []bool

	renderer Renderer
	observer RowObserver

	piece    *shape.State
	row, col int
}

// New creates an empty board.
func New(id ID, dims Dimensions, rules shape.Ruleset) (*Board, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		id:            id,
		dims:          dims,
		rules:         rules,
		cells:         makeGrid(dims.Height, dims.Width),
		shadow:        makeGrid(dims.Height, dims.Width),
		dirty:         make([]uint64, dims.Height),
		falling:       make([]int, dims.Width),
		shadowFalling: make([]bool, dims.Width),
	}
	return b, nil
}

func makeGrid(h, w int) [][]shape.Block {
	grid := make([][]shape.Block, h)
	for y := range grid {
		grid[y] = make([]shape.Block, w)
	}
	return grid
}

// ID returns the board id.
func (b *Board) ID() ID { return b.id }

// Dimensions returns the board size.
func (b *Board) Dimensions() Dimensions { return b.dims }

// Width returns the number of columns.
func (b *Board) Width() int { return b.dims.Width }

// Height returns the number of rows, hidden ones included.
func (b *Board) Height() int { return b.dims.Height }

// Visible returns the number of published rows.
func (b *Board) Visible() int { return b.dims.Visible }

// Ruleset returns the ruleset the board was created with.
func (b *Board) Ruleset() shape.Ruleset { return b.rules }

// SetRenderer attaches the render collaborator. nil discards output.
func (b *Board) SetRenderer(r Renderer) { b.renderer = r }

// SetRowObserver attaches the row hook. nil disables it.
func (b *Board) SetRowObserver(fn RowObserver) { b.observer = fn }

// ReadCell returns the settled kind at (row, col). Reads past the side walls
// or below the floor return Wall, reads above the ceiling return None.
func (b *Board) ReadCell(row, col int) shape.Block {
	if row < 0 || col < 0 || col >= b.dims.Width {
		return shape.Wall
	}
	if row >= b.dims.Height {
		return shape.None
	}
	return b.cells[row][col].Abs()
}

// RawCell returns the signed content of an in-bounds cell, None otherwise.
func (b *Board) RawCell(row, col int) shape.Block {
	if !b.inBounds(row, col) {
		return shape.None
	}
	return b.cells[row][col]
}

// WriteCell stores v at (row, col). Writes outside the board are ignored.
func (b *Board) WriteCell(row, col int, v shape.Block) {
	if !b.inBounds(row, col) {
		return
	}
	if row < b.dims.Visible {
		b.falling[col] += sign(v) - sign(b.cells[row][col])
	}
	b.cells[row][col] = v
	b.dirty[row] |= 1 << uint(col)
}

func sign(v shape.Block) int {
	if v < 0 {
		return 1
	}
	return 0
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.dims.Height && col >= 0 && col < b.dims.Width
}

// FallingColumn reports whether any visible cell of col belongs to the falling piece.
func (b *Board) FallingColumn(col int) bool {
	if col < 0 || col >= b.dims.Width {
		return false
	}
	return b.falling[col] > 0
}

// CountOccupiedCells returns the number of non-empty cells on the whole board.
func (b *Board) CountOccupiedCells() int {
	n := 0
	for y := range b.cells {
		for _, v := range b.cells[y] {
			if v != shape.None {
				n++
			}
		}
	}
	return n
}

// Reset empties every cell through WriteCell so the next publish clears the
// display, and drops the active piece.
func (b *Board) Reset() {
	for y := 0; y < b.dims.Height; y++ {
		for x := 0; x < b.dims.Width; x++ {
			b.WriteCell(y, x, shape.None)
		}
	}
	b.piece = nil
}

// Clone returns an independent copy of the board, active piece and pending
// changes included. The copy has no renderer or row observer.
func (b *Board) Clone() *Board {
	c := &Board{
		id:            b.id,
		dims:          b.dims,
		rules:         b.rules,
		cells:         makeGrid(b.dims.Height, b.dims.Width),
		shadow:        makeGrid(b.dims.Height, b.dims.Width),
		dirty:         append([]uint64(nil), b.dirty...),
		falling:       append([]int(nil), b.falling...),
		shadowFalling: append([]bool(nil), b.shadowFalling...),
		piece:         b.piece,
		row:           b.row,
		col:           b.col,
	}
	for y := range b.cells {
		copy(c.cells[y], b.cells[y])
		copy(c.shadow[y], b.shadow[y])
	}
	return c
}
