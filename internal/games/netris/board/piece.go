package board

import "github.com/vovakirdan/tui-netris/internal/games/netris/shape"

// Piece describes the active piece of a board.
type Piece struct {
	State   shape.ID
	Row     int
	Col     int
	Present bool
}

// Piece returns the active piece. Present is false between Freeze and the
// next successful Spawn.
func (b *Board) Piece() Piece {
	if b.piece == nil {
		return Piece{}
	}
	return Piece{State: b.piece.ID, Row: b.row, Col: b.col, Present: true}
}

// ActiveState returns the rotation state of the active piece, or nil.
func (b *Board) ActiveState() *shape.State {
	return b.piece
}

// Plot writes st at (row, col), signed as falling when falling is set.
func (b *Board) Plot(st *shape.State, row, col int, falling bool) {
	shape.Iterate(st, b.rules, row, col, falling, func(r, c int, v shape.Block) int {
		b.WriteCell(r, c, v)
		return 0
	})
}

// Erase empties the cells st covers at (row, col).
func (b *Board) Erase(st *shape.State, row, col int) {
	shape.Iterate(st, b.rules, row, col, false, func(r, c int, _ shape.Block) int {
		b.WriteCell(r, c, shape.None)
		return 0
	})
}

// Fits reports whether st can occupy (row, col) without touching a wall,
// the floor or an occupied cell.
func (b *Board) Fits(st *shape.State, row, col int) bool {
	return shape.Iterate(st, b.rules, row, col, false, b.collides) == 0
}

func (b *Board) collides(row, col int, _ shape.Block) int {
	if b.ReadCell(row, col) != shape.None {
		return 1
	}
	return 0
}

// FullyVisible reports whether every cell of st at (row, col) lies inside the
// visible playing field.
func (b *Board) FullyVisible(st *shape.State, row, col int) bool {
	return shape.Iterate(st, b.rules, row, col, false, func(r, c int, _ shape.Block) int {
		if r < 0 || r >= b.dims.Visible || c < 0 || c >= b.dims.Width {
			return 1
		}
		return 0
	}) == 0
}

// SpawnAnchor returns the anchor a new piece of state st enters at.
// The anchor is lowered row by row until the whole shape is visible.
func (b *Board) SpawnAnchor(st *shape.State) (row, col int) {
	switch b.rules {
	case shape.TGM:
		row, col = b.dims.Visible-1, (b.dims.Width-3)/2
	default:
		row, col = b.dims.Visible+4, b.dims.Width/2
	}
	for limit := row + 4; limit >= 0 && !b.FullyVisible(st, row, col); limit-- {
		row--
	}
	return row, col
}

// Spawn places st at the spawn anchor as the falling piece. When the shape
// does not fit the board is left without an active piece and Spawn reports
// false; the caller decides what that means.
func (b *Board) Spawn(st *shape.State) bool {
	row, col := b.SpawnAnchor(st)
	if !b.Fits(st, row, col) {
		b.piece = nil
		return false
	}
	b.piece, b.row, b.col = st, row, col
	b.Plot(st, row, col, true)
	return true
}

// Move shifts the active piece by (dRow, dCol) if the target fits.
// The piece is re-plotted at whichever anchor is current afterwards.
func (b *Board) Move(dRow, dCol int) bool {
	if b.piece == nil {
		return false
	}
	b.Erase(b.piece, b.row, b.col)
	ok := b.Fits(b.piece, b.row+dRow, b.col+dCol)
	if ok {
		b.row += dRow
		b.col += dCol
	}
	b.Plot(b.piece, b.row, b.col, true)
	return ok
}

// Rotate turns the active piece one step, counterclockwise when ccw is set.
// Under TGM a blocked rotation is retried one column left, then one column
// right. The result reports whether the rotation fit without a kick.
func (b *Board) Rotate(ccw bool) bool {
	if b.piece == nil {
		return false
	}
	target := b.piece.Next(ccw)
	b.Erase(b.piece, b.row, b.col)

	ok := b.Fits(target, b.row, b.col)
	switch {
	case ok:
		b.piece = target
	case b.rules.Kicks():
		for _, shift := range [...]int{-1, 1} {
			if b.Fits(target, b.row, b.col+shift) {
				b.piece = target
				b.col += shift
				break
			}
		}
	}

	b.Plot(b.piece, b.row, b.col, true)
	return ok
}

// Drop moves the active piece down as far as it fits and returns the number
// of rows it fell.
func (b *Board) Drop() int {
	if b.piece == nil {
		return 0
	}
	b.Erase(b.piece, b.row, b.col)
	n := 0
	for b.Fits(b.piece, b.row-1, b.col) {
		b.row--
		n++
	}
	b.Plot(b.piece, b.row, b.col, true)
	return n
}

// Freeze settles every falling cell in place and ends the active piece.
func (b *Board) Freeze() {
	for y := range b.cells {
		for x, v := range b.cells[y] {
			if v < 0 {
				b.WriteCell(y, x, -v)
			}
		}
	}
	b.piece = nil
}

// Landed reports whether the active piece rests on the floor or on a
// settled cell, so that gravity can no longer move it.
func (b *Board) Landed() bool {
	if b.piece == nil {
		return false
	}
	b.Erase(b.piece, b.row, b.col)
	free := b.Fits(b.piece, b.row-1, b.col)
	b.Plot(b.piece, b.row, b.col, true)
	return !free
}
