package board

import "github.com/vovakirdan/tui-netris/internal/games/netris/shape"

// LineIsFull reports whether every column of row is occupied.
func (b *Board) LineIsFull(row int) bool {
	for x := 0; x < b.dims.Width; x++ {
		if b.ReadCell(row, x) == shape.None {
			return false
		}
	}
	return true
}

// copyLine copies the settled contents of row from into row to.
func (b *Board) copyLine(from, to int) {
	if from == to {
		return
	}
	for x := 0; x < b.dims.Width; x++ {
		b.WriteCell(to, x, b.ReadCell(from, x))
	}
}

// ClearFullLines removes every full row, compacting the rows above it
// downwards, and returns how many were removed. The write cursor runs to
// the top of the board and reads above the ceiling are empty, so vacated
// top rows end up cleared.
func (b *Board) ClearFullLines() int {
	from, to := 0, 0
	for to < b.dims.Height {
		for from < b.dims.Height && b.LineIsFull(from) {
			from++
		}
		b.copyLine(from, to)
		from++
		to++
	}
	return from - to
}

// CheckBravo reports a perfect clear: the floor row holds nothing.
// Settled cells always rest on the floor or on other cells, so an empty
// floor row means an empty board.
func (b *Board) CheckBravo() bool {
	for x := 0; x < b.dims.Width; x++ {
		if b.ReadCell(0, x) != shape.None {
			return false
		}
	}
	return true
}

// InsertJunk pushes count rows of junk in from the floor, each with a hole
// at column. The active piece rides up with the board.
func (b *Board) InsertJunk(count, column int) {
	if count <= 0 {
		return
	}
	count = min(count, b.dims.Height)

	if b.piece != nil {
		b.Erase(b.piece, b.row, b.col)
	}
	for y := b.dims.Height - count - 1; y >= 0; y-- {
		b.copyLine(y, y+count)
	}
	for y := 0; y < count; y++ {
		for x := 0; x < b.dims.Width; x++ {
			v := shape.Junk
			if x == column {
				v = shape.None
			}
			b.WriteCell(y, x, v)
		}
	}
	if b.piece != nil {
		b.row += count
		b.Plot(b.piece, b.row, b.col, true)
	}
}
