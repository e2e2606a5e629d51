package netris

import (
	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/games/netris/board"
	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
	"github.com/vovakirdan/tui-netris/internal/multiplayer"
)

// NoPiece marks an absent piece in a snapshot.
const NoPiece = -1

// PlayerSnapshot is the state of one side. Cells are signed block values,
// row 0 first, over the whole board height; pieces are wire ids.
type PlayerSnapshot struct {
	Cells   [][]int8
	Visible int
	Piece   int
	Row     int
	Col     int
	Next    int
	Score   int
	Lines   int
	Level   int
	Over    bool
}

// Snapshot is the state of a game after a tick. It only holds plain
// values so it can cross a transport unchanged.
type Snapshot struct {
	Tick     uint64
	Players  []PlayerSnapshot
	GameOver bool
	Winner   core.PlayerID
}

// IsGameSnapshot marks Snapshot as a match payload.
func (Snapshot) IsGameSnapshot() {}

var _ multiplayer.GameSnapshot = Snapshot{}

func snapshotOf(p *player) PlayerSnapshot {
	b := p.board
	cells := make([][]int8, b.Height())
	for y := range cells {
		cells[y] = make([]int8, b.Width())
		for x := range cells[y] {
			cells[y][x] = int8(b.RawCell(y, x))
		}
	}
	ps := PlayerSnapshot{
		Cells:   cells,
		Visible: b.Visible(),
		Piece:   NoPiece,
		Next:    NoPiece,
		Score:   p.score,
		Lines:   p.lines,
		Level:   p.level(),
		Over:    p.over,
	}
	if piece := b.Piece(); piece.Present {
		ps.Piece, ps.Row, ps.Col = int(piece.State), piece.Row, piece.Col
	}
	if p.next != nil {
		ps.Next = int(p.next.ID)
	}
	return ps
}

// mirror copies a snapshot grid into b through WriteCell, touching only
// the cells that differ, so the next publish redraws just those.
func mirror(b *board.Board, cells [][]int8) {
	for y := 0; y < min(len(cells), b.Height()); y++ {
		for x := 0; x < min(len(cells[y]), b.Width()); x++ {
			v := shape.Block(cells[y][x])
			if b.RawCell(y, x) != v {
				b.WriteCell(y, x, v)
			}
		}
	}
}

// stateOf resolves a wire id, returning nil for NoPiece or junk input.
func stateOf(id int) *shape.State {
	if !shape.Valid(shape.ID(id)) {
		return nil
	}
	return shape.Lookup(shape.ID(id))
}
