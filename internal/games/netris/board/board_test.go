package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
)

type plot struct {
	row, col int
	b        shape.Block
}

type recorder struct {
	plots   []plot
	markers map[int]bool
}

func newRecorder() *recorder {
	return &recorder{markers: make(map[int]bool)}
}

func (r *recorder) PlotCell(_ ID, row, col int, b shape.Block) {
	r.plots = append(r.plots, plot{row, col, b})
}

func (r *recorder) PlotFallingMarker(_ ID, col int, falling bool) {
	r.markers[col] = falling
}

func newBoard(t *testing.T, rules shape.Ruleset) *Board {
	t.Helper()
	b, err := New(LocalID, DefaultDimensions(), rules)
	require.NoError(t, err)
	return b
}

func fillRow(b *Board, row int, except ...int) {
	skip := make(map[int]bool)
	for _, c := range except {
		skip[c] = true
	}
	for x := 0; x < b.Width(); x++ {
		if !skip[x] {
			b.WriteCell(row, x, shape.White)
		}
	}
}

func TestNewValidatesDimensions(t *testing.T) {
	tests := []struct {
		name string
		dims Dimensions
		ok   bool
	}{
		{"default", DefaultDimensions(), true},
		{"preview", Dimensions{Height: 4, Visible: 4, Width: 14}, true},
		{"widest", Dimensions{Height: 4, Visible: 4, Width: MaxWidth}, true},
		{"too wide", Dimensions{Height: 4, Visible: 4, Width: MaxWidth + 1}, false},
		{"zero width", Dimensions{Height: 4, Visible: 4, Width: 0}, false},
		{"visible above height", Dimensions{Height: 4, Visible: 5, Width: 10}, false},
		{"no visible rows", Dimensions{Height: 4, Visible: 0, Width: 10}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(LocalID, tc.dims, shape.Classic)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidDimensions)
			}
		})
	}
}

func TestReadCellSentinels(t *testing.T) {
	b := newBoard(t, shape.Classic)
	for row := 0; row < b.Height()+2; row++ {
		assert.Equal(t, shape.Wall, b.ReadCell(row, -1))
		assert.Equal(t, shape.Wall, b.ReadCell(row, b.Width()))
	}
	for col := 0; col < b.Width(); col++ {
		assert.Equal(t, shape.None, b.ReadCell(b.Height(), col))
		assert.Equal(t, shape.Wall, b.ReadCell(-1, col))
	}
}

func TestWriteThenReadReturnsSettledKind(t *testing.T) {
	b := newBoard(t, shape.Classic)
	b.WriteCell(3, 4, -shape.Red)
	assert.Equal(t, shape.Red, b.ReadCell(3, 4))
	assert.Equal(t, -shape.Red, b.RawCell(3, 4))

	b.WriteCell(3, 4, shape.Blue)
	assert.Equal(t, shape.Blue, b.ReadCell(3, 4))

	// Out of bounds writes are ignored.
	b.WriteCell(-1, 0, shape.Blue)
	b.WriteCell(0, b.Width(), shape.Blue)
	assert.Equal(t, 1, b.CountOccupiedCells())
}

func TestFallingCounterTracksVisibleRows(t *testing.T) {
	b := newBoard(t, shape.Classic)

	b.WriteCell(0, 2, -shape.Cyan)
	b.WriteCell(1, 2, -shape.Cyan)
	assert.True(t, b.FallingColumn(2))

	b.WriteCell(0, 2, shape.Cyan)
	assert.True(t, b.FallingColumn(2))
	b.WriteCell(1, 2, shape.None)
	assert.False(t, b.FallingColumn(2))

	// Hidden rows do not count.
	b.WriteCell(b.Visible(), 5, -shape.Red)
	assert.False(t, b.FallingColumn(5))
	b.WriteCell(b.Visible(), 5, shape.None)
	assert.False(t, b.FallingColumn(5))
	assert.GreaterOrEqual(t, b.falling[5], 0)
}

func TestPublishEmitsOnlyChangedCellsTopDown(t *testing.T) {
	b := newBoard(t, shape.Classic)
	rec := newRecorder()
	b.SetRenderer(rec)

	assert.False(t, b.PublishChanges(), "fresh board has nothing to publish")

	b.WriteCell(0, 1, shape.Green)
	b.WriteCell(5, 7, shape.Yellow)
	assert.True(t, b.Pending())
	assert.True(t, b.PublishChanges())
	assert.False(t, b.Pending())
	assert.Equal(t, []plot{{5, 7, shape.Yellow}, {0, 1, shape.Green}}, rec.plots)

	rec.plots = nil
	b.WriteCell(0, 1, shape.Green)
	assert.False(t, b.PublishChanges(), "rewriting the same kind plots nothing")
	assert.Empty(t, rec.plots)

	// Hidden rows never reach the renderer.
	b.WriteCell(b.Visible()+1, 0, shape.Red)
	assert.False(t, b.PublishChanges())
	assert.Empty(t, rec.plots)
}

func TestPublishFallingMarkers(t *testing.T) {
	b := newBoard(t, shape.Classic)
	rec := newRecorder()
	b.SetRenderer(rec)

	require.True(t, b.Spawn(shape.Canonical(shape.KindI)))
	require.True(t, b.PublishChanges())
	for _, c := range shape.Cells(shape.Canonical(shape.KindI), shape.Classic, b.Piece().Row, b.Piece().Col) {
		assert.True(t, rec.markers[c.Col], "marker under column %d", c.Col)
	}

	rec.plots = nil
	b.Freeze()
	assert.True(t, b.PublishChanges(), "markers cleared")
	assert.Empty(t, rec.plots, "settling does not change the drawn kind")
	for col, on := range rec.markers {
		assert.False(t, on, "marker under column %d", col)
	}
}

func TestRowObserverSeesSignedRows(t *testing.T) {
	b := newBoard(t, shape.Classic)
	var rows []int
	var seen []shape.Block
	b.SetRowObserver(func(_ ID, row int, cells []shape.Block) {
		rows = append(rows, row)
		seen = append(seen, cells...)
	})

	b.WriteCell(2, 0, -shape.Magenta)
	b.PublishChanges()
	assert.Equal(t, []int{2}, rows)
	require.Len(t, seen, b.Width())
	assert.Equal(t, -shape.Magenta, seen[0])
}

func TestRedrawRepublishesEverything(t *testing.T) {
	b := newBoard(t, shape.Classic)
	b.WriteCell(0, 0, shape.Red)
	b.PublishChanges()

	rec := newRecorder()
	b.SetRenderer(rec)
	b.Redraw()
	assert.True(t, b.PublishChanges())
	assert.Len(t, rec.plots, b.Visible()*b.Width())
	assert.Len(t, rec.markers, b.Width())
}

func TestMoveZeroKeepsAnchor(t *testing.T) {
	for _, rules := range []shape.Ruleset{shape.Classic, shape.TGM} {
		for k := range shape.Kind(shape.KindCount) {
			b := newBoard(t, rules)
			require.True(t, b.Spawn(shape.Canonical(k)))
			before := b.Piece()
			cells := snapshot(b)

			assert.True(t, b.Move(0, 0))
			assert.Equal(t, before, b.Piece())
			assert.Equal(t, cells, snapshot(b))
		}
	}
}

func snapshot(b *Board) [][]shape.Block {
	out := make([][]shape.Block, b.Height())
	for y := range out {
		out[y] = make([]shape.Block, b.Width())
		for x := range out[y] {
			out[y][x] = b.RawCell(y, x)
		}
	}
	return out
}

func TestMoveBlockedByWall(t *testing.T) {
	b := newBoard(t, shape.Classic)
	require.True(t, b.Spawn(shape.Canonical(shape.KindO)))

	moves := 0
	for b.Move(0, -1) {
		moves++
		require.Less(t, moves, b.Width())
	}
	p := b.Piece()
	assert.False(t, b.Move(0, -1))
	assert.Equal(t, p, b.Piece(), "failed move keeps the anchor")
	assert.Equal(t, 4, b.CountOccupiedCells(), "piece re-plotted after the failed move")
}

func TestRotateColumnBounds(t *testing.T) {
	for _, rules := range []shape.Ruleset{shape.Classic, shape.TGM} {
		for k := range shape.Kind(shape.KindCount) {
			b := newBoard(t, rules)
			require.True(t, b.Spawn(shape.Canonical(k)))
			for _, dx := range []int{-1, 1} {
				for range b.Width() {
					b.Move(0, dx)
				}
				for i := range 8 {
					before := b.Piece().Col
					b.Rotate(i%3 == 0)
					delta := b.Piece().Col - before
					if rules == shape.Classic {
						assert.Zero(t, delta, "%s %s", rules, k)
					} else {
						assert.LessOrEqual(t, delta*delta, 1, "%s %s", rules, k)
					}
					assert.Equal(t, 4, b.CountOccupiedCells())
				}
			}
		}
	}
}

func TestRotateWallKick(t *testing.T) {
	b := newBoard(t, shape.TGM)
	require.True(t, b.Spawn(shape.Canonical(shape.KindT)))
	require.True(t, b.Rotate(true))
	require.Equal(t, shape.ID(12), b.Piece().State)

	for b.Move(0, -1) {
	}
	require.Equal(t, -1, b.Piece().Col)

	assert.False(t, b.Rotate(false), "only the kicked position fits")
	assert.Equal(t, shape.ID(11), b.Piece().State)
	assert.Equal(t, 0, b.Piece().Col)
}

func TestRotateClassicHasNoKick(t *testing.T) {
	b := newBoard(t, shape.Classic)
	require.True(t, b.Spawn(shape.Canonical(shape.KindT)))
	require.True(t, b.Rotate(true))

	for b.Move(0, -1) {
	}
	require.Equal(t, 0, b.Piece().Col)

	assert.False(t, b.Rotate(false))
	assert.Equal(t, shape.ID(12), b.Piece().State)
	assert.Equal(t, 0, b.Piece().Col)
}

func TestDropAndFreeze(t *testing.T) {
	b := newBoard(t, shape.Classic)
	require.True(t, b.Spawn(shape.Canonical(shape.KindO)))
	start := b.Piece().Row

	n := b.Drop()
	assert.Equal(t, start, n, "O rests with its anchor on the floor")
	assert.False(t, b.Move(-1, 0))
	assert.Equal(t, 0, b.Drop())

	b.Freeze()
	assert.False(t, b.Piece().Present)
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			assert.GreaterOrEqual(t, b.RawCell(y, x), shape.None)
		}
	}
	assert.Equal(t, 4, b.CountOccupiedCells())
	assert.False(t, b.Move(0, 1), "no active piece")
	assert.Equal(t, 0, b.Drop())
}

func TestSpawnFailureLeavesNoPiece(t *testing.T) {
	b := newBoard(t, shape.Classic)
	for y := 0; y < b.Height(); y++ {
		fillRow(b, y, 0)
	}
	assert.False(t, b.Spawn(shape.Canonical(shape.KindT)))
	assert.False(t, b.Piece().Present)
}

func TestSpawnAnchorIsVisible(t *testing.T) {
	for _, rules := range []shape.Ruleset{shape.Classic, shape.TGM} {
		b := newBoard(t, rules)
		for _, st := range shape.All() {
			row, col := b.SpawnAnchor(st)
			assert.True(t, b.FullyVisible(st, row, col), "%s %s", rules, st)
		}
	}
	b := newBoard(t, shape.TGM)
	row, col := b.SpawnAnchor(shape.Canonical(shape.KindT))
	assert.Equal(t, b.Visible()-1, row)
	assert.Equal(t, 3, col)
}

func TestCollisionStopsAtFirstOccupiedCell(t *testing.T) {
	b := newBoard(t, shape.Classic)
	for _, st := range shape.All() {
		assert.True(t, b.Fits(st, 10, 5), "%s fits on an empty board", st)
	}

	st := shape.Canonical(shape.KindT)
	cells := shape.Cells(st, shape.Classic, 10, 5)
	b.WriteCell(cells[1].Row, cells[1].Col, shape.Red)

	visits := 0
	r := shape.Iterate(st, shape.Classic, 10, 5, false, func(row, col int, v shape.Block) int {
		visits++
		return b.collides(row, col, v)
	})
	assert.NotZero(t, r)
	assert.Equal(t, 2, visits)
	assert.False(t, b.Fits(st, 10, 5))
}

func TestCloneIsIndependent(t *testing.T) {
	b := newBoard(t, shape.Classic)
	b.SetRenderer(newRecorder())
	require.True(t, b.Spawn(shape.Canonical(shape.KindL)))

	c := b.Clone()
	assert.Equal(t, b.Piece(), c.Piece())
	c.Drop()
	c.Freeze()
	assert.True(t, b.Piece().Present)
	assert.NotEqual(t, snapshot(b), snapshot(c))
	assert.Nil(t, c.renderer)
}

func TestResetClearsDisplay(t *testing.T) {
	b := newBoard(t, shape.Classic)
	rec := newRecorder()
	b.SetRenderer(rec)
	fillRow(b, 0)
	b.PublishChanges()

	rec.plots = nil
	b.Reset()
	assert.Zero(t, b.CountOccupiedCells())
	assert.True(t, b.PublishChanges())
	assert.Len(t, rec.plots, b.Width())
	for _, p := range rec.plots {
		assert.Equal(t, shape.None, p.b)
	}
}

func TestLanded(t *testing.T) {
	b := newBoard(t, shape.Classic)
	assert.False(t, b.Landed(), "no active piece")

	require.True(t, b.Spawn(shape.Canonical(shape.KindI)))
	assert.False(t, b.Landed())
	before := snapshot(b)
	b.Landed()
	assert.Equal(t, before, snapshot(b), "probing leaves the piece plotted")

	b.Drop()
	assert.True(t, b.Landed())
}
