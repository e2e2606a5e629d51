package board

import "github.com/vovakirdan/tui-netris/internal/games/netris/shape"

// PublishChanges flushes pending changes to the renderer. Visible rows are
// processed from the top down; only cells whose settled kind differs from
// the last published value are plotted. Falling markers follow the rows.
// It reports whether anything was plotted.
func (b *Board) PublishChanges() bool {
	drawn := false

	for y := b.dims.Visible - 1; y >= 0; y-- {
		mask := b.dirty[y]
		if mask == 0 {
			continue
		}
		b.dirty[y] = 0
		if b.observer != nil {
			b.observer(b.id, y, b.cells[y])
		}
		for x := 0; mask != 0; x, mask = x+1, mask>>1 {
			if mask&1 == 0 {
				continue
			}
			v := b.cells[y][x].Abs()
			if v == b.shadow[y][x] {
				continue
			}
			b.shadow[y][x] = v
			if b.renderer != nil {
				b.renderer.PlotCell(b.id, y, x, v)
			}
			drawn = true
		}
	}

	// Hidden rows are never drawn; forget their pending bits.
	for y := b.dims.Visible; y < b.dims.Height; y++ {
		b.dirty[y] = 0
	}

	for x := 0; x < b.dims.Width; x++ {
		f := b.falling[x] > 0
		if f == b.shadowFalling[x] {
			continue
		}
		b.shadowFalling[x] = f
		if b.renderer != nil {
			b.renderer.PlotFallingMarker(b.id, x, f)
		}
		drawn = true
	}
	return drawn
}

// Pending reports whether any visible row has unpublished changes.
func (b *Board) Pending() bool {
	for y := 0; y < b.dims.Visible; y++ {
		if b.dirty[y] != 0 {
			return true
		}
	}
	return false
}

// Redraw marks every visible cell dirty and forgets the published shadow,
// forcing the next publish to plot the whole board. Used when a new
// renderer is attached mid-game.
func (b *Board) Redraw() {
	for y := 0; y < b.dims.Visible; y++ {
		for x := range b.shadow[y] {
			b.shadow[y][x] = shape.Wall
		}
		b.dirty[y] = fullMask(b.dims.Width)
	}
	for x := range b.shadowFalling {
		b.shadowFalling[x] = !(b.falling[x] > 0)
	}
}

func fullMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(width) - 1
}
