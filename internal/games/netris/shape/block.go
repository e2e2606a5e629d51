// Package shape holds the piece catalog of the falling-block engine and the
// small turtle-style interpreter that walks a piece's drawing program.
// It has no knowledge of boards: callers supply a Visitor that decides what
// a plotted cell means (draw, erase, collide, visibility).
package shape

// Block is the content of one board cell.
// The sign marks membership in the falling piece: negative while falling,
// positive once settled, zero when empty.
type Block int8

// Block kinds. Wall is only ever returned by reads past the side walls or floor.
const (
	None Block = iota
	White
	Blue
	Magenta
	Cyan
	Yellow
	Green
	Red
	Wall
)

// Junk is the filler used for garbage rows.
const Junk = White

// Abs strips the falling sign.
func (b Block) Abs() Block {
	if b < 0 {
		return -b
	}
	return b
}

// Falling reports whether the cell belongs to the falling piece.
func (b Block) Falling() bool {
	return b < 0
}

// Signed returns the block with the falling sign applied when falling is true.
func (b Block) Signed(falling bool) Block {
	b = b.Abs()
	if falling {
		return -b
	}
	return b
}

// String returns a short name for the block kind.
func (b Block) String() string {
	switch b.Abs() {
	case None:
		return "none"
	case White:
		return "white"
	case Blue:
		return "blue"
	case Magenta:
		return "magenta"
	case Cyan:
		return "cyan"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	case Red:
		return "red"
	case Wall:
		return "wall"
	default:
		return "unknown"
	}
}
