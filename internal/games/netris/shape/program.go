package shape

// Cmd is one primitive instruction of a drawing program.
type Cmd uint8

const (
	End Cmd = iota
	Forward
	Back
	TurnLeft
	TurnRight
	Plot
)

// Program is a drawing program. Programs are shared by every rotation state
// of a piece family, including mirrored ones.
type Program []Cmd

// Dir is the heading of the drawing cursor.
type Dir uint8

const (
	Down Dir = iota
	Right
	Up
	Left
)

// step moves (row, col) dist cells along d. Row 0 is the bottom of a board.
func (d Dir) step(dist, row, col int) (int, int) {
	switch d {
	case Down:
		return row - dist, col
	case Right:
		return row, col + dist
	case Up:
		return row + dist, col
	default:
		return row, col - dist
	}
}

// turn rotates the heading by delta quarter turns; positive is counterclockwise.
func (d Dir) turn(delta int) Dir {
	return Dir((int(d) + delta) & 3)
}

// String returns the heading name.
func (d Dir) String() string {
	switch d {
	case Down:
		return "down"
	case Right:
		return "right"
	case Up:
		return "up"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Visitor is invoked for every plotted cell. A non-zero return stops the walk
// and is returned by Iterate.
type Visitor func(row, col int, b Block) int

// Iterate walks the program of st starting at the anchor (row, col).
// Under a ruleset that uses offsets the rotation state's offset is added to
// the anchor first. The block passed to visit is negative when falling is set.
func Iterate(st *State, rules Ruleset, row, col int, falling bool, visit Visitor) int {
	if rules.UsesOffsets() {
		row += st.Offset.Row
		col += st.Offset.Col
	}
	dir := st.Heading
	mirror := 1
	if st.Mirrored {
		mirror = -1
	}
	block := st.Block.Signed(falling)

	for _, c := range st.Program {
		switch c {
		case Forward:
			row, col = dir.step(1, row, col)
		case Back:
			row, col = dir.step(-1, row, col)
		case TurnLeft:
			dir = dir.turn(mirror)
		case TurnRight:
			dir = dir.turn(-mirror)
		case Plot:
			if r := visit(row, col, block); r != 0 {
				return r
			}
		case End:
			return 0
		default:
			panic("shape: invalid program command")
		}
	}
	return 0
}

// Cell is a board coordinate.
type Cell struct {
	Row, Col int
}

// Cells returns the cells st covers when anchored at (row, col).
func Cells(st *State, rules Ruleset, row, col int) []Cell {
	cells := make([]Cell, 0, 4)
	Iterate(st, rules, row, col, false, func(r, c int, _ Block) int {
		cells = append(cells, Cell{Row: r, Col: c})
		return 0
	})
	return cells
}
