package shape

import "fmt"

// Kind identifies a piece family. Kinds are the domain of the randomizer.
type Kind int

const (
	KindI Kind = iota
	KindO
	KindL
	KindJ
	KindT
	KindS
	KindZ
)

// KindCount is the number of piece kinds.
const KindCount = 7

// String returns the conventional letter of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= KindCount {
		return "?"
	}
	return "IOLJTSZ"[k : k+1]
}

// ID is the stable wire identity of a rotation state.
type ID int

// Offset is the anchor shift applied under rulesets that use spawn offsets.
type Offset struct {
	Row, Col int
}

// State is one orientation of a piece kind.
// CW and CCW link the states of a kind into a closed ring.
type State struct {
	ID       ID
	Kind     Kind
	Block    Block
	Program  Program
	Heading  Dir
	Mirrored bool
	Offset   Offset
	CW       ID
	CCW      ID
}

// Next returns the neighbour in the given rotation direction.
func (s *State) Next(ccw bool) *State {
	if ccw {
		return Lookup(s.CCW)
	}
	return Lookup(s.CW)
}

// RingSize returns the number of distinct orientations of the state's kind.
func (s *State) RingSize() int {
	n := 1
	for next := s.Next(false); next != s; next = next.Next(false) {
		n++
	}
	return n
}

// String returns a debug name such as "T/down".
func (s *State) String() string {
	return fmt.Sprintf("%s/%s", s.Kind, s.Heading)
}

var (
	progLong   = Program{Back, Plot, Forward, Plot, Forward, Plot, Forward, Plot, End}
	progSquare = Program{Plot, Forward, TurnLeft, Plot, Forward, TurnLeft, Plot, Forward, TurnLeft, Plot, End}
	progL      = Program{TurnRight, Back, Plot, Forward, Plot, Forward, Plot, TurnLeft, Forward, Plot, End}
	progT      = Program{Plot, Forward, Plot, Back, TurnRight, Forward, Plot, Back, Back, Plot, End}
	progS      = Program{Back, Plot, Forward, Plot, TurnLeft, Forward, Plot, TurnRight, Forward, Plot, End}
)

// family describes one ring: the states are listed in counterclockwise order
// and share program, block and mirror flag.
type family struct {
	kind     Kind
	block    Block
	program  Program
	mirrored bool
	headings []Dir
	offsets  []Offset
}

// families are listed in wire order. Changing this order changes wire ids.
var families = []family{
	{KindI, Blue, progLong, false,
		[]Dir{Right, Down},
		[]Offset{{-1, 1}, {-1, 2}}},
	{KindO, Magenta, progSquare, false,
		[]Dir{Up},
		[]Offset{{-2, 2}}},
	{KindL, Cyan, progL, false,
		[]Dir{Down, Right, Up, Left},
		[]Offset{{-1, 1}, {-1, 1}, {-2, 1}, {-1, 1}}},
	{KindJ, Yellow, progL, true,
		[]Dir{Down, Right, Up, Left},
		[]Offset{{-1, 1}, {-1, 1}, {-2, 1}, {-1, 1}}},
	{KindT, White, progT, false,
		[]Dir{Down, Right, Up, Left},
		[]Offset{{-1, 1}, {-1, 1}, {-2, 1}, {-1, 1}}},
	{KindS, Green, progS, false,
		[]Dir{Right, Down},
		[]Offset{{-2, 1}, {-1, 0}}},
	{KindZ, Red, progS, true,
		[]Dir{Right, Down},
		[]Offset{{-1, 1}, {-1, 2}}},
}

var (
	catalog   []State
	canonical [KindCount]ID
)

func init() {
	for _, f := range families {
		base := ID(len(catalog))
		n := ID(len(f.headings))
		canonical[f.kind] = base
		for i := range n {
			catalog = append(catalog, State{
				ID:       base + i,
				Kind:     f.kind,
				Block:    f.block,
				Program:  f.program,
				Heading:  f.headings[i],
				Mirrored: f.mirrored,
				Offset:   f.offsets[i],
				CCW:      base + (i+1)%n,
				CW:       base + (i+n-1)%n,
			})
		}
	}
}

// Count returns the number of rotation states in the catalog.
func Count() int {
	return len(catalog)
}

// Valid reports whether id names a rotation state.
func Valid(id ID) bool {
	return id >= 0 && int(id) < len(catalog)
}

// Lookup returns the rotation state with the given wire id.
// An out-of-range id is a caller bug and panics.
func Lookup(id ID) *State {
	if !Valid(id) {
		panic(fmt.Sprintf("shape: rotation state %d out of range [0,%d)", id, len(catalog)))
	}
	return &catalog[id]
}

// IDOf returns the wire id of a state. It is the inverse of Lookup.
func IDOf(s *State) ID {
	return s.ID
}

// Canonical returns the un-rotated spawn state of a kind.
func Canonical(k Kind) *State {
	if k < 0 || int(k) >= KindCount {
		panic(fmt.Sprintf("shape: piece kind %d out of range", k))
	}
	return Lookup(canonical[k])
}

// All returns every rotation state in wire order.
func All() []*State {
	states := make([]*State, len(catalog))
	for i := range catalog {
		states[i] = &catalog[i]
	}
	return states
}
