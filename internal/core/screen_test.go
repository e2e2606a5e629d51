package core

import "testing"

func TestNewScreenIsBlank(t *testing.T) {
	s := NewScreen(8, 3)
	if s.Width() != 8 || s.Height() != 3 {
		t.Fatalf("size = %dx%d, expected 8x3", s.Width(), s.Height())
	}
	for y := 0; y < s.Height(); y++ {
		if got := s.Row(y); got != "        " {
			t.Errorf("Row(%d) = %q, expected blanks", y, got)
		}
	}
}

func TestScreenSetGetBounds(t *testing.T) {
	s := NewScreen(4, 4)
	s.Set(1, 2, 'X')
	if s.Get(1, 2) != 'X' {
		t.Errorf("Get(1, 2) = %q, expected 'X'", s.Get(1, 2))
	}

	for _, p := range [][2]int{{-1, 0}, {4, 0}, {0, -1}, {0, 4}} {
		s.Set(p[0], p[1], 'A')
		if s.Get(p[0], p[1]) != ' ' {
			t.Errorf("Get(%d, %d) out of bounds should be a space", p[0], p[1])
		}
	}
}

func TestScreenColors(t *testing.T) {
	s := NewScreen(6, 1)
	s.DrawTextColor(1, 0, "ab", ColorRed)
	s.Set(4, 0, 'z')

	tests := []struct {
		x    int
		want  Cell
	}{
		{0, Cell{Rune: ' '}},
		{1, Cell{Rune: 'a', Color: ColorRed}},
		{2, Cell{Rune: 'b', Color: ColorRed}},
		{4, Cell{Rune: 'z'}},
	}
	for _, tc := range tests {
		if got := s.GetCell(tc.x, 0); got != tc.want {
			t.Errorf("GetCell(%d, 0) = %+v, expected %+v", tc.x, got, tc.want)
		}
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawBox(NewRect(0, 0, 4, 3), ColorGray)

	want := "┌──┐\n│  │\n└──┘"
	if got := s.String(); got != want {
		t.Errorf("box =\n%s\nexpected\n%s", got, want)
	}
	if s.GetCell(0, 0).Color != ColorGray {
		t.Error("box corners should carry the box colour")
	}
}

func TestScreenResizeKeepsContent(t *testing.T) {
	s := NewScreen(4, 2)
	s.DrawText(0, 0, "abcd")
	s.DrawText(0, 1, "efgh")

	s.Resize(2, 3)
	if got := s.String(); got != "ab\nef\n  " {
		t.Errorf("after resize = %q", got)
	}
}

func TestScreenCopyFrom(t *testing.T) {
	src := NewScreen(3, 1)
	src.DrawTextColor(0, 0, "xyz", ColorCyan)

	dst := NewScreen(2, 2)
	dst.CopyFrom(src)
	if dst.Row(0) != "xy" || dst.Row(1) != "  " {
		t.Errorf("copy = %q / %q", dst.Row(0), dst.Row(1))
	}
	if dst.GetCell(1, 0).Color != ColorCyan {
		t.Error("copy should keep colours")
	}

	// The copy is independent of its source.
	src.Set(0, 0, 'q')
	if dst.Get(0, 0) != 'x' {
		t.Error("copy aliases its source")
	}
}

func TestDrawTextCenteredCountsRunes(t *testing.T) {
	s := NewScreen(7, 1)
	s.DrawTextCentered(0, "ééé")
	if got := s.Row(0); got != "  ééé  " {
		t.Errorf("centered = %q", got)
	}
}
