package core

import "testing"

func TestRectEdges(t *testing.T) {
	tests := []struct {
		r             Rect
		right, bottom int
	}{
		{NewRect(2, 3, 4, 5), 6, 8},
		{NewRect(0, 0, 1, 20), 1, 20},
		{NewRect(5, 5, 0, 0), 5, 5},
	}
	for _, tc := range tests {
		if tc.r.Right() != tc.right || tc.r.Bottom() != tc.bottom {
			t.Errorf("%+v edges = (%d, %d), expected (%d, %d)", tc.r, tc.r.Right(), tc.r.Bottom(), tc.right, tc.bottom)
		}
	}
}
