// Package core holds the small platform-neutral types shared by the engine,
// the game loop and the front-ends: the screen buffer, input frames and
// runtime configuration. It imports nothing outside the standard library.
package core

// Rect is a screen-space rectangle.
type Rect struct {
	X, Y int
	W, H int
}

// NewRect creates a rectangle.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int {
	return r.Y + r.H
}
