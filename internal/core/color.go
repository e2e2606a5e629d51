package core

// Color is the foreground colour of a screen cell. Front-ends map it to
// whatever their terminal library understands.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorGray
	ColorBrightWhite
)
