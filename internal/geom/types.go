package geom

import "image"

// Box is a rectangle given by its inclusive corner pixels, the way
// rectangle outlines and grid cells are addressed on screen.
type Box struct {
	X0 int
	Y0 int
	X1 int
	Y1 int
}

// Dx returns the number of pixels covered horizontally.
func (b Box) Dx() int { return b.X1 - b.X0 + 1 }

// Dy returns the number of pixels covered vertically.
func (b Box) Dy() int { return b.Y1 - b.Y0 + 1 }

// Rectangle converts the box to a half-open image.Rectangle.
func (b Box) Rectangle() image.Rectangle {
	return image.Rect(b.X0, b.Y0, b.X1+1, b.Y1+1)
}
