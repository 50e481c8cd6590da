// Package frames enumerates tile rectangles across a sprite sheet and
// exports them as a looping animated GIF.
package frames

import (
	"errors"
	"fmt"
	"image"

	"github.com/mchughj/PixelArt/internal/geom"
)

var (
	// ErrFrameOutOfBounds is returned for a single frame whose tile lies
	// outside the image. The sequence itself carries on.
	ErrFrameOutOfBounds = errors.New("frame out of bounds")
	// ErrExhausted is returned once a limited sequence has produced all frames.
	ErrExhausted = errors.New("frame sequence exhausted")
)

// Wrap is the cursor movement that followed a frame.
type Wrap int

const (
	// WrapNone means the cursor stepped right by the horizontal stride.
	WrapNone Wrap = iota
	// WrapRow means the cursor went back to x=0 on the next row.
	WrapRow
	// WrapOrigin means the cursor ran off the bottom and restarted at (0, 0).
	WrapOrigin
)

func (w Wrap) String() string {
	switch w {
	case WrapRow:
		return "row"
	case WrapOrigin:
		return "origin"
	default:
		return "none"
	}
}

// Spec fixes everything a Sequencer needs.
type Spec struct {
	StartX int
	StartY int

	StrideX int
	StrideY int
	// BoundaryX is the absolute pixel column a tile may not cross before
	// the cursor wraps to the next row.
	BoundaryX int

	TileWidth   int
	TileHeight  int
	ImageWidth  int
	ImageHeight int

	// Limit is the number of frames to produce; 0 never stops.
	Limit int
}

// Frame is one tile of the sequence.
type Frame struct {
	Index int
	Rect  image.Rectangle
	Wrap  Wrap
}

// Sequencer walks a cursor over the image, one tile per call to Next. The
// walk is cyclic; restarting means building a new Sequencer.
type Sequencer struct {
	spec Spec
	x, y int
	n    int
}

func NewSequencer(spec Spec) *Sequencer {
	return &Sequencer{spec: spec, x: spec.StartX, y: spec.StartY}
}

// Next returns the tile under the cursor and advances it. A tile outside
// the image is returned along with ErrFrameOutOfBounds.
func (s *Sequencer) Next() (Frame, error) {
	if s.spec.Limit > 0 && s.n >= s.spec.Limit {
		return Frame{}, ErrExhausted
	}
	f := Frame{
		Index: s.n,
		Rect:  geom.TileRect(s.x, s.y, s.spec.TileWidth, s.spec.TileHeight),
	}
	s.n++
	f.Wrap = s.advance()

	bounds := image.Rect(0, 0, s.spec.ImageWidth, s.spec.ImageHeight)
	if !f.Rect.In(bounds) {
		return f, fmt.Errorf("%w: frame %d at %v", ErrFrameOutOfBounds, f.Index, f.Rect.Min)
	}
	return f, nil
}

func (s *Sequencer) advance() Wrap {
	s.x += s.spec.StrideX
	if s.x+s.spec.TileWidth <= s.spec.BoundaryX {
		return WrapNone
	}
	s.x = 0
	s.y += s.spec.StrideY
	if s.y+s.spec.TileHeight <= s.spec.ImageHeight {
		return WrapRow
	}
	s.x, s.y = 0, 0
	return WrapOrigin
}
