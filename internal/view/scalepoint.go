package view

import "image"

// noScaleConstraint is the ratio used while neither axis has constrained
// the rescale yet.
const noScaleConstraint = 100.0

// ScaleOutcome says what MarkScalePoint did.
type ScaleOutcome int

const (
	// ScaleMarked means the first point was recorded.
	ScaleMarked ScaleOutcome = iota
	// ScaleApplied means the image was rescaled from the marked pair.
	ScaleApplied
	// ScaleSkipped means the pair gave no usable ratio or the rescale was rejected.
	ScaleSkipped
)

func (o ScaleOutcome) String() string {
	switch o {
	case ScaleMarked:
		return "marked"
	case ScaleApplied:
		return "applied"
	default:
		return "skipped"
	}
}

// scalePoint is either idle or holds the offset marked first.
type scalePoint struct {
	point  image.Point
	marked bool
}

func (s *scalePoint) set(p image.Point) {
	s.point = p
	s.marked = true
}

// take returns the marked point, if any, and goes back to idle.
func (s *scalePoint) take() (image.Point, bool) {
	p, ok := s.point, s.marked
	*s = scalePoint{}
	return p, ok
}

// scaleRatio returns the factor that shrinks the region spanning a to b,
// plus one tile, down to a single tile. An axis whose span is not
// positive does not constrain the result; with neither axis usable no
// ratio is found.
func scaleRatio(a, b, tile image.Point) (float64, bool) {
	width := b.X - a.X + tile.X
	height := b.Y - a.Y + tile.Y

	ratio := noScaleConstraint
	found := false
	if width > 0 {
		ratio = float64(tile.X) / float64(width)
		found = true
	}
	if height > 0 {
		ratio = min(ratio, float64(tile.Y)/float64(height))
		found = true
	}
	return ratio, found
}
