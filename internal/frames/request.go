package frames

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mchughj/PixelArt/internal/view"
)

// DefaultDelay is the per-frame delay in milliseconds.
const DefaultDelay = 75

// ErrInvalidRequest is returned by Request.Validate.
var ErrInvalidRequest = errors.New("invalid export request")

// Request describes one export. It is built from a controller snapshot
// and owns that copy of the image.
type Request struct {
	Snapshot view.Snapshot

	StartX  int
	StartY  int
	StrideX int
	StrideY int

	FrameCount int
	// DelayMS is the display time of every frame.
	DelayMS int
	// Columns is the number of tile columns, counted from x=0, before
	// the cursor wraps to the next row.
	Columns int
	Output  string
}

// NewRequest fills a request with defaults derived from the snapshot: a
// tile-sized stride, every whole column of the image, and enough frames to
// reach the end of the current row.
func NewRequest(snap view.Snapshot) Request {
	r := Request{
		Snapshot: snap,
		StartX:   snap.Offset.X,
		StartY:   snap.Offset.Y,
		StrideX:  snap.TileWidth,
		StrideY:  snap.TileHeight,
		DelayMS:  DefaultDelay,
		Output:   defaultOutput(snap.Path),
	}
	if snap.Image != nil && snap.TileWidth > 0 {
		r.Columns = max(1, snap.Image.Width()/snap.TileWidth)
		r.FrameCount = max(1, (r.Columns*snap.TileWidth-r.StartX-snap.TileWidth)/snap.TileWidth+1)
	}
	return r
}

func defaultOutput(src string) string {
	if src == "" {
		return "animation.gif"
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(filepath.Dir(src), base+"-anim.gif")
}

// Validate reports the first unusable field.
func (r Request) Validate() error {
	switch {
	case r.Snapshot.Image == nil:
		return fmt.Errorf("%w: no image", ErrInvalidRequest)
	case r.Snapshot.TileWidth <= 0 || r.Snapshot.TileHeight <= 0:
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalidRequest, r.Snapshot.TileWidth, r.Snapshot.TileHeight)
	case r.FrameCount <= 0:
		return fmt.Errorf("%w: frame count %d", ErrInvalidRequest, r.FrameCount)
	case r.StrideX < 0 || r.StrideY < 0:
		return fmt.Errorf("%w: stride %d,%d", ErrInvalidRequest, r.StrideX, r.StrideY)
	case r.DelayMS < 0:
		return fmt.Errorf("%w: delay %dms", ErrInvalidRequest, r.DelayMS)
	case r.Columns <= 0:
		return fmt.Errorf("%w: %d columns", ErrInvalidRequest, r.Columns)
	case !strings.EqualFold(filepath.Ext(r.Output), ".gif"):
		return fmt.Errorf("%w: output %q is not a .gif file", ErrInvalidRequest, r.Output)
	}
	return nil
}

// Spec is the sequencer walk this request exports.
func (r Request) Spec() Spec {
	s := Spec{
		StartX:     r.StartX,
		StartY:     r.StartY,
		StrideX:    r.StrideX,
		StrideY:    r.StrideY,
		BoundaryX:  r.Columns * r.Snapshot.TileWidth,
		TileWidth:  r.Snapshot.TileWidth,
		TileHeight: r.Snapshot.TileHeight,
		Limit:      r.FrameCount,
	}
	if r.Snapshot.Image != nil {
		s.ImageWidth = r.Snapshot.Image.Width()
		s.ImageHeight = r.Snapshot.Image.Height()
	}
	return s
}
