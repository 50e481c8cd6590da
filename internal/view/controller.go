// Package view holds the navigation state of the viewer: the loaded image,
// the viewport offset and the two-step scale marker. Every command clamps
// the offset and re-derives the display geometry.
package view

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"math"

	"github.com/mchughj/PixelArt/internal/geom"
	"github.com/mchughj/PixelArt/internal/imgio"
)

var (
	// ErrNoImage is returned by commands that need a loaded image.
	ErrNoImage = errors.New("no image loaded")
	// ErrInvalidScale is returned for scale factors that are not positive and finite.
	ErrInvalidScale = errors.New("invalid scale factor")
)

// Direction is a pan direction.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Snapshot is a private copy of the controller state taken for export.
type Snapshot struct {
	Image      *imgio.Buffer
	Path       string
	Offset     image.Point
	TileWidth  int
	TileHeight int
}

// Controller owns the image buffer and the viewport offset. It is not
// safe for concurrent use; commands are applied one at a time.
type Controller struct {
	cfg    Config
	logger *log.Logger

	img     *imgio.Buffer
	path    string
	offset  image.Point
	scale   float64
	mark    scalePoint
	display Display

	redraw func(Display)
}

// New returns a controller with no image loaded. A nil logger discards output.
func New(cfg Config, logger *log.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{cfg: cfg, logger: logger, scale: 1}, nil
}

// OnRedraw registers fn to be called with the new geometry after every
// command that changes what is displayed.
func (c *Controller) OnRedraw(fn func(Display)) { c.redraw = fn }

func (c *Controller) Config() Config { return c.cfg }

// Loaded reports whether an image is loaded.
func (c *Controller) Loaded() bool { return c.img != nil }

// Path is the file the current image was loaded from, if any.
func (c *Controller) Path() string { return c.path }

// Image returns the current buffer. Callers must not modify it.
func (c *Controller) Image() *imgio.Buffer { return c.img }

func (c *Controller) Offset() image.Point { return c.offset }

// Scale is the product of all rescale factors applied since the last load.
func (c *Controller) Scale() float64 { return c.scale }

func (c *Controller) Display() Display { return c.display }

// Load replaces the image and resets the offset. On error the previous
// state is kept.
func (c *Controller) Load(buf *imgio.Buffer) error {
	return c.load(buf, "")
}

// LoadFile decodes path and loads it.
func (c *Controller) LoadFile(path string) error {
	buf, err := imgio.Load(path)
	if err != nil {
		return err
	}
	return c.load(buf, path)
}

func (c *Controller) load(buf *imgio.Buffer, path string) error {
	if buf == nil || (buf.Channels() != 3 && buf.Channels() != 4) {
		return imgio.ErrUnsupportedImageFormat
	}
	if _, err := geom.ClampPoint(image.Point{}, buf.Size(), c.cfg.TileSize()); err != nil {
		return err
	}
	c.img = buf
	c.path = path
	c.offset = image.Point{}
	c.scale = 1
	c.mark = scalePoint{}
	c.logger.Printf("loaded %q: %dx%d, %d channels", path, buf.Width(), buf.Height(), buf.Channels())
	c.refresh()
	return nil
}

// Move shifts the offset by (dx, dy) and clamps it to the image.
func (c *Controller) Move(dx, dy int) error {
	if c.img == nil {
		return ErrNoImage
	}
	p, err := geom.ClampPoint(c.offset.Add(image.Pt(dx, dy)), c.img.Size(), c.cfg.TileSize())
	if err != nil {
		return err
	}
	c.offset = p
	c.refresh()
	return nil
}

// Pan moves one pixel in dir, or one whole tile when fast is set.
func (c *Controller) Pan(dir Direction, fast bool) error {
	stepX, stepY := 1, 1
	if fast {
		stepX, stepY = c.cfg.TileWidth, c.cfg.TileHeight
	}
	switch dir {
	case Left:
		return c.Move(-stepX, 0)
	case Right:
		return c.Move(stepX, 0)
	case Up:
		return c.Move(0, -stepY)
	case Down:
		return c.Move(0, stepY)
	}
	return fmt.Errorf("unknown direction %d", dir)
}

// SetOffset moves the viewport to an absolute offset, clamped to the image.
func (c *Controller) SetOffset(x, y int) error {
	if c.img == nil {
		return ErrNoImage
	}
	return c.Move(x-c.offset.X, y-c.offset.Y)
}

// Rescale resamples the image by factor on both axes. Factors that would
// leave the image smaller than one tile are rejected without any change.
// Repeated rescales drift by rounding; that is accepted.
func (c *Controller) Rescale(factor float64) error {
	if c.img == nil {
		return ErrNoImage
	}
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidScale, factor)
	}
	w, h := float64(c.img.Width()), float64(c.img.Height())
	if w*factor < float64(c.cfg.TileWidth) || h*factor < float64(c.cfg.TileHeight) {
		c.logger.Printf("rescale by %g rejected for %gx%g image", factor, w, h)
		return fmt.Errorf("%w: rescale by %g would make viewport too small", geom.ErrImageTooSmall, factor)
	}
	scaled, err := imgio.Scale(c.img, factor)
	if err != nil {
		return err
	}
	off := image.Pt(
		int(math.Floor(float64(c.offset.X)*factor)),
		int(math.Floor(float64(c.offset.Y)*factor)),
	)
	off, err = geom.ClampPoint(off, scaled.Size(), c.cfg.TileSize())
	if err != nil {
		return err
	}
	c.img = scaled
	c.offset = off
	c.scale *= factor
	c.logger.Printf("rescaled by %g to %dx%d", factor, scaled.Width(), scaled.Height())
	c.refresh()
	return nil
}

// MarkScalePoint drives the two-step interactive rescale. The first call
// records the current offset. The second call rescales so that the span
// from the recorded offset to the current one, plus a tile, fits one tile,
// and leaves the viewport at the recorded offset. The marker is cleared
// after the second call whatever the outcome.
func (c *Controller) MarkScalePoint() (ScaleOutcome, error) {
	if c.img == nil {
		return ScaleSkipped, ErrNoImage
	}
	a, ok := c.mark.take()
	if !ok {
		c.mark.set(c.offset)
		c.logger.Printf("scale point marked at %v", c.offset)
		return ScaleMarked, nil
	}
	ratio, ok := scaleRatio(a, c.offset, c.cfg.TileSize())
	if !ok {
		return ScaleSkipped, nil
	}
	prev := c.offset
	c.offset = a
	if err := c.Rescale(ratio); err != nil {
		c.offset = prev
		return ScaleSkipped, err
	}
	return ScaleApplied, nil
}

// ScalePoint returns the marked offset while the first point is pending.
func (c *Controller) ScalePoint() (image.Point, bool) {
	return c.mark.point, c.mark.marked
}

// CancelScalePoint drops a pending marker.
func (c *Controller) CancelScalePoint() { c.mark = scalePoint{} }

// Snapshot copies the image and offset so an export is unaffected by
// later navigation.
func (c *Controller) Snapshot() (Snapshot, error) {
	if c.img == nil {
		return Snapshot{}, ErrNoImage
	}
	return Snapshot{
		Image:      c.img.Clone(),
		Path:       c.path,
		Offset:     c.offset,
		TileWidth:  c.cfg.TileWidth,
		TileHeight: c.cfg.TileHeight,
	}, nil
}

// Tile copies the pixels currently under the viewport.
func (c *Controller) Tile() (*image.NRGBA, error) {
	if c.img == nil {
		return nil, ErrNoImage
	}
	tile, ok := c.img.Crop(c.display.Tile)
	if !ok {
		return nil, fmt.Errorf("tile %v outside %v", c.display.Tile, c.img.Size())
	}
	return tile, nil
}

// Grid renders the magnified grid for the current tile.
func (c *Controller) Grid() (*image.NRGBA, error) {
	tile, err := c.Tile()
	if err != nil {
		return nil, err
	}
	return RenderGrid(tile, c.cfg.CellScale, c.cfg.CellBorder), nil
}

// Overview renders the whole image in the overview box with the viewport outlined.
func (c *Controller) Overview(thickness int) (*image.NRGBA, error) {
	if c.img == nil {
		return nil, ErrNoImage
	}
	return RenderOverview(c.img.Image(), c.display, thickness), nil
}

func (c *Controller) refresh() {
	c.display = NewDisplay(c.cfg, c.img.Size(), c.offset)
	if c.redraw != nil {
		c.redraw(c.display)
	}
}
