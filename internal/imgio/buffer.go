// Package imgio holds the pixel buffer the viewer works on, along with
// decoding, channel normalization and resampling helpers.
package imgio

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrUnsupportedImageFormat is returned for buffers that are not an
	// RGB or RGBA pixel array.
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
	// ErrNoFileSelected is returned when no path was chosen. Callers treat
	// it as a silent no-op.
	ErrNoFileSelected = errors.New("no file selected")
)

// ChannelOrder is the byte order of color channels in a raw buffer.
type ChannelOrder int

const (
	RGB ChannelOrder = iota
	BGR
)

// Buffer is a decoded image normalized to non-premultiplied RGBA with its
// origin at (0, 0). Channels records whether the source carried alpha (4)
// or not (3).
type Buffer struct {
	img      *image.NRGBA
	channels int
}

// FromRaw builds a buffer from interleaved pixel bytes. Channel order is
// normalized to RGB here, once.
func FromRaw(pix []byte, width, height, channels int, order ChannelOrder) (*Buffer, error) {
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedImageFormat, channels)
	}
	if width <= 0 || height <= 0 || len(pix) != width*height*channels {
		return nil, fmt.Errorf("%w: %d bytes for %dx%dx%d", ErrUnsupportedImageFormat, len(pix), width, height, channels)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(pix); i, j = i+channels, j+4 {
		r, g, b := pix[i], pix[i+1], pix[i+2]
		if order == BGR {
			r, b = b, r
		}
		a := uint8(0xff)
		if channels == 4 {
			a = pix[i+3]
		}
		img.Pix[j+0] = r
		img.Pix[j+1] = g
		img.Pix[j+2] = b
		img.Pix[j+3] = a
	}
	return &Buffer{img: img, channels: channels}, nil
}

// FromImage copies src into a new buffer.
func FromImage(src image.Image) (*Buffer, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrUnsupportedImageFormat)
	}
	channels := channelsOf(src)
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedImageFormat, src)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedImageFormat)
	}
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	return &Buffer{img: img, channels: channels}, nil
}

// channelsOf reports how many color channels a decoded image carries.
// Grey and luma/chroma images are promoted to RGB; alpha-only images are
// not color images at all.
func channelsOf(src image.Image) int {
	switch m := src.(type) {
	case *image.Alpha, *image.Alpha16:
		return 1
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return 3
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return 4
			}
		}
		return 3
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.NYCbCrA:
		if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
			return 3
		}
		return 4
	}
	return 0
}

func (b *Buffer) Width() int { return b.img.Rect.Dx() }

func (b *Buffer) Height() int { return b.img.Rect.Dy() }

func (b *Buffer) Channels() int { return b.channels }

// Size returns the image dimensions as a point.
func (b *Buffer) Size() image.Point { return b.img.Rect.Size() }

// Image exposes the pixels. Callers must not modify them.
func (b *Buffer) Image() *image.NRGBA { return b.img }

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	img := image.NewNRGBA(b.img.Rect)
	copy(img.Pix, b.img.Pix)
	return &Buffer{img: img, channels: b.channels}
}

// Crop copies the region r into a new image whose origin is (0, 0).
// It reports false when r is empty or not fully inside the buffer.
func (b *Buffer) Crop(r image.Rectangle) (*image.NRGBA, bool) {
	if r.Empty() || !r.In(b.img.Rect) {
		return nil, false
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), b.img, r.Min, draw.Src)
	return dst, true
}
