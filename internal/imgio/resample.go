package imgio

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ScaledSize is the size an image of w by h pixels has after scaling by factor.
func ScaledSize(w, h int, factor float64) (int, int) {
	return int(math.Round(float64(w) * factor)), int(math.Round(float64(h) * factor))
}

// Scale resamples the buffer by factor on both axes with bilinear filtering.
func Scale(b *Buffer, factor float64) (*Buffer, error) {
	w, h := ScaledSize(b.Width(), b.Height(), factor)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("scale %dx%d by %g: empty result", b.Width(), b.Height(), factor)
	}
	return &Buffer{img: Resize(b.img, w, h), channels: b.channels}, nil
}

// Resize stretches src to exactly w by h pixels.
func Resize(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
