// Package geom maps image dimensions, tile size, offsets and display scales
// to pixel rectangles. It owns every clamping rule used by the viewer.
package geom

import (
	"errors"
	"fmt"
	"image"
)

// ErrImageTooSmall is returned when an image cannot hold a single tile.
var ErrImageTooSmall = errors.New("image too small for tile")

// ClampOffset keeps a tile of size tileDim inside an image of size imageDim.
// The result always satisfies 0 <= result <= imageDim-tileDim.
func ClampOffset(offset, imageDim, tileDim int) (int, error) {
	if imageDim < tileDim {
		return 0, fmt.Errorf("%w: %d < %d", ErrImageTooSmall, imageDim, tileDim)
	}
	return max(0, min(imageDim-tileDim, offset)), nil
}

// ClampPoint clamps both axes of an offset, see ClampOffset.
func ClampPoint(p image.Point, imageSize, tileSize image.Point) (image.Point, error) {
	x, err := ClampOffset(p.X, imageSize.X, tileSize.X)
	if err != nil {
		return p, err
	}
	y, err := ClampOffset(p.Y, imageSize.Y, tileSize.Y)
	if err != nil {
		return p, err
	}
	return image.Pt(x, y), nil
}

// CellRect returns the on-screen box of the tile pixel at (col, row) once
// every pixel is blown up to cellScale pixels followed by cellBorder pixels
// of grid line.
func CellRect(col, row, cellScale, cellBorder int) Box {
	pitch := cellScale + cellBorder
	x0 := col * pitch
	y0 := row * pitch
	return Box{X0: x0, Y0: y0, X1: x0 + cellScale - 1, Y1: y0 + cellScale - 1}
}

// ViewportSize is the pixel size of the magnified grid for one tile.
func ViewportSize(tileW, tileH, cellScale, cellBorder int) (int, int) {
	pitch := cellScale + cellBorder
	return tileW * pitch, tileH * pitch
}

// OverviewRatio is the uniform scale that fits an image into the overview
// box without distorting it. Images smaller than the box give a ratio above 1.
func OverviewRatio(imageW, imageH, boxW, boxH int) float64 {
	if imageW <= 0 || imageH <= 0 {
		return 0
	}
	return min(float64(boxH)/float64(imageH), float64(boxW)/float64(imageW))
}

// HighlightRect scales the viewport region into overview coordinates.
// Coordinates are truncated toward zero.
func HighlightRect(offsetX, offsetY, tileW, tileH int, ratio float64) Box {
	return Box{
		X0: int(float64(offsetX) * ratio),
		Y0: int(float64(offsetY) * ratio),
		X1: int(float64(offsetX+tileW) * ratio),
		Y1: int(float64(offsetY+tileH) * ratio),
	}
}

// TileRect is the half-open image region of the tile whose top-left pixel is (x, y).
func TileRect(x, y, tileW, tileH int) image.Rectangle {
	return image.Rect(x, y, x+tileW, y+tileH)
}
