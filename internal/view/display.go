package view

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/mchughj/PixelArt/internal/geom"
	"github.com/mchughj/PixelArt/internal/imgio"
)

// HighlightColor outlines the viewport region inside the overview.
var HighlightColor = color.NRGBA{R: 0xff, A: 0xff}

// Display is the geometry derived from the controller state after every
// command. It is recomputed, never mutated.
type Display struct {
	// Tile is the image region shown in the magnified grid.
	Tile image.Rectangle

	CellScale  int
	CellBorder int
	// Width and Height are the pixel size of the magnified grid.
	Width  int
	Height int

	OverviewRatio float64
	// Overview is the size of the whole image once scaled into the overview box.
	Overview  image.Point
	Highlight geom.Box
}

// NewDisplay derives the display geometry for an image of imageSize
// viewed at offset.
func NewDisplay(cfg Config, imageSize, offset image.Point) Display {
	w, h := geom.ViewportSize(cfg.TileWidth, cfg.TileHeight, cfg.CellScale, cfg.CellBorder)
	ratio := geom.OverviewRatio(imageSize.X, imageSize.Y, cfg.OverviewWidth, cfg.OverviewHeight)
	ow, oh := imgio.ScaledSize(imageSize.X, imageSize.Y, ratio)
	return Display{
		Tile:          geom.TileRect(offset.X, offset.Y, cfg.TileWidth, cfg.TileHeight),
		CellScale:     cfg.CellScale,
		CellBorder:    cfg.CellBorder,
		Width:         w,
		Height:        h,
		OverviewRatio: ratio,
		Overview:      image.Pt(max(1, ow), max(1, oh)),
		Highlight:     geom.HighlightRect(offset.X, offset.Y, cfg.TileWidth, cfg.TileHeight, ratio),
	}
}

// Cell returns the on-screen box of the tile pixel at (col, row).
func (d Display) Cell(col, row int) geom.Box {
	return geom.CellRect(col, row, d.CellScale, d.CellBorder)
}

// RenderGrid blows every pixel of tile up into its grid cell. Border
// pixels stay opaque black.
func RenderGrid(tile image.Image, cellScale, cellBorder int) *image.NRGBA {
	b := tile.Bounds()
	w, h := geom.ViewportSize(b.Dx(), b.Dy(), cellScale, cellBorder)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	for row := 0; row < b.Dy(); row++ {
		for col := 0; col < b.Dx(); col++ {
			c := tile.At(b.Min.X+col, b.Min.Y+row)
			cell := geom.CellRect(col, row, cellScale, cellBorder)
			draw.Draw(dst, cell.Rectangle(), &image.Uniform{C: c}, image.Point{}, draw.Src)
		}
	}
	return dst
}

// RenderOverview shrinks img into the overview size of d and outlines the
// highlight box with the given line thickness.
func RenderOverview(img image.Image, d Display, thickness int) *image.NRGBA {
	dst := imgio.Resize(img, d.Overview.X, d.Overview.Y)
	for t := 0; t < thickness; t++ {
		outline(dst, geom.Box{
			X0: d.Highlight.X0 + t,
			Y0: d.Highlight.Y0 + t,
			X1: d.Highlight.X1 - t,
			Y1: d.Highlight.Y1 - t,
		}, HighlightColor)
	}
	return dst
}

// outline draws the one pixel edge of b. Pixels outside dst are dropped.
func outline(dst *image.NRGBA, b geom.Box, c color.NRGBA) {
	if b.X1 < b.X0 || b.Y1 < b.Y0 {
		return
	}
	for x := b.X0; x <= b.X1; x++ {
		dst.SetNRGBA(x, b.Y0, c)
		dst.SetNRGBA(x, b.Y1, c)
	}
	for y := b.Y0; y <= b.Y1; y++ {
		dst.SetNRGBA(b.X0, y, c)
		dst.SetNRGBA(b.X1, y, c)
	}
}
