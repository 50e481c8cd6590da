package view

import (
	"errors"
	"fmt"
	"image"
)

// Config fixes the tile, cell and overview geometry of a controller.
type Config struct {
	TileWidth  int
	TileHeight int

	// each tile pixel becomes a CellScale square followed by CellBorder
	// pixels of grid line
	CellScale  int
	CellBorder int

	OverviewWidth  int
	OverviewHeight int
}

// DefaultConfig returns 32x32 tiles drawn as 19 pixel cells with a one
// pixel border, and a 320x240 overview box.
func DefaultConfig() Config {
	return Config{
		TileWidth:      32,
		TileHeight:     32,
		CellScale:      19,
		CellBorder:     1,
		OverviewWidth:  320,
		OverviewHeight: 240,
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.TileWidth <= 0 || c.TileHeight <= 0:
		return fmt.Errorf("tile size %dx%d must be positive", c.TileWidth, c.TileHeight)
	case c.CellScale <= 0:
		return fmt.Errorf("cell scale %d must be positive", c.CellScale)
	case c.CellBorder < 0:
		return fmt.Errorf("cell border %d must not be negative", c.CellBorder)
	case c.OverviewWidth <= 0 || c.OverviewHeight <= 0:
		return errors.New("overview box must not be empty")
	}
	return nil
}

// TileSize returns the tile dimensions as a point.
func (c Config) TileSize() image.Point { return image.Pt(c.TileWidth, c.TileHeight) }
