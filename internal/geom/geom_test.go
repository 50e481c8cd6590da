package geom

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampOffset(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		imageDim int
		tileDim  int
		want     int
	}{
		{"inside", 10, 320, 32, 10},
		{"negative", -5, 320, 32, 0},
		{"past edge", 300, 320, 32, 288},
		{"exact edge", 288, 320, 32, 288},
		{"image equals tile", 7, 32, 32, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClampOffset(tt.offset, tt.imageDim, tt.tileDim)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClampOffsetAlwaysInRange(t *testing.T) {
	for imageDim := 32; imageDim < 100; imageDim += 7 {
		for offset := -200; offset < 200; offset += 3 {
			got, err := ClampOffset(offset, imageDim, 32)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, imageDim-32)
		}
	}
}

func TestClampOffsetImageTooSmall(t *testing.T) {
	_, err := ClampOffset(0, 16, 32)
	assert.ErrorIs(t, err, ErrImageTooSmall)

	_, err = ClampPoint(image.Pt(0, 0), image.Pt(64, 16), image.Pt(32, 32))
	assert.ErrorIs(t, err, ErrImageTooSmall)
}

func TestCellRect(t *testing.T) {
	assert.Equal(t, Box{0, 0, 18, 18}, CellRect(0, 0, 19, 1))
	assert.Equal(t, Box{20, 40, 38, 58}, CellRect(1, 2, 19, 1))
	assert.Equal(t, Box{620, 620, 638, 638}, CellRect(31, 31, 19, 1))

	b := CellRect(3, 4, 2, 0)
	assert.Equal(t, 2, b.Dx())
	assert.Equal(t, 2, b.Dy())
	assert.Equal(t, image.Rect(6, 8, 8, 10), b.Rectangle())
}

func TestViewportSize(t *testing.T) {
	w, h := ViewportSize(32, 32, 19, 1)
	assert.Equal(t, 640, w)
	assert.Equal(t, 640, h)

	w, h = ViewportSize(16, 8, 3, 1)
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
}

func TestOverviewRatio(t *testing.T) {
	assert.InDelta(t, 0.5, OverviewRatio(640, 480, 320, 240), 1e-9)
	// height is the tighter constraint
	assert.InDelta(t, 0.25, OverviewRatio(320, 960, 320, 240), 1e-9)
	// small images are scaled up
	assert.InDelta(t, 2.0, OverviewRatio(64, 64, 128, 200), 1e-9)
	assert.Zero(t, OverviewRatio(0, 10, 100, 100))
}

func TestHighlightRectTruncates(t *testing.T) {
	ratio := OverviewRatio(200, 200, 100, 100)
	got := HighlightRect(11, 21, 32, 32, ratio)
	// 5.5, 10.5, 21.5, 26.5 all truncate down
	assert.Equal(t, Box{5, 10, 21, 26}, got)

	got = HighlightRect(3, 3, 32, 32, 0.75)
	// 2.25, 26.25
	assert.Equal(t, Box{2, 2, 26, 26}, got)
}

func TestHighlightPreservesAspect(t *testing.T) {
	sizes := [][2]int{{320, 320}, {1024, 256}, {97, 513}, {640, 480}}
	for _, s := range sizes {
		ratio := OverviewRatio(s[0], s[1], 320, 240)
		tileW, tileH := 32.0, 16.0
		gotW := tileW * ratio
		gotH := tileH * ratio
		assert.InDelta(t, tileW/tileH, gotW/gotH, 1e-9)
		assert.False(t, math.IsInf(ratio, 0))
	}
}

func TestTileRect(t *testing.T) {
	assert.Equal(t, image.Rect(64, 32, 96, 64), TileRect(64, 32, 32, 32))
}
