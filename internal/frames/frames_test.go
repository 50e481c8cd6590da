package frames

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchughj/PixelArt/internal/imgio"
	"github.com/mchughj/PixelArt/internal/view"
)

func collect(t *testing.T, s *Sequencer, n int) ([]image.Point, []Wrap) {
	t.Helper()
	var pts []image.Point
	var wraps []Wrap
	for i := 0; i < n; i++ {
		f, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, i, f.Index)
		pts = append(pts, f.Rect.Min)
		wraps = append(wraps, f.Wrap)
	}
	return pts, wraps
}

func TestSequencerSingleRow(t *testing.T) {
	s := NewSequencer(Spec{
		StrideX: 32, StrideY: 32, BoundaryX: 128,
		TileWidth: 32, TileHeight: 32,
		ImageWidth: 128, ImageHeight: 32,
	})
	pts, wraps := collect(t, s, 5)
	want := []image.Point{{0, 0}, {32, 0}, {64, 0}, {96, 0}, {0, 0}}
	if diff := cmp.Diff(want, pts); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Wrap{WrapNone, WrapNone, WrapNone, WrapOrigin, WrapNone}, wraps)
}

func TestSequencerRowWrapStartsAtZero(t *testing.T) {
	s := NewSequencer(Spec{
		StartX: 32, StartY: 0,
		StrideX: 32, StrideY: 32, BoundaryX: 96,
		TileWidth: 32, TileHeight: 32,
		ImageWidth: 96, ImageHeight: 64,
	})
	pts, wraps := collect(t, s, 6)
	want := []image.Point{{32, 0}, {64, 0}, {0, 32}, {32, 32}, {64, 32}, {0, 0}}
	if diff := cmp.Diff(want, pts); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, WrapRow, wraps[1])
	assert.Equal(t, WrapOrigin, wraps[4])
}

func TestSequencerBoundaryNarrowerThanImage(t *testing.T) {
	s := NewSequencer(Spec{
		StrideX: 16, StrideY: 16, BoundaryX: 64,
		TileWidth: 32, TileHeight: 32,
		ImageWidth: 256, ImageHeight: 64,
	})
	pts, _ := collect(t, s, 5)
	want := []image.Point{{0, 0}, {16, 0}, {32, 0}, {0, 16}, {16, 16}}
	if diff := cmp.Diff(want, pts); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestSequencerOutOfBounds(t *testing.T) {
	s := NewSequencer(Spec{
		StrideX: 32, StrideY: 32, BoundaryX: 160,
		TileWidth: 32, TileHeight: 32,
		ImageWidth: 96, ImageHeight: 32,
	})
	for i := 0; i < 3; i++ {
		_, err := s.Next()
		require.NoError(t, err)
	}
	f, err := s.Next()
	assert.ErrorIs(t, err, ErrFrameOutOfBounds)
	assert.Equal(t, image.Rect(96, 0, 128, 32), f.Rect)
	f, err = s.Next()
	assert.ErrorIs(t, err, ErrFrameOutOfBounds)
	assert.Equal(t, WrapOrigin, f.Wrap)
	f, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), f.Rect)
}

func TestSequencerLimit(t *testing.T) {
	s := NewSequencer(Spec{
		StrideX: 32, BoundaryX: 64,
		TileWidth: 32, TileHeight: 32,
		ImageWidth: 64, ImageHeight: 32,
		Limit: 2,
	})
	_, err := s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	assert.ErrorIs(t, err, ErrExhausted)
}

var tileColors = []color.NRGBA{
	{0xff, 0x00, 0x00, 0xff},
	{0x00, 0xff, 0x00, 0xff},
	{0x00, 0x00, 0xff, 0xff},
	{0xff, 0xff, 0x00, 0xff},
}

// stripSnapshot returns a one-row sheet with one solid color per tile.
func stripSnapshot(t *testing.T, tiles int) view.Snapshot {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, tiles*32, 32))
	for x := 0; x < tiles*32; x++ {
		for y := 0; y < 32; y++ {
			img.SetNRGBA(x, y, tileColors[x/32])
		}
	}
	buf, err := imgio.FromImage(img)
	require.NoError(t, err)
	return view.Snapshot{Image: buf, Path: "/sheets/walk.png", TileWidth: 32, TileHeight: 32}
}

func TestNewRequestDefaults(t *testing.T) {
	snap := stripSnapshot(t, 4)
	snap.Offset = image.Pt(32, 0)
	r := NewRequest(snap)
	assert.Equal(t, 32, r.StartX)
	assert.Equal(t, 0, r.StartY)
	assert.Equal(t, 32, r.StrideX)
	assert.Equal(t, 32, r.StrideY)
	assert.Equal(t, 4, r.Columns)
	assert.Equal(t, 3, r.FrameCount)
	assert.Equal(t, DefaultDelay, r.DelayMS)
	assert.Equal(t, filepath.Join("/sheets", "walk-anim.gif"), r.Output)
	require.NoError(t, r.Validate())

	s := r.Spec()
	assert.Equal(t, 128, s.BoundaryX)
	assert.Equal(t, 128, s.ImageWidth)
	assert.Equal(t, 32, s.ImageHeight)
	assert.Equal(t, 3, s.Limit)

	snap.Path = ""
	assert.Equal(t, "animation.gif", NewRequest(snap).Output)
}

func TestRequestValidate(t *testing.T) {
	base := NewRequest(stripSnapshot(t, 2))
	tests := []struct {
		name   string
		modify func(r *Request)
	}{
		{"no image", func(r *Request) { r.Snapshot.Image = nil }},
		{"zero frames", func(r *Request) { r.FrameCount = 0 }},
		{"negative stride", func(r *Request) { r.StrideY = -1 }},
		{"negative delay", func(r *Request) { r.DelayMS = -5 }},
		{"zero columns", func(r *Request) { r.Columns = 0 }},
		{"png output", func(r *Request) { r.Output = "out.png" }},
		{"no extension", func(r *Request) { r.Output = "out" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.modify(&r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidRequest)
		})
	}

	r := base
	r.Output = "OUT.GIF"
	assert.NoError(t, r.Validate())
}

func TestExportSkipsOutOfBoundsFrames(t *testing.T) {
	r := NewRequest(stripSnapshot(t, 3))
	r.FrameCount = 5
	r.Columns = 5
	r.Output = filepath.Join(t.TempDir(), "walk.gif")

	res, err := Export(context.Background(), r, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Frames)
	assert.Equal(t, []int{3, 4}, res.Skipped)

	f, err := os.Open(r.Output)
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	require.Len(t, g.Image, 3)
	assert.Equal(t, 0, g.LoopCount)
	assert.Equal(t, []int{8, 8, 8}, g.Delay)
	for i, frame := range g.Image {
		assert.Equal(t, image.Rect(0, 0, 32, 32), frame.Bounds())
		got := color.NRGBAModel.Convert(frame.At(5, 5)).(color.NRGBA)
		assert.Equal(t, tileColors[i], got, "frame %d", i)
	}
}

func TestExportNoFrames(t *testing.T) {
	r := NewRequest(stripSnapshot(t, 2))
	r.StartX = 40
	r.StrideX = 0
	r.Columns = 10
	r.FrameCount = 3
	r.Output = filepath.Join(t.TempDir(), "none.gif")

	res, err := Export(context.Background(), r, nil)
	assert.ErrorIs(t, err, ErrNoFramesProduced)
	assert.Equal(t, []int{0, 1, 2}, res.Skipped)
	_, statErr := os.Stat(r.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportCancelled(t *testing.T) {
	r := NewRequest(stripSnapshot(t, 2))
	r.Output = filepath.Join(t.TempDir(), "cancel.gif")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Export(ctx, r, nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(r.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEncodeKeepsOrder(t *testing.T) {
	var tiles []*image.NRGBA
	for _, c := range tileColors {
		m := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		for i := 0; i < len(m.Pix); i += 4 {
			m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = c.R, c.G, c.B, c.A
		}
		tiles = append(tiles, m)
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(context.Background(), &buf, tiles, 100))

	g, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, g.Image, len(tileColors))
	for i, frame := range g.Image {
		got := color.NRGBAModel.Convert(frame.At(0, 0)).(color.NRGBA)
		assert.Equal(t, tileColors[i], got)
		assert.Equal(t, 10, g.Delay[i])
	}
}

func TestHundredths(t *testing.T) {
	assert.Equal(t, 8, hundredths(75))
	assert.Equal(t, 10, hundredths(100))
	assert.Equal(t, 0, hundredths(0))
	assert.Equal(t, 2, hundredths(16))
}

type failingCloser struct {
	*os.File
}

func (f failingCloser) Close() error {
	f.File.Close()
	return errors.New("disk full")
}

func TestExportRemovesOutputWhenCloseFails(t *testing.T) {
	orig := createFile
	t.Cleanup(func() { createFile = orig })
	createFile = func(name string) (io.WriteCloser, error) {
		f, err := os.Create(name)
		if err != nil {
			return nil, err
		}
		return failingCloser{f}, nil
	}

	r := NewRequest(stripSnapshot(t, 2))
	r.Output = filepath.Join(t.TempDir(), "partial.gif")

	_, err := Export(context.Background(), r, nil)
	assert.EqualError(t, err, "disk full")
	_, statErr := os.Stat(r.Output)
	assert.True(t, os.IsNotExist(statErr))
}
