package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/mchughj/PixelArt/internal/imgio"
	"github.com/mchughj/PixelArt/internal/store"
)

// run executes the app with args and returns everything it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"pixelart"}, args...))
	return out.String(), err
}

// writeSheet saves a 64x32 gradient PNG where red encodes x.
func writeSheet(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 4), uint8(y * 8), 0x80, 0xff})
		}
	}
	path := filepath.Join(dir, "sheet.png")
	require.NoError(t, imgio.SavePNG(path, img))
	return path
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var ec cli.ExitCoder
	require.True(t, errors.As(err, &ec), "not an exit error: %v", err)
	return ec.ExitCode()
}

func TestHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "export")
	assert.Contains(t, out, "--verbose")

	out, err = run(t, "-V")
	require.NoError(t, err)
	assert.Contains(t, out, "1.0.0")
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	sheet := writeSheet(t, dir)
	db := filepath.Join(dir, "pixelart.db")
	out := filepath.Join(dir, "walk.gif")

	printed, err := run(t, "--db", db, "--tile-width", "8", "--tile-height", "8",
		"export", "--frames", "9", "--columns", "10", "--out", out, sheet)
	require.NoError(t, err)
	assert.Contains(t, printed, "wrote 8 frames to "+out)
	assert.Contains(t, printed, "skipped out-of-bounds frames [8]")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	require.Len(t, g.Image, 8)
	assert.Equal(t, 8, g.Delay[0])

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	exports, err := st.Exports(0)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, sheet, exports[0].Image)
	assert.Equal(t, out, exports[0].Output)
	assert.Equal(t, 8, exports[0].Frames)
	assert.Equal(t, 1, exports[0].Skipped)
	assert.Equal(t, 75, exports[0].DelayMS)

	printed, err = run(t, "--db", db, "history")
	require.NoError(t, err)
	assert.Contains(t, printed, out)
}

func TestExportCommandStartAndStride(t *testing.T) {
	dir := t.TempDir()
	sheet := writeSheet(t, dir)
	out := filepath.Join(dir, "step.gif")

	_, err := run(t, "--db", "", "--tile-width", "8", "--tile-height", "8",
		"export", "--x", "16", "--stride-x", "16", "--frames", "2", "--delay", "100", "--out", out, sheet)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	require.Len(t, g.Image, 2)
	assert.Equal(t, []int{10, 10}, g.Delay)
	first := color.NRGBAModel.Convert(g.Image[0].At(0, 0)).(color.NRGBA)
	second := color.NRGBAModel.Convert(g.Image[1].At(0, 0)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{64, 0, 0x80, 0xff}, first)
	assert.Equal(t, color.NRGBA{128, 0, 0x80, 0xff}, second)
}

func TestSnapshotCommand(t *testing.T) {
	dir := t.TempDir()
	sheet := writeSheet(t, dir)
	grid := filepath.Join(dir, "grid.png")
	overview := filepath.Join(dir, "overview.png")

	printed, err := run(t, "--db", "", "--tile-width", "8", "--tile-height", "8",
		"snapshot", "--x", "8", "--grid", grid, "--overview", overview, sheet)
	require.NoError(t, err)
	assert.Contains(t, printed, "viewport")

	g, err := imgio.Load(grid)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(160, 160), g.Size())

	o, err := imgio.Load(overview)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(320, 160), o.Size())
}

func TestHistoryWithoutDatabase(t *testing.T) {
	_, err := run(t, "--db", "", "history")
	require.Error(t, err)
	assert.EqualError(t, err, "history is disabled without --db")
	assert.Equal(t, 1, exitCode(t, err))
}

func TestHistoryEmpty(t *testing.T) {
	printed, err := run(t, "--db", filepath.Join(t.TempDir(), "pixelart.db"), "history")
	require.NoError(t, err)
	assert.Contains(t, printed, "no exports recorded")
}

func TestMissingImageArgument(t *testing.T) {
	for _, cmd := range []string{"export", "snapshot"} {
		t.Run(cmd, func(t *testing.T) {
			_, err := run(t, "--db", "", cmd)
			require.Error(t, err)
			assert.EqualError(t, err, "IMAGE argument required")
			assert.Equal(t, 1, exitCode(t, err))
		})
	}
}

func TestExportUnreadableImage(t *testing.T) {
	_, err := run(t, "--db", "", "export", filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(t, err))
}
