package frames

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"log"
	"os"
)

// ErrNoFramesProduced is returned when every requested frame was skipped.
var ErrNoFramesProduced = errors.New("no frames produced")

// createFile opens the export output for writing.
var createFile = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// Result summarizes a finished export.
type Result struct {
	Output string
	Frames int
	// Skipped holds the sequence indices of out-of-bounds frames.
	Skipped []int
}

// Export walks the request's sequence FrameCount times, skips frames that
// fall outside the image and writes the rest as a looping GIF. Nothing is
// written when no frame survives.
func Export(ctx context.Context, req Request, logger *log.Logger) (Result, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	tiles, skipped, err := Extract(ctx, req, logger)
	res := Result{Output: req.Output, Skipped: skipped}
	if err != nil {
		return res, err
	}
	if len(tiles) == 0 {
		return res, fmt.Errorf("%w: all %d frames out of bounds", ErrNoFramesProduced, req.FrameCount)
	}

	f, err := createFile(req.Output)
	if err != nil {
		return res, err
	}
	if err := Encode(ctx, f, tiles, req.DelayMS); err != nil {
		f.Close()
		os.Remove(req.Output)
		return res, err
	}
	if err := f.Close(); err != nil {
		os.Remove(req.Output)
		return res, err
	}
	res.Frames = len(tiles)
	logger.Printf("wrote %d frames to %s (%d skipped)", res.Frames, req.Output, len(skipped))
	return res, nil
}

// Extract crops the request's frames from its snapshot in sequence order.
// Out-of-bounds frames are logged and their indices returned in skipped.
func Extract(ctx context.Context, req Request, logger *log.Logger) (tiles []*image.NRGBA, skipped []int, err error) {
	seq := NewSequencer(req.Spec())
	img := req.Snapshot.Image
	for i := 0; i < req.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}
		f, err := seq.Next()
		if errors.Is(err, ErrFrameOutOfBounds) {
			logger.Printf("skipping frame: %v", err)
			skipped = append(skipped, f.Index)
			continue
		}
		if err != nil {
			return nil, skipped, err
		}
		tile, ok := img.Crop(f.Rect)
		if !ok {
			logger.Printf("skipping frame %d: cannot crop %v", f.Index, f.Rect)
			skipped = append(skipped, f.Index)
			continue
		}
		tiles = append(tiles, tile)
	}
	return tiles, skipped, nil
}

// Encode writes tiles as an infinitely looping GIF with a uniform delay.
func Encode(ctx context.Context, w io.Writer, tiles []*image.NRGBA, delayMS int) error {
	paletted, err := palettizeAll(ctx, tiles)
	if err != nil {
		return err
	}
	g := &gif.GIF{
		Image:     paletted,
		Delay:     make([]int, len(paletted)),
		LoopCount: 0,
	}
	for i := range g.Delay {
		g.Delay[i] = hundredths(delayMS)
	}
	return gif.EncodeAll(w, g)
}

// hundredths converts milliseconds to the GIF delay unit, rounding half up.
func hundredths(ms int) int {
	return (ms + 5) / 10
}
