package frames

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

// maxColors is the largest palette a GIF frame can carry.
const maxColors = 256

// paletteWorkers is the number of goroutines building frame palettes.
const paletteWorkers = 4

func enumerate(ctx context.Context, n int) (<-chan int, <-chan error) {
	out := make(chan int)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for i := 0; i < n; i++ {
			select {
			case out <- i:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()
	return out, errc
}

// paletteWorker converts the tiles whose indices arrive on in. Each index
// is written by exactly one worker.
func paletteWorker(ctx context.Context, tiles []*image.NRGBA, out []*image.Paletted, in <-chan int) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for i := range in {
			if err := ctx.Err(); err != nil {
				errc <- err
				return
			}
			out[i] = palettize(tiles[i])
		}
	}()
	return errc
}

// palettize reduces a tile to at most maxColors colors.
func palettize(m *image.NRGBA) *image.Paletted {
	q := quantize.MedianCutQuantizer{}
	b := m.Bounds()
	p := q.Quantize(make(color.Palette, 0, maxColors), m)
	pm := image.NewPaletted(b, p)
	draw.Draw(pm, b, m, b.Min, draw.Src)
	return pm
}

// palettizeAll converts tiles in parallel, keeping their order.
func palettizeAll(ctx context.Context, tiles []*image.NRGBA) ([]*image.Paletted, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]*image.Paletted, len(tiles))
	idx, errc := enumerate(ctx, len(tiles))
	errcList := []<-chan error{errc}
	for i := 0; i < paletteWorkers; i++ {
		errcList = append(errcList, paletteWorker(ctx, tiles, out, idx))
	}
	if err := waitForPipeline(errcList...); err != nil {
		return nil, err
	}
	return out, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
