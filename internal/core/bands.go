package core

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RowBands splits rows [0, h) into contiguous bands and runs fn for each band
// concurrently. Each call owns rows [y0, y1) exclusively, so writes into
// pre-allocated row-major outputs reassemble in order without locking.
func RowBands(ctx context.Context, h, workers int, fn func(y0, y1 int) error) error {
	if h <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > h {
		workers = h
	}
	if workers == 1 {
		return fn(0, h)
	}

	// Cancellation is honoured between stages only; a band stops early solely
	// when a sibling band failed.
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	band := (h + workers - 1) / workers
	for y0 := 0; y0 < h; y0 += band {
		y0, y1 := y0, min(y0+band, h)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(y0, y1)
		})
	}
	return g.Wait()
}
