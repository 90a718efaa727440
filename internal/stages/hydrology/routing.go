package hydrology

import (
	"context"

	"worldgen/internal/core"
	"worldgen/internal/world"
)

// NewDirectionField allocates a flow-direction field.
func NewDirectionField(w, h int) *core.Field[core.Direction] {
	return core.NewCodeField[core.Direction](w, h)
}

// Route assigns each cell the D8 neighbor with the steepest strictly
// positive descent in filled elevation. Exact ties keep the earlier
// direction in D8 order. Cells without a downhill neighbor get DirNone.
func Route(ctx context.Context, filled *core.Field[float64], workers int) (*core.Field[core.Direction], error) {
	w, h := filled.W, filled.H
	z := filled.Cells()
	dirs := NewDirectionField(w, h)
	out := dirs.Cells()

	err := core.RowBands(ctx, h, workers, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				out[y*w+x] = steepest(z, w, h, x, y)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

func steepest(z []float64, w, h, x, y int) core.Direction {
	here := z[y*w+x]
	best := core.DirNone
	bestSlope := 0.0
	for _, d := range core.D8 {
		n, ok := core.Neighbor(w, h, x, y, d)
		if !ok {
			continue
		}
		drop := here - z[n]
		if drop <= 0 {
			continue
		}
		if slope := drop / d.Distance(); slope > bestSlope {
			bestSlope = slope
			best = d
		}
	}
	return best
}

// Receiver returns the index cell i drains into, or -1 for outlets.
func Receiver(dirs *core.Field[core.Direction], i int) int {
	d := dirs.Cells()[i]
	if d == core.DirNone {
		return -1
	}
	n, ok := core.Neighbor(dirs.W, dirs.H, i%dirs.W, i/dirs.W, d)
	if !ok {
		return -1
	}
	return n
}

// VerifyRouting checks that every interior cell drains, every step strictly
// descends and the flow graph has no cycles.
func VerifyRouting(filled *core.Field[float64], dirs *core.Field[core.Direction]) error {
	w, h := dirs.W, dirs.H
	z := filled.Cells()
	layer := string(world.LayerFlowDirection)
	n := w * h

	for i, d := range dirs.Cells() {
		x, y := i%w, i/w
		if d == core.DirNone {
			if !dirs.OnBorder(x, y) {
				return core.NewCellError(core.ErrInvariant, layer, w, i, "interior sink survived filling")
			}
			continue
		}
		r := Receiver(dirs, i)
		if r < 0 {
			return core.NewCellError(core.ErrInvariant, layer, w, i, "direction %s leaves the grid", d)
		}
		if z[r] >= z[i] {
			return core.NewCellError(core.ErrInvariant, layer, w, i, "flow does not descend")
		}
	}

	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]uint8, n)
	path := make([]int, 0, 64)
	for start := 0; start < n; start++ {
		path = path[:0]
		c := start
		for c >= 0 && state[c] == unvisited {
			state[c] = onPath
			path = append(path, c)
			c = Receiver(dirs, c)
		}
		if c >= 0 && state[c] == onPath {
			return core.NewCellError(core.ErrInvariant, layer, w, c, "flow cycle detected")
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return nil
}
