package hydrology

import (
	"math"

	"worldgen/internal/core"
	"worldgen/internal/world"
)

// FillSinks resolves depressions with a priority flood seeded from the grid
// border. It returns a filled working copy in which every interior cell has
// a strictly lower neighbor; elev is left untouched.
func FillSinks(elev *core.Field[float64], epsilon float64) (*core.Field[float64], error) {
	filled := elev.Clone()
	z := filled.Cells()
	w, h := filled.W, filled.H
	n := w * h
	layer := string(world.LayerFilled)

	closed := make([]bool, n)
	open := newFrontier(2 * (w + h))
	for i := 0; i < n; i++ {
		x, y := i%w, i/w
		if filled.OnBorder(x, y) {
			closed[i] = true
			open.push(i, z[i])
		}
	}

	pops := 0
	for !open.empty() {
		c := open.pop()
		pops++
		if pops > n {
			return nil, core.NewCellError(core.ErrInvariant, layer, w, c.cell, "priority flood exceeded %d pops", n)
		}
		cx, cy := c.cell%w, c.cell/w
		for _, d := range core.D8 {
			nb, ok := core.Neighbor(w, h, cx, cy, d)
			if !ok || closed[nb] {
				continue
			}
			closed[nb] = true
			if z[nb] <= z[c.cell] {
				raised := z[c.cell] + epsilon
				if raised <= z[c.cell] || math.IsInf(raised, 0) {
					return nil, core.NewCellError(core.ErrInvariant, layer, w, nb, "epsilon %g cannot raise %g", epsilon, z[c.cell])
				}
				z[nb] = raised
			}
			open.push(nb, z[nb])
		}
	}
	if pops != n {
		return nil, &core.CellError{Layer: layer, Kind: core.ErrInvariant, Msg: "priority flood left cells unvisited"}
	}
	return filled, nil
}
