package hydrology

import (
	"worldgen/internal/core"
	"worldgen/internal/params"
)

// Erode returns the final elevation: hydraulic iterations followed by
// thermal passes, each scanned row-major and applied in place. Every
// transfer moves material between exactly two cells, so the total is
// conserved up to rounding.
func Erode(base *core.Field[float64], dirs *core.Field[core.Direction], acc *core.Field[float64], p params.ErosionParams) *core.Field[float64] {
	out := base.Clone()
	for it := 0; it < p.Iterations; it++ {
		hydraulic(out, dirs, acc, p)
	}
	for pass := 0; pass < p.ThermalPasses; pass++ {
		thermal(out, p)
	}
	return out
}

// hydraulic moves a share of the drop to the receiver, scaled by how far
// accumulation exceeds the threshold. The share never exceeds half the
// drop, so a cell cannot end up below its receiver.
func hydraulic(elev *core.Field[float64], dirs *core.Field[core.Direction], acc *core.Field[float64], p params.ErosionParams) {
	z := elev.Cells()
	a := acc.Cells()
	for i := range z {
		excess := a[i] - p.AccumulationThreshold
		if excess <= 0 {
			continue
		}
		r := Receiver(dirs, i)
		if r < 0 {
			continue
		}
		drop := z[i] - z[r]
		if drop <= 0 {
			continue
		}
		power := excess / (excess + p.AccumulationScale)
		amount := p.ErosionRate * power * drop * 0.5
		z[i] -= amount
		z[r] += amount
	}
}

// thermal relaxes slopes steeper than the talus threshold toward it.
func thermal(elev *core.Field[float64], p params.ErosionParams) {
	z := elev.Cells()
	w, h := elev.W, elev.H
	for i := range z {
		x, y := i%w, i/w
		for _, d := range core.D8 {
			n, ok := core.Neighbor(w, h, x, y, d)
			if !ok {
				continue
			}
			talus := p.TalusSlope * d.Distance()
			diff := z[i] - z[n]
			if diff <= talus {
				continue
			}
			move := p.ThermalRate * (diff - talus) * 0.5
			z[i] -= move
			z[n] += move
		}
	}
}
