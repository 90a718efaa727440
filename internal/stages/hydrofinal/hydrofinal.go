// Package hydrofinal turns elevation and accumulation into discrete ocean,
// lake and river masks.
package hydrofinal

import (
	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/world"
)

// pitEpsilon is the margin every neighbor must clear for a cell to count
// as a strict pit.
const pitEpsilon = 1e-4

// Output groups the fields produced by the stage.
type Output struct {
	WaterMask  *core.Field[world.WaterClass]
	RiverClass *core.Field[world.RiverClass]
	LakeID     *core.Field[uint32]
	Lakes      int
}

// Run classifies every cell. Precedence is ocean, lake, river, land.
func Run(elev, acc *core.Field[float64], p params.WorldParams) *Output {
	w, h := elev.W, elev.H
	sea := p.Base.SeaLevel
	ocean := OceanMask(elev, sea)

	lakes := core.NewIDField(w, h)
	next := labelBasins(elev, ocean, lakes, sea)
	if p.Hydro.PitLakeMaxCells > 0 {
		next = addPitLakes(elev, acc, ocean, lakes, next, p)
	}

	mask := core.NewCodeField[world.WaterClass](w, h)
	rivers := core.NewCodeField[world.RiverClass](w, h)
	for i := range mask.Cells() {
		switch {
		case ocean[i]:
			mask.Cells()[i] = world.WaterOcean
		case lakes.Cells()[i] != 0:
			mask.Cells()[i] = world.WaterLake
		default:
			rc := Classify(acc.Cells()[i], p.Hydro)
			rivers.Cells()[i] = rc
			if rc != world.RiverNone {
				mask.Cells()[i] = world.WaterRiver
			}
		}
	}
	return &Output{WaterMask: mask, RiverClass: rivers, LakeID: lakes, Lakes: int(next - 1)}
}

// Classify maps accumulation to a river class using ascending thresholds.
func Classify(q float64, p params.HydroParams) world.RiverClass {
	switch {
	case q >= p.MajorThreshold:
		return world.RiverMajor
	case q >= p.RiverThreshold:
		return world.RiverRiver
	case q >= p.StreamThreshold:
		return world.RiverStream
	}
	return world.RiverNone
}

// OceanMask floods from every border cell at or below sea level through
// 8-connected cells at or below sea level.
func OceanMask(elev *core.Field[float64], sea float64) []bool {
	w, h := elev.W, elev.H
	z := elev.Cells()
	ocean := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))
	for i, v := range z {
		if v <= sea && elev.OnBorder(i%w, i/w) {
			ocean[i] = true
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, d := range core.D8 {
			n, ok := core.Neighbor(w, h, c%w, c/w, d)
			if !ok || ocean[n] || z[n] > sea {
				continue
			}
			ocean[n] = true
			queue = append(queue, n)
		}
	}
	return ocean
}

// labelBasins gives each 8-connected component of submerged, non-ocean
// cells an id, in row-major discovery order starting at 1. It returns the
// next free id.
func labelBasins(elev *core.Field[float64], ocean []bool, lakes *core.Field[uint32], sea float64) uint32 {
	w, h := elev.W, elev.H
	z := elev.Cells()
	ids := lakes.Cells()
	next := uint32(1)
	var queue []int
	for start, v := range z {
		if v > sea || ocean[start] || ids[start] != 0 {
			continue
		}
		ids[start] = next
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			for _, d := range core.D8 {
				n, ok := core.Neighbor(w, h, c%w, c/w, d)
				if !ok || ids[n] != 0 || ocean[n] || z[n] > sea {
					continue
				}
				ids[n] = next
				queue = append(queue, n)
			}
		}
		next++
	}
	return next
}

// addPitLakes floods strict land pits that collect enough inflow up to a
// rim level derived from local relief. A flood that reaches the border,
// another lake or the size limit is discarded.
func addPitLakes(elev, acc *core.Field[float64], ocean []bool, lakes *core.Field[uint32], next uint32, p params.WorldParams) uint32 {
	w, h := elev.W, elev.H
	z := elev.Cells()
	ids := lakes.Cells()
	sea := p.Base.SeaLevel

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if ocean[i] || ids[i] != 0 || z[i] <= sea {
				continue
			}
			if acc.Cells()[i] < p.Hydro.PitLakeMinInflow || !strictPit(z, w, h, x, y) {
				continue
			}
			level := z[i] + min(0.001+relief(z, w, h, x, y)*0.3, 0.008)
			if floodPit(elev, ocean, ids, i, next, level, p.Hydro.PitLakeMaxCells) {
				next++
			}
		}
	}
	return next
}

func strictPit(z []float64, w, h, x, y int) bool {
	here := z[y*w+x]
	for _, d := range core.D8 {
		n, _ := core.Neighbor(w, h, x, y, d)
		if z[n] <= here+pitEpsilon {
			return false
		}
	}
	return true
}

func relief(z []float64, w, h, x, y int) float64 {
	lo, hi := z[y*w+x], z[y*w+x]
	for _, d := range core.D8 {
		n, _ := core.Neighbor(w, h, x, y, d)
		lo = min(lo, z[n])
		hi = max(hi, z[n])
	}
	return hi - lo
}

func floodPit(elev *core.Field[float64], ocean []bool, ids []uint32, start int, id uint32, level float64, maxCells int) bool {
	w, h := elev.W, elev.H
	z := elev.Cells()
	cells := []int{start}
	ids[start] = id
	ok := true
	for q := 0; q < len(cells) && ok; q++ {
		c := cells[q]
		if elev.OnBorder(c%w, c/w) {
			ok = false
			break
		}
		for _, d := range core.D8 {
			n, in := core.Neighbor(w, h, c%w, c/w, d)
			if !in || ids[n] == id || z[n] > level {
				continue
			}
			if ocean[n] || ids[n] != 0 {
				ok = false
				break
			}
			ids[n] = id
			cells = append(cells, n)
			if len(cells) > maxCells {
				ok = false
				break
			}
		}
	}
	if !ok {
		for _, c := range cells {
			ids[c] = 0
		}
	}
	return ok
}
