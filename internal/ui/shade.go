package ui

import (
	"math"

	"worldgen/internal/core"
)

// shade writes premultiplied black pixels whose alpha grows with the
// steepest 4-neighbour difference, relative to the field's range.
func shade(buf []byte, elev *core.Field[float64]) {
	cells := elev.Cells()
	if len(cells) == 0 {
		return
	}
	lo, hi := cells[0], cells[0]
	for _, v := range cells {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	const (
		maxAlpha = 150.0
		gain     = 12.0
	)
	for y := 0; y < elev.H; y++ {
		for x := 0; x < elev.W; x++ {
			here := elev.At(x, y)
			drop := 0.0
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if elev.InBounds(nx, ny) {
					drop = math.Max(drop, math.Abs(here-elev.At(nx, ny)))
				}
			}
			alpha := 0.0
			if span > 0 {
				alpha = maxAlpha * math.Min(drop/span*gain, 1)
			}
			i := elev.Index(x, y) * 4
			buf[i], buf[i+1], buf[i+2] = 0, 0, 0
			buf[i+3] = uint8(math.Round(alpha))
		}
	}
}
