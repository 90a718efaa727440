package render

import (
	"image/color"
	"math"
)

// fillPaletteRGBA converts category codes into RGBA pixels using a palette.
// Codes past the end of the palette use the last entry. When the palette is
// empty the buffer is cleared to transparent black.
func fillPaletteRGBA[T ~uint8](buf []byte, cells []T, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		put(buf, i, palette[idx])
	}
}

// fillRampRGBA maps each value through norm into [0, 1] and colours it with r.
func fillRampRGBA(buf []byte, cells []float64, r ramp, norm func(float64) float64) {
	for i, v := range cells {
		put(buf, i, r.at(norm(v)))
	}
}

func put(buf []byte, i int, col color.RGBA) {
	base := i * 4
	buf[base+0] = col.R
	buf[base+1] = col.G
	buf[base+2] = col.B
	buf[base+3] = col.A
}

type stop struct {
	t   float64
	col color.RGBA
}

// ramp is a piecewise linear gradient over ascending stops.
type ramp []stop

func (r ramp) at(t float64) color.RGBA {
	t = clamp01(t)
	for i := 1; i < len(r); i++ {
		curr := r[i]
		if t <= curr.t {
			prev := r[i-1]
			span := curr.t - prev.t
			var local float64
			if span > 0 {
				local = (t - prev.t) / span
			}
			return lerpRGBA(prev.col, curr.col, clamp01(local))
		}
	}
	return r[len(r)-1].col
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
