package ui

import (
	"math"

	"worldgen/internal/core"
)

type windSample struct {
	x, y   int
	sx, sy float64
}

// windGrid picks evenly spaced cells for wind arrows, centred on the grid,
// and returns them with the pixel spacing between samples.
func windGrid(size core.Size, scale int) ([]windSample, float64) {
	if size.W <= 0 || size.H <= 0 {
		return nil, 0
	}
	if scale <= 0 {
		scale = 1
	}
	const (
		targetSamples = 360.0
		minSpacing    = 6
		maxSpacing    = 20
	)
	spacing := int(math.Sqrt(float64(size.W*size.H) / targetSamples))
	spacing = min(max(spacing, minSpacing), maxSpacing)

	countX := (size.W + spacing - 1) / spacing
	countY := (size.H + spacing - 1) / spacing
	startX := max((size.W-1-(countX-1)*spacing)/2, 0)
	startY := max((size.H-1-(countY-1)*spacing)/2, 0)

	samples := make([]windSample, 0, countX*countY)
	for yi := 0; yi < countY; yi++ {
		y := min(startY+yi*spacing, size.H-1)
		for xi := 0; xi < countX; xi++ {
			x := min(startX+xi*spacing, size.W-1)
			samples = append(samples, windSample{
				x:  x,
				y:  y,
				sx: (float64(x) + 0.5) * float64(scale),
				sy: (float64(y) + 0.5) * float64(scale),
			})
		}
	}
	return samples, float64(spacing * scale)
}

// windColor shades an arrow by normalised speed.
func windColor(t float64) (r, g, b, a uint8) {
	t = math.Max(0, math.Min(1, t))
	return uint8(math.Round(80 + 70*t)),
		uint8(math.Round(170 + 70*t)),
		uint8(math.Round(230 + 20*t)),
		uint8(math.Round(150 + 90*t))
}
