// Package noise provides seeded fractal noise sources built on OpenSimplex.
package noise

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Source samples 2D noise in [0, 1].
type Source struct {
	n opensimplex.Noise
}

// New returns a source seeded with seed.
func New(seed int64) Source {
	return Source{n: opensimplex.NewNormalized(seed)}
}

// At samples the raw noise at (x, y).
func (s Source) At(x, y float64) float64 {
	return clamp01(s.n.Eval2(x, y))
}

// FBM sums octaves of noise starting at freq, halving amplitude and doubling
// frequency each octave. The result is normalized to [0, 1].
func (s Source) FBM(x, y float64, octaves int, freq float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	amp, norm, sum := 1.0, 0.0, 0.0
	for o := 0; o < octaves; o++ {
		sum += s.At(x*freq, y*freq) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}

// Ridged is FBM over folded noise, producing sharp crests near 1.
func (s Source) Ridged(x, y float64, octaves int, freq float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	amp, norm, sum := 1.0, 0.0, 0.0
	for o := 0; o < octaves; o++ {
		v := 1 - math.Abs(s.At(x*freq, y*freq)*2-1)
		sum += v * v * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
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
