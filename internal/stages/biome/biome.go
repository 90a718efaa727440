// Package biome classifies cells into biomes from climate and hydrology and
// removes single-cell speckles.
package biome

import (
	"context"
	"math"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/world"
)

// Inputs are the per-cell values the rule table looks at.
type Inputs struct {
	Elevation   float64
	Temperature float64
	Rainfall    float64
	// Wetness is the fertility proxy mixing rainfall and accumulation.
	Wetness float64
}

// Rule assigns Biome when Match holds.
type Rule struct {
	Biome world.Biome
	Match func(in Inputs, p params.WorldParams) bool
}

// Rules is evaluated top to bottom; the first match wins. Cells no rule
// matches are tropical rainforest.
var Rules = []Rule{
	{world.BiomeWater, func(in Inputs, p params.WorldParams) bool { return in.Elevation <= p.Base.SeaLevel }},
	{world.BiomeWetland, func(in Inputs, p params.WorldParams) bool { return in.Wetness > p.Biome.WetlandFertility }},
	{world.BiomeAlpine, func(in Inputs, p params.WorldParams) bool {
		return in.Elevation > p.Base.SeaLevel+p.Biome.AlpineOffset
	}},
	{world.BiomePolarDesert, func(in Inputs, _ params.WorldParams) bool { return in.Temperature < -8 && in.Rainfall < 0.18 }},
	{world.BiomeTundra, func(in Inputs, _ params.WorldParams) bool { return in.Temperature < -8 }},
	{world.BiomeBorealForest, func(in Inputs, _ params.WorldParams) bool { return in.Temperature < 4 && in.Rainfall > 0.35 }},
	{world.BiomeTundra, func(in Inputs, _ params.WorldParams) bool { return in.Temperature < 4 }},
	{world.BiomeTemperateGrassland, func(in Inputs, _ params.WorldParams) bool { return in.Temperature < 15 && in.Rainfall < 0.2 }},
	{world.BiomeMediterranean, func(in Inputs, _ params.WorldParams) bool { return in.Temperature < 15 && in.Rainfall < 0.45 }},
	{world.BiomeTemperateForest, func(in Inputs, _ params.WorldParams) bool { return in.Temperature < 15 }},
	{world.BiomeHotDesert, func(in Inputs, _ params.WorldParams) bool { return in.Rainfall < 0.16 }},
	{world.BiomeSavanna, func(in Inputs, _ params.WorldParams) bool { return in.Rainfall < 0.38 }},
	{world.BiomeTropicalSeasonalForest, func(in Inputs, _ params.WorldParams) bool { return in.Rainfall < 0.62 }},
}

// Classify returns the biome of the first matching rule, falling back to
// tropical rainforest.
func Classify(in Inputs, p params.WorldParams) world.Biome {
	for _, r := range Rules {
		if r.Match(in, p) {
			return r.Biome
		}
	}
	return world.BiomeTropicalRainforest
}

// Wetness mixes rainfall with log-scaled accumulation.
func Wetness(rain, acc, weight float64) float64 {
	qn := clamp01(math.Log10(math.Max(acc, 1)) / 4)
	return (1-weight)*rain + weight*qn
}

// Fertility scores how productive a cell is for the fertility layer.
func Fertility(rain, wet, temp float64) float64 {
	return clamp01(rain*0.7 + wet*0.2 + (1-math.Abs(temp-18)/40)*0.1)
}

// Output groups the fields produced by the stage.
type Output struct {
	Biome     *core.Field[world.Biome]
	Fertility *core.Field[float64]
}

// Run classifies every cell and applies the configured smoothing passes.
func Run(ctx context.Context, elev, temp, rain, acc *core.Field[float64], p params.WorldParams) (*Output, error) {
	w, h := p.Width, p.Height
	biomes := core.NewCodeField[world.Biome](w, h)
	fert := core.NewFloatField(w, h)

	err := core.RowBands(ctx, h, p.Run.Workers, func(y0, y1 int) error {
		for i := y0 * w; i < y1*w; i++ {
			in := Inputs{
				Elevation:   elev.Cells()[i],
				Temperature: temp.Cells()[i],
				Rainfall:    rain.Cells()[i],
				Wetness:     Wetness(rain.Cells()[i], acc.Cells()[i], p.Biome.WetnessWeight),
			}
			biomes.Cells()[i] = Classify(in, p)
			fert.Cells()[i] = Fertility(in.Rainfall, in.Wetness, in.Temperature)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for pass := 0; pass < p.Biome.SmoothingPasses; pass++ {
		biomes = Smooth(biomes)
	}
	return &Output{Biome: biomes, Fertility: fert}, nil
}

// Smooth reassigns every land cell that differs from all of its land
// neighbors to the plurality land-neighbor biome. Ties go to the biome met
// first in D8 order. Water is never changed and never chosen. Cells are
// visited in row-major order and updated in place, so a reassigned cell is
// already seen by the cells after it and one pass leaves no speckle behind.
// The input field is not modified.
func Smooth(in *core.Field[world.Biome]) *core.Field[world.Biome] {
	out := in.Clone()
	cells := out.Cells()
	w, h := in.W, in.H

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if cells[i] == world.BiomeWater {
				continue
			}
			if b, ok := plurality(cells, w, h, x, y); ok {
				cells[i] = b
			}
		}
	}
	return out
}

// plurality reports the replacement for an isolated cell, or false when the
// cell matches at least one land neighbor or has none.
func plurality(src []world.Biome, w, h, x, y int) (world.Biome, bool) {
	center := src[y*w+x]
	var counts [world.BiomeCount]int
	var firstSeen [world.BiomeCount]int
	land := 0
	for rank, d := range core.D8 {
		n, ok := core.Neighbor(w, h, x, y, d)
		if !ok || src[n] == world.BiomeWater {
			continue
		}
		b := src[n]
		if b == center {
			return center, false
		}
		if counts[b] == 0 {
			firstSeen[b] = rank
		}
		counts[b]++
		land++
	}
	if land == 0 {
		return center, false
	}
	best, bestCount, bestRank := center, 0, len(core.D8)
	for b, c := range counts {
		if c == 0 {
			continue
		}
		if c > bestCount || (c == bestCount && firstSeen[b] < bestRank) {
			best, bestCount, bestRank = world.Biome(b), c, firstSeen[b]
		}
	}
	return best, true
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
