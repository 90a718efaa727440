// Package geology assigns provinces, strata columns, surface rock and
// mineral occurrences from final elevation and the seed.
package geology

import (
	"context"
	"math"

	"worldgen/internal/core"
	"worldgen/internal/noise"
	"worldgen/internal/params"
	"worldgen/internal/world"
	rng "worldgen/pkg/core"
)

const (
	tagArc     = "geology/arc"
	tagStrata  = "geology/strata"
	tagFault   = "geology/fault"
	tagMineral = "geology/mineral"
)

// Output groups the fields produced by the stage.
type Output struct {
	Province *core.Field[world.Province]
	Strata   *world.Strata
	RockType *core.Field[world.Rock]
	Mineral  *core.Field[world.Mineral]
}

// Run computes every geology layer. Cells are independent, so rows are
// processed in parallel.
func Run(ctx context.Context, elev *core.Field[float64], p params.WorldParams, streams rng.Streams) (*Output, error) {
	w, h := elev.W, elev.H
	out := &Output{
		Province: core.NewCodeField[world.Province](w, h),
		Strata:   world.NewStrata(w, h, p.Geology.StrataLayers),
		RockType: core.NewCodeField[world.Rock](w, h),
		Mineral:  core.NewCodeField[world.Mineral](w, h),
	}
	arc := noise.New(streams.Seed(tagArc))
	strata := streams.Sampler(tagStrata)
	fault := streams.Sampler(tagFault)
	minerals := streams.Sampler(tagMineral)
	sea := p.Base.SeaLevel

	err := core.RowBands(ctx, h, p.Run.Workers, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				z := elev.Cells()[i]
				arcNoise := arc.FBM(float64(x)/float64(w), float64(y)/float64(h), 3, 3)
				prov := Classify(z, Slope(elev, x, y), arcNoise, sea)
				out.Province.Cells()[i] = prov

				stack := Column(prov, p.Geology, func(l int) float64 { return strata.AtLayer(x, y, l) }, fault.At(x, y))
				for l, st := range stack {
					out.Strata.Set(i, l, st)
				}
				out.RockType.Cells()[i] = stack[0].Rock
				out.Mineral.Cells()[i] = PickMineral(stack, prov, z-sea, p.Geology.OreRichness, func(m world.Mineral) float64 {
					return minerals.AtLayer(x, y, int(m))
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Classify picks a province. Submerged cells are oceanic; steep high ground
// is orogen, or volcanic arc where the arc noise is strong; low land is
// basin; the rest is craton.
func Classify(elev, slope, arcNoise, sea float64) world.Province {
	switch {
	case elev <= sea:
		return world.ProvinceOceanic
	case slope > 0.03 && elev > sea+0.2:
		if arcNoise > 0.62 {
			return world.ProvinceVolcanicArc
		}
		return world.ProvinceOrogen
	case elev < sea+0.07:
		return world.ProvinceBasin
	}
	return world.ProvinceCraton
}

// Slope is the largest absolute height difference to any neighbor.
func Slope(elev *core.Field[float64], x, y int) float64 {
	here := elev.At(x, y)
	s := 0.0
	for _, d := range core.D8 {
		if n, ok := core.Neighbor(elev.W, elev.H, x, y, d); ok {
			s = math.Max(s, math.Abs(here-elev.Cells()[n]))
		}
	}
	return s
}

// Column builds the strata stack of one cell. sample returns the cell's
// hash for layer l; fault is the cell's fault hash.
func Column(prov world.Province, g params.GeologyParams, sample func(l int) float64, fault float64) []world.Stratum {
	stack := make([]world.Stratum, max(g.StrataLayers, 1))
	for l := range stack {
		n := sample(l)
		stack[l] = world.Stratum{Rock: layerRock(prov, l, n), Thickness: 8 + n*28}
	}
	if g.FaultStrength > 0 && len(stack) > 1 && fault > 1-g.FaultStrength*0.12 {
		stack[0], stack[1] = stack[1], stack[0]
	}
	return stack
}

func layerRock(prov world.Province, layer int, n float64) world.Rock {
	switch prov {
	case world.ProvinceOceanic:
		if layer == 0 || n > 0.6 {
			return world.RockBasalt
		}
		return world.RockGabbro
	case world.ProvinceCraton:
		switch {
		case layer%3 == 0:
			return world.RockGranite
		case n > 0.66:
			return world.RockGneiss
		}
		return world.RockSandstone
	case world.ProvinceOrogen:
		if n > 0.52 {
			return world.RockSchist
		}
		return world.RockGneiss
	case world.ProvinceBasin:
		switch {
		case n > 0.6:
			return world.RockLimestone
		case n > 0.25:
			return world.RockShale
		}
		return world.RockSandstone
	case world.ProvinceVolcanicArc:
		if n > 0.55 {
			return world.RockRhyolite
		}
		return world.RockBasalt
	}
	return world.RockGranite
}
