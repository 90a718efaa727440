package biome

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/world"
)

const (
	forest = world.BiomeTemperateForest
	desert = world.BiomeHotDesert
	savan  = world.BiomeSavanna
	tundra = world.BiomeTundra
	water  = world.BiomeWater
)

func grid(w, h int, cells ...world.Biome) *core.Field[world.Biome] {
	f := core.NewCodeField[world.Biome](w, h)
	copy(f.Cells(), cells)
	return f
}

func TestClassifyFirstMatchWins(t *testing.T) {
	p := params.Default()
	sea := p.Base.SeaLevel
	cases := []struct {
		name string
		in   Inputs
		want world.Biome
	}{
		{"submerged beats wetness", Inputs{Elevation: sea, Wetness: 1}, world.BiomeWater},
		{"wetland beats alpine", Inputs{Elevation: 0.95, Wetness: 0.9}, world.BiomeWetland},
		{"alpine", Inputs{Elevation: sea + 0.3, Temperature: 30}, world.BiomeAlpine},
		{"polar desert", Inputs{Elevation: 0.6, Temperature: -10, Rainfall: 0.1}, world.BiomePolarDesert},
		{"cold tundra", Inputs{Elevation: 0.6, Temperature: -10, Rainfall: 0.5}, world.BiomeTundra},
		{"boreal", Inputs{Elevation: 0.6, Temperature: 0, Rainfall: 0.5}, world.BiomeBorealForest},
		{"dry tundra", Inputs{Elevation: 0.6, Temperature: 0, Rainfall: 0.2}, world.BiomeTundra},
		{"grassland", Inputs{Elevation: 0.6, Temperature: 10, Rainfall: 0.1}, world.BiomeTemperateGrassland},
		{"mediterranean", Inputs{Elevation: 0.6, Temperature: 10, Rainfall: 0.3}, world.BiomeMediterranean},
		{"temperate forest", Inputs{Elevation: 0.6, Temperature: 10, Rainfall: 0.6}, world.BiomeTemperateForest},
		{"hot desert", Inputs{Elevation: 0.6, Temperature: 25, Rainfall: 0.1}, world.BiomeHotDesert},
		{"savanna", Inputs{Elevation: 0.6, Temperature: 25, Rainfall: 0.3}, world.BiomeSavanna},
		{"seasonal", Inputs{Elevation: 0.6, Temperature: 25, Rainfall: 0.5}, world.BiomeTropicalSeasonalForest},
		{"rainforest", Inputs{Elevation: 0.6, Temperature: 25, Rainfall: 0.8}, world.BiomeTropicalRainforest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.in, p))
		})
	}
}

func TestSmoothRemovesSpeckleAndIsIdempotent(t *testing.T) {
	speckled := grid(5, 5,
		forest, forest, forest, forest, forest,
		forest, forest, forest, forest, forest,
		forest, forest, desert, forest, forest,
		forest, forest, forest, forest, forest,
		forest, forest, forest, forest, forest,
	)
	once := Smooth(speckled)
	for _, b := range once.Cells() {
		require.Equal(t, forest, b)
	}
	assert.Equal(t, desert, speckled.At(2, 2), "input must stay untouched")

	assert.Equal(t, once.Cells(), Smooth(once).Cells())
}

func TestSmoothAdjacentSpecklesSettleInOnePass(t *testing.T) {
	// Every land cell starts isolated. Updating in row-major order lets the
	// first reassignment anchor the rest instead of the row swapping values.
	f := grid(3, 2,
		tundra, savan, desert,
		water, water, water,
	)
	once := Smooth(f)
	assert.Equal(t, []world.Biome{savan, savan, savan, water, water, water}, once.Cells())
	assert.Equal(t, once.Cells(), Smooth(once).Cells())
}

func TestSmoothIsFixedPointOnMixedField(t *testing.T) {
	kinds := []world.Biome{forest, desert, savan, tundra, water}
	f := core.NewCodeField[world.Biome](17, 13)
	for i := range f.Cells() {
		f.Cells()[i] = kinds[(i*7+i/5)%len(kinds)]
	}
	once := Smooth(f)
	assert.Equal(t, once.Cells(), Smooth(once).Cells())
}

func TestSmoothTieBreaksByNeighborOrder(t *testing.T) {
	// Center desert, neighbors split 4/4 between savanna and forest. N is
	// savanna, so savanna wins the tie.
	f := grid(3, 3,
		forest, savan, savan,
		forest, desert, savan,
		forest, forest, savan,
	)
	out := Smooth(f)
	assert.Equal(t, savan, out.At(1, 1))
}

func TestSmoothLeavesWaterAndMatchedCells(t *testing.T) {
	f := grid(3, 3,
		water, water, water,
		water, desert, water,
		water, water, forest,
	)
	out := Smooth(f)
	// The only land neighbor of the center is forest; water never wins.
	assert.Equal(t, forest, out.At(1, 1))
	assert.Equal(t, water, out.At(0, 0))

	lone := grid(3, 1, water, desert, water)
	out = Smooth(lone)
	assert.Equal(t, desert, out.At(1, 0))
}

func TestClassifyNeverAssignsBarren(t *testing.T) {
	p := params.Default()
	for e := 0.0; e <= 1; e += 0.05 {
		for temp := -30.0; temp <= 40; temp += 2.5 {
			for r := 0.0; r <= 1; r += 0.05 {
				in := Inputs{Elevation: e, Temperature: temp, Rainfall: r, Wetness: r}
				require.NotEqual(t, world.BiomeBarren, Classify(in, p), "%+v", in)
			}
		}
	}
}

func TestRunProducesFertilityInRange(t *testing.T) {
	p := params.Default()
	p.Width, p.Height = 4, 3
	elev := core.NewFloatField(4, 3)
	temp := core.NewFloatField(4, 3)
	rain := core.NewFloatField(4, 3)
	acc := core.NewFloatField(4, 3)
	for i := range elev.Cells() {
		elev.Cells()[i] = 0.3 + 0.05*float64(i)
		temp.Cells()[i] = float64(i) * 3
		rain.Cells()[i] = float64(i) / 12
		acc.Cells()[i] = float64(i + 1)
	}
	out, err := Run(context.Background(), elev, temp, rain, acc, p)
	require.NoError(t, err)
	assert.Equal(t, world.BiomeWater, out.Biome.Cells()[0])
	for _, v := range out.Fertility.Cells() {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestWetnessUsesAccumulation(t *testing.T) {
	assert.InDelta(t, 0.6*0.5, Wetness(0.5, 1, 0.4), 1e-12)
	assert.InDelta(t, 0.6*0.5+0.4*0.5, Wetness(0.5, 100, 0.4), 1e-12)
	assert.InDelta(t, 0.6*0.5+0.4, Wetness(0.5, 1e9, 0.4), 1e-12)
}
