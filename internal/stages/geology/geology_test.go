package geology

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/world"
	rng "worldgen/pkg/core"
)

func TestClassifyProvinces(t *testing.T) {
	const sea = 0.5
	assert.Equal(t, world.ProvinceOceanic, Classify(0.5, 0.2, 0.9, sea))
	assert.Equal(t, world.ProvinceOrogen, Classify(0.8, 0.05, 0.1, sea))
	assert.Equal(t, world.ProvinceVolcanicArc, Classify(0.8, 0.05, 0.9, sea))
	assert.Equal(t, world.ProvinceBasin, Classify(0.52, 0.05, 0.9, sea))
	assert.Equal(t, world.ProvinceCraton, Classify(0.65, 0.01, 0.9, sea))
}

func constant(v float64) func(int) float64 { return func(int) float64 { return v } }

func TestColumnThicknessAndFaultSwap(t *testing.T) {
	g := params.Default().Geology
	g.StrataLayers = 4

	stack := Column(world.ProvinceCraton, g, constant(0.5), 0)
	require.Len(t, stack, 4)
	assert.Equal(t, world.RockGranite, stack[0].Rock)
	assert.Equal(t, world.RockSandstone, stack[1].Rock)
	assert.Equal(t, world.RockGranite, stack[3].Rock)
	for _, st := range stack {
		assert.InDelta(t, 22.0, st.Thickness, 1e-12)
	}

	faulted := Column(world.ProvinceCraton, g, constant(0.5), 0.999)
	assert.Equal(t, world.RockSandstone, faulted[0].Rock)
	assert.Equal(t, world.RockGranite, faulted[1].Rock)

	g.FaultStrength = 0
	unfaulted := Column(world.ProvinceCraton, g, constant(0.5), 0.999)
	assert.Equal(t, stack, unfaulted)
}

func TestPickMineral(t *testing.T) {
	shale := []world.Stratum{{Rock: world.RockShale, Thickness: 10}}
	zero := func(world.Mineral) float64 { return 0 }
	assert.Equal(t, world.MineralNone, PickMineral(shale, world.ProvinceBasin, 0.05, 0.35, zero))

	// A strong shared sample favors coal in a shale basin at low elevation.
	high := func(world.Mineral) float64 { return 0.6 }
	assert.Equal(t, world.MineralCoal, PickMineral(shale, world.ProvinceBasin, 0.05, 0.35, high))

	// Saturated scores favor the lowest threshold.
	full := func(world.Mineral) float64 { return 1 }
	assert.Equal(t, world.MineralIron, PickMineral(shale, world.ProvinceCraton, 0.5, 0, full))
}

func TestHostBonusDecaysWithDepth(t *testing.T) {
	coal := ores[4]
	require.Equal(t, world.MineralCoal, coal.mineral)
	top := []world.Stratum{{Rock: world.RockShale}}
	third := []world.Stratum{{Rock: world.RockGranite}, {Rock: world.RockGranite}, {Rock: world.RockShale}}
	fourth := []world.Stratum{{Rock: world.RockGranite}, {Rock: world.RockGranite}, {Rock: world.RockGranite}, {Rock: world.RockShale}}
	assert.InDelta(t, 0.2, coal.hostBonus(top), 1e-12)
	assert.InDelta(t, 0.06, coal.hostBonus(third), 1e-12)
	assert.Zero(t, coal.hostBonus(fourth))
}

func slopeField() *core.Field[float64] {
	f := core.NewFloatField(24, 20)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			f.Set(x, y, float64(x)/float64(f.W-1))
		}
	}
	return f
}

func TestRunIsDeterministicAndConsistent(t *testing.T) {
	p := params.Default()
	p.Width, p.Height = 24, 20
	elev := slopeField()

	a, err := Run(context.Background(), elev, p, rng.NewStreams(9))
	require.NoError(t, err)
	p.Run.Workers = 1
	b, err := Run(context.Background(), elev, p, rng.NewStreams(9))
	require.NoError(t, err)

	ha, err := world.HashLayer(a.Strata)
	require.NoError(t, err)
	hb, err := world.HashLayer(b.Strata)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Equal(t, a.Mineral.Cells(), b.Mineral.Cells())

	for i, prov := range a.Province.Cells() {
		assert.Equal(t, a.Strata.Top(i), a.RockType.Cells()[i])
		if elev.Cells()[i] <= p.Base.SeaLevel {
			assert.Equal(t, world.ProvinceOceanic, prov)
		}
		assert.Less(t, int(a.Mineral.Cells()[i]), world.MineralCount)
	}

	c, err := Run(context.Background(), elev, p, rng.NewStreams(10))
	require.NoError(t, err)
	hc, err := world.HashLayer(c.Strata)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}
