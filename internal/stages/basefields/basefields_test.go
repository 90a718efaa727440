package basefields

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldgen/internal/params"
	rng "worldgen/pkg/core"
)

func testParams(seed int64) params.WorldParams {
	p := params.Default()
	p.Seed = seed
	p.Width, p.Height = 48, 40
	p.Climate.MoistureRounds = 8
	return p
}

func generate(t *testing.T, p params.WorldParams) *Output {
	t.Helper()
	out, err := Generate(context.Background(), p, rng.NewStreams(p.Seed))
	require.NoError(t, err)
	return out
}

func TestGenerateDeterministicAcrossWorkerCounts(t *testing.T) {
	p := testParams(42)
	p.Run.Workers = 1
	a := generate(t, p)
	p.Run.Workers = 7
	b := generate(t, p)

	assert.True(t, slices.Equal(a.Elevation.Cells(), b.Elevation.Cells()))
	assert.True(t, slices.Equal(a.Temperature.Cells(), b.Temperature.Cells()))
	assert.True(t, slices.Equal(a.Rainfall.Cells(), b.Rainfall.Cells()))
	assert.True(t, slices.Equal(a.WindV.Cells(), b.WindV.Cells()))
}

func TestGenerateSeedSensitive(t *testing.T) {
	a := generate(t, testParams(1))
	b := generate(t, testParams(2))
	assert.False(t, slices.Equal(a.Elevation.Cells(), b.Elevation.Cells()))
}

func TestFieldRanges(t *testing.T) {
	p := testParams(5)
	out := generate(t, p)
	below := 0
	for i, e := range out.Elevation.Cells() {
		require.GreaterOrEqual(t, e, 0.0)
		require.LessOrEqual(t, e, 1.0)
		r := out.Rainfall.Cells()[i]
		require.GreaterOrEqual(t, r, 0.0)
		require.LessOrEqual(t, r, 1.0)
		pr := out.Pressure.Cells()[i]
		require.GreaterOrEqual(t, pr, 0.0)
		require.LessOrEqual(t, pr, 1.0)
		if e <= p.Base.SeaLevel {
			below++
		}
	}
	// Rebalancing puts roughly SeaLevel of the cells under water.
	frac := float64(below) / float64(len(out.Elevation.Cells()))
	assert.InDelta(t, p.Base.SeaLevel, frac, 0.15)
	assert.InDelta(t, 1.0, slices.Max(out.Rainfall.Cells()), 1e-12)
}

func TestUniformRainfallWhenTransportDisabled(t *testing.T) {
	p := testParams(3)
	p.Climate.MoistureRounds = 0
	p.Climate.UniformRainfall = 0.3
	out := generate(t, p)
	for _, r := range out.Rainfall.Cells() {
		require.Equal(t, 0.3, r)
	}
}

func TestTemperatureFallsWithLatitudeAndAltitude(t *testing.T) {
	equator := temperature(0.5, 0.5, 0.5, 6.5)
	pole := temperature(0.02, 0.5, 0.5, 6.5)
	peak := temperature(0.5, 0.9, 0.5, 6.5)
	assert.Greater(t, equator, pole)
	assert.Greater(t, equator, peak)
	assert.InDelta(t, 6.5*0.4*7.5, temperature(0.5, 0.5001, 0.5, 6.5)-peak, 0.01)
}

func TestRebalancePinsQuantile(t *testing.T) {
	elev := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	rebalance(elev, 0.5)
	// kth = int(0.5*4) = 2, so the median lands exactly on sea level.
	assert.Equal(t, 0.5, elev[2])
	assert.Less(t, elev[1], 0.5)
	assert.Greater(t, elev[3], 0.5)
}

func TestAtmosphereBands(t *testing.T) {
	_, _, vNorth := atmosphere(0.1)
	_, _, vSouth := atmosphere(0.9)
	assert.Greater(t, vNorth, 0.0)
	assert.Less(t, vSouth, 0.0)
}
