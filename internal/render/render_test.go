package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldgen/internal/core"
	"worldgen/internal/world"
)

func TestPalettesCoverCatalogs(t *testing.T) {
	assert.Len(t, biomePalette, world.BiomeCount)
	assert.Len(t, provincePalette, world.ProvinceCount)
	assert.Len(t, rockPalette, world.RockCount)
	assert.Len(t, mineralPalette, world.MineralCount)
	assert.Len(t, directionPalette, len(core.D8)+1)
}

func TestFillPaletteClampsCodes(t *testing.T) {
	buf := make([]byte, 8)
	fillPaletteRGBA(buf, []uint8{0, 9}, []color.RGBA{{R: 1, A: 255}, {G: 2, A: 255}})
	assert.Equal(t, []byte{1, 0, 0, 255, 0, 2, 0, 255}, buf)

	fillPaletteRGBA(buf, []uint8{1, 1}, nil)
	assert.Equal(t, make([]byte, 8), buf)
}

func TestRampEndpoints(t *testing.T) {
	assert.Equal(t, greyRamp[0].col, greyRamp.at(-1))
	assert.Equal(t, greyRamp[1].col, greyRamp.at(2))
	assert.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, greyRamp.at(0.5))
}

func TestElevationColorSplitsAtSeaLevel(t *testing.T) {
	assert.Equal(t, seaRamp.at(1), ElevationColor(0.5, 0.5))
	assert.Equal(t, landRamp.at(0), ElevationColor(0.5000001, 0.5))
	assert.Equal(t, landRamp.at(1), ElevationColor(1, 0.5))
}

func TestImageForEveryLayerKind(t *testing.T) {
	elev := core.NewFloatField(3, 2)
	copy(elev.Cells(), []float64{0.1, 0.4, 0.5, 0.6, 0.8, 1})
	biomes := core.NewCodeField[world.Biome](3, 2)
	biomes.Fill(world.BiomeSavanna)
	lakes := core.NewIDField(3, 2)
	lakes.Set(1, 1, 4)
	strata := world.NewStrata(3, 2, 2)
	strata.Set(0, 0, world.Stratum{Rock: world.RockGranite, Thickness: 10})

	cases := []struct {
		name  world.LayerName
		layer core.Layer
	}{
		{world.LayerElevation, elev},
		{world.LayerAccumulation, elev},
		{world.LayerBiome, biomes},
		{world.LayerLakeID, lakes},
		{world.LayerStrata, strata},
	}
	for _, tc := range cases {
		t.Run(string(tc.name), func(t *testing.T) {
			img, err := Image(tc.name, tc.layer, 0.5)
			require.NoError(t, err)
			assert.Equal(t, 3, img.Bounds().Dx())
			assert.Equal(t, 2, img.Bounds().Dy())
		})
	}

	img, err := Image(world.LayerBiome, biomes, 0.5)
	require.NoError(t, err)
	assert.Equal(t, biomePalette[world.BiomeSavanna], img.RGBAAt(2, 1))

	img, err = Image(world.LayerLakeID, lakes, 0.5)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))
	assert.Equal(t, uint8(255), img.RGBAAt(1, 1).A)

	img, err = Image(world.LayerStrata, strata, 0.5)
	require.NoError(t, err)
	assert.Equal(t, rockPalette[world.RockGranite], img.RGBAAt(0, 0))
}

func TestFillRejectsUnknownScalarLayer(t *testing.T) {
	_, err := Image("mystery", core.NewFloatField(2, 2), 0.5)
	assert.Error(t, err)
	assert.Error(t, Fill(make([]byte, 4), world.LayerElevation, core.NewFloatField(2, 2), 0.5))
}
