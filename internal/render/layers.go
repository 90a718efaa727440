// Package render turns world layers into RGBA pixels for PNG export and the
// viewer.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"worldgen/internal/core"
	"worldgen/internal/world"
)

// ImageLayers are the layers that have a meaningful picture, in the order
// the viewer cycles through them.
var ImageLayers = []world.LayerName{
	world.LayerElevation,
	world.LayerBiome,
	world.LayerWaterMask,
	world.LayerRiverClass,
	world.LayerTemperature,
	world.LayerRainfall,
	world.LayerAccumulation,
	world.LayerFertility,
	world.LayerProvince,
	world.LayerRockType,
	world.LayerMineral,
	world.LayerPressure,
	world.LayerLakeID,
	world.LayerFlowDirection,
	world.LayerBaseElevation,
	world.LayerFilled,
}

var (
	landRamp = ramp{
		{0.0, color.RGBA{R: 90, G: 150, B: 100, A: 255}},
		{0.4, color.RGBA{R: 190, G: 160, B: 80, A: 255}},
		{0.75, color.RGBA{R: 140, G: 110, B: 90, A: 255}},
		{1.0, color.RGBA{R: 240, G: 235, B: 215, A: 255}},
	}
	seaRamp = ramp{
		{0.0, color.RGBA{R: 20, G: 30, B: 80, A: 255}},
		{1.0, color.RGBA{R: 70, G: 105, B: 160, A: 255}},
	}
	temperatureRamp = ramp{
		{0.0, color.RGBA{R: 40, G: 60, B: 160, A: 255}},
		{0.45, color.RGBA{R: 220, G: 230, B: 240, A: 255}},
		{0.75, color.RGBA{R: 240, G: 170, B: 60, A: 255}},
		{1.0, color.RGBA{R: 180, G: 30, B: 30, A: 255}},
	}
	moistureRamp = ramp{
		{0.0, color.RGBA{R: 210, G: 190, B: 140, A: 255}},
		{0.5, color.RGBA{R: 90, G: 170, B: 90, A: 255}},
		{1.0, color.RGBA{R: 30, G: 80, B: 160, A: 255}},
	}
	flowRamp = ramp{
		{0.0, color.RGBA{R: 10, G: 10, B: 20, A: 255}},
		{0.6, color.RGBA{R: 50, G: 120, B: 200, A: 255}},
		{1.0, color.RGBA{R: 200, G: 240, B: 255, A: 255}},
	}
	greyRamp = ramp{
		{0.0, color.RGBA{A: 255}},
		{1.0, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	}
)

var (
	biomePalette = []color.RGBA{
		{R: 40, G: 70, B: 140, A: 255},   // water
		{R: 60, G: 110, B: 90, A: 255},   // wetland
		{R: 200, G: 200, B: 210, A: 255}, // alpine
		{R: 235, G: 235, B: 240, A: 255}, // polar desert
		{R: 160, G: 170, B: 150, A: 255}, // tundra
		{R: 40, G: 90, B: 70, A: 255},    // boreal forest
		{R: 180, G: 190, B: 110, A: 255}, // temperate grassland
		{R: 170, G: 160, B: 90, A: 255},  // mediterranean
		{R: 50, G: 130, B: 60, A: 255},   // temperate forest
		{R: 230, G: 200, B: 130, A: 255}, // hot desert
		{R: 200, G: 180, B: 80, A: 255},  // savanna
		{R: 100, G: 150, B: 50, A: 255},  // tropical seasonal forest
		{R: 20, G: 110, B: 40, A: 255},   // tropical rainforest
		{R: 120, G: 110, B: 100, A: 255}, // barren
	}
	waterPalette = []color.RGBA{
		{R: 120, G: 110, B: 90, A: 255}, // land
		{R: 60, G: 140, B: 200, A: 255}, // lake
		{R: 20, G: 40, B: 110, A: 255},  // ocean
		{R: 90, G: 180, B: 230, A: 255}, // river
	}
	riverPalette = []color.RGBA{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 90, G: 150, B: 200, A: 255},
		{R: 60, G: 120, B: 220, A: 255},
		{R: 30, G: 70, B: 230, A: 255},
	}
	provincePalette = []color.RGBA{
		{R: 30, G: 50, B: 100, A: 255},   // oceanic
		{R: 170, G: 150, B: 120, A: 255}, // craton
		{R: 150, G: 80, B: 60, A: 255},   // orogen
		{R: 110, G: 140, B: 90, A: 255},  // basin
		{R: 200, G: 60, B: 40, A: 255},   // volcanic arc
	}
	rockPalette = []color.RGBA{
		{R: 50, G: 50, B: 55, A: 255},    // basalt
		{R: 80, G: 85, B: 80, A: 255},    // gabbro
		{R: 200, G: 170, B: 160, A: 255}, // granite
		{R: 220, G: 190, B: 130, A: 255}, // sandstone
		{R: 225, G: 225, B: 210, A: 255}, // limestone
		{R: 110, G: 120, B: 130, A: 255}, // schist
		{R: 150, G: 140, B: 150, A: 255}, // gneiss
		{R: 100, G: 90, B: 80, A: 255},   // shale
		{R: 190, G: 120, B: 110, A: 255}, // rhyolite
	}
	mineralPalette = []color.RGBA{
		{R: 20, G: 20, B: 20, A: 255},    // none
		{R: 170, G: 70, B: 40, A: 255},   // iron
		{R: 60, G: 170, B: 140, A: 255},  // copper
		{R: 240, G: 200, B: 40, A: 255},  // gold
		{R: 170, G: 170, B: 190, A: 255}, // tin
		{R: 70, G: 60, B: 60, A: 255},    // coal
		{R: 200, G: 60, B: 200, A: 255},  // gem
	}
	directionPalette = []color.RGBA{
		{R: 230, G: 60, B: 60, A: 255},
		{R: 230, G: 150, B: 60, A: 255},
		{R: 220, G: 220, B: 60, A: 255},
		{R: 120, G: 220, B: 60, A: 255},
		{R: 60, G: 200, B: 160, A: 255},
		{R: 60, G: 140, B: 230, A: 255},
		{R: 120, G: 80, B: 220, A: 255},
		{R: 210, G: 70, B: 200, A: 255},
		{R: 0, G: 0, B: 0, A: 255}, // none
	}
)

// Fill writes 4*W*H RGBA bytes for layer l into buf. sea is the sea level
// used to split the elevation colouring.
func Fill(buf []byte, name world.LayerName, l core.Layer, sea float64) error {
	size := l.Size()
	if len(buf) < 4*size.Cells() {
		return fmt.Errorf("render %s: buffer holds %d bytes, need %d", name, len(buf), 4*size.Cells())
	}
	switch f := l.(type) {
	case *core.Field[float64]:
		return fillScalar(buf, name, f.Cells(), sea)
	case *core.Field[world.Biome]:
		fillPaletteRGBA(buf, f.Cells(), biomePalette)
	case *core.Field[world.WaterClass]:
		fillPaletteRGBA(buf, f.Cells(), waterPalette)
	case *core.Field[world.RiverClass]:
		fillPaletteRGBA(buf, f.Cells(), riverPalette)
	case *core.Field[world.Province]:
		fillPaletteRGBA(buf, f.Cells(), provincePalette)
	case *core.Field[world.Rock]:
		fillPaletteRGBA(buf, f.Cells(), rockPalette)
	case *core.Field[world.Mineral]:
		fillPaletteRGBA(buf, f.Cells(), mineralPalette)
	case *core.Field[core.Direction]:
		fillPaletteRGBA(buf, f.Cells(), directionPalette)
	case *core.Field[uint32]:
		for i, id := range f.Cells() {
			put(buf, i, idColor(id))
		}
	case *world.Strata:
		for i := 0; i < size.Cells(); i++ {
			put(buf, i, rockPalette[min(int(f.Top(i)), len(rockPalette)-1)])
		}
	default:
		return fmt.Errorf("render %s: unsupported layer type %T", name, l)
	}
	return nil
}

func fillScalar(buf []byte, name world.LayerName, cells []float64, sea float64) error {
	switch name {
	case world.LayerElevation, world.LayerBaseElevation, world.LayerFilled:
		for i, v := range cells {
			put(buf, i, ElevationColor(v, sea))
		}
	case world.LayerTemperature:
		fillRampRGBA(buf, cells, temperatureRamp, func(v float64) float64 { return (v + 30) / 65 })
	case world.LayerRainfall, world.LayerFertility:
		fillRampRGBA(buf, cells, moistureRamp, identity)
	case world.LayerAccumulation:
		peak := 1.0
		for _, v := range cells {
			peak = math.Max(peak, v)
		}
		logPeak := math.Max(math.Log10(peak), 1e-9)
		fillRampRGBA(buf, cells, flowRamp, func(v float64) float64 {
			return math.Log10(math.Max(v, 1)) / logPeak
		})
	case world.LayerWindU, world.LayerWindV:
		fillRampRGBA(buf, cells, temperatureRamp, func(v float64) float64 { return (v + 1) / 2 })
	case world.LayerPressure:
		fillRampRGBA(buf, cells, greyRamp, identity)
	default:
		return fmt.Errorf("render %s: no colour ramp for scalar layer", name)
	}
	return nil
}

// ElevationColor shades submerged cells by depth and land by height above
// sea level.
func ElevationColor(v, sea float64) color.RGBA {
	if v <= sea {
		if sea <= 0 {
			return seaRamp.at(0)
		}
		return seaRamp.at(v / sea)
	}
	if sea >= 1 {
		return landRamp.at(1)
	}
	return landRamp.at((v - sea) / (1 - sea))
}

// idColor gives each lake id a stable colour; id 0 is transparent.
func idColor(id uint32) color.RGBA {
	if id == 0 {
		return color.RGBA{}
	}
	h := id * 2654435761
	return color.RGBA{R: 60 + uint8(h>>24)%150, G: 90 + uint8(h>>16)%140, B: 150 + uint8(h>>8)%100, A: 255}
}

func identity(v float64) float64 { return v }

// Image renders l into a new RGBA image.
func Image(name world.LayerName, l core.Layer, sea float64) (*image.RGBA, error) {
	size := l.Size()
	img := image.NewRGBA(image.Rect(0, 0, size.W, size.H))
	if err := Fill(img.Pix, name, l, sea); err != nil {
		return nil, err
	}
	return img, nil
}
