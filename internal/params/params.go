// Package params defines the immutable knob set of a generation run.
package params

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"

	"worldgen/internal/core"
)

// WorldParams holds every input of a generation run. It is immutable once a
// run starts.
type WorldParams struct {
	Seed   int64 `yaml:"seed"`
	Width  int   `yaml:"width" validate:"gte=2,lte=4096"`
	Height int   `yaml:"height" validate:"gte=2,lte=4096"`

	Base      BaseParams      `yaml:"base"`
	Climate   ClimateParams   `yaml:"climate"`
	Hydrology HydrologyParams `yaml:"hydrology"`
	Erosion   ErosionParams   `yaml:"erosion"`
	Biome     BiomeParams     `yaml:"biome"`
	Hydro     HydroParams     `yaml:"hydro"`
	Geology   GeologyParams   `yaml:"geology"`
	Run       RunParams       `yaml:"run"`
}

// BaseParams shape the noise-driven elevation.
type BaseParams struct {
	SeaLevel        float64 `yaml:"sea_level" validate:"gte=0.05,lte=0.95"`
	Octaves         int     `yaml:"octaves" validate:"gte=1,lte=12"`
	Frequency       float64 `yaml:"frequency" validate:"gt=0,lte=64"`
	WarpStrength    float64 `yaml:"warp_strength" validate:"gte=0,lte=1"`
	SmoothingPasses int     `yaml:"smoothing_passes" validate:"gte=0,lte=8"`
}

// ClimateParams drive temperature and rainfall.
type ClimateParams struct {
	LapseRate float64 `yaml:"lapse_rate" validate:"gte=0,lte=20"`
	// MoistureRounds of zero selects uniform rainfall.
	MoistureRounds  int     `yaml:"moisture_rounds" validate:"gte=0,lte=512"`
	UniformRainfall float64 `yaml:"uniform_rainfall" validate:"gte=0,lte=1"`
}

// HydrologyParams control sink filling and accumulation weights.
type HydrologyParams struct {
	FillEpsilon    float64 `yaml:"fill_epsilon" validate:"gt=0,lte=0.001"`
	RainfallWeight float64 `yaml:"rainfall_weight" validate:"gte=0,lte=10"`
}

// ErosionParams control hydraulic erosion and thermal smoothing.
type ErosionParams struct {
	Iterations            int     `yaml:"iterations" validate:"gte=0,lte=1000"`
	ErosionRate           float64 `yaml:"erosion_rate" validate:"gte=0,lte=1"`
	AccumulationThreshold float64 `yaml:"accumulation_threshold" validate:"gte=0,lte=1e9"`
	AccumulationScale     float64 `yaml:"accumulation_scale" validate:"gt=0,lte=1e9"`
	ThermalPasses         int     `yaml:"thermal_passes" validate:"gte=0,lte=100"`
	ThermalRate           float64 `yaml:"thermal_rate" validate:"gte=0,lte=1"`
	TalusSlope            float64 `yaml:"talus_slope" validate:"gte=0,lte=1"`
}

// BiomeParams control classification and speckle smoothing.
type BiomeParams struct {
	SmoothingPasses  int     `yaml:"smoothing_passes" validate:"gte=0,lte=8"`
	WetnessWeight    float64 `yaml:"wetness_weight" validate:"gte=0,lte=1"`
	WetlandFertility float64 `yaml:"wetland_fertility" validate:"gte=0,lte=1"`
	AlpineOffset     float64 `yaml:"alpine_offset" validate:"gte=0,lte=1"`
}

// HydroParams hold river thresholds and pit-lake limits.
type HydroParams struct {
	StreamThreshold  float64 `yaml:"stream_threshold" validate:"gt=0,lte=1e12"`
	RiverThreshold   float64 `yaml:"river_threshold" validate:"gtfield=StreamThreshold,lte=1e12"`
	MajorThreshold   float64 `yaml:"major_threshold" validate:"gtfield=RiverThreshold,lte=1e12"`
	PitLakeMinInflow float64 `yaml:"pit_lake_min_inflow" validate:"gte=0,lte=1e12"`
	PitLakeMaxCells  int     `yaml:"pit_lake_max_cells" validate:"gte=0"`
}

// GeologyParams control strata and mineral placement.
type GeologyParams struct {
	StrataLayers  int     `yaml:"strata_layers" validate:"gte=1,lte=16"`
	FaultStrength float64 `yaml:"fault_strength" validate:"gte=0,lte=1"`
	OreRichness   float64 `yaml:"ore_richness" validate:"gte=0,lte=1"`
}

// RunParams affect scheduling only and never the generated content.
type RunParams struct {
	Workers int `yaml:"workers" validate:"gte=0,lte=256"`
}

// Default returns the standard configuration.
func Default() WorldParams {
	return WorldParams{
		Seed:   42,
		Width:  512,
		Height: 512,
		Base: BaseParams{
			SeaLevel:        0.5,
			Octaves:         6,
			Frequency:       2.1,
			WarpStrength:    0.03,
			SmoothingPasses: 2,
		},
		Climate: ClimateParams{
			LapseRate:       6.5,
			MoistureRounds:  42,
			UniformRainfall: 0.5,
		},
		Hydrology: HydrologyParams{
			FillEpsilon:    1e-6,
			RainfallWeight: 0.5,
		},
		Erosion: ErosionParams{
			Iterations:            24,
			ErosionRate:           0.035,
			AccumulationThreshold: 4,
			AccumulationScale:     64,
			ThermalPasses:         2,
			ThermalRate:           0.25,
			TalusSlope:            0.012,
		},
		Biome: BiomeParams{
			SmoothingPasses:  1,
			WetnessWeight:    0.4,
			WetlandFertility: 0.85,
			AlpineOffset:     0.28,
		},
		Hydro: HydroParams{
			StreamThreshold:  80,
			RiverThreshold:   260,
			MajorThreshold:   900,
			PitLakeMinInflow: 8,
			PitLakeMaxCells:  6000,
		},
		Geology: GeologyParams{
			StrataLayers:  6,
			FaultStrength: 0.5,
			OreRichness:   0.35,
		},
		Run: RunParams{Workers: runtime.NumCPU()},
	}
}

var presets = map[string]core.Size{
	"small":  {W: 256, H: 256},
	"medium": {W: 512, H: 512},
	"large":  {W: 1024, H: 1024},
}

// Preset returns the grid size registered under name.
func Preset(name string) (core.Size, bool) {
	s, ok := presets[strings.ToLower(name)]
	return s, ok
}

// WithPreset returns a copy sized by the named preset.
func (p WorldParams) WithPreset(name string) (WorldParams, error) {
	s, ok := Preset(name)
	if !ok {
		return p, fmt.Errorf("%w: unknown size preset %q", core.ErrConfig, name)
	}
	p.Width, p.Height = s.W, s.H
	return p, nil
}

// Size returns the grid dimensions.
func (p WorldParams) Size() core.Size { return core.Size{W: p.Width, H: p.Height} }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every out-of-range knob as a single ErrConfig.
func (p WorldParams) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", core.ErrConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s violates %s (got %v)", fe.Namespace(), rule, fe.Value()))
	}
	return fmt.Errorf("%w: %s", core.ErrConfig, strings.Join(msgs, "; "))
}
