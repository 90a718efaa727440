package pipeline

import (
	"context"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/stages/basefields"
	"worldgen/internal/stages/biome"
	"worldgen/internal/stages/geology"
	"worldgen/internal/stages/hydrofinal"
	"worldgen/internal/stages/hydrology"
	"worldgen/internal/world"
	rng "worldgen/pkg/core"
)

// Stage names as they appear in reports, logs and errors.
const (
	StageInit          = "init"
	StageBaseFields    = "base_fields"
	StageSinks         = "sinks"
	StageRouting       = "routing"
	StageAccumulation  = "accumulation"
	StageErosion       = "erosion"
	StageBiome         = "biome"
	StageHydroFinalize = "hydro_finalize"
	StageGeology       = "geology"
	StageFinalize      = "finalize"
)

type output struct {
	name  world.LayerName
	layer core.Layer
}

// state is what a stage body sees: the validated params, the seed streams
// and the layers installed so far.
type state struct {
	p       params.WorldParams
	streams rng.Streams
	world   *world.World
}

type stage struct {
	name    string
	inputs  []world.LayerName
	outputs []world.LayerName
	run     func(ctx context.Context, s *state) ([]output, error)
}

// defaultStages is the fixed stage order. Each stage may only read layers
// listed in its inputs, all of which an earlier stage produced.
var defaultStages = []stage{
	{
		name: StageBaseFields,
		outputs: []world.LayerName{
			world.LayerBaseElevation, world.LayerTemperature, world.LayerRainfall,
			world.LayerPressure, world.LayerWindU, world.LayerWindV,
		},
		run: runBaseFields,
	},
	{
		name:    StageSinks,
		inputs:  []world.LayerName{world.LayerBaseElevation},
		outputs: []world.LayerName{world.LayerFilled},
		run:     runSinks,
	},
	{
		name:    StageRouting,
		inputs:  []world.LayerName{world.LayerFilled},
		outputs: []world.LayerName{world.LayerFlowDirection},
		run:     runRouting,
	},
	{
		name:    StageAccumulation,
		inputs:  []world.LayerName{world.LayerFilled, world.LayerFlowDirection, world.LayerRainfall},
		outputs: []world.LayerName{world.LayerAccumulation},
		run:     runAccumulation,
	},
	{
		name:    StageErosion,
		inputs:  []world.LayerName{world.LayerBaseElevation, world.LayerFlowDirection, world.LayerAccumulation},
		outputs: []world.LayerName{world.LayerElevation},
		run:     runErosion,
	},
	{
		name: StageBiome,
		inputs: []world.LayerName{
			world.LayerElevation, world.LayerTemperature, world.LayerRainfall, world.LayerAccumulation,
		},
		outputs: []world.LayerName{world.LayerBiome, world.LayerFertility},
		run:     runBiome,
	},
	{
		name:    StageHydroFinalize,
		inputs:  []world.LayerName{world.LayerElevation, world.LayerAccumulation},
		outputs: []world.LayerName{world.LayerWaterMask, world.LayerRiverClass, world.LayerLakeID},
		run:     runHydroFinalize,
	},
	{
		name:   StageGeology,
		inputs: []world.LayerName{world.LayerElevation},
		outputs: []world.LayerName{
			world.LayerProvince, world.LayerStrata, world.LayerRockType, world.LayerMineral,
		},
		run: runGeology,
	},
}

// StageNames lists the stages in execution order.
func StageNames() []string {
	names := make([]string, len(defaultStages))
	for i, st := range defaultStages {
		names[i] = st.name
	}
	return names
}

func floats(w *world.World, names ...world.LayerName) ([]*core.Field[float64], error) {
	out := make([]*core.Field[float64], len(names))
	for i, n := range names {
		f, err := world.Get[float64](w, n)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func runBaseFields(ctx context.Context, s *state) ([]output, error) {
	b, err := basefields.Generate(ctx, s.p, s.streams)
	if err != nil {
		return nil, err
	}
	return []output{
		{world.LayerBaseElevation, b.Elevation},
		{world.LayerTemperature, b.Temperature},
		{world.LayerRainfall, b.Rainfall},
		{world.LayerPressure, b.Pressure},
		{world.LayerWindU, b.WindU},
		{world.LayerWindV, b.WindV},
	}, nil
}

func runSinks(_ context.Context, s *state) ([]output, error) {
	base, err := world.Get[float64](s.world, world.LayerBaseElevation)
	if err != nil {
		return nil, err
	}
	filled, err := hydrology.FillSinks(base, s.p.Hydrology.FillEpsilon)
	if err != nil {
		return nil, err
	}
	return []output{{world.LayerFilled, filled}}, nil
}

func runRouting(ctx context.Context, s *state) ([]output, error) {
	filled, err := world.Get[float64](s.world, world.LayerFilled)
	if err != nil {
		return nil, err
	}
	dirs, err := hydrology.Route(ctx, filled, s.p.Run.Workers)
	if err != nil {
		return nil, err
	}
	if err := hydrology.VerifyRouting(filled, dirs); err != nil {
		return nil, err
	}
	return []output{{world.LayerFlowDirection, dirs}}, nil
}

func runAccumulation(_ context.Context, s *state) ([]output, error) {
	in, err := floats(s.world, world.LayerFilled, world.LayerRainfall)
	if err != nil {
		return nil, err
	}
	dirs, err := world.Get[core.Direction](s.world, world.LayerFlowDirection)
	if err != nil {
		return nil, err
	}
	weights := hydrology.BaseWeights(in[1], s.p.Hydrology.RainfallWeight)
	return []output{{world.LayerAccumulation, hydrology.Accumulate(in[0], dirs, weights)}}, nil
}

func runErosion(_ context.Context, s *state) ([]output, error) {
	in, err := floats(s.world, world.LayerBaseElevation, world.LayerAccumulation)
	if err != nil {
		return nil, err
	}
	dirs, err := world.Get[core.Direction](s.world, world.LayerFlowDirection)
	if err != nil {
		return nil, err
	}
	return []output{{world.LayerElevation, hydrology.Erode(in[0], dirs, in[1], s.p.Erosion)}}, nil
}

func runBiome(ctx context.Context, s *state) ([]output, error) {
	in, err := floats(s.world, world.LayerElevation, world.LayerTemperature, world.LayerRainfall, world.LayerAccumulation)
	if err != nil {
		return nil, err
	}
	out, err := biome.Run(ctx, in[0], in[1], in[2], in[3], s.p)
	if err != nil {
		return nil, err
	}
	return []output{{world.LayerBiome, out.Biome}, {world.LayerFertility, out.Fertility}}, nil
}

func runHydroFinalize(_ context.Context, s *state) ([]output, error) {
	in, err := floats(s.world, world.LayerElevation, world.LayerAccumulation)
	if err != nil {
		return nil, err
	}
	out := hydrofinal.Run(in[0], in[1], s.p)
	return []output{
		{world.LayerWaterMask, out.WaterMask},
		{world.LayerRiverClass, out.RiverClass},
		{world.LayerLakeID, out.LakeID},
	}, nil
}

func runGeology(ctx context.Context, s *state) ([]output, error) {
	elev, err := world.Get[float64](s.world, world.LayerElevation)
	if err != nil {
		return nil, err
	}
	out, err := geology.Run(ctx, elev, s.p, s.streams)
	if err != nil {
		return nil, err
	}
	return []output{
		{world.LayerProvince, out.Province},
		{world.LayerStrata, out.Strata},
		{world.LayerRockType, out.RockType},
		{world.LayerMineral, out.Mineral},
	}, nil
}
