package params

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"worldgen/internal/core"
)

// knob binds a flag-style key to one field of WorldParams. The table below
// drives FromMap, Apply, Snapshot and Digest, so the order of entries is part
// of the checksum contract.
type knob struct {
	key   string
	label string
	group string
	typ   core.ParamType
	i     func(*WorldParams) *int
	i64   func(*WorldParams) *int64
	f     func(*WorldParams) *float64
	// runtime knobs do not influence output and stay out of the digest.
	runtime bool
}

func intKnob(group, key, label string, get func(*WorldParams) *int) knob {
	return knob{key: key, label: label, group: group, typ: core.ParamTypeInt, i: get}
}

func floatKnob(group, key, label string, get func(*WorldParams) *float64) knob {
	return knob{key: key, label: label, group: group, typ: core.ParamTypeFloat, f: get}
}

var knobs = []knob{
	{key: "seed", label: "Seed", group: "World", typ: core.ParamTypeInt, i64: func(p *WorldParams) *int64 { return &p.Seed }},
	intKnob("World", "w", "Width", func(p *WorldParams) *int { return &p.Width }),
	intKnob("World", "h", "Height", func(p *WorldParams) *int { return &p.Height }),

	floatKnob("Base Fields", "sea_level", "Sea level", func(p *WorldParams) *float64 { return &p.Base.SeaLevel }),
	intKnob("Base Fields", "octaves", "Noise octaves", func(p *WorldParams) *int { return &p.Base.Octaves }),
	floatKnob("Base Fields", "frequency", "Noise frequency", func(p *WorldParams) *float64 { return &p.Base.Frequency }),
	floatKnob("Base Fields", "warp_strength", "Domain warp", func(p *WorldParams) *float64 { return &p.Base.WarpStrength }),
	intKnob("Base Fields", "base_smoothing", "Elevation smoothing passes", func(p *WorldParams) *int { return &p.Base.SmoothingPasses }),

	floatKnob("Climate", "lapse_rate", "Lapse rate (C/km)", func(p *WorldParams) *float64 { return &p.Climate.LapseRate }),
	intKnob("Climate", "moisture_rounds", "Moisture transport rounds", func(p *WorldParams) *int { return &p.Climate.MoistureRounds }),
	floatKnob("Climate", "uniform_rainfall", "Uniform rainfall", func(p *WorldParams) *float64 { return &p.Climate.UniformRainfall }),

	floatKnob("Hydrology", "fill_epsilon", "Sink fill epsilon", func(p *WorldParams) *float64 { return &p.Hydrology.FillEpsilon }),
	floatKnob("Hydrology", "rainfall_weight", "Rainfall weight", func(p *WorldParams) *float64 { return &p.Hydrology.RainfallWeight }),

	intKnob("Erosion", "erosion_iterations", "Hydraulic iterations", func(p *WorldParams) *int { return &p.Erosion.Iterations }),
	floatKnob("Erosion", "erosion_rate", "Erosion rate", func(p *WorldParams) *float64 { return &p.Erosion.ErosionRate }),
	floatKnob("Erosion", "erosion_threshold", "Accumulation threshold", func(p *WorldParams) *float64 { return &p.Erosion.AccumulationThreshold }),
	floatKnob("Erosion", "erosion_scale", "Accumulation scale", func(p *WorldParams) *float64 { return &p.Erosion.AccumulationScale }),
	intKnob("Erosion", "thermal_passes", "Thermal passes", func(p *WorldParams) *int { return &p.Erosion.ThermalPasses }),
	floatKnob("Erosion", "thermal_rate", "Thermal rate", func(p *WorldParams) *float64 { return &p.Erosion.ThermalRate }),
	floatKnob("Erosion", "talus_slope", "Talus slope", func(p *WorldParams) *float64 { return &p.Erosion.TalusSlope }),

	intKnob("Biomes", "biome_smoothing", "Speckle smoothing passes", func(p *WorldParams) *int { return &p.Biome.SmoothingPasses }),
	floatKnob("Biomes", "wetness_weight", "Wetness weight", func(p *WorldParams) *float64 { return &p.Biome.WetnessWeight }),
	floatKnob("Biomes", "wetland_fertility", "Wetland fertility", func(p *WorldParams) *float64 { return &p.Biome.WetlandFertility }),
	floatKnob("Biomes", "alpine_offset", "Alpine offset", func(p *WorldParams) *float64 { return &p.Biome.AlpineOffset }),

	floatKnob("Hydro Finalize", "stream_threshold", "Stream threshold", func(p *WorldParams) *float64 { return &p.Hydro.StreamThreshold }),
	floatKnob("Hydro Finalize", "river_threshold", "River threshold", func(p *WorldParams) *float64 { return &p.Hydro.RiverThreshold }),
	floatKnob("Hydro Finalize", "major_threshold", "Major river threshold", func(p *WorldParams) *float64 { return &p.Hydro.MajorThreshold }),
	floatKnob("Hydro Finalize", "pit_lake_min_inflow", "Pit lake min inflow", func(p *WorldParams) *float64 { return &p.Hydro.PitLakeMinInflow }),
	intKnob("Hydro Finalize", "pit_lake_max_cells", "Pit lake max cells", func(p *WorldParams) *int { return &p.Hydro.PitLakeMaxCells }),

	intKnob("Geology", "strata_layers", "Strata layers", func(p *WorldParams) *int { return &p.Geology.StrataLayers }),
	floatKnob("Geology", "fault_strength", "Fault strength", func(p *WorldParams) *float64 { return &p.Geology.FaultStrength }),
	floatKnob("Geology", "ore_richness", "Ore richness", func(p *WorldParams) *float64 { return &p.Geology.OreRichness }),

	{key: "workers", label: "Workers", group: "Run", typ: core.ParamTypeInt, i: func(p *WorldParams) *int { return &p.Run.Workers }, runtime: true},
}

func (k knob) format(p *WorldParams) string {
	switch {
	case k.i != nil:
		return strconv.Itoa(*k.i(p))
	case k.i64 != nil:
		return strconv.FormatInt(*k.i64(p), 10)
	default:
		return strconv.FormatFloat(*k.f(p), 'g', -1, 64)
	}
}

func (k knob) parse(p *WorldParams, v string) error {
	v = strings.TrimSpace(v)
	switch {
	case k.i != nil:
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*k.i(p) = n
	case k.i64 != nil:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*k.i64(p) = n
	default:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*k.f(p) = f
	}
	return nil
}

func lookupKnob(key string) (knob, bool) {
	for _, k := range knobs {
		if k.key == key {
			return k, true
		}
	}
	return knob{}, false
}

// FromMap populates params from a string map (flag-style key/value pairs),
// starting from Default. Unknown keys and unparsable values are ignored.
func FromMap(cfg map[string]string) WorldParams {
	p := Default()
	if cfg == nil {
		return p
	}
	if v, ok := cfg["preset"]; ok {
		if s, ok := Preset(v); ok {
			p.Width, p.Height = s.W, s.H
		}
	}
	for _, k := range knobs {
		if v, ok := cfg[k.key]; ok {
			_ = k.parse(&p, v)
		}
	}
	return p
}

// Apply overrides base with the given pairs and rejects unknown keys or
// unparsable values. Keys are applied in sorted order.
func Apply(base WorldParams, overrides map[string]string) (WorldParams, error) {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		k, ok := lookupKnob(key)
		if !ok {
			return base, fmt.Errorf("%w: unknown parameter %q", core.ErrConfig, key)
		}
		if err := k.parse(&base, overrides[key]); err != nil {
			return base, fmt.Errorf("%w: parameter %q: %v", core.ErrConfig, key, err)
		}
	}
	return base, nil
}

// Keys lists every accepted override key in declaration order.
func Keys() []string {
	out := make([]string, len(knobs))
	for i, k := range knobs {
		out[i] = k.key
	}
	return out
}

// Snapshot reports every knob grouped for display and metadata.
func (p WorldParams) Snapshot() core.ParameterSnapshot {
	var snap core.ParameterSnapshot
	index := map[string]int{}
	for _, k := range knobs {
		gi, ok := index[k.group]
		if !ok {
			gi = len(snap.Groups)
			index[k.group] = gi
			snap.Groups = append(snap.Groups, core.ParameterGroup{Name: k.group})
		}
		snap.Groups[gi].Params = append(snap.Groups[gi].Params, core.Parameter{
			Key:   k.key,
			Label: k.label,
			Type:  k.typ,
			Value: k.format(&p),
		})
	}
	return snap
}

const digestVersion = "worldgen params v1"

// Digest returns the canonical byte encoding of every output-affecting knob.
// Integers are written as int64 and floats as IEEE-754 bits, little-endian,
// each preceded by its key.
func (p WorldParams) Digest() []byte {
	buf := make([]byte, 0, 64+len(knobs)*24)
	buf = append(buf, digestVersion...)
	for _, k := range knobs {
		if k.runtime {
			continue
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(k.key)))
		buf = append(buf, k.key...)
		switch {
		case k.i != nil:
			buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(*k.i(&p))))
		case k.i64 != nil:
			buf = binary.LittleEndian.AppendUint64(buf, uint64(*k.i64(&p)))
		default:
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(*k.f(&p)))
		}
	}
	return buf
}
