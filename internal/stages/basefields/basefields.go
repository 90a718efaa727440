// Package basefields builds the noise-driven elevation and the latitude
// driven climate fields every later stage starts from.
package basefields

import (
	"context"
	"math"
	"slices"

	"worldgen/internal/core"
	"worldgen/internal/noise"
	"worldgen/internal/params"
	rng "worldgen/pkg/core"
)

// Stream tags. Changing a tag changes every world.
const (
	tagWarpX       = "basefields/warp-x"
	tagWarpY       = "basefields/warp-y"
	tagContinental = "basefields/continental"
	tagPlate       = "basefields/plate"
	tagRidges      = "basefields/ridges"
	tagBelts       = "basefields/belts"
	tagBasin       = "basefields/basin"
)

// Output groups the fields produced by the stage.
type Output struct {
	Elevation   *core.Field[float64]
	Temperature *core.Field[float64]
	Rainfall    *core.Field[float64]
	Pressure    *core.Field[float64]
	WindU       *core.Field[float64]
	WindV       *core.Field[float64]
}

type sources struct {
	warpX, warpY, continental, plate, ridges, belts, basin noise.Source
}

func newSources(s rng.Streams) sources {
	return sources{
		warpX:       noise.New(s.Seed(tagWarpX)),
		warpY:       noise.New(s.Seed(tagWarpY)),
		continental: noise.New(s.Seed(tagContinental)),
		plate:       noise.New(s.Seed(tagPlate)),
		ridges:      noise.New(s.Seed(tagRidges)),
		belts:       noise.New(s.Seed(tagBelts)),
		basin:       noise.New(s.Seed(tagBasin)),
	}
}

// Generate produces elevation, temperature, rainfall, pressure and wind.
func Generate(ctx context.Context, p params.WorldParams, streams rng.Streams) (*Output, error) {
	w, h := p.Width, p.Height
	out := &Output{
		Elevation:   core.NewFloatField(w, h),
		Temperature: core.NewFloatField(w, h),
		Rainfall:    core.NewFloatField(w, h),
		Pressure:    core.NewFloatField(w, h),
		WindU:       core.NewFloatField(w, h),
		WindV:       core.NewFloatField(w, h),
	}
	src := newSources(streams)
	workers := p.Run.Workers

	err := core.RowBands(ctx, h, workers, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			lat := (float64(y) + 0.5) / float64(h)
			pressure, u, v := atmosphere(lat)
			for x := 0; x < w; x++ {
				i := y*w + x
				out.Elevation.Cells()[i] = src.elevation(p.Base, float64(x)/float64(w), float64(y)/float64(h))
				out.Pressure.Cells()[i] = pressure
				out.WindU.Cells()[i] = u
				out.WindV.Cells()[i] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	elev := out.Elevation
	for pass := 0; pass < p.Base.SmoothingPasses; pass++ {
		next, err := smooth(ctx, elev, workers)
		if err != nil {
			return nil, err
		}
		elev = next
	}
	rebalance(elev.Cells(), p.Base.SeaLevel)
	out.Elevation = elev

	err = core.RowBands(ctx, h, workers, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			lat := (float64(y) + 0.5) / float64(h)
			for x := 0; x < w; x++ {
				i := y*w + x
				out.Temperature.Cells()[i] = temperature(lat, elev.Cells()[i], p.Base.SeaLevel, p.Climate.LapseRate)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.Climate.MoistureRounds == 0 {
		out.Rainfall.Fill(p.Climate.UniformRainfall)
	} else {
		transportMoisture(out, p.Base.SeaLevel, p.Climate.MoistureRounds)
	}
	return out, nil
}

// atmosphere returns the pressure band and prevailing wind for a latitude
// in (0, 1).
func atmosphere(lat float64) (pressure, u, v float64) {
	hadley := math.Sin(lat * 2 * math.Pi * 3)
	pressure = clamp(0.5+0.45*hadley, 0, 1)
	u = clamp(math.Sin(lat*2*math.Pi*2), -1, 1)
	v = math.Copysign(1, 0.5-lat) * (1 - math.Abs(u)*0.65)
	return pressure, u, v
}

func (s sources) elevation(b params.BaseParams, nx, ny float64) float64 {
	f := b.Frequency
	warpX := s.warpX.FBM(nx*0.9, ny*0.9, 3, f*0.65)
	warpY := s.warpY.FBM(nx*0.9, ny*0.9, 3, f*0.65)
	wx := nx + (warpX-0.5)*b.WarpStrength*1.8
	wy := ny + (warpY-0.5)*b.WarpStrength*1.8

	continental := s.continental.FBM(wx, wy, b.Octaves, f*1.05)
	plate := s.plate.FBM(wx*0.55, wy*0.55, 4, f*0.8)
	ridges := s.ridges.Ridged(wx, wy, 5, f*1.1)
	belts := s.belts.Ridged(wx*0.6, wy*0.6, 4, f)
	basin := s.basin.FBM(wx*1.4, wy*1.4, 4, f*1.25)

	continentality := clamp((continental-0.5)*1.25+(plate-0.5)*0.7+0.5, 0, 1)
	uplift := clamp(math.Pow(0.55*ridges+0.45*belts, 1.3), 0, 1)
	e := continentality*0.76 + uplift*0.24 - basin*0.16
	return clamp(e*e, 0, 1)
}

// smooth applies one 3x3 weighted blur to interior cells.
func smooth(ctx context.Context, in *core.Field[float64], workers int) (*core.Field[float64], error) {
	const (
		center   = 0.55
		straight = 0.08
		diagonal = 0.045
	)
	out := in.Clone()
	src := in.Cells()
	dst := out.Cells()
	w, h := in.W, in.H
	err := core.RowBands(ctx, h, workers, func(y0, y1 int) error {
		for y := max(y0, 1); y < min(y1, h-1); y++ {
			for x := 1; x < w-1; x++ {
				i := y*w + x
				sum, weight := src[i]*center, center
				for _, d := range core.D8 {
					n, _ := core.Neighbor(w, h, x, y, d)
					k := straight
					if d.Distance() > 1 {
						k = diagonal
					}
					sum += src[n] * k
					weight += k
				}
				dst[i] = clamp(sum/weight, 0, 1)
			}
		}
		return nil
	})
	return out, err
}

// rebalance shifts elevation so that the sea-level quantile sits at sea
// level, then stretches relief around it.
func rebalance(elev []float64, sea float64) {
	sorted := slices.Clone(elev)
	slices.Sort(sorted)
	q := clamp(sea, 0.05, 0.95)
	kth := int(q * float64(len(sorted)-1))
	shift := sea - sorted[kth]
	for i, v := range elev {
		v = clamp(v+shift, 0, 1)
		elev[i] = clamp(sea+(v-sea)*1.2, 0, 1)
	}
}

func temperature(lat, elev, sea, lapse float64) float64 {
	latFactor := math.Abs(lat-0.5) * 2
	maritime := 0.0
	if elev <= sea {
		maritime = (1 - latFactor) * 2.5
	}
	elevKm := math.Max(elev-sea, 0) * 7.5
	return 33 - 57*latFactor + maritime - lapse*elevKm
}

// transportMoisture advects moisture downwind for a fixed number of rounds
// and precipitates it on uplift and convection. Rainfall is normalized to
// [0, 1]. The scan is row-major and sequential.
func transportMoisture(out *Output, sea float64, rounds int) {
	w, h := out.Elevation.W, out.Elevation.H
	elev := out.Elevation.Cells()
	temp := out.Temperature.Cells()
	windU := out.WindU.Cells()
	windV := out.WindV.Cells()
	rain := out.Rainfall.Cells()

	moisture := make([]float64, w*h)
	next := make([]float64, w*h)
	for i, e := range elev {
		if e <= sea {
			moisture[i] = 0.9
		} else {
			moisture[i] = 0.12
		}
	}

	for r := 0; r < rounds; r++ {
		clear(next)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				ocean := elev[i] <= sea
				m := moisture[i]
				if ocean {
					m += 0.10
				}
				u, v := windU[i], windV[i]
				mag := clamp(math.Hypot(u, v), 0, 1.2)

				ux, uy := x+1, y+1
				if u > 0 {
					ux = x - 1
				}
				if v > 0 {
					uy = y - 1
				}
				ux, uy = clampInt(ux, 0, w-1), clampInt(uy, 0, h-1)
				uplift := math.Max(elev[i]-elev[uy*w+ux], 0)

				convective := clamp((temp[i]+8)/44, 0, 1)
				rate := clamp(0.015+uplift*1.25+convective*0.06+mag*0.02, 0.01, 0.85)
				precip := math.Min(m*rate, m)
				rain[i] += precip
				m -= precip
				if ocean {
					m += 0.06
				}
				m *= 0.992

				transfer := m * clamp(0.12+0.6*mag, 0.08, 0.8)
				next[i] += m - transfer
				nx := clampInt(x+int(math.Copysign(1, u)), 0, w-1)
				ny := clampInt(y+int(math.Copysign(1, v)), 0, h-1)
				next[ny*w+nx] += transfer
			}
		}
		moisture, next = next, moisture
	}

	peak := 0.0
	for _, v := range rain {
		peak = math.Max(peak, v)
	}
	inv := 1.0
	if peak > 0 {
		inv = 1 / peak
	}
	for i, v := range rain {
		rain[i] = clamp(v*inv, 0, 1)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
