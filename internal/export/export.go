// Package export writes a finalized world to disk as PNG layers plus a
// JSON metadata file.
package export

import (
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/pipeline"
	"worldgen/internal/render"
	"worldgen/internal/world"
)

// DefaultLayers are written when Options.Layers is empty.
var DefaultLayers = []world.LayerName{
	world.LayerElevation,
	world.LayerTemperature,
	world.LayerRainfall,
	world.LayerAccumulation,
	world.LayerRiverClass,
	world.LayerWaterMask,
	world.LayerBiome,
	world.LayerFertility,
	world.LayerProvince,
	world.LayerRockType,
	world.LayerMineral,
}

// Options tune Write.
type Options struct {
	Layers []world.LayerName
	Now    func() time.Time
}

// Meta is the content of meta.json.
type Meta struct {
	Seed        int64                  `json:"seed"`
	Width       int                    `json:"width"`
	Height      int                    `json:"height"`
	Stages      []StageMeta            `json:"stages"`
	LayerHashes map[string]string      `json:"layer_hashes"`
	Checksum    string                 `json:"checksum"`
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Params      core.ParameterSnapshot `json:"params"`
}

// StageMeta is one stage entry in meta.json.
type StageMeta struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Hash       string  `json:"hash"`
}

// DirName is the directory a result is exported into.
func DirName(res *pipeline.Result) string {
	return fmt.Sprintf("world_seed%d_%s", res.Params.Seed, res.Checksum.Short())
}

// Write exports res below dir and returns the created directory.
func Write(dir string, res *pipeline.Result, opts Options) (string, error) {
	if res == nil {
		return "", fmt.Errorf("export: nil result")
	}
	layers := opts.Layers
	if len(layers) == 0 {
		layers = DefaultLayers
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	out := filepath.Join(dir, DirName(res))
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	for _, name := range layers {
		l, ok := res.Layers[name]
		if !ok {
			return "", fmt.Errorf("export: layer %s not in result", name)
		}
		if err := writePNG(filepath.Join(out, string(name)+".png"), name, l, res.Params.Base.SeaLevel); err != nil {
			return "", err
		}
	}

	if err := writeJSON(filepath.Join(out, "meta.json"), BuildMeta(res, now())); err != nil {
		return "", err
	}
	raw, err := params.Marshal(res.Params)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(filepath.Join(out, "params.yaml"), raw, 0o644); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return out, nil
}

// BuildMeta collects the metadata of res.
func BuildMeta(res *pipeline.Result, at time.Time) Meta {
	m := Meta{
		Seed:        res.Params.Seed,
		Width:       res.Params.Width,
		Height:      res.Params.Height,
		LayerHashes: make(map[string]string, len(res.LayerHashes)),
		Checksum:    res.Checksum.String(),
		RunID:       res.RunID,
		GeneratedAt: at.UTC(),
		Params:      res.Params.Snapshot(),
	}
	for name, h := range res.LayerHashes {
		m.LayerHashes[string(name)] = h.String()
	}
	for _, st := range res.Stages {
		m.Stages = append(m.Stages, StageMeta{
			Name:       st.Name,
			DurationMS: float64(st.Duration.Microseconds()) / 1000,
			Hash:       st.Hash.String(),
		})
	}
	return m
}

func writePNG(path string, name world.LayerName, l core.Layer, sea float64) (err error) {
	img, err := render.Image(name, l, sea)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: %w", cerr)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}
