package app

import (
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"worldgen/internal/params"
)

// Config represents the command-line parameters for the viewer.
type Config struct {
	Scale     int
	TPS       int
	Seed      int64
	Preset    string
	Params    string
	Set       map[string]string
	StepEvery time.Duration
	HUDWidth  int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Scale:     3,
		TPS:       60,
		Seed:      42,
		Preset:    "small",
		StepEvery: 200 * time.Millisecond,
		HUDWidth:  300,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *pflag.FlagSet) {
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "world seed")
	fs.StringVar(&c.Preset, "preset", c.Preset, "size preset: small, medium, large")
	fs.StringVar(&c.Params, "params", c.Params, "YAML params file")
	fs.StringToStringVar(&c.Set, "set", c.Set, "parameter overrides key=value")
	fs.DurationVar(&c.StepEvery, "step-every", c.StepEvery, "delay between stages while running")
	fs.IntVar(&c.HUDWidth, "hud-width", c.HUDWidth, "status panel width in pixels, 0 hides it")
}

// WorldParams resolves the generator parameters. Without a params file the
// preset, seed and overrides go through the lenient key/value path, so
// unknown keys are ignored. With a file, overrides must be valid keys.
func (c *Config) WorldParams() (params.WorldParams, error) {
	if c.Params == "" {
		kv := map[string]string{"preset": c.Preset}
		for k, v := range c.Set {
			kv[k] = v
		}
		kv["seed"] = strconv.FormatInt(c.Seed, 10)
		return params.FromMap(kv), nil
	}
	p, err := params.Load(c.Params)
	if err != nil {
		return p, err
	}
	p.Seed = c.Seed
	return params.Apply(p, c.Set)
}
