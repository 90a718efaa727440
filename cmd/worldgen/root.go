package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"worldgen/internal/params"
)

// cli holds flag values shared by every command.
type cli struct {
	logLevel  string
	logFormat string
	logger    *slog.Logger

	paramsFile string
	seed       int64
	size       int
	preset     string
	set        []string
	workers    int
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "worldgen",
		Short:         "Deterministic tile-based terrain generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), c.logLevel, c.logFormat)
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newGenerateCmd(c),
		newVerifyCmd(c),
		newSweepCmd(c),
		newParamsCmd(c),
	)
	return root
}

// bindParamFlags registers the flags that shape WorldParams.
func (c *cli) bindParamFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&c.paramsFile, "params", "", "YAML params file")
	f.Int64Var(&c.seed, "seed", 0, "world seed")
	f.IntVar(&c.size, "size", 0, "square grid size, overrides --preset")
	f.StringVar(&c.preset, "preset", "", "size preset: small, medium, large")
	f.StringArrayVar(&c.set, "set", nil, "parameter override key=value (repeatable)")
	f.IntVar(&c.workers, "workers", 0, "parallel row bands (0 = all CPUs)")
}

// resolveParams layers defaults, the params file, the preset, explicit
// flags and --set overrides, in that order.
func (c *cli) resolveParams(cmd *cobra.Command) (params.WorldParams, error) {
	p := params.Default()
	if c.paramsFile != "" {
		loaded, err := params.Load(c.paramsFile)
		if err != nil {
			return p, err
		}
		p = loaded
	}
	if c.preset != "" {
		var err error
		if p, err = p.WithPreset(c.preset); err != nil {
			return p, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("size") {
		p.Width, p.Height = c.size, c.size
	}
	if flags.Changed("seed") {
		p.Seed = c.seed
	}
	if flags.Changed("workers") {
		p.Run.Workers = c.workers
	}
	overrides, err := parseOverrides(c.set)
	if err != nil {
		return p, err
	}
	return params.Apply(p, overrides)
}

func parseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("--set %q: want key=value", kv)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("--log-format %q: want text or json", format)
}
