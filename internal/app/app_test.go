package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/pipeline"
	"worldgen/internal/render"
	"worldgen/internal/ui"
	"worldgen/internal/world"
)

func tinyParams() params.WorldParams {
	p := params.Default()
	p.Width, p.Height = 12, 10
	p.Climate.MoistureRounds = 3
	p.Erosion.Iterations = 2
	return p
}

func newTestSession(t *testing.T, p params.WorldParams) *Session {
	t.Helper()
	s, err := NewSession(p, slog.New(slog.DiscardHandler),
		pipeline.WithMetrics(pipeline.NewMetrics(prometheus.NewRegistry())))
	require.NoError(t, err)
	return s
}

func TestConfigBindParsesFlags(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("viewer", pflag.ContinueOnError)
	cfg.Bind(fs)
	require.NoError(t, fs.Parse([]string{"--seed", "9", "--preset", "medium", "--set", "sea_level=0.3,octaves=3", "--scale", "2"}))
	assert.Equal(t, 2, cfg.Scale)

	p, err := cfg.WorldParams()
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.Seed)
	assert.Equal(t, 512, p.Width)
	assert.InDelta(t, 0.3, p.Base.SeaLevel, 1e-12)
	assert.Equal(t, 3, p.Base.Octaves)
}

func TestConfigIgnoresUnknownKeysWithoutFile(t *testing.T) {
	cfg := NewConfig()
	cfg.Set = map[string]string{"bogus": "1"}
	p, err := cfg.WorldParams()
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.Seed)
}

func TestConfigWithParamsFileIsStrict(t *testing.T) {
	raw, err := params.Marshal(tinyParams())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	cfg := NewConfig()
	cfg.Params = path
	cfg.Seed = 5
	p, err := cfg.WorldParams()
	require.NoError(t, err)
	assert.Equal(t, 12, p.Width)
	assert.Equal(t, int64(5), p.Seed)

	cfg.Set = map[string]string{"bogus": "1"}
	_, err = cfg.WorldParams()
	assert.ErrorIs(t, err, core.ErrConfig)
}

func TestSessionStepsThroughStages(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, tinyParams())

	st := s.Status()
	require.Len(t, st.Stages, len(pipeline.StageNames()))
	assert.Equal(t, ui.StageNext, st.Stages[0].State)
	assert.True(t, s.TakeDirty())
	assert.False(t, s.TakeDirty())

	_, _, ok := s.Layer()
	assert.False(t, ok, "elevation is not produced before erosion")

	s.Step(ctx)
	assert.True(t, s.TakeDirty())
	st = s.Status()
	assert.Equal(t, ui.StageDone, st.Stages[0].State)
	assert.Len(t, st.Stages[0].Hash, 12)
	assert.Equal(t, ui.StageNext, st.Stages[1].State)

	s.Finish(ctx)
	require.NoError(t, s.Err())
	assert.True(t, s.Done())
	name, l, ok := s.Layer()
	require.True(t, ok)
	assert.Equal(t, world.LayerElevation, name)
	assert.Equal(t, core.Size{W: 12, H: 10}, l.Size())
	assert.NotEmpty(t, s.Status().Checksum)

	s.Step(ctx)
	assert.NoError(t, s.Err())
}

func TestSessionMatchesGenerate(t *testing.T) {
	p := tinyParams()
	s := newTestSession(t, p)
	s.Finish(context.Background())
	res, err := pipeline.Generate(context.Background(), p,
		pipeline.WithLogger(slog.New(slog.DiscardHandler)),
		pipeline.WithMetrics(pipeline.NewMetrics(prometheus.NewRegistry())))
	require.NoError(t, err)
	assert.Equal(t, res.Checksum.Short(), s.Status().Checksum)
}

func TestSessionLayerSelection(t *testing.T) {
	s := newTestSession(t, tinyParams())
	s.SelectLayer(1)
	assert.Equal(t, render.ImageLayers[1], s.LayerName())
	s.SelectLayer(len(render.ImageLayers))
	assert.Equal(t, render.ImageLayers[1], s.LayerName())
	for range len(render.ImageLayers) {
		s.NextLayer()
	}
	assert.Equal(t, render.ImageLayers[1], s.LayerName())
}

func TestSessionRunningStopsWhenDone(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, tinyParams())
	s.SetRunning(true)
	assert.True(t, s.Running())
	for s.Running() {
		s.Step(ctx)
	}
	assert.True(t, s.Done())
	s.SetRunning(true)
	assert.False(t, s.Running())
}

func TestSessionCancelledStepFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newTestSession(t, tinyParams())
	s.Step(ctx)
	require.ErrorIs(t, s.Err(), core.ErrCanceled)
	st := s.Status()
	assert.Equal(t, ui.StageFailed, st.Stages[0].State)
	assert.NotEmpty(t, st.Err)

	require.NoError(t, s.Reseed(77))
	assert.NoError(t, s.Err())
	assert.Equal(t, int64(77), s.Status().Seed)
}

func TestReseedNextIsReproducible(t *testing.T) {
	a := newTestSession(t, tinyParams())
	b := newTestSession(t, tinyParams())
	var seeds []int64
	for range 3 {
		require.NoError(t, a.ReseedNext())
		require.NoError(t, b.ReseedNext())
		assert.Equal(t, a.Params().Seed, b.Params().Seed)
		assert.GreaterOrEqual(t, a.Params().Seed, int64(0))
		seeds = append(seeds, a.Params().Seed)
	}
	assert.NotEqual(t, seeds[0], seeds[1])
	assert.NotEqual(t, seeds[1], seeds[2])
	assert.False(t, a.Done())
	assert.Equal(t, ui.StageNext, a.Status().Stages[0].State)
}

func TestNewSessionRejectsInvalidParams(t *testing.T) {
	p := tinyParams()
	p.Width = 0
	_, err := NewSession(p, slog.New(slog.DiscardHandler),
		pipeline.WithMetrics(pipeline.NewMetrics(prometheus.NewRegistry())))
	assert.ErrorIs(t, err, core.ErrConfig)
}
