package pipeline

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/world"
)

var update = flag.Bool("update", false, "rewrite golden files")

func testOptions() (*Metrics, []Option) {
	m := NewMetrics(prometheus.NewRegistry())
	return m, []Option{WithLogger(slog.New(slog.DiscardHandler)), WithMetrics(m)}
}

func smallParams(seed int64) params.WorldParams {
	p := params.Default()
	p.Seed = seed
	p.Width, p.Height = 24, 20
	p.Climate.MoistureRounds = 8
	p.Erosion.Iterations = 4
	return p
}

func generate(t *testing.T, p params.WorldParams) *Result {
	t.Helper()
	_, opts := testOptions()
	res, err := Generate(context.Background(), p, opts...)
	require.NoError(t, err)
	return res
}

func TestGenerateIsDeterministicAcrossWorkerCounts(t *testing.T) {
	p := smallParams(42)
	p.Run.Workers = 1
	a := generate(t, p)
	p.Run.Workers = 5
	b := generate(t, p)

	assert.Equal(t, a.Checksum, b.Checksum)
	assert.Equal(t, a.LayerHashes, b.LayerHashes)
	assert.NotEqual(t, a.RunID, b.RunID)
	require.Len(t, a.Stages, len(defaultStages))
	for i := range a.Stages {
		assert.Equal(t, a.Stages[i].Hash, b.Stages[i].Hash, a.Stages[i].Name)
	}
}

func TestResultCarriesEveryFinalLayer(t *testing.T) {
	res := generate(t, smallParams(7))
	require.Len(t, res.Layers, len(world.FinalLayers))
	require.Len(t, res.LayerHashes, len(world.FinalLayers))
	for _, name := range world.FinalLayers {
		l, ok := res.Layers[name]
		require.True(t, ok, name)
		h, err := world.HashLayer(l)
		require.NoError(t, err)
		assert.Equal(t, res.LayerHashes[name], h, name)
	}
	_, ok := res.Layers[world.LayerFilled]
	assert.False(t, ok, "working layers stay out of the result")
}

func TestSeedSensitivity(t *testing.T) {
	seen := map[world.Hash]int64{}
	for seed := int64(1); seed <= 6; seed++ {
		res := generate(t, smallParams(seed))
		prev, dup := seen[res.Checksum]
		require.False(t, dup, "seeds %d and %d collide", prev, seed)
		seen[res.Checksum] = seed
	}
}

func TestChecksumCoversParams(t *testing.T) {
	a := generate(t, smallParams(3))
	p := smallParams(3)
	p.Geology.OreRichness += 0.01
	b := generate(t, p)
	assert.NotEqual(t, a.Checksum, b.Checksum)
}

func TestInvalidParamsFailAtInit(t *testing.T) {
	p := smallParams(1)
	p.Width = 1
	m, opts := testOptions()
	res, err := Generate(context.Background(), p, opts...)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, core.ErrConfig)

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, StageInit, gerr.Stage)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("failed")))
}

func TestCanceledContextStopsBeforeNextStage(t *testing.T) {
	_, opts := testOptions()
	s, err := NewStepper(smallParams(1), opts...)
	require.NoError(t, err)
	_, err = s.RunNext(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.RunNext(ctx)
	assert.ErrorIs(t, err, core.ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, StageSinks, gerr.Stage)

	_, again := s.RunNext(context.Background())
	assert.Equal(t, err, again, "a failed run stays failed")
	assert.Nil(t, s.Result())
}

func TestStepperRunsStagesInOrder(t *testing.T) {
	_, opts := testOptions()
	s, err := NewStepper(smallParams(11), opts...)
	require.NoError(t, err)

	var names []string
	for !s.Done() {
		next := s.Next()
		r, err := s.RunNext(context.Background())
		require.NoError(t, err)
		assert.Equal(t, next, r.Name)
		for _, lh := range r.Layers {
			assert.True(t, s.World().Has(lh.Name), lh.Name)
		}
		names = append(names, r.Name)
	}
	assert.Equal(t, StageNames(), names)
	assert.Equal(t, StageFinalize, s.Next())

	_, err = s.RunNext(context.Background())
	assert.ErrorIs(t, err, ErrFinished)
	require.NotNil(t, s.Result())
	assert.Equal(t, s.RunID(), s.Result().RunID)
}

func fakeStage(name string, inputs []world.LayerName, outs ...output) stage {
	declared := make([]world.LayerName, len(outs))
	for i, o := range outs {
		declared[i] = o.name
	}
	return stage{
		name:    name,
		inputs:  inputs,
		outputs: declared,
		run: func(context.Context, *state) ([]output, error) {
			return outs, nil
		},
	}
}

func TestSchedulerRejectsNonFiniteOutput(t *testing.T) {
	p := smallParams(1)
	bad := core.NewFloatField(p.Width, p.Height)
	bad.Set(3, 2, math.NaN())

	_, opts := testOptions()
	s, err := newStepper(p, []stage{fakeStage("broken", nil, output{world.LayerElevation, bad})}, opts...)
	require.NoError(t, err)
	_, err = s.RunNext(context.Background())
	require.ErrorIs(t, err, core.ErrNumerical)

	var cerr *core.CellError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, string(world.LayerElevation), cerr.Layer)
	assert.Equal(t, &core.Point{X: 3, Y: 2}, cerr.Cell)
	assert.False(t, s.World().Has(world.LayerElevation))
}

func TestSchedulerRejectsMissingInputAndUndeclaredOutput(t *testing.T) {
	p := smallParams(1)
	_, opts := testOptions()

	s, err := newStepper(p, []stage{fakeStage("needy", []world.LayerName{world.LayerFilled})}, opts...)
	require.NoError(t, err)
	_, err = s.RunNext(context.Background())
	assert.ErrorIs(t, err, core.ErrInvariant)

	sneaky := fakeStage("sneaky", nil, output{world.LayerElevation, core.NewFloatField(p.Width, p.Height)})
	sneaky.outputs = []world.LayerName{world.LayerRainfall}
	s, err = newStepper(p, []stage{sneaky}, opts...)
	require.NoError(t, err)
	_, err = s.RunNext(context.Background())
	assert.ErrorIs(t, err, core.ErrInvariant)

	wrongSize := fakeStage("small", nil, output{world.LayerElevation, core.NewFloatField(2, 2)})
	s, err = newStepper(p, []stage{wrongSize}, opts...)
	require.NoError(t, err)
	_, err = s.RunNext(context.Background())
	assert.ErrorIs(t, err, core.ErrInvariant)
}

func TestFinalizeRequiresEveryLayer(t *testing.T) {
	p := smallParams(1)
	_, opts := testOptions()
	only := fakeStage("partial", nil, output{world.LayerElevation, core.NewFloatField(p.Width, p.Height)})
	s, err := newStepper(p, []stage{only}, opts...)
	require.NoError(t, err)
	_, err = s.RunNext(context.Background())
	require.ErrorIs(t, err, core.ErrInvariant)
	var gerr *GenerationError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, StageFinalize, gerr.Stage)
	assert.False(t, s.Done())
}

func TestGolden4x4Seed42(t *testing.T) {
	p := params.Default()
	p.Seed = 42
	p.Width, p.Height = 4, 4
	p.Climate.MoistureRounds = 0
	res := generate(t, p)

	const (
		n, e, s, sw = core.DirN, core.DirE, core.DirS, core.DirSW
		w, none     = core.DirW, core.DirNone
	)
	dirs, ok := res.Layers[world.LayerFlowDirection].(*core.Field[core.Direction])
	require.True(t, ok)
	assert.Equal(t, []core.Direction{
		s, e, none, w,
		s, sw, n, s,
		s, sw, s, sw,
		none, w, none, w,
	}, dirs.Cells())

	path := filepath.Join("testdata", "golden_4x4_seed42.txt")
	if *update {
		require.NoError(t, os.MkdirAll("testdata", 0o755))
		require.NoError(t, os.WriteFile(path, []byte(res.Checksum.String()+"\n"), 0o644))
		return
	}
	want, err := os.ReadFile(path)
	require.NoError(t, err, "record with -update")
	assert.Equal(t, strings.TrimSpace(string(want)), res.Checksum.String())
}
