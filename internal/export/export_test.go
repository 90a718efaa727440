package export

import (
	"context"
	"encoding/json"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldgen/internal/params"
	"worldgen/internal/pipeline"
	"worldgen/internal/world"
)

func smallResult(t *testing.T) *pipeline.Result {
	t.Helper()
	p := params.Default()
	p.Width, p.Height = 16, 12
	p.Climate.MoistureRounds = 4
	res, err := pipeline.Generate(context.Background(), p,
		pipeline.WithLogger(slog.New(slog.DiscardHandler)),
		pipeline.WithMetrics(pipeline.NewMetrics(prometheus.NewRegistry())),
	)
	require.NoError(t, err)
	return res
}

func TestWriteCreatesPNGsAndMeta(t *testing.T) {
	res := smallResult(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	dir, err := Write(t.TempDir(), res, Options{Now: func() time.Time { return at }})
	require.NoError(t, err)
	assert.Equal(t, DirName(res), filepath.Base(dir))
	assert.Contains(t, filepath.Base(dir), "world_seed42_")

	for _, name := range DefaultLayers {
		f, err := os.Open(filepath.Join(dir, string(name)+".png"))
		require.NoError(t, err, name)
		img, err := png.Decode(f)
		require.NoError(t, f.Close())
		require.NoError(t, err, name)
		assert.Equal(t, 16, img.Bounds().Dx(), name)
		assert.Equal(t, 12, img.Bounds().Dy(), name)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	require.NoError(t, err)
	var meta Meta
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, res.Checksum.String(), meta.Checksum)
	assert.Equal(t, res.RunID, meta.RunID)
	assert.True(t, at.Equal(meta.GeneratedAt))
	assert.Len(t, meta.Stages, len(pipeline.StageNames()))
	assert.Equal(t, res.LayerHashes[world.LayerBiome].String(), meta.LayerHashes["biome"])
	seed, ok := meta.Params.Lookup("seed")
	require.True(t, ok)
	assert.Equal(t, "42", seed.Value)

	loaded, err := params.Load(filepath.Join(dir, "params.yaml"))
	require.NoError(t, err)
	assert.Equal(t, res.Params.Digest(), loaded.Digest())
}

func TestWriteRejectsUnknownLayer(t *testing.T) {
	res := smallResult(t)
	_, err := Write(t.TempDir(), res, Options{Layers: []world.LayerName{world.LayerFilled}})
	assert.Error(t, err)
}
