package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldgen/internal/core"
	"worldgen/internal/params"
	"worldgen/internal/world"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

var tiny = []string{"--size", "12", "--set", "moisture_rounds=3", "--set", "erosion_iterations=2"}

func TestParamsPrintsResolvedYAML(t *testing.T) {
	out, err := run(t, "params", "--seed", "7", "--size", "32", "--set", "sea_level=0.4")
	require.NoError(t, err)
	p, err := params.Unmarshal([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.Seed)
	assert.Equal(t, 32, p.Width)
	assert.Equal(t, 32, p.Height)
	assert.InDelta(t, 0.4, p.Base.SeaLevel, 1e-12)
}

func TestParamsKeys(t *testing.T) {
	out, err := run(t, "params", "--keys")
	require.NoError(t, err)
	assert.Equal(t, params.Keys(), strings.Fields(out))
}

func TestUnknownOverrideIsConfigError(t *testing.T) {
	_, err := run(t, "params", "--set", "no_such_knob=1")
	assert.ErrorIs(t, err, core.ErrConfig)

	_, err = run(t, "params", "--set", "missing-equals")
	assert.Error(t, err)
}

func TestInvalidLogFormat(t *testing.T) {
	_, err := run(t, "--log-format", "xml", "params")
	assert.Error(t, err)
}

func TestGenerateThenVerify(t *testing.T) {
	dir := t.TempDir()
	ledgerDir := filepath.Join(dir, "ledger")
	args := append([]string{"generate", "--seed", "3", "--out", dir, "--ledger", ledgerDir,
		"--layers", "elevation,biome"}, tiny...)
	out, err := run(t, args...)
	require.NoError(t, err)
	checksum := strings.TrimSpace(out)
	assert.Len(t, checksum, 64)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var exported string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "world_seed3_") {
			exported = filepath.Join(dir, e.Name())
		}
	}
	require.NotEmpty(t, exported)
	assert.FileExists(t, filepath.Join(exported, "elevation.png"))
	assert.FileExists(t, filepath.Join(exported, "biome.png"))
	assert.NoFileExists(t, filepath.Join(exported, "mineral.png"))

	verifyArgs := append([]string{"verify", "--seed", "3", "--ledger", ledgerDir, "--workers", "1"}, tiny...)
	out, err = run(t, verifyArgs...)
	require.NoError(t, err)
	assert.Equal(t, "match "+checksum+"\n", out)

	otherSeed := append([]string{"verify", "--seed", "4", "--ledger", ledgerDir}, tiny...)
	out, err = run(t, otherSeed...)
	assert.True(t, errors.Is(err, errNotReproduced))
	assert.True(t, strings.HasPrefix(out, "unknown "))
}

func TestSweepReportsDeterministicSeeds(t *testing.T) {
	args := append([]string{"sweep", "--seed", "10", "--count", "3", "--jobs", "2", "--top", "2"}, tiny...)
	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Sweeping 3 seeds from 10")
	assert.Contains(t, out, "Top 2 results")
	assert.NotContains(t, out, "NONDETERMINISTIC")
	assert.Contains(t, out, " 1) seed=")
	assert.NotContains(t, out, " 3) seed=")
}

func TestReportFailsOnCollisionAndNondeterminism(t *testing.T) {
	results := []seedResult{
		{seed: 1, checksum: world.Hash{1}, deterministic: true, land: 0.4},
		{seed: 2, checksum: world.Hash{2}, deterministic: true, land: 0.6},
	}
	var buf bytes.Buffer
	require.NoError(t, report(&buf, results, 5, time.Second))

	results = append(results, seedResult{seed: 3, checksum: world.Hash{1}, deterministic: true})
	buf.Reset()
	err := report(&buf, results, 5, time.Second)
	require.ErrorIs(t, err, errChecksumCollision)
	assert.NotErrorIs(t, err, errNondeterministic)
	assert.Contains(t, buf.String(), "Checksum collision: seeds 1 and 3")
	assert.Contains(t, err.Error(), "1/3")

	results[1].deterministic = false
	err = report(&buf, results, 5, time.Second)
	assert.ErrorIs(t, err, errChecksumCollision)
	assert.ErrorIs(t, err, errNondeterministic)
}
