package core

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/zeebo/blake3"
)

const streamContext = "worldgen rng stream v1"

// RNG is a sequential stream handed out by Streams.StreamFor.
type RNG struct {
	r *rand.Rand
}

func newPCG(hi, lo uint64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(hi, lo))}
}

// Int64 returns a non-negative 63-bit value.
func (r *RNG) Int64() int64 { return r.r.Int64() }

// Uint64 returns a uniformly distributed 64-bit value.
func (r *RNG) Uint64() uint64 { return r.r.Uint64() }

// Streams derives independent, reproducible random streams from one root
// seed. Every derivation is a keyed hash of (seed, tag), so the order in which
// stages ask for streams never changes what they receive.
type Streams struct {
	seed int64
}

// NewStreams binds a provider to the root seed.
func NewStreams(seed int64) Streams { return Streams{seed: seed} }

// StreamFor returns a fresh generator for the purpose tag. Two calls with the
// same tag return generators that produce identical sequences.
func (s Streams) StreamFor(tag string) *RNG {
	hi, lo := s.key(tag)
	return newPCG(hi, lo)
}

// Seed derives a 63-bit seed for libraries that take their own int64 seed.
func (s Streams) Seed(tag string) int64 {
	hi, _ := s.key(tag)
	return int64(hi >> 1)
}

// Sampler returns a stateless per-cell sampler keyed by tag.
func (s Streams) Sampler(tag string) Sampler {
	hi, lo := s.key(tag)
	return Sampler{key: hi ^ bits(lo)}
}

func (s Streams) key(tag string) (uint64, uint64) {
	h := blake3.NewDeriveKey(streamContext)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(s.seed))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(tag))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[0:8]), binary.LittleEndian.Uint64(sum[8:16])
}

// Sampler hashes integer coordinates to uniform values without any state.
type Sampler struct {
	key uint64
}

// At returns a value in [0, 1) for the cell (x, y).
func (s Sampler) At(x, y int) float64 {
	z := s.key + uint64(uint32(x))*0x9E3779B97F4A7C15
	z = bits(z ^ uint64(uint32(y))*0xC2B2AE3D27D4EB4F)
	return float64(z>>11) / (1 << 53)
}

// AtLayer samples a third coordinate, used for stacked per-cell draws.
func (s Sampler) AtLayer(x, y, layer int) float64 {
	z := s.key ^ uint64(uint32(layer))*0xD6E8FEB86659FD93
	return Sampler{key: bits(z)}.At(x, y)
}

// bits is the SplitMix64 finalizer.
func bits(z uint64) uint64 {
	z += 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
