package world

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"worldgen/internal/core"
)

const checksumDomain = "worldgen checksum v1"

// Hash is a BLAKE3-256 digest of a layer or of a whole world.
type Hash [32]byte

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Short returns the first 12 hex digits.
func (h Hash) Short() string { return h.String()[:12] }

// IsZero reports whether h was never set.
func (h Hash) IsZero() bool { return h == Hash{} }

// ParseHash decodes a 64-digit hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("hash has %d bytes, want %d", len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}

// HashLayer digests the row-major serialization of l.
func HashLayer(l core.Layer) (Hash, error) {
	hasher := blake3.New()
	if err := l.WriteCells(hasher); err != nil {
		return Hash{}, err
	}
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h, nil
}

// CombineHashes digests an ordered list of hashes, used for stage hashes.
func CombineHashes(hs ...Hash) Hash {
	hasher := blake3.New()
	for _, h := range hs {
		_, _ = hasher.Write(h[:])
	}
	var out Hash
	copy(out[:], hasher.Sum(nil))
	return out
}

// Checksum combines the params digest and the hash of every finalized layer
// in FinalLayers order. A missing layer is an invariant violation.
func Checksum(paramsDigest []byte, w *World) (Hash, error) {
	hasher := blake3.New()
	_, _ = hasher.Write([]byte(checksumDomain))
	writeChunk(hasher, paramsDigest)
	for _, name := range FinalLayers {
		h, ok := w.Hash(name)
		if !ok {
			return Hash{}, &core.CellError{Layer: string(name), Kind: core.ErrInvariant, Msg: "missing at finalize"}
		}
		writeChunk(hasher, []byte(name))
		_, _ = hasher.Write(h[:])
	}
	var out Hash
	copy(out[:], hasher.Sum(nil))
	return out, nil
}

func writeChunk(h *blake3.Hasher, b []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	_, _ = h.Write(n[:])
	_, _ = h.Write(b)
}
