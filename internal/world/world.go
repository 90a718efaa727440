// Package world holds the named field set of one generation run together
// with the per-layer hashes computed as each field is installed.
package world

import (
	"fmt"
	"math"

	"worldgen/internal/core"
)

// World is the evolving set of fields of one run. Each layer name is
// written exactly once; installed fields are never mutated afterwards.
type World struct {
	size   core.Size
	layers map[LayerName]core.Layer
	hashes map[LayerName]Hash
	order  []LayerName
}

// New creates an empty world of the given size.
func New(size core.Size) *World {
	return &World{
		size:   size,
		layers: make(map[LayerName]core.Layer),
		hashes: make(map[LayerName]Hash),
	}
}

// Size reports the grid dimensions shared by every layer.
func (w *World) Size() core.Size { return w.size }

// Put installs a fully built layer and returns its hash.
func (w *World) Put(name LayerName, l core.Layer) (Hash, error) {
	if _, ok := w.layers[name]; ok {
		return Hash{}, &core.CellError{Layer: string(name), Kind: core.ErrInvariant, Msg: "layer written twice"}
	}
	if l == nil {
		return Hash{}, &core.CellError{Layer: string(name), Kind: core.ErrInvariant, Msg: "nil layer"}
	}
	if got := l.Size(); got != w.size {
		return Hash{}, &core.CellError{Layer: string(name), Kind: core.ErrInvariant,
			Msg: fmt.Sprintf("size %dx%d, want %dx%d", got.W, got.H, w.size.W, w.size.H)}
	}
	h, err := HashLayer(l)
	if err != nil {
		return Hash{}, fmt.Errorf("hash %s: %w", name, err)
	}
	w.layers[name] = l
	w.hashes[name] = h
	w.order = append(w.order, name)
	return h, nil
}

// Has reports whether name was installed.
func (w *World) Has(name LayerName) bool {
	_, ok := w.layers[name]
	return ok
}

// Layer returns the installed layer.
func (w *World) Layer(name LayerName) (core.Layer, bool) {
	l, ok := w.layers[name]
	return l, ok
}

// Hash returns the hash recorded when name was installed.
func (w *World) Hash(name LayerName) (Hash, bool) {
	h, ok := w.hashes[name]
	return h, ok
}

// Names lists installed layers in installation order.
func (w *World) Names() []LayerName {
	return append([]LayerName(nil), w.order...)
}

// Layers returns a copy of the named map restricted to finalized layers.
func (w *World) Layers() map[LayerName]core.Layer {
	out := make(map[LayerName]core.Layer, len(FinalLayers))
	for _, n := range FinalLayers {
		if l, ok := w.layers[n]; ok {
			out[n] = l
		}
	}
	return out
}

// Get returns the typed field stored under name.
func Get[T any](w *World, name LayerName) (*core.Field[T], error) {
	l, ok := w.layers[name]
	if !ok {
		return nil, &core.CellError{Layer: string(name), Kind: core.ErrInvariant, Msg: "layer not produced yet"}
	}
	f, ok := l.(*core.Field[T])
	if !ok {
		return nil, &core.CellError{Layer: string(name), Kind: core.ErrInvariant, Msg: fmt.Sprintf("unexpected layer type %T", l)}
	}
	return f, nil
}

// CheckFinite fails with ErrNumerical at the first NaN or infinite cell.
func CheckFinite(name LayerName, f *core.Field[float64]) error {
	for i, v := range f.Cells() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewCellError(core.ErrNumerical, string(name), f.W, i, "non-finite value %v", v)
		}
	}
	return nil
}
