package core

import (
	"encoding/binary"
	"io"
	"math"
)

// Encoder appends the canonical little-endian encoding of one cell to dst.
type Encoder[T any] func(dst []byte, v T) []byte

// Field stores a dense 2D grid of cell values in row-major order.
type Field[T any] struct {
	W, H int
	data []T
	enc  Encoder[T]
}

// NewField allocates a field with the given dimensions and cell encoder.
func NewField[T any](w, h int, enc Encoder[T]) *Field[T] {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Field[T]{W: w, H: h, data: make([]T, w*h), enc: enc}
}

// NewFloatField allocates a float64 field.
func NewFloatField(w, h int) *Field[float64] {
	return NewField(w, h, EncodeFloat)
}

// NewCodeField allocates a field of byte-sized enum codes.
func NewCodeField[T ~uint8](w, h int) *Field[T] {
	return NewField(w, h, func(dst []byte, v T) []byte { return append(dst, uint8(v)) })
}

// NewIDField allocates a field of uint32 identifiers.
func NewIDField(w, h int) *Field[uint32] {
	return NewField(w, h, func(dst []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(dst, v) })
}

// EncodeFloat writes the IEEE-754 bits of v.
func EncodeFloat(dst []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
}

// Size reports the field dimensions.
func (f *Field[T]) Size() Size { return Size{W: f.W, H: f.H} }

// Cells exposes the backing slice so callers can read/write values directly.
func (f *Field[T]) Cells() []T { return f.data }

// Index returns the linear slice index for coordinates (x, y).
func (f *Field[T]) Index(x, y int) int { return y*f.W + x }

// XY converts a linear index back to coordinates.
func (f *Field[T]) XY(i int) (int, int) { return i % f.W, i / f.W }

// InBounds reports whether (x, y) lies on the grid.
func (f *Field[T]) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.W && y < f.H
}

// OnBorder reports whether (x, y) touches the grid edge.
func (f *Field[T]) OnBorder(x, y int) bool {
	return x == 0 || y == 0 || x == f.W-1 || y == f.H-1
}

// At returns the value at (x, y).
func (f *Field[T]) At(x, y int) T { return f.data[y*f.W+x] }

// Set stores v at (x, y).
func (f *Field[T]) Set(x, y int, v T) { f.data[y*f.W+x] = v }

// Fill sets every cell to v.
func (f *Field[T]) Fill(v T) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Clone returns a deep copy sharing the encoder.
func (f *Field[T]) Clone() *Field[T] {
	out := &Field[T]{W: f.W, H: f.H, data: make([]T, len(f.data)), enc: f.enc}
	copy(out.data, f.data)
	return out
}

// WriteCells serializes the field row by row into w.
func (f *Field[T]) WriteCells(w io.Writer) error {
	if f.enc == nil {
		return errNoEncoder
	}
	var row []byte
	for y := 0; y < f.H; y++ {
		row = row[:0]
		for _, v := range f.data[y*f.W : (y+1)*f.W] {
			row = f.enc(row, v)
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
