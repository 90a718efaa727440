package core

import (
	"errors"
	"io"
)

var errNoEncoder = errors.New("core: field has no cell encoder")

// Size describes the dimensions of a grid.
type Size struct {
	W int
	H int
}

// Cells returns W*H.
func (s Size) Cells() int { return s.W * s.H }

// Point is a cell coordinate.
type Point struct {
	X int
	Y int
}

// Layer is the read-only contract shared by every field a stage produces.
type Layer interface {
	Size() Size
	WriteCells(w io.Writer) error
}
