package core

import (
	"errors"
	"fmt"
)

// Error kinds every generation failure is classified under.
var (
	ErrConfig    = errors.New("config error")
	ErrNumerical = errors.New("numerical failure")
	ErrInvariant = errors.New("internal invariant violation")
	ErrCanceled  = errors.New("generation canceled")
)

// CellError pins a failure to a layer and, where known, a cell.
type CellError struct {
	Layer string
	Cell  *Point
	Kind  error
	Msg   string
}

// NewCellError builds a CellError for the cell at linear index i of a w-wide grid.
func NewCellError(kind error, layer string, w, i int, format string, args ...any) *CellError {
	p := Point{X: i % w, Y: i / w}
	return &CellError{Layer: layer, Cell: &p, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *CellError) Error() string {
	if e.Cell != nil {
		return fmt.Sprintf("%v: layer %s at (%d,%d): %s", e.Kind, e.Layer, e.Cell.X, e.Cell.Y, e.Msg)
	}
	return fmt.Sprintf("%v: layer %s: %s", e.Kind, e.Layer, e.Msg)
}

func (e *CellError) Unwrap() error { return e.Kind }
