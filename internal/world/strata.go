package world

import (
	"encoding/binary"
	"io"
	"math"

	"worldgen/internal/core"
)

// Stratum is one rock layer of a cell's column, top first.
type Stratum struct {
	Rock      Rock
	Thickness float64
}

// Strata stores a fixed-depth stack of strata for every cell.
type Strata struct {
	W, H  int
	Depth int
	rocks []Rock
	thick []float64
}

// NewStrata allocates a w*h grid of depth-deep stacks.
func NewStrata(w, h, depth int) *Strata {
	if depth < 1 {
		depth = 1
	}
	n := w * h * depth
	return &Strata{W: w, H: h, Depth: depth, rocks: make([]Rock, n), thick: make([]float64, n)}
}

// Size reports the grid dimensions.
func (s *Strata) Size() core.Size { return core.Size{W: s.W, H: s.H} }

// Set stores layer l of cell i.
func (s *Strata) Set(i, l int, st Stratum) {
	j := i*s.Depth + l
	s.rocks[j] = st.Rock
	s.thick[j] = st.Thickness
}

// At returns layer l of cell i.
func (s *Strata) At(i, l int) Stratum {
	j := i*s.Depth + l
	return Stratum{Rock: s.rocks[j], Thickness: s.thick[j]}
}

// Stack copies the column of cell i.
func (s *Strata) Stack(i int) []Stratum {
	out := make([]Stratum, s.Depth)
	for l := range out {
		out[l] = s.At(i, l)
	}
	return out
}

// Top returns the surface rock of cell i.
func (s *Strata) Top(i int) Rock { return s.rocks[i*s.Depth] }

// WriteCells writes each cell as depth rock bytes followed by depth float64
// thicknesses, row-major.
func (s *Strata) WriteCells(w io.Writer) error {
	row := make([]byte, 0, s.W*s.Depth*9)
	for y := 0; y < s.H; y++ {
		row = row[:0]
		for x := 0; x < s.W; x++ {
			base := (y*s.W + x) * s.Depth
			for l := 0; l < s.Depth; l++ {
				row = append(row, uint8(s.rocks[base+l]))
			}
			for l := 0; l < s.Depth; l++ {
				row = binary.LittleEndian.AppendUint64(row, math.Float64bits(s.thick[base+l]))
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
