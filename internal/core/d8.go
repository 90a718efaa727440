package core

import "math"

// Direction is a D8 flow direction. The numeric order is the tie-break
// priority used everywhere neighbors compete.
type Direction uint8

const (
	DirN Direction = iota
	DirNE
	DirE
	DirSE
	DirS
	DirSW
	DirW
	DirNW
	// DirNone marks a cell with no downhill neighbor (an outlet).
	DirNone
)

// D8 lists the eight neighbor directions in priority order.
var D8 = [8]Direction{DirN, DirNE, DirE, DirSE, DirS, DirSW, DirW, DirNW}

var (
	d8dx   = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
	d8dy   = [8]int{-1, -1, 0, 1, 1, 1, 0, -1}
	d8dist = [8]float64{1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2}
	d8name = [9]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW", "-"}
)

// Offset returns the coordinate delta for d. DirNone yields (0, 0).
func (d Direction) Offset() (int, int) {
	if d >= DirNone {
		return 0, 0
	}
	return d8dx[d], d8dy[d]
}

// Distance is 1 for orthogonal and sqrt(2) for diagonal steps.
func (d Direction) Distance() float64 {
	if d >= DirNone {
		return 0
	}
	return d8dist[d]
}

func (d Direction) String() string {
	if d > DirNone {
		return "?"
	}
	return d8name[d]
}

// Neighbor returns the linear index of the neighbor of (x, y) in direction d
// and whether it lies on a w*h grid.
func Neighbor(w, h, x, y int, d Direction) (int, bool) {
	dx, dy := d.Offset()
	nx, ny := x+dx, y+dy
	if d >= DirNone || nx < 0 || ny < 0 || nx >= w || ny >= h {
		return -1, false
	}
	return ny*w + nx, true
}
