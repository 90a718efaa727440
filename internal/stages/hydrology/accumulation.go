package hydrology

import (
	"cmp"
	"slices"

	"worldgen/internal/core"
)

// BaseWeights returns each cell's own contribution, 1 scaled up by rainfall.
func BaseWeights(rain *core.Field[float64], rainfallWeight float64) []float64 {
	out := make([]float64, len(rain.Cells()))
	for i, r := range rain.Cells() {
		out[i] = 1 + rainfallWeight*r
	}
	return out
}

// DrainageOrder sorts cell indices by filled elevation, highest first, with
// ties broken by ascending row-major index.
func DrainageOrder(filled *core.Field[float64]) []int {
	z := filled.Cells()
	order := make([]int, len(z))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(z[b], z[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return order
}

// Accumulate sums base weights down the flow graph. Receivers always sit
// lower than their contributors, so a single pass in drainage order sees
// every contributor before its receiver.
func Accumulate(filled *core.Field[float64], dirs *core.Field[core.Direction], weights []float64) *core.Field[float64] {
	acc := core.NewFloatField(filled.W, filled.H)
	a := acc.Cells()
	copy(a, weights)
	for _, i := range DrainageOrder(filled) {
		if r := Receiver(dirs, i); r >= 0 {
			a[r] += a[i]
		}
	}
	return acc
}
