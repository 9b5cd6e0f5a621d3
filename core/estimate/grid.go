// core/estimate/grid.go
package estimate

import (
	"math/rand"

	"covest-core/model"
)

// InitialGrid produces count starting vectors for multi-start optimization.
// The first candidate is the unmodified guess; every further candidate samples
// each free parameter uniformly from [guess/step, guess*step] clipped to its
// bound, while fixed parameters keep their pinned value.
func InitialGrid(guess model.Params, count int, step float64, bounds model.Bounds, fix model.FixMask, rng *rand.Rand) []model.Params {
	if count < 1 {
		return nil
	}
	grid := make([]model.Params, 0, count)
	grid = append(grid, guess.Clone())
	for n := 1; n < count; n++ {
		cand := make(model.Params, len(guess))
		for i, g := range guess {
			if !fix.Free(i) {
				cand[i] = fix[i]
				continue
			}
			lo, hi := g/step, g*step
			if hi < lo {
				lo, hi = hi, lo
			}
			if i < len(bounds) {
				b := bounds[i]
				if b.Lo > lo {
					lo = b.Lo
				}
				if b.Hi < hi {
					hi = b.Hi
				}
			}
			if hi <= lo {
				cand[i] = lo
				continue
			}
			cand[i] = lo + rng.Float64()*(hi-lo)
		}
		grid = append(grid, cand)
	}
	return grid
}
