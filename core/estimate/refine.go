// core/estimate/refine.go
package estimate

import (
	"context"
	"math"

	"github.com/exascience/pargo/parallel"
	log "github.com/sirupsen/logrus"

	"covest-core/model"
)

// RefineGrid is the adaptive local grid search used when bounded optimization
// fails to converge: a coordinate-mesh hill-climb over multiplicative
// neighbor grids, shrinking the mesh toward the current best point. fn is
// minimized. Cancellation via ctx abandons the current wave and returns the
// best vector found so far.
func RefineGrid(ctx context.Context, fn func(model.Params) float64, start model.Params, bounds model.Bounds, fix model.FixMask, opts Options) model.Params {
	opts = opts.withDefaults()

	best := start.Clone()
	bestVal := fn(best)
	step := opts.RefineStep
	diff := math.Inf(1)

	iter := 0
	for diff > opts.ImproveTol || step > opts.StepTol {
		if ctx.Err() != nil {
			log.Debug("grid refinement interrupted")
			break
		}
		iter++
		grid := neighborGrid(best, step, opts.RefineDepth, bounds, fix)
		log.WithFields(log.Fields{"iter": iter, "grid": len(grid), "step": step}).
			Debug("grid refinement wave")

		diff = 0
		if len(grid) > 0 {
			idx, val := evalWave(fn, grid, opts.Threads)
			if val < bestVal {
				diff = bestVal - val
				best, bestVal = grid[idx], val
			}
		}
		if diff < 1.0 {
			step = 1 + (step-1)*0.75
		}
		log.WithFields(log.Fields{"best": best, "objective": bestVal, "diff": diff}).
			Debug("grid refinement state")
	}
	log.WithField("iterations", iter).Debug("grid refinement finished")
	return best
}

// waveBest carries the running minimum of one wave; ties keep the lowest
// grid index so the first candidate checked wins.
type waveBest struct {
	idx int
	val float64
}

// evalWave scores every grid point in parallel and min-reduces the results.
func evalWave(fn func(model.Params) float64, grid []model.Params, threads int) (int, float64) {
	r := parallel.RangeReduce(0, len(grid), threads,
		func(low, high int) interface{} {
			best := waveBest{idx: -1, val: math.Inf(1)}
			for i := low; i < high; i++ {
				if v := fn(grid[i]); v < best.val {
					best = waveBest{idx: i, val: v}
				}
			}
			return best
		},
		func(x, y interface{}) interface{} {
			a, b := x.(waveBest), y.(waveBest)
			if b.idx != -1 && (a.idx == -1 || b.val < a.val || (b.val == a.val && b.idx < a.idx)) {
				return b
			}
			return a
		})
	best := r.(waveBest)
	return best.idx, best.val
}

// neighborGrid builds the cartesian product of per-parameter candidate lists:
// cur*step^d for d in [-depth, depth] excluding 0, filtered to the bounds.
// Fixed parameters contribute exactly their pinned value.
func neighborGrid(cur model.Params, step float64, depth int, bounds model.Bounds, fix model.FixMask) []model.Params {
	axes := make([][]float64, len(cur))
	for i, v := range cur {
		if !fix.Free(i) {
			axes[i] = []float64{fix[i]}
			continue
		}
		var axis []float64
		for d := -depth; d <= depth; d++ {
			if d == 0 {
				continue
			}
			cand := v * math.Pow(step, float64(d))
			if i < len(bounds) && !bounds[i].Contains(cand) {
				continue
			}
			axis = append(axis, cand)
		}
		if len(axis) == 0 {
			return nil
		}
		axes[i] = axis
	}

	size := 1
	for _, axis := range axes {
		size *= len(axis)
	}
	grid := make([]model.Params, 0, size)
	idx := make([]int, len(axes))
	for {
		p := make(model.Params, len(axes))
		for i, axis := range axes {
			p[i] = axis[idx[i]]
		}
		grid = append(grid, p)
		i := len(axes) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(axes[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return grid
		}
	}
}
