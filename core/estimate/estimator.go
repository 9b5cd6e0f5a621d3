// core/estimate/estimator.go
package estimate

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"covest-core/model"
)

// Estimator searches the model's parameter space for the maximum-likelihood
// fit. It owns the model and the fix mask for its lifetime; the model is
// treated as read-only after construction.
type Estimator struct {
	model model.Model
	fix   model.FixMask
	opts  Options
}

// New builds an estimator over m. A nil Fix in opts leaves every parameter
// free.
func New(m model.Model, opts Options) *Estimator {
	opts = opts.withDefaults()
	if opts.Fix == nil {
		opts.Fix = model.NoFix(m.ParamCount())
	}
	return &Estimator{model: m, fix: opts.Fix, opts: opts}
}

// Objective is the minimized function in real parameter space: the negative
// log-likelihood with fixed coordinates substituted before evaluation, so a
// fixed coordinate cannot drift regardless of what the optimizer proposes.
func (e *Estimator) Objective(p model.Params) float64 {
	return -e.model.LogLikelihood(e.fix.Apply(p))
}

// scale/descale convert between real parameter space and the optimizer's
// space, where the error-rate coordinate is multiplied by ErrScale to keep
// parameter magnitudes comparable for the simplex.
func (e *Estimator) scale(p model.Params) []float64 {
	x := append([]float64(nil), p...)
	if len(x) > 1 {
		x[1] *= e.opts.ErrScale
	}
	return x
}

func (e *Estimator) descale(x []float64) model.Params {
	p := model.Params(append([]float64(nil), x...))
	if len(p) > 1 {
		p[1] /= e.opts.ErrScale
	}
	return p
}

func (e *Estimator) scaledObjective(x []float64) float64 {
	return e.Objective(e.descale(x))
}

// Estimate runs the configured optimization strategy from guess and returns
// the best parameter vector found. It never fails: non-convergence falls back
// to grid refinement under GridPost, and cancellation at any stage returns
// the best vector obtained so far.
func (e *Estimator) Estimate(ctx context.Context, guess model.Params, grid GridSearch) model.Params {
	log.WithFields(log.Fields{
		"model":  e.model.Name(),
		"bounds": e.model.Bounds(),
		"guess":  guess,
		"grid":   grid.String(),
	}).Debug("starting coverage estimation")

	var best fitResult
	if grid == GridNone {
		best = e.minimize(ctx, guess)
	} else {
		seed := e.opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		starts := InitialGrid(guess, e.opts.GridCount, e.opts.GridStep, e.model.Bounds(), e.fix, rng)
		best = e.multiStart(ctx, guess, starts)
	}
	log.WithFields(log.Fields{"params": best.x, "objective": best.obj, "converged": best.ok}).
		Debug("bounded optimization done")

	if grid == GridPost && !best.ok && ctx.Err() == nil {
		log.Info("optimization did not converge, falling back to grid refinement")
		best.x = RefineGrid(ctx, e.Objective, best.x, e.model.Bounds(), e.fix, e.opts)
	}
	return e.model.Bounds().Clip(e.fix.Apply(best.x))
}

// multiStart minimizes from every starting vector on a fixed worker pool and
// keeps the lowest objective; on equal values the earlier starting point
// wins. A cancelled context skips the remaining starts.
func (e *Estimator) multiStart(ctx context.Context, guess model.Params, starts []model.Params) fitResult {
	results := make([]fitResult, len(starts))
	for i := range results {
		results[i] = fitResult{obj: math.Inf(1)}
	}

	type job struct {
		i     int
		start model.Params
	}
	jobs := make(chan job)
	var wg sync.WaitGroup
	wg.Add(e.opts.Threads)
	for w := 0; w < e.opts.Threads; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				results[j.i] = e.minimize(ctx, j.start)
			}
		}()
	}
	for i, s := range starts {
		jobs <- job{i: i, start: s}
	}
	close(jobs)
	wg.Wait()

	best := fitResult{x: append([]float64(nil), guess...), obj: math.Inf(1)}
	for _, r := range results {
		if r.x != nil && r.obj < best.obj {
			best = r
		}
	}
	return best
}
