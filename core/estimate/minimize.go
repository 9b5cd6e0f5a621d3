// core/estimate/minimize.go
package estimate

import (
	"context"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/optimize"
)

// fitResult is one bounded-minimization outcome: the located vector in real
// (unscaled) parameter space, its objective value, and a convergence flag.
type fitResult struct {
	x   []float64
	obj float64
	ok  bool
}

// minimize runs one bounded local Nelder-Mead minimization of the scaled
// objective from start (real space). Bounds are enforced by clipping inside
// the objective, so excursions of the simplex see a plateau rather than a
// cliff. Non-convergence is reported via ok, never as an error. If ctx is
// cancelled while the method runs, the start point is returned as best-so-far
// and the abandoned run finishes in the background.
func (e *Estimator) minimize(ctx context.Context, start []float64) fitResult {
	x0 := e.scale(e.model.Bounds().Clip(start))

	done := make(chan fitResult, 1)
	go func() {
		problem := optimize.Problem{Func: e.scaledObjective}
		settings := &optimize.Settings{
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-10,
				Iterations: 100,
			},
			MajorIterations: 5000,
			FuncEvaluations: 20000,
		}
		res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
		if err != nil && res == nil {
			log.WithError(err).Debug("bounded optimization failed")
			done <- fitResult{x: e.descale(x0), obj: e.scaledObjective(x0), ok: false}
			return
		}
		done <- fitResult{x: e.descale(res.X), obj: res.F, ok: converged(res.Status, err)}
	}()

	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		return fitResult{x: append([]float64(nil), start...), obj: e.scaledObjective(x0), ok: false}
	}
}

// converged interprets a gonum optimize status as a success flag: anything
// that terminated on a convergence criterion counts, hitting an evaluation
// or iteration budget does not.
func converged(st optimize.Status, err error) bool {
	if err != nil {
		return false
	}
	switch st {
	case optimize.NotTerminated, optimize.Failure,
		optimize.IterationLimit, optimize.RuntimeLimit,
		optimize.FunctionEvaluationLimit:
		return false
	}
	return true
}
