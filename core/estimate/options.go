// core/estimate/options.go
package estimate

import (
	"fmt"
	"runtime"

	"covest-core/model"
)

// GridSearch selects how the estimator uses grid search around the bounded
// optimizer.
type GridSearch int

const (
	// GridNone runs a single bounded optimization from the guess.
	GridNone GridSearch = iota
	// GridPre fans the optimizer out over a grid of starting points and
	// keeps the best result.
	GridPre
	// GridPost is GridPre plus an adaptive grid-search fallback when the
	// optimizer does not report convergence.
	GridPost
)

func (g GridSearch) String() string {
	switch g {
	case GridNone:
		return "none"
	case GridPre:
		return "pre"
	case GridPost:
		return "post"
	}
	return fmt.Sprintf("GridSearch(%d)", int(g))
}

// ParseGridSearch maps "none"/"pre"/"post" to a GridSearch value.
func ParseGridSearch(s string) (GridSearch, error) {
	switch s {
	case "none":
		return GridNone, nil
	case "pre":
		return GridPre, nil
	case "post":
		return GridPost, nil
	}
	return GridNone, fmt.Errorf("invalid grid search type %q (want none, pre or post)", s)
}

// Defaults for Options. The refiner thresholds are inherited tuning values
// with no analytic derivation; they are fields rather than constants so
// callers can override them.
const (
	DefaultErrScale    = 10.0
	DefaultGridCount   = 16
	DefaultGridStep    = 2.0
	DefaultRefineStep  = 1.1
	DefaultRefineDepth = 3
	DefaultImproveTol  = 0.1
	DefaultStepTol     = 1.001
)

// Options tunes the estimator. The zero value of every field selects its
// default.
type Options struct {
	// Fix pins parameters during optimization; NaN entries stay free.
	Fix model.FixMask

	// ErrScale multiplies the error-rate coordinate inside the bounded
	// optimizer so its magnitude is comparable to coverage.
	ErrScale float64

	// GridCount starting points for multi-start optimization; GridStep is
	// the multiplicative sampling window around the guess.
	GridCount int
	GridStep  float64

	// RefineStep is the initial multiplicative mesh step of the fallback
	// grid refiner; RefineDepth the half-width of the neighbor mesh in
	// steps. The refiner stops once a wave improves the objective by no
	// more than ImproveTol while the step has decayed to StepTol.
	RefineStep  float64
	RefineDepth int
	ImproveTol  float64
	StepTol     float64

	// Threads sizes the worker pool for both fan-out points; 0 = all CPUs.
	Threads int

	// Seed fixes the starting-grid sampler for reproducible runs; 0 draws
	// a time-based seed.
	Seed int64
}

func (o Options) withDefaults() Options {
	if o.ErrScale <= 0 {
		o.ErrScale = DefaultErrScale
	}
	if o.GridCount <= 0 {
		o.GridCount = DefaultGridCount
	}
	if o.GridStep <= 1 {
		o.GridStep = DefaultGridStep
	}
	if o.RefineStep <= 1 {
		o.RefineStep = DefaultRefineStep
	}
	if o.RefineDepth <= 0 {
		o.RefineDepth = DefaultRefineDepth
	}
	if o.ImproveTol <= 0 {
		o.ImproveTol = DefaultImproveTol
	}
	if o.StepTol <= 1 {
		o.StepTol = DefaultStepTol
	}
	if o.Threads <= 0 {
		o.Threads = runtime.NumCPU()
	}
	return o
}
