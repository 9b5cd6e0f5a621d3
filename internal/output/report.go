// internal/output/report.go
package output

import (
	"math"

	"covest-core/model"
	"covest/pkg/api"
)

// Original carries user-supplied reference parameters for comparison in the
// report. NaN marks a value that was not given on the command line.
type Original struct {
	Coverage  float64
	ErrorRate float64
	Q1        float64
	Q2        float64
	Q         float64
}

// NoOriginal is an Original with every field unset.
func NoOriginal() Original {
	nan := math.NaN()
	return Original{Coverage: nan, ErrorRate: nan, Q1: nan, Q2: nan, Q: nan}
}

// Build assembles the v1 report from the estimated and guessed parameter
// vectors. ll evaluates the model log-likelihood for a full vector; it is
// passed in so the caller can bake in any fixed parameters.
func Build(m model.Model, ll func(model.Params) float64, estimated, guess model.Params, orig Original, readsSize int64) api.ReportV1 {
	repeats := m.ParamCount() >= 5
	rep := api.ReportV1{Model: m.Name()}

	if guess != nil {
		rep.GuessedLogLikelihood = fptr(ll(guess))
		rep.GuessedCoverage = fptr(guess[0])
		rep.GuessedErrorRate = fptr(guess[1])
		if repeats {
			rep.GuessedQ1 = fptr(guess[2])
			rep.GuessedQ2 = fptr(guess[3])
			rep.GuessedQ = fptr(guess[4])
		}
	}

	// Reference parameters missing from the command line fall back to the
	// estimated values so the original log-likelihood stays comparable.
	origErr := orig.ErrorRate
	origQ1, origQ2, origQ := orig.Q1, orig.Q2, orig.Q

	if estimated != nil {
		rep.EstimatedLogLikelihood = fptr(ll(estimated))
		rep.EstimatedCoverage = fptr(estimated[0])
		rep.EstimatedErrorRate = fptr(estimated[1])
		if repeats {
			rep.EstimatedQ1 = fptr(estimated[2])
			rep.EstimatedQ2 = fptr(estimated[3])
			rep.EstimatedQ = fptr(estimated[4])
			if math.IsNaN(origQ1) {
				origQ1 = estimated[2]
			}
			if math.IsNaN(origQ2) {
				origQ2 = estimated[3]
			}
			if math.IsNaN(origQ) {
				origQ = estimated[4]
			}
		}
		if gs, ok := genomeSize(m.Hist().TotalKmers(), m.CorrectC(estimated[0])); ok {
			rep.EstimatedGenomeSize = &gs
		}
		if readsSize > 0 {
			if gs, ok := genomeSize(float64(readsSize), estimated[0]); ok {
				rep.EstimatedGenomeSizeReads = &gs
			}
		}
		if math.IsNaN(origErr) {
			origErr = estimated[1]
		}
	}

	if !math.IsNaN(orig.ErrorRate) {
		rep.OriginalErrorRate = fptr(orig.ErrorRate)
	}
	if !math.IsNaN(orig.Coverage) && !math.IsNaN(origErr) {
		v := model.Params{orig.Coverage, origErr}
		if repeats {
			if math.IsNaN(origQ1) || math.IsNaN(origQ2) || math.IsNaN(origQ) {
				return rep
			}
			v = append(v, origQ1, origQ2, origQ)
		}
		rep.OriginalLogLikelihood = fptr(ll(v))
	}
	return rep
}

func fptr(v float64) *float64 { return &v }

// genomeSize divides a base/k-mer total by a coverage and rounds. The bool
// is false when the coverage is zero or the result is non-finite.
func genomeSize(total, coverage float64) (int64, bool) {
	if coverage == 0 || math.IsNaN(coverage) || math.IsInf(coverage, 0) {
		return 0, false
	}
	gs := math.Round(total / coverage)
	if math.IsNaN(gs) || math.IsInf(gs, 0) {
		return 0, false
	}
	return int64(gs), true
}
