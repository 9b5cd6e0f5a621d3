// core/estimate/guess.go
package estimate

import (
	"math"

	"covest-core/histogram"
)

// ApproxCoverage derives a closed-form initial guess for read coverage and
// per-base error rate from the histogram alone, by treating multiplicity-1
// k-mers as a blend of genuine single-coverage k-mers and error k-mers.
// Returns (0, 1) when the histogram carries too little signal to guess.
func ApproxCoverage(hist histogram.Histogram, k, r int) (cov, errRate float64) {
	observedOnes := hist[1]
	allKmers := hist.TotalKmers()
	totalUnique := hist.Distinct()
	if totalUnique == 0 {
		return 0, 1
	}

	// Drop the multiplicity-1 column: it is dominated by error k-mers.
	allKmers -= observedOnes
	unique := totalUnique - observedOnes
	if unique <= 0 {
		return 0, 1
	}

	// Mean multiplicity of the >=2 part maps back to the Poisson mean.
	// expm1 keeps the small-x cancellation under control.
	c := invertMonotone(func(x float64) float64 {
		em1 := -math.Expm1(-x) // 1 - e^-x
		return x * em1 / (em1 - x*math.Exp(-x))
	}, allKmers/unique)
	if c <= 0 {
		return 0, 1
	}

	em := math.Exp(-c)
	visible := -math.Expm1(-c) - c*em
	if visible <= 0 {
		return 0, 1
	}
	unique /= visible
	estimatedOnes := unique * c * em
	estimatedZeros := unique * em
	errorOnes := math.Max(0, observedOnes-estimatedOnes)
	alpha := errorOnes / (totalUnique + estimatedZeros)

	// Probability that a k-mer instance is error free, then per-base rate.
	p := math.Max(0, estimateP(c, alpha))
	errRate = 1 - math.Pow(p, 1/float64(k))
	if p <= 0 {
		return 0, errRate
	}
	// k-mer coverage back to read coverage.
	return (c / p) * float64(r) / float64(r-k+1), errRate
}

func estimateP(cc, alpha float64) float64 {
	denom := alpha*cc - alpha - cc
	if denom == 0 {
		return 0
	}
	return cc * (alpha - 1) / denom
}

// invertMonotone finds x with f(x) = y for f increasing on (0, +inf) by
// bisection. Returns 0 when y is below the reachable range.
func invertMonotone(f func(float64) float64, y float64) float64 {
	lo, hi := 1e-9, 1.0
	for f(hi) < y {
		hi *= 2
		if hi > 1e9 {
			return 0
		}
	}
	if f(lo) > y {
		return 0
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if f(mid) < y {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
