// core/stats/stats.go
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
	"gonum.org/v1/gonum/stat/distuv"
)

// logZero is the penalty returned by SafeLog for non-positive inputs.
// It is ln(math.SmallestNonzeroFloat64): large enough to dominate any
// realistic likelihood term while staying finite for the optimizer.
var logZero = math.Log(math.SmallestNonzeroFloat64)

// TruncPoisson returns the zero-truncated Poisson pmf: the probability of
// observing multiplicity j under Poisson mean lambda, conditioned on j >= 1.
// Returns 0 for j < 1 or lambda <= 0.
func TruncPoisson(lambda float64, j int) float64 {
	if j < 1 || lambda <= 0 {
		return 0
	}
	denom := -math.Expm1(-lambda) // 1 - e^-lambda, stable for small lambda
	if denom <= 0 {
		return 0
	}
	p := distuv.Poisson{Lambda: lambda}.Prob(float64(j)) / denom
	if math.IsNaN(p) {
		return 0
	}
	return p
}

// SubstitutionChoices returns, for s = 0..k, the number of ways to place s
// base substitutions among k positions: C(k,s) * 3^s.
func SubstitutionChoices(k int) []float64 {
	out := make([]float64, k+1)
	for s := 0; s <= k; s++ {
		out[s] = combin.GeneralizedBinomial(float64(k), float64(s)) * math.Pow(3, float64(s))
	}
	return out
}

// SafeLog is ln(x) with a finite floor: non-positive x maps to a large
// negative penalty instead of -Inf/NaN so likelihood sums stay ordered.
func SafeLog(x float64) float64 {
	if x <= 0 || math.IsNaN(x) {
		return logZero
	}
	return math.Log(x)
}
