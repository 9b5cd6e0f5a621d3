// core/model/basic.go
package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"covest-core/histogram"
	"covest-core/stats"
)

// Model turns a parameter vector into a predicted distribution over k-mer
// multiplicities and scores it against the observed histogram. Implementations
// are immutable after construction and safe for concurrent use; the internal
// rate memo serializes its own access.
type Model interface {
	// Name is the short model tag ("basic", "repeats").
	Name() string
	// ParamCount is the expected parameter vector length.
	ParamCount() int
	// Bounds are the per-parameter optimization intervals.
	Bounds() Bounds
	// Defaults is a reasonable starting vector inside the bounds.
	Defaults() Params
	// CorrectC converts read coverage to effective k-mer coverage.
	CorrectC(c float64) float64
	// Probabilities is the predictive distribution over the multiplicities
	// present in the histogram.
	Probabilities(p Params) map[int]float64
	// LogLikelihood scores p against the histogram; higher is better, always
	// finite for vectors within or near the bounds.
	LogLikelihood(p Params) float64
	// Hist returns the observed histogram the model was built on.
	Hist() histogram.Histogram
}

// Config parameterizes model construction.
type Config struct {
	K          int                 // k-mer length
	ReadLength int                 // read length, >= K
	Hist       histogram.Histogram // non-empty observed histogram
	Tail       float64             // distinct k-mers trimmed beyond the histogram range

	// MaxError caps the number of substitution-error classes; 0 means k+1.
	MaxError int
	// MaxCoverage is the upper coverage bound; 0 means unbounded.
	MaxCoverage float64

	// RepeatThreshold truncates the repeats-model copy-number sum at the
	// first o where b_o(o) falls below it; 0 means 1e-8. Basic model: unused.
	RepeatThreshold float64
	// MinSingleCopyRatio is the lower bound on q1; 0 means 0.3. Basic
	// model: unused.
	MinSingleCopyRatio float64
}

const (
	defaultRepeatThreshold    = 1e-8
	defaultMinSingleCopyRatio = 0.3
	minCoverageBound          = 0.01
	maxErrorRateBound         = 0.5
)

// Basic models a single-copy genome: the observed multiplicity distribution
// is a mixture over substitution-error classes s of zero-truncated Poissons
// with rate lambda_s.
type Basic struct {
	k, r     int
	hist     histogram.Histogram
	tail     float64
	maxError int
	comb     []float64
	bounds   Bounds
	rates    *lambdaCache
}

// NewBasic builds the single-copy model. The histogram must be non-empty.
func NewBasic(cfg Config) *Basic {
	maxError := cfg.K + 1
	if cfg.MaxError > 0 && cfg.MaxError < maxError {
		maxError = cfg.MaxError
	}
	maxCov := math.Inf(1)
	if cfg.MaxCoverage > 0 {
		maxCov = cfg.MaxCoverage
	}
	return &Basic{
		k:        cfg.K,
		r:        cfg.ReadLength,
		hist:     cfg.Hist,
		tail:     cfg.Tail,
		maxError: maxError,
		comb:     stats.SubstitutionChoices(cfg.K),
		bounds: Bounds{
			{Lo: minCoverageBound, Hi: maxCov},
			{Lo: 0, Hi: maxErrorRateBound},
		},
		rates: newLambdaCache(0),
	}
}

func (m *Basic) Name() string              { return "basic" }
func (m *Basic) ParamCount() int           { return 2 }
func (m *Basic) Bounds() Bounds            { return m.bounds }
func (m *Basic) Hist() histogram.Histogram { return m.hist }
func (m *Basic) Tail() float64             { return m.tail }

// Defaults starts coverage at 1 and every remaining parameter at its bound
// midpoint (0.5 where a bound is open).
func (m *Basic) Defaults() Params {
	d := make(Params, len(m.bounds))
	d[0] = 1
	for i := 1; i < len(m.bounds); i++ {
		d[i] = m.bounds[i].Mid(0.5)
	}
	return d
}

// CorrectC converts base/read coverage into effective k-mer coverage: a read
// of length r yields r-k+1 k-mers.
func (m *Basic) CorrectC(c float64) float64 {
	return c * float64(m.r-m.k+1) / float64(m.r)
}

// lambdas returns, for each error count s, the Poisson rate of k-mer
// instances carrying exactly s substitutions at k-mer coverage ck.
func (m *Basic) lambdas(ck, err float64) []float64 {
	key := lambdaKey{c: ck, err: err}
	if v := m.rates.get(key); v != nil {
		return v
	}
	ls := make([]float64, m.maxError)
	for s := 0; s < m.maxError; s++ {
		ls[s] = ck * math.Pow(3, -float64(s)) *
			math.Pow(1-err, float64(m.k-s)) * math.Pow(err, float64(s))
	}
	m.rates.put(key, ls)
	return ls
}

// errorClassWeights normalizes the expected observed fractions of each error
// class at copy number o (rates scaled by o). A zero normalizer is treated as
// 1 so degenerate parameter corners yield zero weights instead of NaNs.
func errorClassWeights(comb, ls []float64, o float64) []float64 {
	n := make([]float64, len(ls))
	for s := range ls {
		n[s] = comb[s] * -math.Expm1(-o*ls[s])
	}
	sum := floats.Sum(n)
	if sum == 0 {
		sum = 1
	}
	for s := range n {
		n[s] /= sum
	}
	return n
}

// Probabilities implements the basic mixture: p_j = sum_s a_s * tp(lambda_s, j)
// for every multiplicity j present in the histogram.
func (m *Basic) Probabilities(p Params) map[int]float64 {
	c, err := p[0], p[1]
	ls := m.lambdas(m.CorrectC(c), err)
	as := errorClassWeights(m.comb, ls, 1)
	pj := make(map[int]float64, len(m.hist))
	for j := range m.hist {
		var v float64
		for s := range ls {
			v += as[s] * stats.TruncPoisson(ls[s], j)
		}
		pj[j] = v
	}
	return pj
}

// LogLikelihood clips p into the bounds and scores the predicted distribution
// against the histogram, rewarding models whose unobserved probability mass
// matches the trimmed tail.
func (m *Basic) LogLikelihood(p Params) float64 {
	clipped := m.bounds.Clip(p)
	return scoreHistogram(m.hist, m.tail, m.Probabilities(clipped))
}

// scoreHistogram is the shared likelihood kernel: sum of count-weighted log
// probabilities plus the tail term tail*ln(1-sp) when predicted mass sp < 1.
// Multiplicities are visited in sorted order so the score is reproducible
// regardless of map insertion history.
func scoreHistogram(hist histogram.Histogram, tail float64, pj map[int]float64) float64 {
	js := make([]int, 0, len(hist))
	for j := range hist {
		js = append(js, j)
	}
	sort.Ints(js)
	var ll, sp float64
	for _, j := range js {
		sp += pj[j]
		if h := hist[j]; h != 0 {
			ll += h * stats.SafeLog(pj[j])
		}
	}
	if sp < 1 {
		ll += tail * stats.SafeLog(1 - sp)
	}
	return ll
}
