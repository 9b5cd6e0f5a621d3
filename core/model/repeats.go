// core/model/repeats.go
package model

import (
	"math"

	"covest-core/stats"
)

// Repeats extends the basic model with a genome copy-number mixture: a k-mer
// occurs at o genomic locations with probability b_o(o), and its coverage
// scales linearly with o. Parameters: [coverage, errorRate, q1, q2, q].
type Repeats struct {
	Basic
	threshold float64
}

// NewRepeats builds the repeat-aware model. See Config for the extra knobs.
func NewRepeats(cfg Config) *Repeats {
	threshold := cfg.RepeatThreshold
	if threshold == 0 {
		threshold = defaultRepeatThreshold
	}
	minQ1 := cfg.MinSingleCopyRatio
	if minQ1 == 0 {
		minQ1 = defaultMinSingleCopyRatio
	}
	m := &Repeats{Basic: *NewBasic(cfg), threshold: threshold}
	m.bounds = append(m.bounds,
		Bound{Lo: minQ1, Hi: 1},
		Bound{Lo: 0, Hi: 1},
		Bound{Lo: 0, Hi: 1},
	)
	return m
}

func (m *Repeats) Name() string    { return "repeats" }
func (m *Repeats) ParamCount() int { return 5 }

// CopyNumberDist returns the copy-number distribution b_o:
// b(0)=0, b(1)=q1, b(2)=(1-q1)q2, and a geometric tail
// b(o)=(1-q1)(1-q2)q(1-q)^(o-3) for o >= 3. It sums to 1 over o >= 1 for any
// q1, q2, q in [0,1].
func CopyNumberDist(q1, q2, q float64) func(o int) float64 {
	o2 := (1 - q1) * q2
	oN := (1 - q1) * (1 - q2) * q
	return func(o int) float64 {
		switch {
		case o <= 0:
			return 0
		case o == 1:
			return q1
		case o == 2:
			return o2
		default:
			return oN * math.Pow(1-q, float64(o-3))
		}
	}
}

// copyNumberCutoff is the first o at which b_o drops to the truncation
// threshold, or the histogram's maximum multiplicity when the tail never
// falls that low within range. Copy numbers o >= cutoff are ignored.
func (m *Repeats) copyNumberCutoff(bo func(o int) float64) int {
	histSize := m.hist.Max()
	for o := 1; o < histSize; o++ {
		if bo(o) <= m.threshold {
			return o
		}
	}
	return histSize
}

// Probabilities implements the repeat mixture:
// p_j = sum_o b_o(o) * sum_s a_{o,s} * tp(o*lambda_s, j).
func (m *Repeats) Probabilities(p Params) map[int]float64 {
	c, err, q1, q2, q := p[0], p[1], p[2], p[3], p[4]
	bo := CopyNumberDist(q1, q2, q)
	cutoff := m.copyNumberCutoff(bo)
	ls := m.lambdas(m.CorrectC(c), err)

	weights := make([][]float64, cutoff)
	for o := 1; o < cutoff; o++ {
		weights[o] = errorClassWeights(m.comb, ls, float64(o))
	}

	pj := make(map[int]float64, len(m.hist))
	for j := range m.hist {
		var v float64
		for o := 1; o < cutoff; o++ {
			var inner float64
			for s := range ls {
				inner += weights[o][s] * stats.TruncPoisson(float64(o)*ls[s], j)
			}
			v += bo(o) * inner
		}
		pj[j] = v
	}
	return pj
}

// LogLikelihood mirrors Basic.LogLikelihood over the repeat mixture.
func (m *Repeats) LogLikelihood(p Params) float64 {
	clipped := m.bounds.Clip(p)
	return scoreHistogram(m.hist, m.tail, m.Probabilities(clipped))
}

// Defaults extends the basic defaults with bound midpoints for q1, q2, q.
func (m *Repeats) Defaults() Params {
	d := make(Params, len(m.bounds))
	d[0] = 1
	for i := 1; i < len(m.bounds); i++ {
		d[i] = m.bounds[i].Mid(0.5)
	}
	return d
}
