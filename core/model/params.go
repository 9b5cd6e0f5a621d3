// core/model/params.go
package model

import "math"

// Params is an ordered parameter vector: [coverage, errorRate] for the basic
// model, [coverage, errorRate, q1, q2, q] for the repeats model. Value type;
// never shared between goroutines after construction.
type Params []float64

// Clone returns a copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	copy(out, p)
	return out
}

// Bound is a closed per-parameter interval. -Inf/+Inf ends are unbounded.
type Bound struct {
	Lo, Hi float64
}

// Mid returns the interval midpoint, or fallback when either end is open.
func (b Bound) Mid(fallback float64) float64 {
	if math.IsInf(b.Lo, 0) || math.IsInf(b.Hi, 0) {
		return fallback
	}
	return (b.Lo + b.Hi) / 2
}

// Clip returns x forced into the interval.
func (b Bound) Clip(x float64) float64 {
	if x < b.Lo {
		return b.Lo
	}
	if x > b.Hi {
		return b.Hi
	}
	return x
}

// Contains reports whether x lies inside the interval. NaN is never inside.
func (b Bound) Contains(x float64) bool {
	return !math.IsNaN(x) && x >= b.Lo && x <= b.Hi
}

// Bounds is the per-parameter interval list of a model.
type Bounds []Bound

// Clip returns a copy of p with every coordinate forced into its bound.
// Coordinates beyond the bound list pass through unchanged.
func (bs Bounds) Clip(p Params) Params {
	out := p.Clone()
	for i := range out {
		if i < len(bs) {
			out[i] = bs[i].Clip(out[i])
		}
	}
	return out
}

// FixMask pins chosen parameters during optimization. NaN marks a free
// parameter; any other value holds that coordinate constant.
type FixMask []float64

// NoFix returns a mask of n free parameters.
func NoFix(n int) FixMask {
	m := make(FixMask, n)
	for i := range m {
		m[i] = math.NaN()
	}
	return m
}

// Free reports whether parameter i is optimized. Indices beyond the mask are
// free.
func (m FixMask) Free(i int) bool {
	return i >= len(m) || math.IsNaN(m[i])
}

// Apply returns a copy of p with fixed coordinates substituted.
func (m FixMask) Apply(p Params) Params {
	out := p.Clone()
	for i := range out {
		if !m.Free(i) {
			out[i] = m[i]
		}
	}
	return out
}
