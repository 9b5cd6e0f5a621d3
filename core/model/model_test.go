// core/model/model_test.go
package model

import (
	"errors"
	"math"
	"testing"

	"covest-core/histogram"
)

func testHist() histogram.Histogram {
	return histogram.Histogram{1: 1000, 2: 4000, 3: 6000, 4: 4000, 5: 1000}
}

func TestBasicProbabilitiesRangeAndSum(t *testing.T) {
	m := NewBasic(Config{K: 21, ReadLength: 100, Hist: testHist(), MaxError: 8})

	tests := []Params{
		{1, 0},
		{3, 0.01},
		{10, 0.1},
		{0.5, 0.5},
	}
	for _, p := range tests {
		pj := m.Probabilities(p)
		if len(pj) != len(m.Hist()) {
			t.Fatalf("params %v: got %d keys, want %d", p, len(pj), len(m.Hist()))
		}
		var sum float64
		for j, v := range pj {
			if v < 0 || v > 1 {
				t.Errorf("params %v: p[%d]=%v out of [0,1]", p, j, v)
			}
			sum += v
		}
		if sum > 1+1e-9 {
			t.Errorf("params %v: probabilities sum to %v > 1", p, sum)
		}
	}
}

func TestCorrectCLinear(t *testing.T) {
	m := NewBasic(Config{K: 21, ReadLength: 100, Hist: testHist()})
	for _, c := range []float64{0.5, 1, 3, 100} {
		if got, want := m.CorrectC(2*c), 2*m.CorrectC(c); math.Abs(got-want) > 1e-12 {
			t.Errorf("CorrectC(2*%v)=%v, want %v", c, got, want)
		}
	}
	// k=21, r=100: factor (100-21+1)/100 = 0.8.
	if got := m.CorrectC(10); math.Abs(got-8) > 1e-12 {
		t.Errorf("CorrectC(10)=%v, want 8", got)
	}
}

func TestLogLikelihoodInsertionOrderInvariant(t *testing.T) {
	a := histogram.Histogram{}
	for j := 1; j <= 5; j++ {
		a[j] = testHist()[j]
	}
	b := histogram.Histogram{}
	for j := 5; j >= 1; j-- {
		b[j] = testHist()[j]
	}
	ma := NewBasic(Config{K: 21, ReadLength: 100, Hist: a, MaxError: 8})
	mb := NewBasic(Config{K: 21, ReadLength: 100, Hist: b, MaxError: 8})
	p := Params{3, 0.01}
	if la, lb := ma.LogLikelihood(p), mb.LogLikelihood(p); la != lb {
		t.Errorf("log-likelihood depends on insertion order: %v vs %v", la, lb)
	}
}

func TestLogLikelihoodFiniteOnZeroProbability(t *testing.T) {
	// Multiplicity 500 is unreachable at coverage ~1; its predicted
	// probability underflows to 0 and must be penalized, not propagated.
	h := testHist()
	h[500] = 10
	m := NewBasic(Config{K: 21, ReadLength: 100, Hist: h, MaxError: 8})
	ll := m.LogLikelihood(Params{1, 0})
	if math.IsInf(ll, 0) || math.IsNaN(ll) {
		t.Fatalf("log-likelihood not finite: %v", ll)
	}
	base := NewBasic(Config{K: 21, ReadLength: 100, Hist: testHist(), MaxError: 8}).
		LogLikelihood(Params{1, 0})
	if ll >= base {
		t.Errorf("zero-probability observation not penalized: %v >= %v", ll, base)
	}
}

func TestLogLikelihoodClipsToBounds(t *testing.T) {
	m := NewBasic(Config{K: 21, ReadLength: 100, Hist: testHist(), MaxError: 8, MaxCoverage: 50})
	outside := m.LogLikelihood(Params{1e9, 0.9})
	clipped := m.LogLikelihood(Params{50, 0.5})
	if outside != clipped {
		t.Errorf("out-of-bounds params not clipped: %v vs %v", outside, clipped)
	}
}

func TestTailMassTerm(t *testing.T) {
	// With tail mass, a model leaving unobserved probability mass must score
	// differently from the same model without tail mass.
	withTail := NewBasic(Config{K: 21, ReadLength: 100, Hist: testHist(), Tail: 500, MaxError: 8})
	noTail := NewBasic(Config{K: 21, ReadLength: 100, Hist: testHist(), MaxError: 8})
	p := Params{3, 0.01}
	lw, ln := withTail.LogLikelihood(p), noTail.LogLikelihood(p)
	if lw == ln {
		t.Errorf("tail mass had no effect on the score: %v", lw)
	}
	if math.IsInf(lw, 0) || math.IsNaN(lw) {
		t.Errorf("tail term not finite: %v", lw)
	}
}

func TestCopyNumberDistClosure(t *testing.T) {
	tests := []struct{ q1, q2, q float64 }{
		{0.5, 0.5, 0.5},
		{0.9, 0.1, 0.3},
		{0.3, 0.7, 0.05},
		{1, 0, 0},
	}
	for _, tc := range tests {
		bo := CopyNumberDist(tc.q1, tc.q2, tc.q)
		if bo(0) != 0 {
			t.Errorf("b_o(0)=%v, want 0", bo(0))
		}
		var sum float64
		for o := 1; o < 5000; o++ {
			sum += bo(o)
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Errorf("q1=%v q2=%v q=%v: b_o sums to %v, want 1", tc.q1, tc.q2, tc.q, sum)
		}
	}
}

func TestRepeatsProbabilities(t *testing.T) {
	m := NewRepeats(Config{K: 21, ReadLength: 100, Hist: testHist(), MaxError: 8})
	pj := m.Probabilities(Params{3, 0.01, 0.8, 0.5, 0.5})
	var sum float64
	for j, v := range pj {
		if v < 0 || v > 1 {
			t.Errorf("p[%d]=%v out of [0,1]", j, v)
		}
		sum += v
	}
	if sum > 1+1e-9 {
		t.Errorf("repeat probabilities sum to %v > 1", sum)
	}
	if math.IsNaN(m.LogLikelihood(Params{3, 0.01, 0.8, 0.5, 0.5})) {
		t.Error("repeats log-likelihood is NaN")
	}
}

func TestDefaultsWithinBounds(t *testing.T) {
	for _, m := range []Model{
		NewBasic(Config{K: 21, ReadLength: 100, Hist: testHist()}),
		NewRepeats(Config{K: 21, ReadLength: 100, Hist: testHist()}),
	} {
		d := m.Defaults()
		if len(d) != m.ParamCount() {
			t.Fatalf("%s: defaults len %d, want %d", m.Name(), len(d), m.ParamCount())
		}
		for i, b := range m.Bounds() {
			if !b.Contains(d[i]) {
				t.Errorf("%s: default[%d]=%v outside %v", m.Name(), i, d[i], b)
			}
		}
	}
}

func TestFixMask(t *testing.T) {
	fix := NoFix(3)
	fix[1] = 0.0
	if fix.Free(1) || !fix.Free(0) || !fix.Free(2) || !fix.Free(7) {
		t.Fatal("Free() wrong")
	}
	got := fix.Apply(Params{5, 0.2, 0.9})
	if got[0] != 5 || got[1] != 0 || got[2] != 0.9 {
		t.Errorf("Apply=%v", got)
	}
}

func TestBoundsClip(t *testing.T) {
	bs := Bounds{{Lo: 0.01, Hi: 10}, {Lo: 0, Hi: 0.5}}
	got := bs.Clip(Params{-4, 2})
	if got[0] != 0.01 || got[1] != 0.5 {
		t.Errorf("Clip=%v", got)
	}
	// Unbounded side passes through.
	open := Bounds{{Lo: 0.01, Hi: math.Inf(1)}}
	if v := open.Clip(Params{1e12})[0]; v != 1e12 {
		t.Errorf("open clip=%v", v)
	}
}

func TestSelect(t *testing.T) {
	for _, name := range []string{"basic", "b", "repeats", "rep"} {
		if _, err := Select(name); err != nil {
			t.Errorf("Select(%q): %v", name, err)
		}
	}
	for _, name := range []string{"", "bogus", "x"} {
		if _, err := Select(name); !errors.Is(err, ErrUnknownModel) {
			t.Errorf("Select(%q): want ErrUnknownModel, got %v", name, err)
		}
	}
	c, _ := Select("rep")
	if m := c(Config{K: 21, ReadLength: 100, Hist: testHist()}); m.Name() != "repeats" {
		t.Errorf("Select(rep) built %q", m.Name())
	}
}

func TestLambdaCacheBounded(t *testing.T) {
	c := newLambdaCache(2)
	c.put(lambdaKey{1, 0}, []float64{1})
	c.put(lambdaKey{2, 0}, []float64{2})
	c.put(lambdaKey{3, 0}, []float64{3}) // evicts (1,0)
	if c.get(lambdaKey{1, 0}) != nil {
		t.Error("oldest entry not evicted")
	}
	if v := c.get(lambdaKey{3, 0}); v == nil || v[0] != 3 {
		t.Errorf("get=%v", v)
	}
}
