// core/estimate/estimator_test.go
package estimate

import (
	"context"
	"math"
	"testing"

	"covest-core/histogram"
	"covest-core/model"
)

// syntheticHist builds a histogram from the model's own predictive
// distribution at truth, scaled to big counts, with the unpredicted mass as
// tail. The maximum-likelihood fit of such data is the truth itself.
func syntheticHist(t *testing.T, truth model.Params, maxJ int) (histogram.Histogram, float64) {
	t.Helper()
	keys := make(histogram.Histogram, maxJ)
	for j := 1; j <= maxJ; j++ {
		keys[j] = 1
	}
	m := model.NewBasic(model.Config{K: 21, ReadLength: 100, Hist: keys, MaxError: 8})
	probs := m.Probabilities(truth)

	const scale = 1e6
	hist := make(histogram.Histogram, maxJ)
	var sum float64
	for j, p := range probs {
		if p*scale >= 1 {
			hist[j] = math.Round(p * scale)
		}
		sum += p
	}
	tail := (1 - sum) * scale
	if tail < 0 {
		tail = 0
	}
	return hist, tail
}

func TestEstimateRecoversKnownParameters(t *testing.T) {
	truth := model.Params{10, 0.02}
	hist, tail := syntheticHist(t, truth, 60)
	m := model.NewBasic(model.Config{K: 21, ReadLength: 100, Hist: hist, Tail: tail, MaxError: 8})
	e := New(m, Options{Threads: 2, Seed: 42})

	got := e.Estimate(context.Background(), model.Params{12, 0.05}, GridNone)
	if math.Abs(got[0]-truth[0])/truth[0] > 0.05 {
		t.Errorf("coverage %v, want within 5%% of %v", got[0], truth[0])
	}
	if math.Abs(got[1]-truth[1]) > 0.01 {
		t.Errorf("error rate %v, want near %v", got[1], truth[1])
	}
}

func TestEstimateScenarioModeThree(t *testing.T) {
	hist := histogram.Histogram{1: 1000, 2: 4000, 3: 6000, 4: 4000, 5: 1000}
	m := model.NewBasic(model.Config{K: 21, ReadLength: 100, Hist: hist, MaxError: 8})
	e := New(m, Options{Threads: 2, Seed: 42})

	got := e.Estimate(context.Background(), model.Params{3.0, 0.01}, GridNone)
	// Mode-implied k-mer coverage ~3 maps to read coverage ~3.5 at k=21,
	// r=100 (factor 0.8).
	if got[0] < 2.8 || got[0] > 4.3 {
		t.Errorf("coverage %v, want near the histogram mode (~3.5 read coverage)", got[0])
	}
	if got[1] > 0.05 {
		t.Errorf("error rate %v, want near 0", got[1])
	}
}

func TestEstimateFixedErrorRateStaysFixed(t *testing.T) {
	hist := histogram.Histogram{1: 1000, 2: 4000, 3: 6000, 4: 4000, 5: 1000}
	m := model.NewBasic(model.Config{K: 21, ReadLength: 100, Hist: hist, MaxError: 8})

	for _, grid := range []GridSearch{GridNone, GridPre, GridPost} {
		fix := model.NoFix(2)
		fix[1] = 0.0
		e := New(m, Options{Fix: fix, Threads: 2, Seed: 42, GridCount: 4})
		got := e.Estimate(context.Background(), model.Params{3.0, 0.0}, grid)
		if got[1] != 0.0 {
			t.Errorf("grid=%v: fixed error rate drifted to %v", grid, got[1])
		}
		if got[0] <= 0 {
			t.Errorf("grid=%v: coverage %v", grid, got[0])
		}
	}
}

func TestEstimateCancelledReturnsBestSoFar(t *testing.T) {
	hist := histogram.Histogram{1: 1000, 2: 4000, 3: 6000, 4: 4000, 5: 1000}
	m := model.NewBasic(model.Config{K: 21, ReadLength: 100, Hist: hist, MaxError: 8})
	e := New(m, Options{Threads: 2, Seed: 42})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	guess := model.Params{3.0, 0.01}
	got := e.Estimate(ctx, guess, GridPre)
	if got[0] != 3.0 || got[1] != 0.01 {
		t.Errorf("cancelled estimation must return the guess, got %v", got)
	}
}

func TestEstimateMultiStartPicksBest(t *testing.T) {
	truth := model.Params{10, 0.02}
	hist, tail := syntheticHist(t, truth, 60)
	m := model.NewBasic(model.Config{K: 21, ReadLength: 100, Hist: hist, Tail: tail, MaxError: 8})
	e := New(m, Options{Threads: 4, Seed: 42, GridCount: 6})

	got := e.Estimate(context.Background(), model.Params{8, 0.05}, GridPre)
	if math.Abs(got[0]-truth[0])/truth[0] > 0.05 {
		t.Errorf("coverage %v, want within 5%% of %v", got[0], truth[0])
	}
}

func TestParseGridSearch(t *testing.T) {
	for s, want := range map[string]GridSearch{"none": GridNone, "pre": GridPre, "post": GridPost} {
		got, err := ParseGridSearch(s)
		if err != nil || got != want {
			t.Errorf("ParseGridSearch(%q)=%v,%v", s, got, err)
		}
		if got.String() != s {
			t.Errorf("String()=%q, want %q", got.String(), s)
		}
	}
	if _, err := ParseGridSearch("bogus"); err == nil {
		t.Error("expected error for bogus grid type")
	}
}

func TestObjectiveMatchesLogLikelihood(t *testing.T) {
	hist := histogram.Histogram{1: 10, 2: 20, 3: 10}
	m := model.NewBasic(model.Config{K: 21, ReadLength: 100, Hist: hist, MaxError: 8})
	e := New(m, Options{Threads: 1})
	p := model.Params{3, 0.01}
	if got, want := e.Objective(p), -m.LogLikelihood(p); got != want {
		t.Errorf("Objective=%v, want %v", got, want)
	}
}
