// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"

	log "github.com/sirupsen/logrus"

	"covest-core/estimate"
	"covest-core/histogram"
	"covest-core/model"
	"covest-core/reads"
	"covest/internal/cli"
	"covest/internal/output"
	"covest/internal/plotting"
	"covest/internal/version"
)

// RunContext drives one full estimation: parse flags, load and trim the
// histogram, optimize, and print the JSON report. Cancelling ctx stops the
// optimization early; the best result found so far is still printed and the
// exit code becomes 130.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("covest")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		fs.SetOutput(outw)
		fs.Usage()
		return flushCode(outw, stderr, 0)
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			return flushCode(outw, stderr, 0)
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(outw)
		fs.Usage()
		return flushCode(outw, stderr, 2)
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "covest version %s\n", version.Version)
		return flushCode(outw, stderr, 0)
	}

	log.SetOutput(stderr)
	if opts.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	hist, err := histogram.ReadFile(opts.HistFile)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	if len(hist) == 0 {
		_, _ = fmt.Fprintf(stderr, "histogram %s is empty\n", opts.HistFile)
		return 2
	}

	trimmed, tail := hist, 0.0
	switch {
	case opts.AutoTrim >= 0:
		var at int
		trimmed, tail, at = histogram.AutoTrim(hist, opts.AutoTrim)
		log.WithFields(log.Fields{"at": at, "tail": tail}).Debug("histogram trimmed automatically")
	case opts.Trim > 0:
		trimmed, tail = histogram.TrimAt(hist, opts.Trim)
	}
	if len(trimmed) == 0 {
		_, _ = fmt.Fprintln(stderr, "histogram is empty after trimming")
		return 2
	}

	name := "basic"
	if opts.Repeats {
		name = "repeats"
	}
	ctor, err := model.Select(name)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	m := ctor(model.Config{
		K:           opts.K,
		ReadLength:  opts.ReadLength,
		Hist:        trimmed,
		Tail:        tail,
		MaxError:    opts.MaxError,
		MaxCoverage: opts.MaxCoverage,
	})

	refVec := referenceVector(opts, m.ParamCount())

	if opts.LLOnly {
		for _, v := range refVec {
			if math.IsNaN(v) {
				_, _ = fmt.Fprintln(stderr, "-ll-only requires every model parameter to be supplied")
				return 2
			}
		}
		_, _ = fmt.Fprintf(outw, "Loglikelihood: %g\n", m.LogLikelihood(refVec))
		return flushCode(outw, stderr, 0)
	}

	// The initial guess uses the untrimmed histogram; trimming only affects
	// the likelihood, not the closed-form approximation.
	guess := initialGuess(opts, hist, refVec)

	var fix model.FixMask
	if opts.Fix {
		fix = model.FixMask(refVec.Clone())
	}
	grid, err := estimate.ParseGridSearch(opts.Grid)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	est := estimate.New(m, estimate.Options{Fix: fix, Threads: opts.Threads})
	res := est.Estimate(ctx, guess, grid)

	var readsSize int64
	if opts.ReadsFile != "" {
		readsSize, err = reads.CountBases(opts.ReadsFile)
		if err != nil {
			log.WithError(err).Warn("base counting failed; omitting genome size from reads")
			readsSize = 0
		}
	}

	orig := output.Original{
		Coverage:  opts.Coverage,
		ErrorRate: opts.ErrorRate,
		Q1:        opts.Q1,
		Q2:        opts.Q2,
		Q:         opts.Q,
	}
	rep := output.Build(m, m.LogLikelihood, res, guess, orig, readsSize)
	if err := output.EncodePretty(outw, rep); err != nil && !output.IsBrokenPipe(err) {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}

	if opts.PlotFile != "" {
		if err := writePlot(opts.PlotFile, m, res, guess, orig); err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return flushCode(outw, stderr, 3)
		}
	}

	code := 0
	if ctx.Err() != nil {
		code = 130
	}
	return flushCode(outw, stderr, code)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// flushCode flushes buffered stdout. A broken pipe is not an error; any
// other flush failure turns a success code into a write-error exit.
func flushCode(outw *bufio.Writer, stderr io.Writer, code int) int {
	if err := outw.Flush(); output.IsBrokenPipe(err) {
		return code
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		if code == 0 {
			return 3
		}
	}
	return code
}

// referenceVector assembles the user-supplied parameters into a model-sized
// vector; NaN marks coordinates that were not given.
func referenceVector(opts cli.Options, n int) model.Params {
	vec := model.Params{opts.Coverage, opts.ErrorRate}
	if n >= 5 {
		vec = append(vec, opts.Q1, opts.Q2, opts.Q)
	}
	return vec
}

// initialGuess picks the optimization start: the reference parameters when
// requested, otherwise the closed-form coverage approximation. Repeat ratios
// missing from the command line start at 0.5.
func initialGuess(opts cli.Options, hist histogram.Histogram, refVec model.Params) model.Params {
	g := refVec.Clone()
	if !opts.StartOriginal {
		cov, e := estimate.ApproxCoverage(hist, opts.K, opts.ReadLength)
		if cov == 0 && e == 1 {
			// The approximation failed; start from fixed valid values.
			cov, e = 1, 0.5
		}
		if !opts.Fix || math.IsNaN(g[0]) {
			g[0] = cov
		}
		if !opts.Fix || math.IsNaN(g[1]) {
			g[1] = e
		}
	}
	for i := 2; i < len(g); i++ {
		if math.IsNaN(g[i]) {
			g[i] = 0.5
		}
	}
	return g
}

func writePlot(path string, m model.Model, est, guess model.Params, orig output.Original) error {
	series := []plotting.Series{
		{Name: "estimated", Probs: m.Probabilities(est)},
		{Name: "guessed", Probs: m.Probabilities(guess)},
	}
	if ov, ok := originalVector(m.ParamCount(), orig); ok {
		series = append(series, plotting.Series{Name: "original", Probs: m.Probabilities(ov)})
	}
	return plotting.WriteFile(path, m.Hist(), series...)
}

// originalVector returns the full reference vector, or ok=false when any
// coordinate is missing.
func originalVector(n int, orig output.Original) (model.Params, bool) {
	vec := model.Params{orig.Coverage, orig.ErrorRate}
	if n >= 5 {
		vec = append(vec, orig.Q1, orig.Q2, orig.Q)
	}
	for _, v := range vec {
		if math.IsNaN(v) {
			return nil, false
		}
	}
	return vec, true
}
