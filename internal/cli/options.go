// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"math"

	"covest/internal/version"
)

// Grid search modes accepted by --grid.
const (
	GridNone = "none"
	GridPre  = "pre"
	GridPost = "post"
)

// Options holds all CLI flags and arguments.
type Options struct {
	// Input
	HistFile string

	// Model parameters
	K           int
	ReadLength  int
	Repeats     bool
	MaxCoverage float64
	MaxError    int

	// Histogram preprocessing
	Trim     int // trim multiplicities >= this value; 0 = off
	AutoTrim int // rounding precision for automatic trimming; -1 = off

	// Estimation
	Grid          string
	Coverage      float64 // NaN = not supplied
	ErrorRate     float64
	Q1            float64
	Q2            float64
	Q             float64
	StartOriginal bool
	Fix           bool
	LLOnly        bool
	Threads       int

	// Extras
	ReadsFile string // read file for a base-count genome size estimate
	PlotFile  string // image path for the spectrum fit plot

	Verbose bool
	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: coverage and error rate estimation from k-mer histograms

Version: %s

Usage: %s [options] <histogram-file>
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool
	nan := math.NaN()

	// Model parameters
	fs.IntVar(&opt.K, "k", 21, "k-mer size [21]")
	fs.IntVar(&opt.ReadLength, "read-length", 100, "read length [100]")
	fs.IntVar(&opt.ReadLength, "r", 100, "read length (shorthand) [100]")
	fs.BoolVar(&opt.Repeats, "repeats", false, "estimate with the repeat model [false]")
	fs.Float64Var(&opt.MaxCoverage, "max-coverage", 0, "upper coverage bound (0 = unbounded) [0]")
	fs.IntVar(&opt.MaxError, "max-error", 8, "maximum base errors per k-mer considered [8]")

	// Histogram preprocessing
	fs.IntVar(&opt.Trim, "trim", 0, "trim histogram at this multiplicity (0 = off) [0]")
	fs.IntVar(&opt.AutoTrim, "autotrim", -1, "trim automatically, rounding the cumulative mass to N digits (-1 = off) [-1]")

	// Estimation
	fs.StringVar(&opt.Grid, "grid", GridNone, "grid search: none | pre | post ["+GridNone+"]")
	fs.Float64Var(&opt.Coverage, "coverage", nan, "reference coverage")
	fs.Float64Var(&opt.Coverage, "c", nan, "reference coverage (shorthand)")
	fs.Float64Var(&opt.ErrorRate, "error-rate", nan, "reference error rate")
	fs.Float64Var(&opt.ErrorRate, "e", nan, "reference error rate (shorthand)")
	fs.Float64Var(&opt.Q1, "q1", nan, "single-copy k-mer ratio (repeat model)")
	fs.Float64Var(&opt.Q2, "q2", nan, "two-copy ratio among repetitive k-mers (repeat model)")
	fs.Float64Var(&opt.Q, "q", nan, "copy-number tail decay (repeat model)")
	fs.BoolVar(&opt.StartOriginal, "start-original", false, "start optimization from the reference parameters [false]")
	fs.BoolVar(&opt.Fix, "fix", false, "fix supplied reference parameters during optimization [false]")
	fs.BoolVar(&opt.LLOnly, "ll-only", false, "only print the log-likelihood of the reference parameters [false]")
	fs.IntVar(&opt.Threads, "threads", 0, "number of worker threads (0 = all CPUs) [0]")

	// Extras
	fs.StringVar(&opt.ReadsFile, "reads", "", "FASTA/FASTQ read file for a base-count genome size estimate")
	fs.StringVar(&opt.PlotFile, "plot", "", "write a spectrum fit plot to this image file")

	fs.BoolVar(&opt.Verbose, "verbose", false, "enable debug logging [false]")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	// Validation
	switch fs.NArg() {
	case 0:
		return opt, errors.New("a histogram file is required")
	case 1:
		opt.HistFile = fs.Arg(0)
	default:
		return opt, fmt.Errorf("unexpected argument %q", fs.Arg(1))
	}
	if opt.K < 1 {
		return opt, errors.New("-k must be ≥ 1")
	}
	if opt.ReadLength <= opt.K {
		return opt, errors.New("-read-length must be greater than -k")
	}
	if opt.MaxCoverage < 0 {
		return opt, errors.New("-max-coverage must be ≥ 0")
	}
	if opt.MaxError < 1 {
		return opt, errors.New("-max-error must be ≥ 1")
	}
	if opt.Trim < 0 {
		return opt, errors.New("-trim must be ≥ 0")
	}
	if opt.AutoTrim < -1 {
		return opt, errors.New("-autotrim must be ≥ -1")
	}
	if opt.Trim > 0 && opt.AutoTrim >= 0 {
		return opt, errors.New("-trim conflicts with -autotrim")
	}
	if opt.Grid != GridNone && opt.Grid != GridPre && opt.Grid != GridPost {
		return opt, fmt.Errorf("invalid -grid %q", opt.Grid)
	}
	if opt.Threads < 0 {
		return opt, errors.New("-threads must be ≥ 0")
	}
	if (opt.StartOriginal || opt.LLOnly) && (math.IsNaN(opt.Coverage) || math.IsNaN(opt.ErrorRate)) {
		return opt, errors.New("-start-original and -ll-only require -coverage and -error-rate")
	}
	for name, v := range map[string]float64{"-coverage": opt.Coverage, "-error-rate": opt.ErrorRate, "-q1": opt.Q1, "-q2": opt.Q2, "-q": opt.Q} {
		if !math.IsNaN(v) && v < 0 {
			return opt, fmt.Errorf("%s must be ≥ 0", name)
		}
	}
	return opt, nil
}
