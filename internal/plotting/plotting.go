// internal/plotting/plotting.go
package plotting

import (
	"errors"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"covest-core/histogram"
)

// Series is one model probability curve to draw against the observed
// spectrum.
type Series struct {
	Name  string
	Probs map[int]float64
}

// WriteFile renders the observed k-mer spectrum as a scatter together with
// the given model curves on a log-scaled Y axis. The image format follows
// the file extension (.png, .svg, .pdf, ...).
func WriteFile(path string, hist histogram.Histogram, series ...Series) error {
	obs := observedPoints(hist)
	if len(obs) == 0 {
		return errors.New("plot: histogram has no positive counts")
	}

	p := plot.New()
	p.Title.Text = "k-mer spectrum fit"
	p.X.Label.Text = "k-mer multiplicity"
	p.Y.Label.Text = "fraction of distinct k-mers"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Legend.Top = true

	sc, err := plotter.NewScatter(obs)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = plotutil.Color(0)
	sc.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(sc)
	p.Legend.Add("observed", sc)

	for i, s := range series {
		pts := curvePoints(s.Probs)
		if len(pts) == 0 {
			continue
		}
		ln, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		ln.Color = plotutil.Color(i + 1)
		p.Add(ln)
		p.Legend.Add(s.Name, ln)
	}

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// observedPoints normalizes counts to fractions of distinct k-mers.
// Non-positive values are dropped so the log scale stays valid.
func observedPoints(hist histogram.Histogram) plotter.XYs {
	total := hist.Distinct()
	if total <= 0 {
		return nil
	}
	pts := make(plotter.XYs, 0, len(hist))
	for _, j := range sortedKeys(hist) {
		if hist[j] > 0 {
			pts = append(pts, plotter.XY{X: float64(j), Y: hist[j] / total})
		}
	}
	return pts
}

func curvePoints(probs map[int]float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(probs))
	for _, j := range sortedKeys(probs) {
		if probs[j] > 0 {
			pts = append(pts, plotter.XY{X: float64(j), Y: probs[j]})
		}
	}
	return pts
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for j := range m {
		keys = append(keys, j)
	}
	sort.Ints(keys)
	return keys
}
