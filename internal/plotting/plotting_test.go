// internal/plotting/plotting_test.go
package plotting

import (
	"os"
	"path/filepath"
	"testing"

	"covest-core/histogram"
)

func TestWriteFilePNG(t *testing.T) {
	h := histogram.Histogram{1: 100, 2: 400, 3: 600, 4: 400, 5: 100}
	curve := Series{Name: "estimated", Probs: map[int]float64{
		1: 0.07, 2: 0.25, 3: 0.37, 4: 0.24, 5: 0.07,
	}}

	path := filepath.Join(t.TempDir(), "fit.png")
	if err := WriteFile(path, h, curve); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("empty plot file")
	}
}

func TestWriteFileEmptyHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fit.png")
	if err := WriteFile(path, histogram.Histogram{}); err == nil {
		t.Fatal("expected error for empty histogram")
	}
}

func TestObservedPointsDropNonPositive(t *testing.T) {
	h := histogram.Histogram{1: 10, 2: 0, 3: 5}
	pts := observedPoints(h)
	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2", len(pts))
	}
	if pts[0].X != 1 || pts[1].X != 3 {
		t.Fatalf("unexpected point order: %+v", pts)
	}
}
