// core/histogram/trim.go
package histogram

import "math"

// TrimAt removes every multiplicity >= j and returns the trimmed histogram
// together with the tail mass: the count of distinct k-mers that fell beyond
// the retained range. j <= 0 leaves the histogram untouched.
func TrimAt(h Histogram, j int) (Histogram, float64) {
	if j <= 0 {
		return h.Clone(), 0
	}
	out := make(Histogram, len(h))
	var tail float64
	for m, cnt := range h {
		if m >= j {
			tail += cnt
		} else {
			out[m] = cnt
		}
	}
	return out, tail
}

// AutoTrimPoint finds the smallest multiplicity at which the cumulative
// fraction of distinct k-mers, rounded to precision decimal places
// (precision 0 means exact), first reaches 1; the histogram is kept strictly
// below that multiplicity. Returns 0 (no trim) for an empty histogram.
func AutoTrimPoint(h Histogram, precision int) int {
	total := h.Distinct()
	if total == 0 {
		return 0
	}
	max := h.Max()
	var cum float64
	for m := 0; m <= max; m++ {
		cum += h[m]
		r := cum / total
		if precision > 0 {
			shift := math.Pow(10, float64(precision))
			r = math.Round(r*shift) / shift
		}
		if r == 1 {
			return m
		}
	}
	return 0
}

// AutoTrim trims h at AutoTrimPoint. See TrimAt for the returned tail mass.
func AutoTrim(h Histogram, precision int) (Histogram, float64, int) {
	at := AutoTrimPoint(h, precision)
	trimmed, tail := TrimAt(h, at)
	return trimmed, tail, at
}
