// core/histogram/histogram.go
package histogram

// Histogram maps observed k-mer multiplicity to the number of distinct k-mers
// seen with that multiplicity. Multiplicity 0 (unobserved k-mers) is absent.
type Histogram map[int]float64

// Max returns the largest multiplicity present, or 0 for an empty histogram.
func (h Histogram) Max() int {
	max := 0
	for j := range h {
		if j > max {
			max = j
		}
	}
	return max
}

// Distinct returns the total number of distinct k-mers recorded.
func (h Histogram) Distinct() float64 {
	var s float64
	for _, cnt := range h {
		s += cnt
	}
	return s
}

// TotalKmers returns the total number of k-mer observations, i.e. the sum of
// multiplicity * count over the histogram.
func (h Histogram) TotalKmers() float64 {
	var s float64
	for j, cnt := range h {
		s += float64(j) * cnt
	}
	return s
}

// Clone returns a copy of h.
func (h Histogram) Clone() Histogram {
	out := make(Histogram, len(h))
	for j, cnt := range h {
		out[j] = cnt
	}
	return out
}
