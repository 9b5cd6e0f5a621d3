// core/histogram/load.go
package histogram

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// openReader handles gzip (by magic number or .gz suffix) and "-" for stdin.
func openReader(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	n, _ := fh.Read(sig[:])
	_, _ = fh.Seek(0, io.SeekStart)
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}
	return fh, nil
}

// ReadFile loads a k-mer histogram from a whitespace-separated
// "multiplicity count" file (the output format of k-mer counters such as
// jellyfish histo). Blank lines and lines starting with '#' are skipped.
func ReadFile(path string) (Histogram, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return Read(rc)
}

// Read parses a histogram from r; see ReadFile for the format.
func Read(r io.Reader) (Histogram, error) {
	hist := make(Histogram)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("histogram line %d: want 'multiplicity count', got %q", line, text)
		}
		j, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("histogram line %d: bad multiplicity %q: %w", line, fields[0], err)
		}
		cnt, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("histogram line %d: bad count %q: %w", line, fields[1], err)
		}
		if j < 0 || cnt < 0 {
			return nil, fmt.Errorf("histogram line %d: negative value", line)
		}
		if cnt > 0 {
			hist[j] += cnt
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return hist, nil
}
