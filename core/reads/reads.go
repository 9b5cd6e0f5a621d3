// core/reads/reads.go
package reads

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
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

// openReader handles gzip (magic number or .gz suffix) and "-" for stdin.
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

// CountBases returns the total number of sequenced bases in a FASTA or FASTQ
// file (gzip transparent). The format is sniffed from the first record marker
// rather than the file extension.
func CountBases(path string) (int64, error) {
	rc, err := openReader(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()
	return countBases(rc)
}

func countBases(r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	first, err := peekMarker(br)
	if err != nil {
		return 0, err
	}
	switch first {
	case '>':
		return countFasta(br)
	case '@':
		return countFastq(br)
	}
	return 0, fmt.Errorf("reads: unrecognized format (leading %q, want '>' or '@')", first)
}

// peekMarker returns the first non-whitespace byte without consuming input.
func peekMarker(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("reads: empty input: %w", err)
		}
		if b == '\n' || b == '\r' || b == ' ' || b == '\t' {
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

func countFasta(br *bufio.Reader) (int64, error) {
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var total int64
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '>' {
			continue
		}
		total += int64(len(line))
	}
	return total, sc.Err()
}

func countFastq(br *bufio.Reader) (int64, error) {
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var total int64
	line := 0
	for sc.Scan() {
		switch line % 4 {
		case 0:
			if text := sc.Text(); len(text) > 0 && text[0] != '@' {
				return 0, fmt.Errorf("reads: malformed FASTQ header at line %d", line+1)
			}
		case 1:
			total += int64(len(strings.TrimSpace(sc.Text())))
		}
		line++
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	if line%4 != 0 {
		return 0, fmt.Errorf("reads: truncated FASTQ record (%d trailing lines)", line%4)
	}
	return total, nil
}
