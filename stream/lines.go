package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// LineReader yields the lines of an io.Reader, without the trailing line
// terminator. Read failures are reported wrapped in ErrRead.
type LineReader struct {
	scanner *bufio.Scanner
	done    bool
}

// Lines creates a LineReader over r. Lines longer than maxLine bytes fail
// the stream; maxLine <= 0 selects a 1 MiB limit.
func Lines(r io.Reader, maxLine int) *LineReader {
	if maxLine <= 0 {
		maxLine = 1 << 20
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLine)
	return &LineReader{scanner: scanner}
}

// Next returns the next input line.
func (l *LineReader) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.done {
		return "", io.EOF
	}
	if !l.scanner.Scan() {
		l.done = true
		if err := l.scanner.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrRead, err)
		}
		return "", io.EOF
	}
	return l.scanner.Text(), nil
}
