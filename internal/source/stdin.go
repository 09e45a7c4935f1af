package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// StdinSource reads newline-delimited transcript fragments from a reader,
// normally os.Stdin. Reads on the underlying reader cannot be interrupted,
// so cancellation is only observed between lines.
type StdinSource struct {
	scanner *bufio.Scanner
}

var _ Source = (*StdinSource)(nil)

// NewStdin wraps r in a line-oriented source.
func NewStdin(r io.Reader) *StdinSource {
	return &StdinSource{scanner: bufio.NewScanner(r)}
}

// Read implements [Source.Read].
func (s *StdinSource) Read(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return "", fmt.Errorf("source: read stdin: %w", err)
			}
			return "", io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line != "" {
			return line, nil
		}
	}
}

// Kind implements [Source.Kind].
func (s *StdinSource) Kind() string { return "stdin" }

// Close implements [Source.Close]. Stdin is not ours to close.
func (s *StdinSource) Close() error { return nil }
