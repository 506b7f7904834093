// Package input provides the line sources the session reads raw text from.
package input

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Sentinel is the reserved line that ends a session. It is never treated as
// text.
const Sentinel = "END."

// LineSource yields one line of raw text per call, without the line
// terminator. It returns io.EOF once the input is exhausted. Other errors
// are transient: the caller may call ReadLine again.
type LineSource interface {
	ReadLine() (string, error)
}

// Reader is a LineSource over an io.Reader.
type Reader struct {
	r *bufio.Reader

	// bytes of a line interrupted by a read error
	partial strings.Builder
}

var _ LineSource = (*Reader)(nil)

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line. A last line without terminator is
// returned before io.EOF. When the underlying reader fails mid line, the
// bytes already read are kept and prefixed to the line returned by the next
// successful call.
func (l *Reader) ReadLine() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		l.partial.WriteString(line)
		return "", err
	}

	if l.partial.Len() > 0 {
		line = l.partial.String() + line
		l.partial.Reset()
	}

	if err != nil && line == "" {
		return "", io.EOF
	}

	return trimEOL(line), nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
