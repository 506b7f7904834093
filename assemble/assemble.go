// Package assemble buffers raw text and hands out complete sentences in the
// order they appear.
package assemble

import (
	"strings"
	"unicode"

	"github.com/revelaction/relstream/segment"
)

// Assembler owns the pending buffer. Every appended byte is either still in
// the buffer or was returned by Next, except the white space around
// sentences, which Next drops.
type Assembler struct {
	splitter segment.Splitter

	// text appended since the last compaction, of which the first off bytes
	// were consumed
	buf strings.Builder
	off int

	// offset in the pending text where the splitter resumes its scan
	scanned int
}

// New returns an Assembler that uses s to find sentence boundaries.
func New(s segment.Splitter) *Assembler {
	return &Assembler{splitter: s}
}

// AddText appends a chunk of raw text to the buffer.
func (a *Assembler) AddText(chunk string) {
	a.buf.WriteString(chunk)
}

// Next removes and returns the first complete sentence of the buffer. It
// returns false when no boundary can be resolved with the buffered text.
// Text already scanned without a boundary is not scanned again.
func (a *Assembler) Next() (string, bool) {
	for {
		text := a.Pending()
		end, resume, ok := a.splitter.Boundary(text, a.scanned)
		if !ok {
			a.scanned = min(max(resume, 0), len(text))
			return "", false
		}

		if end <= 0 || end > len(text) {
			return "", false
		}

		a.off += end
		a.scanned = 0

		// a boundary made only of white space carries no sentence
		if s := strings.TrimSpace(text[:end]); s != "" {
			a.compact()
			return s, true
		}
	}
}

// Pending returns the text not yet returned by Next.
func (a *Assembler) Pending() string {
	return a.buf.String()[a.off:]
}

// Reset discards the buffer and returns the number of dropped bytes that
// were not white space.
func (a *Assembler) Reset() int {
	dropped := len(strings.TrimFunc(a.Pending(), unicode.IsSpace))
	a.buf.Reset()
	a.off = 0
	a.scanned = 0
	return dropped
}

// compact drops the consumed text once it is most of the buffer. Strings
// returned before stay valid, Reset does not touch the old bytes.
func (a *Assembler) compact() {
	if a.off == 0 || a.off < a.buf.Len()/2 {
		return
	}

	rest := a.Pending()
	a.buf.Reset()
	a.buf.WriteString(rest)
	a.off = 0
}
