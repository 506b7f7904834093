package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/revelaction/relstream/sentence"
)

const (
	Defaultformat = "compact"
)

func SupportedFormats() []string {
	return []string{"compact", "json"}
}

// Formatter writes the primary output stream: one header, one record per
// processed sentence, one footer. Each call writes whole records, so a
// reader never sees half a record from a successful call.
type Formatter interface {
	Header() error

	// Render writes the record of the index-th sentence of the session,
	// starting at 1.
	Render(index int, r *sentence.Result) error

	Footer() error
}

// Options are the display toggles shared by all formats.
type Options struct {
	ShowLinks        bool
	ShowMetadata     bool
	ShowConstituents bool

	// Show at most this many parses per sentence, even if the engine found
	// more.
	MaxParses int

	// Optional provenance of the input text
	SourceURL string

	// Version tag of the extraction engine
	Version string
}

// DefaultOptions shows everything, and only the best parse.
func DefaultOptions() Options {
	return Options{
		ShowLinks:        true,
		ShowMetadata:     true,
		ShowConstituents: true,
		MaxParses:        1,
	}
}

// New returns the Formatter for format, writing to w.
func New(format string, w io.Writer, opts Options) (Formatter, error) {
	switch format {
	case "compact":
		return NewCompactRenderer(w, opts), nil
	case "json":
		return NewJSONRenderer(w, opts), nil
	}

	return nil, fmt.Errorf("unknown format %q, allowed values are %s", format, strings.Join(SupportedFormats(), ", "))
}

// shown returns the parses to display under opts.
func shown(r *sentence.Result, opts Options) []sentence.Parse {
	n := opts.MaxParses
	if n <= 0 {
		n = 1
	}

	if len(r.Parses) < n {
		return r.Parses
	}
	return r.Parses[:n]
}

// Link renders the dependency of t in p as rel(head-id, word-id). Ids start
// at 1; the root hangs from ROOT-0.
func Link(p sentence.Parse, t sentence.Token) string {
	if t.Head == t.Index || t.Head < 0 || t.Head >= len(p.Tokens) {
		return fmt.Sprintf("%s(ROOT-0, %s-%d)", dep(t), t.Text, t.Index+1)
	}

	h := p.Tokens[t.Head]
	return fmt.Sprintf("%s(%s-%d, %s-%d)", dep(t), h.Text, h.Index+1, t.Text, t.Index+1)
}

func dep(t sentence.Token) string {
	if t.Dep == "" {
		return "dep"
	}
	return t.Dep
}

// headId returns the 1 based id of the head of t, 0 for the root.
func headId(p sentence.Parse, t sentence.Token) int {
	if t.Head == t.Index || t.Head < 0 || t.Head >= len(p.Tokens) {
		return 0
	}
	return t.Head + 1
}
