package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/revelaction/relstream/sentence"
)

const (
	compactVersion = "compact/1.0"
	compactNS      = "urn:relstream:compact:1.0"
)

// CompactRenderer writes the compact file format: an XML document with one
// <sentence> element per processed sentence. The format is meant for long
// term storage of parse results, so later stages can reuse them without
// parsing the text again.
//
//	<sentence index="1" parses="1" outcome="ok">
//	<text>The cat is on the mat.</text>
//	<parse id="1">
//	<metadata skipped_words="0" cost="0"/>
//	<features>
//	1|The|the|DET||det|2
//	...
//	</features>
//	<constituents>(S (NP The cat) (VP is) (PP on) (NP the mat) .)</constituents>
//	<links>
//	det(cat-2, The-1)
//	...
//	</links>
//	</parse>
//	</sentence>
//
// Every element starts on its own line and all text is escaped, so a reader
// can resynchronise on the next "<sentence " line after a damaged record.
type CompactRenderer struct {
	W    io.Writer
	opts Options
}

var _ Formatter = (*CompactRenderer)(nil)

func NewCompactRenderer(w io.Writer, opts Options) *CompactRenderer {
	return &CompactRenderer{W: w, opts: opts}
}

func (r *CompactRenderer) Header() error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, "<nlparse xmlns=\"%s\">\n", compactNS)
	fmt.Fprintf(&b, "  <format>%s</format>\n", compactVersion)
	fmt.Fprintf(&b, "  <version>%s</version>\n", escape(r.opts.Version))
	if r.opts.SourceURL != "" {
		fmt.Fprintf(&b, "  <source url=\"%s\"/>\n", escape(r.opts.SourceURL))
	}

	return r.write(b.String())
}

func (r *CompactRenderer) Footer() error {
	return r.write("</nlparse>\n")
}

func (r *CompactRenderer) Render(index int, res *sentence.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "<sentence index=\"%d\" parses=\"%d\" outcome=\"%s\">\n", index, res.NumParses, res.Outcome)
	fmt.Fprintf(&b, "<text>%s</text>\n", escape(res.Text))
	if r.opts.ShowMetadata && res.Reason != "" {
		fmt.Fprintf(&b, "<reason>%s</reason>\n", escape(res.Reason))
	}

	for i, p := range shown(res, r.opts) {
		fmt.Fprintf(&b, "<parse id=\"%d\">\n", i+1)

		if r.opts.ShowMetadata {
			fmt.Fprintf(&b, "<metadata skipped_words=\"%d\" cost=\"%s\"/>\n", p.SkippedWords, strconv.FormatFloat(p.Cost, 'g', -1, 64))
		}

		b.WriteString("<features>\n")
		for _, t := range p.Tokens {
			b.WriteString(feature(p, t))
			b.WriteString("\n")
		}
		b.WriteString("</features>\n")

		if r.opts.ShowConstituents && p.Constituents != "" {
			fmt.Fprintf(&b, "<constituents>%s</constituents>\n", escape(p.Constituents))
		}

		if r.opts.ShowLinks {
			b.WriteString("<links>\n")
			for _, t := range p.Tokens {
				b.WriteString(escape(Link(p, t)))
				b.WriteString("\n")
			}
			b.WriteString("</links>\n")
		}

		b.WriteString("</parse>\n")
	}

	b.WriteString("</sentence>\n")
	return r.write(b.String())
}

// feature renders a token as id|text|lemma|pos|tag|dep|head
func feature(p sentence.Parse, t sentence.Token) string {
	cols := []string{
		strconv.Itoa(t.Index + 1),
		field(t.Text),
		field(t.Lemma),
		field(t.Pos),
		field(t.Tag),
		field(t.Dep),
		strconv.Itoa(headId(p, t)),
	}
	return strings.Join(cols, "|")
}

// field escapes a feature column. The column separator becomes a character
// reference, as do line breaks.
func field(s string) string {
	s = escape(s)
	return strings.NewReplacer("|", "&#124;").Replace(s)
}

func escape(s string) string {
	var b strings.Builder
	// xml.EscapeText only fails on writer errors
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func (r *CompactRenderer) write(s string) error {
	_, err := io.WriteString(r.W, s)
	return err
}
