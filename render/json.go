package render

import (
	"encoding/json"
	"io"

	"github.com/revelaction/relstream/sentence"
)

const jsonVersion = "json/1.0"

// JSONRenderer writes JSON Lines: one object per line, told apart by the
// "type" field (header, sentence, footer).
type JSONRenderer struct {
	W    io.Writer
	opts Options

	count int
}

// NewJSONRenderer creates a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer, opts Options) *JSONRenderer {
	return &JSONRenderer{W: w, opts: opts}
}

type jsonHeader struct {
	Type      string `json:"type"`
	Format    string `json:"format"`
	Version   string `json:"version"`
	SourceURL string `json:"source_url,omitempty"`
}

type jsonSentence struct {
	Type      string           `json:"type"`
	Index     int              `json:"index"`
	Text      string           `json:"text"`
	Outcome   sentence.Outcome `json:"outcome"`
	Reason    string           `json:"reason,omitempty"`
	NumParses int              `json:"num_parses"`
	Parses    []jsonParse      `json:"parses"`
}

type jsonParse struct {
	Id           int              `json:"id"`
	Tokens       []sentence.Token `json:"tokens"`
	SkippedWords *int             `json:"skipped_words,omitempty"`
	Cost         *float64         `json:"cost,omitempty"`
	Constituents string           `json:"constituents,omitempty"`
	Links        []string         `json:"links,omitempty"`
}

type jsonFooter struct {
	Type      string `json:"type"`
	Sentences int    `json:"sentences"`
}

func (r *JSONRenderer) Header() error {
	return r.encode(jsonHeader{
		Type:      "header",
		Format:    jsonVersion,
		Version:   r.opts.Version,
		SourceURL: r.opts.SourceURL,
	})
}

// Render serializes one sentence result as a single JSON line.
func (r *JSONRenderer) Render(index int, res *sentence.Result) error {
	out := jsonSentence{
		Type:      "sentence",
		Index:     index,
		Text:      res.Text,
		Outcome:   res.Outcome,
		NumParses: res.NumParses,
		Parses:    []jsonParse{},
	}

	if r.opts.ShowMetadata {
		out.Reason = res.Reason
	}

	for i, p := range shown(res, r.opts) {
		jp := jsonParse{Id: i + 1, Tokens: p.Tokens}

		if r.opts.ShowMetadata {
			skipped, cost := p.SkippedWords, p.Cost
			jp.SkippedWords = &skipped
			jp.Cost = &cost
		}

		if r.opts.ShowConstituents {
			jp.Constituents = p.Constituents
		}

		if r.opts.ShowLinks {
			for _, t := range p.Tokens {
				jp.Links = append(jp.Links, Link(p, t))
			}
		}

		out.Parses = append(out.Parses, jp)
	}

	r.count++
	return r.encode(out)
}

func (r *JSONRenderer) Footer() error {
	return r.encode(jsonFooter{Type: "footer", Sentences: r.count})
}

// encode marshals first, so a failing value never leaves half a line.
func (r *JSONRenderer) encode(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = r.W.Write(append(b, '\n'))
	return err
}

// compile-time interface check
var _ Formatter = (*JSONRenderer)(nil)
