package sentence

import "time"

// Outcome classifies how far the extraction engine got with one sentence.
type Outcome string

const (
	// Ok means at least one complete parse was found.
	Ok Outcome = "ok"

	// Partial means parses were found, but only by skipping words or by
	// stopping before all candidates were ranked.
	Partial Outcome = "partial"

	// Failed means no parse was found.
	Failed Outcome = "failed"

	// Timeout means the engine ran out of its wall-clock budget.
	Timeout Outcome = "timeout"
)

// Outcomes returns all outcomes in display order.
func Outcomes() []Outcome {
	return []Outcome{Ok, Partial, Failed, Timeout}
}

// Token represents a word of the sentence, with POS and dependency data.
type Token struct {
	Id   int    `json:"id"`
	Head int    `json:"head"`
	Pos  string `json:"pos"`
	Dep  string `json:"dep"`

	// A string containing detailed POS data
	Tag string `json:"tag"`

	// the index of the start character of the token in the sentence
	Idx int `json:"idx"`

	// The unmodified word
	Text string `json:"text"`

	// The lemma of the word
	Lemma string `json:"lemma"`

	// The index of the word in the sentence, starting at 0.
	Index int `json:"index"`
}

// Parse is one ranked analysis of a sentence.
type Parse struct {
	Tokens []Token `json:"tokens"`

	// Number of words the engine had to ignore to find this parse
	SkippedWords int `json:"skipped_words"`

	// Engine specific cost, lower is better
	Cost float64 `json:"cost"`

	// Bracketed phrase structure, f.ex. (S (NP the cat) (VP sat))
	Constituents string `json:"constituents,omitempty"`
}

// Root returns the token without head, or false if the parse has none.
func (p Parse) Root() (Token, bool) {
	for _, t := range p.Tokens {
		if t.Head == t.Index {
			return t, true
		}
	}

	return Token{}, false
}

// Result is the outcome of extracting relations from one sentence.
type Result struct {
	Text string `json:"text"`

	// Ranked parses, best first. May be shorter than NumParses.
	Parses []Parse `json:"parses"`

	// Number of parses the engine found
	NumParses int `json:"num_parses"`

	Outcome Outcome `json:"outcome"`

	// Human readable cause of a failed, partial or timeout outcome
	Reason string `json:"reason,omitempty"`

	Elapsed time.Duration `json:"elapsed"`
}

// NumTokens returns the number of tokens of the best parse.
func (r *Result) NumTokens() int {
	if len(r.Parses) == 0 {
		return 0
	}

	return len(r.Parses[0].Tokens)
}

// HasSkippedWords reports whether the best parse ignored any word.
func (r *Result) HasSkippedWords() bool {
	return len(r.Parses) > 0 && r.Parses[0].SkippedWords > 0
}
