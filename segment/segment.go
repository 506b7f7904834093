// Package segment decides where sentences end inside a stream of raw text.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Splitter finds sentence boundaries.
type Splitter interface {
	// Boundary returns the byte offset just past the first complete sentence
	// of text, looking at terminal punctuation from byte offset from on.
	// ok is false when no boundary can be decided yet, f.ex. because the
	// text following a period has not arrived. resume is then the offset a
	// later call, with more text appended, can start from.
	Boundary(text string, from int) (end, resume int, ok bool)
}

// defaultAbbreviations are lowercase words that are usually followed by a
// period without ending the sentence.
var defaultAbbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st", "mt", "rev", "gen",
	"col", "capt", "lt", "sgt", "gov", "sen", "rep", "inc", "ltd", "co",
	"corp", "vs", "etc", "approx", "dept", "est",
}

// numberedAbbreviations abbreviate only before a number: "No. 5", "Oct. 3".
// "The answer is no." ends a sentence.
var numberedAbbreviations = []string{
	"no", "nos", "vol", "fig", "pp", "jan", "feb", "mar", "apr", "jun", "jul",
	"aug", "sep", "sept", "oct", "nov", "dec",
}

// dotted are lowercase forms that never end a sentence. Other dotted
// lowercase words, like "p.m.", end it before a capitalized word.
var dotted = map[string]bool{
	"e.g": true,
	"i.e": true,
	"cf":  true,
	"viz": true,
}

// maxWord bounds the look back for the word before a period.
const maxWord = 32

// Rules is a Splitter based on terminal punctuation followed by white space,
// with an abbreviation list and a few heuristics for initials and inner dots.
type Rules struct {
	abbreviations map[string]bool
	numbered      map[string]bool
}

var _ Splitter = (*Rules)(nil)

// NewRules returns Rules with the default abbreviation list plus extra.
func NewRules(extra ...string) *Rules {
	abbr := make(map[string]bool, len(defaultAbbreviations)+len(extra))
	for _, a := range defaultAbbreviations {
		abbr[a] = true
	}

	for _, a := range extra {
		abbr[strings.ToLower(strings.TrimSuffix(a, "."))] = true
	}

	numbered := make(map[string]bool, len(numberedAbbreviations))
	for _, a := range numberedAbbreviations {
		numbered[a] = true
	}

	return &Rules{abbreviations: abbr, numbered: numbered}
}

// Boundary decides every terminal before resume for good: a later call with
// more text appended gives the same answer for them.
func (r *Rules) Boundary(text string, from int) (int, int, bool) {
	for i := max(from, 0); i < len(text); i++ {
		c := text[i]
		if !isTerminal(c) {
			continue
		}

		// absorb "?!", "..." and closing quotes or brackets
		end := i + 1
		for end < len(text) && isTerminal(text[end]) {
			end++
		}

		for end < len(text) && utf8.FullRuneInString(text[end:]) {
			cr, size := utf8.DecodeRuneInString(text[end:])
			if !isCloser(cr) {
				break
			}
			end += size
		}

		// undecided, the next chunk may continue the word (3.5, e.g.) or
		// complete a rune
		if end >= len(text) || !utf8.FullRuneInString(text[end:]) {
			return 0, i, false
		}

		next, _ := utf8.DecodeRuneInString(text[end:])
		if !unicode.IsSpace(next) {
			i = end - 1
			continue
		}

		rest := strings.TrimLeftFunc(text[end:], unicode.IsSpace)
		if rest != "" && !utf8.FullRuneInString(rest) {
			return 0, i, false
		}
		first, _ := utf8.DecodeRuneInString(rest)

		if c == '.' && end == i+1 && r.isAbbreviation(text[:i], first) {
			i = end - 1
			continue
		}

		if rest != "" && unicode.IsLower(first) {
			i = end - 1
			continue
		}

		return end, 0, true
	}

	return 0, len(text), false
}

// isAbbreviation reports whether the word at the end of head, which is
// followed by a period and then by the rune next, is an abbreviation or an
// initial. next is utf8.RuneError when nothing follows yet.
func (r *Rules) isAbbreviation(head string, next rune) bool {
	if len(head) > maxWord {
		cut := len(head) - maxWord
		for cut < len(head) && !utf8.RuneStart(head[cut]) {
			cut++
		}
		head = head[cut:]
	}

	start := strings.LastIndexFunc(head, unicode.IsSpace) + 1
	word := strings.TrimLeftFunc(head[start:], func(r rune) bool {
		return unicode.IsPunct(r) && r != '.'
	})

	if word == "" {
		return false
	}

	lower := strings.ToLower(word)
	if dotted[lower] {
		return true
	}

	// U.S, p.m
	if strings.Contains(word, ".") {
		if strings.ContainsFunc(word, unicode.IsUpper) {
			return true
		}
		return next != utf8.RuneError && !unicode.IsUpper(next)
	}

	// initials, but not the pronoun
	if utf8.RuneCountInString(word) == 1 {
		first, _ := utf8.DecodeRuneInString(word)
		return unicode.IsUpper(first) && word != "I"
	}

	if r.abbreviations[lower] {
		return true
	}

	return r.numbered[lower] && unicode.IsDigit(next)
}

func isTerminal(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '”', '’', '»':
		return true
	}

	return false
}
