// Package shallow is a small deterministic extraction engine. It tokenizes
// the sentence, tags words from closed class lists and attaches every token
// to a single predicate. It needs no external process and is the default
// engine.
package shallow

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/revelaction/relstream/extract"
	"github.com/revelaction/relstream/sentence"
)

const (
	Name    = "shallow"
	version = "shallow-1.0"
)

func init() {
	extract.Register(Name, func(extract.Options) (extract.Extractor, error) {
		return New(), nil
	})
}

var closedClass = map[string]string{}

func init() {
	for pos, words := range map[string][]string{
		"DET":   {"a", "an", "the", "this", "that", "these", "those", "every", "each", "some", "any", "no", "my", "your", "his", "her", "its", "our", "their"},
		"PRON":  {"i", "you", "he", "she", "it", "we", "they", "me", "him", "us", "them", "who", "what", "which", "someone", "something", "nothing"},
		"ADP":   {"in", "on", "at", "by", "for", "with", "about", "from", "to", "of", "into", "over", "under", "after", "before", "between", "through", "during"},
		"CCONJ": {"and", "or", "but", "nor", "yet", "so"},
		"AUX":   {"is", "are", "was", "were", "am", "be", "been", "being", "has", "have", "had", "do", "does", "did", "will", "would", "can", "could", "shall", "should", "may", "might", "must"},
		"ADV":   {"not", "very", "too", "also", "just", "never", "always", "often", "here", "there", "now", "then", "how", "why", "when", "where"},
	} {
		for _, w := range words {
			closedClass[w] = pos
		}
	}
}

var lemmas = map[string]string{
	"is": "be", "are": "be", "was": "be", "were": "be", "am": "be", "been": "be", "being": "be",
	"has": "have", "had": "have", "does": "do", "did": "do",
	"me": "i", "him": "he", "us": "we", "them": "they",
}

// Engine is the shallow extractor.
type Engine struct{}

var _ extract.Extractor = (*Engine)(nil)

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Version() string {
	return version
}

// Extract always computes a single parse, whatever the budget allows.
func (e *Engine) Extract(ctx context.Context, text string, b extract.Budget) *sentence.Result {
	start := time.Now()
	ctx, cancel := extract.WithBudget(ctx, b)
	defer cancel()

	r := &sentence.Result{Text: text}
	defer func() { r.Elapsed = time.Since(start) }()

	tokens := tokenize(text)
	if len(tokens) == 0 {
		r.Outcome = sentence.Failed
		r.Reason = "no tokens"
		return r
	}

	if ctx.Err() != nil {
		return extract.Interrupted(ctx, r)
	}

	tag(tokens)
	unresolved := attach(tokens)

	skipped := 0
	for _, t := range tokens {
		if t.Pos == "X" {
			skipped++
		}
	}

	if ctx.Err() != nil {
		return extract.Interrupted(ctx, r)
	}

	r.Parses = []sentence.Parse{{
		Tokens:       tokens,
		SkippedWords: skipped,
		Cost:         float64(unresolved),
		Constituents: chunk(tokens),
	}}
	r.NumParses = 1
	r.Outcome = sentence.Ok
	if skipped > 0 {
		r.Outcome = sentence.Partial
		r.Reason = "skipped unknown symbols"
	}

	return r
}

// tokenize splits text into words and single punctuation marks. Idx is the
// rune offset of the token in text.
func tokenize(text string) []sentence.Token {
	var tokens []sentence.Token
	runes := []rune(text)

	add := func(from, to int) {
		w := string(runes[from:to])
		tokens = append(tokens, sentence.Token{
			Id:    len(tokens) + 1,
			Index: len(tokens),
			Idx:   from,
			Text:  w,
		})
	}

	for i := 0; i < len(runes); {
		switch r := runes[i]; {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			j := i + 1
			for j < len(runes) && (isWordRune(runes[j]) || isJoiner(runes, j)) {
				j++
			}
			add(i, j)
			i = j
		default:
			add(i, i+1)
			i++
		}
	}

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isJoiner reports whether runes[j] glues two word parts: don't, well-known, 3.5
func isJoiner(runes []rune, j int) bool {
	switch runes[j] {
	case '\'', '’', '-', '.', ',':
	default:
		return false
	}

	if j+1 >= len(runes) || !isWordRune(runes[j+1]) {
		return false
	}

	// only digits are joined by '.' and ','
	if runes[j] == '.' || runes[j] == ',' {
		return unicode.IsDigit(runes[j-1]) && unicode.IsDigit(runes[j+1])
	}

	return true
}

func tag(tokens []sentence.Token) {
	for i := range tokens {
		t := &tokens[i]
		lower := strings.ToLower(t.Text)
		t.Lemma = lower
		if l, ok := lemmas[lower]; ok {
			t.Lemma = l
		}

		first := []rune(t.Text)[0]
		switch {
		case unicode.IsPunct(first):
			t.Pos = "PUNCT"
		case unicode.IsDigit(first):
			t.Pos = "NUM"
		case !unicode.IsLetter(first):
			t.Pos = "X"
		case closedClass[lower] != "":
			t.Pos = closedClass[lower]
		case i > 0 && unicode.IsUpper(first):
			t.Pos = "PROPN"
		case strings.HasSuffix(lower, "ly") && len(lower) > 3:
			t.Pos = "ADV"
		case strings.HasSuffix(lower, "ed") && len(lower) > 3, strings.HasSuffix(lower, "ing") && len(lower) > 4:
			t.Pos = "VERB"
		default:
			t.Pos = "NOUN"
		}
	}
}

func isNominal(pos string) bool {
	return pos == "NOUN" || pos == "PROPN" || pos == "PRON" || pos == "NUM"
}

// attach sets Head and Dep of every token and returns how many tokens got
// the generic "dep" relation.
func attach(tokens []sentence.Token) int {
	root := -1
	for i, t := range tokens {
		if t.Pos == "AUX" || t.Pos == "VERB" {
			root = i
			break
		}
	}

	// verbless: the first content word heads the sentence
	if root < 0 {
		root = 0
		for i, t := range tokens {
			if t.Pos != "PUNCT" && t.Pos != "DET" {
				root = i
				break
			}
		}
	}

	tokens[root].Head = root
	tokens[root].Dep = "ROOT"

	subject, object := -1, -1
	for i := root - 1; i >= 0; i-- {
		if isNominal(tokens[i].Pos) {
			subject = i
			break
		}
	}
	for i := root + 1; i < len(tokens); i++ {
		if isNominal(tokens[i].Pos) {
			object = i
			break
		}
	}

	unresolved := 0
	for i := range tokens {
		if i == root {
			continue
		}

		t := &tokens[i]
		t.Head = root
		switch {
		case t.Pos == "PUNCT":
			t.Dep = "punct"
		case t.Pos == "DET":
			t.Head = nextContent(tokens, i)
			t.Dep = "det"
		case t.Pos == "ADP":
			t.Dep = "prep"
		case t.Pos == "CCONJ":
			t.Dep = "cc"
		case t.Pos == "ADV":
			t.Dep = "advmod"
		case t.Pos == "AUX" || t.Pos == "VERB":
			t.Dep = "aux"
		case i == subject:
			t.Dep = "nsubj"
		case i == object:
			t.Dep = "obj"
		case i > 0 && tokens[i-1].Pos == "ADP":
			t.Head = i - 1
			t.Dep = "pobj"
		default:
			t.Dep = "dep"
			unresolved++
		}
	}

	return unresolved
}

// nextContent returns the index of the first non determiner, non
// punctuation token after i, or the root when there is none.
func nextContent(tokens []sentence.Token, i int) int {
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].Pos != "DET" && tokens[j].Pos != "PUNCT" {
			return j
		}
	}

	for j, t := range tokens {
		if t.Dep == "ROOT" {
			return j
		}
	}

	return i
}

// chunk brackets consecutive tokens into flat phrases.
func chunk(tokens []sentence.Token) string {
	phrase := func(pos string) string {
		switch pos {
		case "DET", "NOUN", "PROPN", "PRON", "NUM":
			return "NP"
		case "AUX", "VERB", "ADV":
			return "VP"
		case "ADP":
			return "PP"
		case "CCONJ":
			return "CONJP"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString("(S")
	open := ""
	for _, t := range tokens {
		p := phrase(t.Pos)
		if p != open && open != "" {
			b.WriteString(")")
			open = ""
		}

		if p != "" && open == "" {
			b.WriteString(" (" + p)
			open = p
		}

		b.WriteString(" " + bracketSafe(t.Text))
	}

	if open != "" {
		b.WriteString(")")
	}
	b.WriteString(")")
	return b.String()
}

func bracketSafe(s string) string {
	switch s {
	case "(":
		return "-LRB-"
	case ")":
		return "-RRB-"
	}
	return s
}
