package stat

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/revelaction/relstream/sentence"
)

// Handler accumulates statistics over all sentences of a session. Nothing is
// ever removed from it.
type Handler struct {
	stats   Stats
	metrics *Metrics
}

type Stats struct {
	NumSentences int
	Outcomes     map[sentence.Outcome]int

	// sentences whose engine found more than one parse
	NumAmbiguous int

	// sentences whose best parse skipped words
	NumSkipped int

	NumParses             int
	NumTokens             int
	MaxTokens             int
	TokensPerSentenceMean int
	TokensPerSentenceDis  map[int]int

	Elapsed time.Duration
}

func (h *Handler) Get() Stats {
	s := h.stats
	s.Outcomes = maps.Clone(h.stats.Outcomes)
	s.TokensPerSentenceDis = maps.Clone(h.stats.TokensPerSentenceDis)
	return s
}

// NewHandler returns an empty Handler. m may be nil.
func NewHandler(m *Metrics) *Handler {
	stats := Stats{
		Outcomes:             map[sentence.Outcome]int{},
		TokensPerSentenceDis: map[int]int{},
	}
	return &Handler{
		stats:   stats,
		metrics: m,
	}
}

// Bin adds one result to the counters.
func (h *Handler) Bin(r *sentence.Result) {
	n := r.NumTokens()

	h.stats.NumSentences++
	h.stats.Outcomes[r.Outcome]++
	h.stats.NumParses += r.NumParses
	h.stats.NumTokens += n
	h.stats.TokensPerSentenceDis[n]++
	h.stats.TokensPerSentenceMean = h.stats.NumTokens / h.stats.NumSentences
	h.stats.Elapsed += r.Elapsed

	if n > h.stats.MaxTokens {
		h.stats.MaxTokens = n
	}

	if r.NumParses > 1 {
		h.stats.NumAmbiguous++
	}

	if r.HasSkippedWords() {
		h.stats.NumSkipped++
	}

	h.metrics.observe(r)
}

// String renders the current counters for humans.
func (h *Handler) String() string {
	s := h.stats
	var b strings.Builder

	fmt.Fprintf(&b, "Sentences processed: %d\n", s.NumSentences)
	for _, o := range sentence.Outcomes() {
		fmt.Fprintf(&b, "  %-8s %6d (%5.1f%%)\n", o, s.Outcomes[o], percent(s.Outcomes[o], s.NumSentences))
	}

	fmt.Fprintf(&b, "With more than one parse: %d (%.1f%%)\n", s.NumAmbiguous, percent(s.NumAmbiguous, s.NumSentences))
	fmt.Fprintf(&b, "With skipped words: %d (%.1f%%)\n", s.NumSkipped, percent(s.NumSkipped, s.NumSentences))
	fmt.Fprintf(&b, "Num tokens %d, num tokens per sentence %d, longest sentence %d\n", s.NumTokens, s.TokensPerSentenceMean, s.MaxTokens)

	var mean time.Duration
	if s.NumSentences > 0 {
		mean = s.Elapsed / time.Duration(s.NumSentences)
	}
	fmt.Fprintf(&b, "Parses found %d, mean extraction time %s", s.NumParses, mean.Round(time.Microsecond))

	return b.String()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
