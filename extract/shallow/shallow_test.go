package shallow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelaction/relstream/extract"
	"github.com/revelaction/relstream/sentence"
)

func TestExtractSimpleSentence(t *testing.T) {
	r := New().Extract(context.Background(), "The cat is on the mat.", extract.Budget{MaxParses: 30, Timeout: time.Second})

	require.Equal(t, sentence.Ok, r.Outcome)
	require.Len(t, r.Parses, 1)
	assert.Equal(t, 1, r.NumParses)

	p := r.Parses[0]
	require.Len(t, p.Tokens, 7)

	deps := []string{}
	heads := []int{}
	for _, tk := range p.Tokens {
		deps = append(deps, tk.Dep)
		heads = append(heads, tk.Head)
	}
	assert.Equal(t, []string{"det", "nsubj", "ROOT", "prep", "det", "obj", "punct"}, deps)
	assert.Equal(t, []int{1, 2, 2, 2, 5, 2, 2}, heads)

	root, ok := p.Root()
	require.True(t, ok)
	assert.Equal(t, "be", root.Lemma)
	assert.Equal(t, "(S (NP The cat) (VP is) (PP on) (NP the mat) .)", p.Constituents)
	assert.Zero(t, p.Cost)
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Don't pay 3.50 (well-known).")

	texts := []string{}
	for _, tk := range tokens {
		texts = append(texts, tk.Text)
	}
	assert.Equal(t, []string{"Don't", "pay", "3.50", "(", "well-known", ")", "."}, texts)
	assert.Equal(t, 6, tokens[1].Idx)
}

func TestExtractPartialOnSymbols(t *testing.T) {
	r := New().Extract(context.Background(), "It costs $ 5.", extract.Budget{MaxParses: 1})

	assert.Equal(t, sentence.Partial, r.Outcome)
	assert.True(t, r.HasSkippedWords())
}

func TestExtractEmpty(t *testing.T) {
	r := New().Extract(context.Background(), "   ", extract.Budget{})

	assert.Equal(t, sentence.Failed, r.Outcome)
	assert.Empty(t, r.Parses)
}

func TestExtractTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	r := New().Extract(ctx, "The cat is here.", extract.Budget{Timeout: time.Second})
	assert.Equal(t, sentence.Timeout, r.Outcome)
	assert.Equal(t, "The cat is here.", r.Text)
}

func TestRegistered(t *testing.T) {
	e, err := extract.New(Name, extract.Options{})
	require.NoError(t, err)
	assert.Equal(t, version, e.Version())
}
