package render

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelaction/relstream/sentence"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		out = append(out, m)
	}
	return out
}

func TestJSONRendererSession(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Version = "shallow-1.0"
	opts.SourceURL = "https://example.org/a.txt"

	r := NewJSONRenderer(&buf, opts)
	require.NoError(t, r.Header())
	require.NoError(t, r.Render(1, catResult()))
	require.NoError(t, r.Render(2, &sentence.Result{Text: "???", Outcome: sentence.Failed, Reason: "no parse"}))
	require.NoError(t, r.Footer())

	got := lines(t, &buf)
	require.Len(t, got, 4)

	assert.Equal(t, "header", got[0]["type"])
	assert.Equal(t, "shallow-1.0", got[0]["version"])
	assert.Equal(t, "https://example.org/a.txt", got[0]["source_url"])

	assert.Equal(t, "sentence", got[1]["type"])
	assert.Equal(t, 1.0, got[1]["index"])
	assert.Equal(t, 3.0, got[1]["num_parses"])
	parses := got[1]["parses"].([]any)
	require.Len(t, parses, 1)
	p := parses[0].(map[string]any)
	assert.Equal(t, []any{"nsubj(sleep-2, Cats-1)", "ROOT(ROOT-0, sleep-2)"}, p["links"])
	assert.Contains(t, p, "cost")
	assert.Contains(t, p, "constituents")

	assert.Equal(t, "failed", got[2]["outcome"])
	assert.Equal(t, "no parse", got[2]["reason"])
	assert.Empty(t, got[2]["parses"])

	assert.Equal(t, map[string]any{"type": "footer", "sentences": 2.0}, got[3])
}

func TestJSONRendererToggles(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{MaxParses: 2}

	r := NewJSONRenderer(&buf, opts)
	require.NoError(t, r.Render(1, catResult()))

	got := lines(t, &buf)
	require.Len(t, got, 1)
	parses := got[0]["parses"].([]any)
	require.Len(t, parses, 2)

	p := parses[0].(map[string]any)
	assert.NotContains(t, p, "links")
	assert.NotContains(t, p, "cost")
	assert.NotContains(t, p, "skipped_words")
	assert.NotContains(t, p, "constituents")
	assert.Contains(t, p, "tokens")
}
