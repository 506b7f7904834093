// Package command runs an external parser once per sentence. The sentence is
// written to the parser stdin; the parser writes JSON to stdout, either a
// list of tokens (one parse) or an object with ranked parses:
//
//	[{"id":1,"head":1,"pos":"NOUN","dep":"nsubj","text":"Cats","lemma":"cat","index":0}, ...]
//
//	{"num_parses": 4, "parses": [{"tokens": [...], "skipped_words": 0, "cost": 1.5}]}
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/revelaction/relstream/extract"
	"github.com/revelaction/relstream/sentence"
)

const Name = "command"

// waitDelay bounds how long Extract waits for the parser pipes after the
// process was killed.
const waitDelay = time.Second

func init() {
	extract.Register(Name, func(opts extract.Options) (extract.Extractor, error) {
		return New(opts.Command)
	})
}

type Engine struct {
	argv []string
}

var _ extract.Extractor = (*Engine)(nil)

// New returns an Engine running argv. argv[0] is looked up in PATH on every
// call.
func New(argv []string) (*Engine, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, errors.New("command engine needs a parser command")
	}

	return &Engine{argv: argv}, nil
}

func (e *Engine) Version() string {
	return Name + ":" + filepath.Base(e.argv[0])
}

type document struct {
	NumParses int              `json:"num_parses"`
	Parses    []sentence.Parse `json:"parses"`
}

func (e *Engine) Extract(ctx context.Context, text string, b extract.Budget) *sentence.Result {
	start := time.Now()
	ctx, cancel := extract.WithBudget(ctx, b)
	defer cancel()

	r := &sentence.Result{Text: text}
	defer func() { r.Elapsed = time.Since(start) }()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.argv[0], e.argv[1:]...)
	cmd.Stdin = strings.NewReader(text + "\n")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return extract.Interrupted(ctx, r)
		}

		r.Outcome = sentence.Failed
		r.Reason = failure(err, stderr.String())
		return r
	}

	doc, err := decode(stdout.Bytes())
	if err != nil {
		r.Outcome = sentence.Failed
		r.Reason = fmt.Sprintf("JSON decoding error: %v", err)
		return r
	}

	r.NumParses = max(doc.NumParses, len(doc.Parses))
	r.Parses = doc.Parses
	if b.MaxParses > 0 && len(r.Parses) > b.MaxParses {
		r.Parses = r.Parses[:b.MaxParses]
	}

	switch {
	case len(r.Parses) == 0:
		r.Outcome = sentence.Failed
		r.Reason = "no parse"
	case r.HasSkippedWords():
		r.Outcome = sentence.Partial
		r.Reason = fmt.Sprintf("%d skipped words", r.Parses[0].SkippedWords)
	default:
		r.Outcome = sentence.Ok
	}

	return r
}

func decode(out []byte) (document, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return document{}, nil
	}

	var doc document
	if out[0] == '[' {
		var tokens []sentence.Token
		if err := json.Unmarshal(out, &tokens); err != nil {
			return document{}, err
		}
		if len(tokens) > 0 {
			doc.Parses = []sentence.Parse{{Tokens: tokens}}
		}
		return doc, nil
	}

	if err := json.Unmarshal(out, &doc); err != nil {
		return document{}, err
	}
	return doc, nil
}

// failure returns the process error with the first stderr line, if any.
func failure(err error, stderr string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(stderr), "\n")
	if line == "" {
		return err.Error()
	}
	return fmt.Sprintf("%v: %s", err, line)
}
