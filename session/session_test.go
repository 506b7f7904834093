package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/revelaction/relstream/assemble"
	"github.com/revelaction/relstream/extract"
	"github.com/revelaction/relstream/extract/shallow"
	"github.com/revelaction/relstream/input"
	"github.com/revelaction/relstream/render"
	"github.com/revelaction/relstream/segment"
	"github.com/revelaction/relstream/sentence"
	"github.com/revelaction/relstream/stat"
)

// script is a LineSource replaying lines; a nil error entry in errs at the
// same position means the line is returned.
type script struct {
	lines []string
	errs  []error
	reads int
}

func (s *script) ReadLine() (string, error) {
	s.reads++
	if len(s.lines) == 0 {
		return "", io.EOF
	}

	line := s.lines[0]
	var err error
	if len(s.errs) > 0 {
		err = s.errs[0]
		s.errs = s.errs[1:]
	}

	if err != nil {
		return "", err
	}

	s.lines = s.lines[1:]
	return line, nil
}

// echo is an engine returning the sentence as a single token parse.
type echo struct {
	budgets []extract.Budget
	fail    map[string]bool
}

func (e *echo) Version() string { return "echo-1" }

func (e *echo) Extract(_ context.Context, text string, b extract.Budget) *sentence.Result {
	e.budgets = append(e.budgets, b)
	if e.fail[text] {
		return &sentence.Result{Text: text, Outcome: sentence.Timeout, Reason: "too slow"}
	}

	return &sentence.Result{
		Text:      text,
		Parses:    []sentence.Parse{{Tokens: []sentence.Token{{Text: text}}}},
		NumParses: 1,
		Outcome:   sentence.Ok,
	}
}

// recorder is a Formatter keeping every call in order.
type recorder struct {
	calls []string
	err   error
}

func (r *recorder) Header() error {
	r.calls = append(r.calls, "header")
	return nil
}

func (r *recorder) Render(index int, res *sentence.Result) error {
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, fmt.Sprintf("%d:%s:%s", index, res.Outcome, res.Text))
	return nil
}

func (r *recorder) Footer() error {
	r.calls = append(r.calls, "footer")
	return nil
}

type fixture struct {
	src    *script
	engine *echo
	out    *recorder
	diag   *bytes.Buffer
	logs   *observer.ObservedLogs
	s      *Session
}

func newFixture(lines ...string) *fixture {
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		src:    &script{lines: lines},
		engine: &echo{},
		out:    &recorder{},
		diag:   &bytes.Buffer{},
		logs:   logs,
	}

	f.s = New(Components{
		Source:    f.src,
		Assembler: assemble.New(segment.NewRules()),
		Extractor: f.engine,
		Formatter: f.out,
		Stats:     stat.NewHandler(nil),
		Budget:    extract.Budget{MaxParses: 30},
		Diag:      f.diag,
		Logger:    zap.New(core),
	})
	return f
}

func (f *fixture) summaries() int {
	return strings.Count(f.diag.String(), "Sentences processed:")
}

func TestScenarioTwoSentencesOneLine(t *testing.T) {
	f := newFixture("Hello world. How are you?")

	require.NoError(t, f.s.Run(context.Background()))

	assert.Equal(t, []string{"header", "1:ok:Hello world.", "2:ok:How are you?", "footer"}, f.out.calls)
	assert.Equal(t, 2, f.s.Count())
	assert.Equal(t, 0, f.summaries())
	assert.Equal(t, Terminated, f.s.State())
}

func TestScenarioSentinelFirst(t *testing.T) {
	f := newFixture("END.", "Never read.")

	require.NoError(t, f.s.Run(context.Background()))

	assert.Equal(t, []string{"header", "footer"}, f.out.calls)
	assert.Equal(t, 0, f.s.Count())
	assert.Equal(t, 1, f.src.reads)
}

func TestScenarioCadenceOneSentencePerLine(t *testing.T) {
	var lines []string
	var want []string
	for i := 1; i <= 25; i++ {
		lines = append(lines, fmt.Sprintf("Sentence number %d.", i))
		want = append(want, fmt.Sprintf("%d:ok:Sentence number %d.", i, i))
	}
	f := newFixture(lines...)

	require.NoError(t, f.s.Run(context.Background()))

	assert.Equal(t, want, f.out.calls[1:26])
	assert.Equal(t, 25, f.s.Count())
	assert.Equal(t, 1, f.summaries())
	assert.Contains(t, f.diag.String(), "Sentences processed: 20")
}

func TestScenarioReadErrorBetweenLines(t *testing.T) {
	f := newFixture("The cat", "sleeps. The dog barks.")
	// first read ok, second fails once, then succeeds
	f.src.errs = []error{nil, errors.New("device hiccup"), nil}

	require.NoError(t, f.s.Run(context.Background()))

	assert.Equal(t, []string{"header", "1:ok:The cat sleeps.", "2:ok:The dog barks.", "footer"}, f.out.calls)

	warns := f.logs.FilterMessage("error reading sentence from the input").All()
	require.Len(t, warns, 1)
	assert.Equal(t, zapcore.WarnLevel, warns[0].Level)
}

func TestCadenceWhenDrainingManyFromOneLine(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 45; i++ {
		b.WriteString("Go. ")
	}
	f := newFixture(b.String())

	require.NoError(t, f.s.Run(context.Background()))

	assert.Equal(t, 45, f.s.Count())
	assert.Equal(t, 2, f.summaries())
	assert.Equal(t, 2, f.src.reads)
}

func TestCadenceExactMultiples(t *testing.T) {
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "Yes."
	}
	f := newFixture(lines...)

	require.NoError(t, f.s.Run(context.Background()))

	assert.Equal(t, 2, f.summaries())
	assert.Contains(t, f.diag.String(), "Sentences processed: 40")
}

func TestSentinelDropsPendingText(t *testing.T) {
	f := newFixture("First one. Unfinished", "END.", "Late.")

	require.NoError(t, f.s.Run(context.Background()))

	assert.Equal(t, []string{"header", "1:ok:First one.", "footer"}, f.out.calls)

	dropped := f.logs.FilterMessage("dropped text without sentence boundary").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, int64(len("Unfinished")), dropped[0].ContextMap()["bytes"])
}

func TestSentinelMustMatchExactly(t *testing.T) {
	f := newFixture("He wrote END. Then he left.", " END.", "END. ")

	require.NoError(t, f.s.Run(context.Background()))

	assert.Equal(t, "1:ok:He wrote END.", f.out.calls[1])
	assert.Equal(t, "2:ok:Then he left.", f.out.calls[2])
	assert.Equal(t, "3:ok:END.", f.out.calls[3])
	assert.Equal(t, "4:ok:END.", f.out.calls[4])
	assert.Equal(t, "footer", f.out.calls[5])
}

func TestExtractionFailureDoesNotStopTheLoop(t *testing.T) {
	f := newFixture("Slow one. Fast one.")
	f.engine.fail = map[string]bool{"Slow one.": true}

	require.NoError(t, f.s.Run(context.Background()))

	assert.Equal(t, []string{"header", "1:timeout:Slow one.", "2:ok:Fast one.", "footer"}, f.out.calls)
}

func TestBudgetIsPassedToTheEngine(t *testing.T) {
	f := newFixture("One.")

	require.NoError(t, f.s.Run(context.Background()))

	require.Len(t, f.engine.budgets, 1)
	assert.Equal(t, 30, f.engine.budgets[0].MaxParses)
}

func TestCancelledContextEndsSession(t *testing.T) {
	f := newFixture("One.", "Two.")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.s.Run(ctx))

	assert.Equal(t, []string{"header", "footer"}, f.out.calls)
}

func TestRenderErrorStopsRun(t *testing.T) {
	f := newFixture("One.")
	f.out.err = errors.New("broken pipe")

	err := f.s.Run(context.Background())
	assert.ErrorContains(t, err, "broken pipe")
	assert.NotContains(t, f.out.calls, "footer")
}

func TestRunWithCompactOutput(t *testing.T) {
	var out, diag bytes.Buffer
	engine := shallow.New()
	opts := render.DefaultOptions()
	opts.Version = engine.Version()

	s := New(Components{
		Source:    input.NewReader(strings.NewReader("The cat is on the mat.\nIt sleeps.\nEND.\n")),
		Assembler: assemble.New(segment.NewRules()),
		Extractor: engine,
		Formatter: render.NewCompactRenderer(&out, opts),
		Stats:     stat.NewHandler(nil),
		Diag:      &diag,
	})

	require.NoError(t, s.Run(context.Background()))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "<?xml"))
	assert.True(t, strings.HasSuffix(got, "</nlparse>\n"))
	assert.Equal(t, 2, strings.Count(got, "<sentence "))
	assert.Less(t, strings.Index(got, "The cat is on the mat."), strings.Index(got, "It sleeps."))
	assert.Empty(t, diag.String())
}
