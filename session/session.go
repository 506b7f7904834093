// Package session runs the read, assemble, extract, render and aggregate
// loop over one input stream.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/revelaction/relstream/assemble"
	"github.com/revelaction/relstream/extract"
	"github.com/revelaction/relstream/input"
	"github.com/revelaction/relstream/render"
	"github.com/revelaction/relstream/sentence"
	"github.com/revelaction/relstream/stat"
)

// SummaryCadence is the number of sentences between two statistics
// summaries.
const SummaryCadence = 20

// State is the position of the loop.
type State int

const (
	// AwaitingInput: no sentence ready, read more lines
	AwaitingInput State = iota

	// Draining: a sentence is ready, process it before reading again
	Draining

	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Components are the collaborators of a Session.
type Components struct {
	Source    input.LineSource
	Assembler *assemble.Assembler
	Extractor extract.Extractor
	Formatter render.Formatter
	Stats     *stat.Handler
	Budget    extract.Budget

	// Diag receives the statistics summaries. It must not be the writer of
	// the Formatter.
	Diag   io.Writer
	Logger *zap.Logger
}

// Session is the state of one run: the sentence counter, the statistics and
// the collaborators. It is not safe for concurrent use.
type Session struct {
	c Components

	state State
	count int

	// sentence ready to be processed while Draining
	next string
}

func New(c Components) *Session {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	if c.Diag == nil {
		c.Diag = io.Discard
	}

	return &Session{c: c}
}

// Count returns the number of sentences processed so far.
func (s *Session) Count() int {
	return s.count
}

func (s *Session) State() State {
	return s.state
}

// Run writes the header, processes the input until end of stream, the
// sentinel line or ctx cancellation, and writes the footer. Text buffered
// without a sentence boundary at that point is dropped.
//
// Read errors are logged and the read retried; extraction failures are
// part of the rendered results. Run only returns an error when the output
// cannot be written.
func (s *Session) Run(ctx context.Context) error {
	if err := s.c.Formatter.Header(); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	s.state = AwaitingInput
	for s.state != Terminated {
		if ctx.Err() != nil {
			s.c.Logger.Info("session interrupted", zap.Error(ctx.Err()))
			s.state = Terminated
			break
		}

		switch s.state {
		case AwaitingInput:
			s.await()
		case Draining:
			if err := s.drain(ctx); err != nil {
				return err
			}
		}
	}

	if dropped := s.c.Assembler.Reset(); dropped > 0 {
		s.c.Logger.Debug("dropped text without sentence boundary", zap.Int("bytes", dropped))
	}

	if err := s.c.Formatter.Footer(); err != nil {
		return fmt.Errorf("failed to write footer: %w", err)
	}

	s.c.Logger.Info("session finished", zap.Int("sentences", s.count))
	return nil
}

// await reads one line and looks for a complete sentence.
func (s *Session) await() {
	line, err := s.c.Source.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.state = Terminated
			return
		}

		s.c.Logger.Warn("error reading sentence from the input", zap.Error(err))
		return
	}

	if line == input.Sentinel {
		s.state = Terminated
		return
	}

	// lines are joined by a space, sentences may span lines
	s.c.Assembler.AddText(line + " ")
	s.ready()
}

// drain processes the ready sentence and looks for the next one.
func (s *Session) drain(ctx context.Context) error {
	if err := s.process(ctx, s.next); err != nil {
		return err
	}

	s.ready()
	return nil
}

// ready moves to Draining if the assembler has a sentence, else to
// AwaitingInput.
func (s *Session) ready() {
	next, ok := s.c.Assembler.Next()
	if !ok {
		s.next = ""
		s.state = AwaitingInput
		return
	}

	s.next = next
	s.state = Draining
}

func (s *Session) process(ctx context.Context, text string) error {
	res := s.c.Extractor.Extract(ctx, text, s.c.Budget)
	if res == nil {
		res = &sentence.Result{Text: text, Outcome: sentence.Failed, Reason: "engine returned no result"}
	}

	s.count++
	if err := s.c.Formatter.Render(s.count, res); err != nil {
		return fmt.Errorf("failed to write sentence %d: %w", s.count, err)
	}

	s.c.Stats.Bin(res)

	s.c.Logger.Debug("sentence processed",
		zap.Int("index", s.count),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("parses", res.NumParses),
		zap.Duration("elapsed", res.Elapsed),
	)

	if s.count%SummaryCadence == 0 {
		fmt.Fprintf(s.c.Diag, "\n%s\n", s.c.Stats)
	}

	return nil
}
