// Package extract defines the relation extraction engines that turn one
// sentence into ranked parses.
package extract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/revelaction/relstream/sentence"
)

// ErrUnknownEngine is returned by New for names not in the registry.
var ErrUnknownEngine = errors.New("unknown extraction engine")

// Budget bounds the work an engine may spend on one sentence.
type Budget struct {
	// Maximum number of parses to compute
	MaxParses int

	// Wall-clock limit. Zero means no limit.
	Timeout time.Duration
}

// Extractor turns a sentence into a Result. Implementations must return
// within the budget timeout and report every failure inside the Result
// (Failed or Timeout outcome); Extract never returns nil.
type Extractor interface {
	Extract(ctx context.Context, text string, b Budget) *sentence.Result

	// Version identifies the engine in the output header.
	Version() string
}

// Options configures an engine. Fields not used by an engine are ignored.
type Options struct {
	// Command line of an external parser, used by the command engine
	Command []string
}

// Factory builds an engine from its options.
type Factory func(opts Options) (Extractor, error)

var registry = map[string]Factory{}

// Register makes an engine available by name. It panics on duplicates, as
// registration happens in init functions.
func Register(name string, f Factory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("extract: engine %q registered twice", name))
	}
	registry[name] = f
}

// New builds the engine registered under name.
func New(name string, opts Options) (Extractor, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}

	return f(opts)
}

// Engines returns the registered engine names, sorted.
func Engines() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithBudget derives the context an engine should run under. The returned
// cancel func must always be called.
func WithBudget(ctx context.Context, b Budget) (context.Context, context.CancelFunc) {
	if b.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.Timeout)
}

// Interrupted fills r with the outcome matching the context error.
func Interrupted(ctx context.Context, r *sentence.Result) *sentence.Result {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.Outcome = sentence.Timeout
		r.Reason = "parse time budget exceeded"
		return r
	}

	r.Outcome = sentence.Failed
	r.Reason = fmt.Sprintf("interrupted: %v", ctx.Err())
	return r
}
