package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/revelaction/relstream/assemble"
	"github.com/revelaction/relstream/config"
	"github.com/revelaction/relstream/extract"
	_ "github.com/revelaction/relstream/extract/command"
	_ "github.com/revelaction/relstream/extract/shallow"
	"github.com/revelaction/relstream/file"
	"github.com/revelaction/relstream/input"
	"github.com/revelaction/relstream/render"
	"github.com/revelaction/relstream/segment"
	"github.com/revelaction/relstream/session"
	"github.com/revelaction/relstream/stat"
)

// UI contains the streams of the application.
// Used for injecting buffers during testing.
type UI struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// errShown marks errors already reported to the user, with the usage.
var errShown = errors.New("reported")

func main() {
	ui := UI{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}

	if err := run(context.Background(), os.Args, ui); err != nil {
		if !errors.Is(err, errShown) {
			fprintErr(ui.Err, err)
		}
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "relstream: %v\n", err)
}

func run(ctx context.Context, args []string, ui UI) error {
	return newApp(ui).RunContext(ctx, args)
}

func newApp(ui UI) *cli.App {
	return &cli.App{
		Name:            "relstream",
		Usage:           "split text into sentences and print the grammatical relations of each",
		UsageText:       "relstream [-l] [-m] [-t] [-n N] [--maxParseSeconds N] [--url URL] [options] < text",
		Version:         version(),
		Flags:           flags(),
		Reader:          ui.In,
		Writer:          ui.Err,
		ErrWriter:       ui.Err,
		HideHelpCommand: true,
		// main reports errors and sets the exit code
		ExitErrHandler: func(*cli.Context, error) {},
		OnUsageError: func(cCtx *cli.Context, err error, _ bool) error {
			return usageFailure(cCtx, ui, err)
		},
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() > 0 {
				return usageFailure(cCtx, ui, fmt.Errorf("unexpected argument %q", cCtx.Args().First()))
			}

			cfg, err := buildConfig(cCtx)
			if err != nil {
				if errors.Is(err, config.ErrInvalid) {
					return usageFailure(cCtx, ui, err)
				}
				return err
			}

			return stream(cCtx.Context, cfg, ui)
		},
	}
}

// usageFailure prints err and the usage, before any output was written.
func usageFailure(cCtx *cli.Context, ui UI, err error) error {
	fprintErr(ui.Err, err)
	_, _ = fmt.Fprintln(ui.Err)
	_ = cli.ShowAppHelp(cCtx)
	return fmt.Errorf("%w: %v", errShown, err)
}

// stream wires the session components and runs it until the input ends.
func stream(ctx context.Context, cfg *config.Config, ui UI) error {
	logger, err := newLogger(cfg.Logging.Level, ui.Err)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger = logger.With(zap.String("session", uuid.NewString()))

	engine, err := extract.New(cfg.Extract.Engine, extract.Options{Command: cfg.Extract.Command})
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(cfg, ui, logger)
	if err != nil {
		return err
	}
	defer closeSrc()

	formatter, err := render.New(cfg.Format, ui.Out, cfg.RenderOptions(engine.Version()))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := stat.NewMetrics(reg)
	if err != nil {
		return err
	}

	// listen before the header, a busy port is a startup error
	var ln net.Listener
	if cfg.Metrics.Addr != "" {
		ln, err = net.Listen("tcp", cfg.Metrics.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen for metrics: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	// a second signal kills a read blocked on the terminal
	context.AfterFunc(ctx, stop)

	s := session.New(session.Components{
		Source:    src,
		Assembler: assemble.New(segment.NewRules(cfg.Segment.Abbreviations...)),
		Extractor: engine,
		Formatter: formatter,
		Stats:     stat.NewHandler(metrics),
		Budget:    cfg.Budget(),
		Diag:      ui.Err,
		Logger:    logger,
	})

	logger.Debug("session started",
		zap.String("engine", engine.Version()),
		zap.String("format", cfg.Format),
		zap.Int("max_parses", cfg.Extract.MaxParses),
		zap.Int("max_parse_seconds", cfg.Extract.MaxParseSeconds),
	)

	g, gctx := errgroup.WithContext(ctx)
	sessionCtx, sessionDone := context.WithCancel(gctx)
	defer sessionDone()

	g.Go(func() error {
		defer sessionDone()
		return s.Run(gctx)
	})

	if ln != nil {
		g.Go(func() error {
			return serveMetrics(sessionCtx, ln, reg, logger)
		})
	}

	return g.Wait()
}

// openSource returns the line source selected by cfg and the function
// releasing it.
func openSource(cfg *config.Config, ui UI, logger *zap.Logger) (input.LineSource, func(), error) {
	if cfg.Input.Interactive {
		return input.NewPrompt(), func() {}, nil
	}

	if file.IsStdin(cfg.Input.Path) {
		if cfg.Input.Progress {
			logger.Warn("progress bar needs a file input, ignoring it")
		}
		return input.NewReader(ui.In), func() {}, nil
	}

	f, size, err := file.Open(cfg.Input.Path)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Input.Progress {
		return input.NewReader(f), func() { _ = f.Close() }, nil
	}

	p := input.NewProgress(f, size, ui.Err)
	return input.NewReader(p), func() {
		p.Stop()
		_ = f.Close()
	}, nil
}
