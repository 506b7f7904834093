package main

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/relstream/config"
	"github.com/revelaction/relstream/extract"
	"github.com/revelaction/relstream/render"
)

const (
	flagConfig      = "config"
	flagNoLinks     = "l"
	flagNoMetadata  = "m"
	flagNoTree      = "t"
	flagParses      = "n"
	flagSeconds     = "maxParseSeconds"
	flagURL         = "url"
	flagFormat      = "format"
	flagEngine      = "engine"
	flagEngineCmd   = "engine-cmd"
	flagInput       = "input"
	flagProgress    = "progress"
	flagInteractive = "interactive"
	flagLogLevel    = "log-level"
	flagMetricsAddr = "metrics-addr"
)

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: flagNoLinks, Usage: "do not show the links of each parse"},
		&cli.BoolFlag{Name: flagNoMetadata, Usage: "do not show the parse metadata"},
		&cli.BoolFlag{Name: flagNoTree, Usage: "do not show the constituent tree"},
		&cli.IntFlag{Name: flagParses, Usage: "number of parses to compute and show per sentence (default: 1 shown, 30 computed)"},
		&cli.IntFlag{Name: flagSeconds, Usage: "time budget in seconds for parsing one sentence", DefaultText: "60"},
		&cli.StringFlag{Name: flagURL, Usage: "source URL of the text, shown in the header"},
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"RELSTREAM_CONFIG"},
		},
		&cli.StringFlag{
			Name:        flagFormat,
			Aliases:     []string{"f"},
			Usage:       "output format: " + strings.Join(render.SupportedFormats(), ", "),
			DefaultText: render.Defaultformat,
		},
		&cli.StringFlag{
			Name:        flagEngine,
			Usage:       "relation extraction engine: " + strings.Join(extract.Engines(), ", "),
			DefaultText: config.DefaultEngine,
		},
		&cli.StringFlag{Name: flagEngineCmd, Usage: "parser command line for the command engine"},
		&cli.StringFlag{Name: flagInput, Aliases: []string{"i"}, Usage: "read text from `FILE` instead of the standard input"},
		&cli.BoolFlag{Name: flagProgress, Usage: "show a progress bar while reading the input file"},
		&cli.BoolFlag{Name: flagInteractive, Usage: "read text from an interactive prompt, type quit or press Ctrl-D on an empty line to end"},
		&cli.StringFlag{Name: flagLogLevel, Usage: "log level: debug, info, warn, error", DefaultText: config.DefaultLogLevel},
		&cli.StringFlag{Name: flagMetricsAddr, Usage: "serve prometheus metrics on `ADDR`, f.ex. :9090"},
	}
}

// buildConfig returns the defaults, overlaid by the config file, overlaid by
// the flags set on the command line. The result is validated.
func buildConfig(cCtx *cli.Context) (*config.Config, error) {
	cfg := config.Defaults()
	if path := cCtx.String(flagConfig); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	if cCtx.Bool(flagNoLinks) {
		cfg.Display.HideLinks = true
	}

	if cCtx.Bool(flagNoMetadata) {
		cfg.Display.HideMetadata = true
	}

	if cCtx.Bool(flagNoTree) {
		cfg.Display.HideConstituents = true
	}

	// -n bounds both what is computed and what is shown
	if cCtx.IsSet(flagParses) {
		n := cCtx.Int(flagParses)
		cfg.Display.MaxParses = n
		cfg.Extract.MaxParses = n
	}

	if cCtx.IsSet(flagSeconds) {
		cfg.Extract.MaxParseSeconds = cCtx.Int(flagSeconds)
	}

	if cCtx.IsSet(flagURL) {
		cfg.SourceURL = cCtx.String(flagURL)
	}

	if cCtx.IsSet(flagFormat) {
		cfg.Format = cCtx.String(flagFormat)
	}

	if cCtx.IsSet(flagEngineCmd) {
		cfg.Extract.Command = strings.Fields(cCtx.String(flagEngineCmd))
		// a parser command alone selects the command engine
		if !cCtx.IsSet(flagEngine) {
			cfg.Extract.Engine = "command"
		}
	}

	if cCtx.IsSet(flagEngine) {
		cfg.Extract.Engine = cCtx.String(flagEngine)
	}

	if cCtx.IsSet(flagInput) {
		cfg.Input.Path = cCtx.String(flagInput)
	}

	if cCtx.Bool(flagProgress) {
		cfg.Input.Progress = true
	}

	if cCtx.Bool(flagInteractive) {
		cfg.Input.Interactive = true
	}

	if cCtx.IsSet(flagLogLevel) {
		cfg.Logging.Level = cCtx.String(flagLogLevel)
	}

	if cCtx.IsSet(flagMetricsAddr) {
		cfg.Metrics.Addr = cCtx.String(flagMetricsAddr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
