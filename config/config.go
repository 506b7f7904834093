// Package config holds the session configuration. Values come from the
// defaults, then an optional YAML file, then command line flags; the result
// is immutable once the session starts.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/revelaction/relstream/extract"
	"github.com/revelaction/relstream/render"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

const (
	DefaultEngine          = "shallow"
	DefaultExtractParses   = 30
	DefaultDisplayParses   = 1
	DefaultMaxParseSeconds = 60
	DefaultLogLevel        = "info"
)

// Config holds all relstream configuration.
type Config struct {
	// Output format: compact or json
	Format string `yaml:"format"`

	// Optional provenance of the input text, shown in the output header
	SourceURL string `yaml:"source_url"`

	Display DisplayConfig `yaml:"display"`
	Extract ExtractConfig `yaml:"extract"`
	Input   InputConfig   `yaml:"input"`
	Segment SegmentConfig `yaml:"segment"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// DisplayConfig configures what each output record shows.
type DisplayConfig struct {
	HideLinks        bool `yaml:"hide_links"`
	HideMetadata     bool `yaml:"hide_metadata"`
	HideConstituents bool `yaml:"hide_constituents"`

	// Parses shown per sentence, even if more were computed
	MaxParses int `yaml:"max_parses"`
}

// ExtractConfig configures the relation extraction engine.
type ExtractConfig struct {
	Engine string `yaml:"engine"` // shallow, command

	// Parser command line for the command engine
	Command []string `yaml:"command"`

	// Ceiling of parses the engine computes per sentence
	MaxParses int `yaml:"max_parses"`

	MaxParseSeconds int `yaml:"max_parse_seconds"`
}

// InputConfig configures where raw text comes from.
type InputConfig struct {
	// File to read instead of stdin. Empty or "-" means stdin.
	Path string `yaml:"path"`

	// Show a progress bar, only for file input
	Progress bool `yaml:"progress"`

	// Read lines from an interactive prompt
	Interactive bool `yaml:"interactive"`
}

// SegmentConfig configures sentence boundary detection.
type SegmentConfig struct {
	// Extra words that do not end a sentence when followed by a period
	Abbreviations []string `yaml:"abbreviations"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

type MetricsConfig struct {
	// Address to serve /metrics on, f.ex. ":9090". Empty disables it.
	Addr string `yaml:"addr"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Format: render.Defaultformat,
		Display: DisplayConfig{
			MaxParses: DefaultDisplayParses,
		},
		Extract: ExtractConfig{
			Engine:          DefaultEngine,
			MaxParses:       DefaultExtractParses,
			MaxParseSeconds: DefaultMaxParseSeconds,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	return cfg, nil
}

// Validate checks every value, and reports the first invalid one.
func (c *Config) Validate() error {
	if !slices.Contains(render.SupportedFormats(), c.Format) {
		return fmt.Errorf("%w: format %q, allowed values are %s", ErrInvalid, c.Format, strings.Join(render.SupportedFormats(), ", "))
	}

	if c.Display.MaxParses < 1 {
		return fmt.Errorf("%w: parses to display must be at least 1, got %d", ErrInvalid, c.Display.MaxParses)
	}

	if c.Extract.MaxParses < 1 {
		return fmt.Errorf("%w: parses to compute must be at least 1, got %d", ErrInvalid, c.Extract.MaxParses)
	}

	if c.Extract.MaxParseSeconds < 1 {
		return fmt.Errorf("%w: maxParseSeconds must be at least 1, got %d", ErrInvalid, c.Extract.MaxParseSeconds)
	}

	if !slices.Contains(extract.Engines(), c.Extract.Engine) {
		return fmt.Errorf("%w: engine %q, allowed values are %s", ErrInvalid, c.Extract.Engine, strings.Join(extract.Engines(), ", "))
	}

	if c.Extract.Engine == "command" && len(c.Extract.Command) == 0 {
		return fmt.Errorf("%w: the command engine needs a parser command", ErrInvalid)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Logging.Level)
	}

	if c.Input.Interactive && c.Input.Path != "" && c.Input.Path != "-" {
		return fmt.Errorf("%w: interactive mode reads from the terminal, not from %s", ErrInvalid, c.Input.Path)
	}

	return nil
}

// Budget returns the per sentence extraction budget.
func (c *Config) Budget() extract.Budget {
	return extract.Budget{
		MaxParses: c.Extract.MaxParses,
		Timeout:   time.Duration(c.Extract.MaxParseSeconds) * time.Second,
	}
}

// RenderOptions returns the display options, tagged with the engine version.
func (c *Config) RenderOptions(version string) render.Options {
	return render.Options{
		ShowLinks:        !c.Display.HideLinks,
		ShowMetadata:     !c.Display.HideMetadata,
		ShowConstituents: !c.Display.HideConstituents,
		MaxParses:        c.Display.MaxParses,
		SourceURL:        c.SourceURL,
		Version:          version,
	}
}
