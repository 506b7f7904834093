package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/revelaction/relstream/extract/command"
	_ "github.com/revelaction/relstream/extract/shallow"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relstream.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "compact", cfg.Format)
	assert.Equal(t, 1, cfg.Display.MaxParses)
	assert.Equal(t, 30, cfg.Extract.MaxParses)
	assert.Equal(t, 60, cfg.Extract.MaxParseSeconds)
	assert.Equal(t, "shallow", cfg.Extract.Engine)

	b := cfg.Budget()
	assert.Equal(t, 30, b.MaxParses)
	assert.Equal(t, time.Minute, b.Timeout)

	opts := cfg.RenderOptions("v1")
	assert.True(t, opts.ShowLinks)
	assert.True(t, opts.ShowMetadata)
	assert.True(t, opts.ShowConstituents)
	assert.Equal(t, 1, opts.MaxParses)
	assert.Equal(t, "v1", opts.Version)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
format: json
source_url: https://example.org/corpus.txt
display:
  hide_links: true
  max_parses: 3
extract:
  engine: command
  command: [spacy-parse, --model, en]
  max_parse_seconds: 5
segment:
  abbreviations: [Herr, Frau]
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "https://example.org/corpus.txt", cfg.SourceURL)
	assert.True(t, cfg.Display.HideLinks)
	assert.False(t, cfg.Display.HideMetadata)
	assert.Equal(t, 3, cfg.Display.MaxParses)
	assert.Equal(t, []string{"spacy-parse", "--model", "en"}, cfg.Extract.Command)
	assert.Equal(t, 5, cfg.Extract.MaxParseSeconds)
	// untouched keys keep their default
	assert.Equal(t, 30, cfg.Extract.MaxParses)
	assert.Equal(t, []string{"Herr", "Frau"}, cfg.Segment.Abbreviations)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeFile(t, "formatt: json\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "xml" }},
		{"display parses", func(c *Config) { c.Display.MaxParses = 0 }},
		{"extract parses", func(c *Config) { c.Extract.MaxParses = -1 }},
		{"seconds", func(c *Config) { c.Extract.MaxParseSeconds = 0 }},
		{"engine", func(c *Config) { c.Extract.Engine = "link-grammar" }},
		{"command without argv", func(c *Config) { c.Extract.Engine = "command" }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"interactive with file", func(c *Config) {
			c.Input.Interactive = true
			c.Input.Path = "corpus.txt"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
