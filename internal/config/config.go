package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

// Parser modes select how Python sources are scanned.
const (
	ParserLine       = "line"
	ParserTreeSitter = "treesitter"
)

// Export formats for the machine-readable companion file.
const (
	ExportNone = ""
	ExportJSON = "json"
	ExportYAML = "yaml"
)

const (
	DefaultMaxDepth     = 10
	DefaultMaxFileSize  = 1_000_000
	DefaultCloneTimeout = 5 * time.Minute
	DefaultOutput       = "docs/DOCUMENTATION.md"
)

// ProjectConfig holds project-level settings loaded from repodoc.yml,
// repodoc.yaml or repodoc.toml.
type ProjectConfig struct {
	Output         string        `yaml:"output,omitempty" toml:"output"`
	MaxDepth       int           `yaml:"maxDepth,omitempty" toml:"max_depth"`
	MaxFileSize    int64         `yaml:"maxFileSize,omitempty" toml:"max_file_size"`
	Concurrency    int           `yaml:"concurrency,omitempty" toml:"concurrency"`
	CloneTimeout   time.Duration `yaml:"cloneTimeout,omitempty" toml:"clone_timeout"`
	CloneDir       string        `yaml:"cloneDir,omitempty" toml:"clone_dir"`
	Parser         string        `yaml:"parser,omitempty" toml:"parser"`
	IgnoreDirs     []string      `yaml:"ignoreDirs,omitempty" toml:"ignore_dirs"`
	IgnoreFiles    []string      `yaml:"ignoreFiles,omitempty" toml:"ignore_files"`
	IgnorePatterns []string      `yaml:"ignorePatterns,omitempty" toml:"ignore_patterns"`
	Diagram        bool          `yaml:"diagram,omitempty" toml:"diagram"`
	Export         string        `yaml:"export,omitempty" toml:"export"`
	Index          bool          `yaml:"index,omitempty" toml:"index"`
	LogLevel       string        `yaml:"logLevel,omitempty" toml:"log_level"`
}

// Defaults returns a config with every field at its default value.
func Defaults() *ProjectConfig {
	cfg := &ProjectConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load attempts to read repodoc.yml, repodoc.yaml or repodoc.toml from the
// given directory. Returns a defaulted config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"repodoc.yml", "repodoc.yaml", "repodoc.toml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return Defaults(), nil
}

// LoadFile reads a single config file, choosing the decoder by extension.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, docerr.Wrap(err, docerr.KindInvalidConfig, "config", path)
	}

	var cfg ProjectConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, docerr.Wrap(err, docerr.KindInvalidConfig, "config", path)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, docerr.Wrap(err, docerr.KindInvalidConfig, "config", path)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, docerr.Wrap(err, docerr.KindInvalidConfig, "config", path)
	}
	return &cfg, nil
}

func (c *ProjectConfig) applyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
	}
	if c.CloneTimeout <= 0 {
		c.CloneTimeout = DefaultCloneTimeout
	}
	if c.CloneDir == "" {
		c.CloneDir = "outputs"
	}
	if c.Parser == "" {
		c.Parser = ParserLine
	}
	c.Parser = strings.ToLower(c.Parser)
	c.Export = strings.ToLower(c.Export)
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks enum-valued fields and glob syntax.
func (c *ProjectConfig) Validate() error {
	var errs []error
	switch c.Parser {
	case ParserLine, ParserTreeSitter:
	default:
		errs = append(errs, fmt.Errorf("parser must be %q or %q, got %q", ParserLine, ParserTreeSitter, c.Parser))
	}
	switch c.Export {
	case ExportNone, ExportJSON, ExportYAML:
	default:
		errs = append(errs, fmt.Errorf("export must be %q or %q, got %q", ExportJSON, ExportYAML, c.Export))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.IgnorePolicy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// IgnorePolicy builds the traversal ignore policy: the built-in denylists
// extended with the configured names and patterns.
func (c *ProjectConfig) IgnorePolicy() (*IgnorePolicy, error) {
	dirs := append(append([]string{}, DefaultIgnoreDirs...), c.IgnoreDirs...)
	files := append(append([]string{}, DefaultIgnoreFiles...), c.IgnoreFiles...)
	patterns := append(append([]string{}, DefaultIgnorePatterns...), c.IgnorePatterns...)
	return NewIgnorePolicy(dirs, files, patterns)
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid logLevel %q: %w", s, err)
	}
	return lvl, nil
}
