// Package config reads robin's configuration file.
// The file selects the analyzers that run against the target file and
// describes how the assistant process is launched. Every section is
// validated by its Init method after decoding; defaults are applied there too,
// so a missing configuration file behaves like an empty one.
package config

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

const (
	schemaVersion = 1

	DefaultAssistantCommand = "aider"
	DefaultTimeout          = 10 * time.Minute
	DefaultMaxLineLength    = 120
	DefaultConcurrency      = 4

	FormatLine  = "line"
	FormatSARIF = "sarif"
)

// DefaultAnalyzers are the built-in analyzers enabled when the configuration
// doesn't list any.
var DefaultAnalyzers = []string{ //nolint:gochecknoglobals
	"trailing-whitespace",
	"line-length",
	"todo",
	"final-newline",
}

type Config struct {
	Version     int         `json:"version,omitempty" yaml:"version" jsonschema:"enum=1"`
	Assistant   *Assistant  `json:"assistant,omitempty" yaml:"assistant" jsonschema:"description=The external assistant that receives the findings"`
	Analyzers   []*Analyzer `json:"analyzers,omitempty" yaml:"analyzers" jsonschema:"description=Analyzers run against the target file, in order"`
	Concurrency int         `json:"concurrency,omitempty" yaml:"concurrency" jsonschema:"description=Maximum number of analyzers running at the same time"`
}

type Assistant struct {
	Command    string            `json:"command,omitempty" yaml:"command" jsonschema:"description=Executable name or path. The default is aider"`
	Args       []string          `json:"args,omitempty" yaml:"args" jsonschema:"description=Extra arguments passed after --no-auto-commits"`
	WorkDir    string            `json:"work_dir,omitempty" yaml:"work_dir"`
	Env        map[string]string `json:"env,omitempty" yaml:"env"`
	Timeout    string            `json:"timeout,omitempty" yaml:"timeout" jsonschema:"description=Deadline of one relay session such as 5m. The default is 10m"`
	MinVersion string            `json:"min_version,omitempty" yaml:"min_version" jsonschema:"description=Version constraint checked with --version before relaying such as >= 0.50.0"`
	timeout    time.Duration
}

type Analyzer struct {
	Name          string   `json:"name" yaml:"name"`
	Enabled       *bool    `json:"enabled,omitempty" yaml:"enabled"`
	Command       []string `json:"command,omitempty" yaml:"command" jsonschema:"description=Command line of an external linter. {{file}} is replaced with the target file path"`
	Format        string   `json:"format,omitempty" yaml:"format" jsonschema:"enum=line,enum=sarif"`
	Pattern       string   `json:"pattern,omitempty" yaml:"pattern" jsonschema:"description=Regular expression with the named groups file, line and message"`
	MaxLineLength int      `json:"max_line_length,omitempty" yaml:"max_line_length"`
	Timeout       string   `json:"timeout,omitempty" yaml:"timeout"`
	pattern       *regexp.Regexp
	timeout       time.Duration
}

// DefaultPattern matches "file:line: message" and "file:line:col: message".
var DefaultPattern = regexp.MustCompile(`^(?P<file>[^:]+):(?P<line>\d+)(?::\d+)?:\s*(?P<message>.+)$`) //nolint:gochecknoglobals

func validateSchemaVersion(v int) error {
	switch v {
	case 0, schemaVersion:
		return nil
	default:
		return fmt.Errorf("unsupported configuration version: %d", v)
	}
}

// Init validates the configuration and fills in defaults.
func (c *Config) Init() error {
	if err := validateSchemaVersion(c.Version); err != nil {
		return err
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Assistant == nil {
		c.Assistant = &Assistant{}
	}
	if err := c.Assistant.Init(); err != nil {
		return fmt.Errorf("initialize assistant: %w", err)
	}
	if len(c.Analyzers) == 0 {
		for _, name := range DefaultAnalyzers {
			c.Analyzers = append(c.Analyzers, &Analyzer{Name: name})
		}
	}
	names := make(map[string]struct{}, len(c.Analyzers))
	for _, a := range c.Analyzers {
		if err := a.Init(); err != nil {
			return fmt.Errorf("initialize analyzer %q: %w", a.Name, err)
		}
		if _, ok := names[a.Name]; ok {
			return fmt.Errorf("analyzer %q is defined twice", a.Name)
		}
		names[a.Name] = struct{}{}
	}
	return nil
}

func (a *Assistant) Init() error {
	if a.Command == "" {
		a.Command = DefaultAssistantCommand
	}
	a.timeout = DefaultTimeout
	if a.Timeout != "" {
		d, err := time.ParseDuration(a.Timeout)
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		a.timeout = d
	}
	return nil
}

// TimeoutDuration returns the parsed timeout. Init must be called first.
func (a *Assistant) TimeoutDuration() time.Duration {
	return a.timeout
}

func (a *Analyzer) Init() error {
	if a.Name == "" {
		return errors.New("name is required")
	}
	if a.MaxLineLength < 0 {
		return errors.New("max_line_length must be >= 0")
	}
	if a.MaxLineLength == 0 {
		a.MaxLineLength = DefaultMaxLineLength
	}
	switch a.Format {
	case "":
		a.Format = FormatLine
	case FormatLine, FormatSARIF:
	default:
		return errors.New("format must be line or sarif")
	}
	if len(a.Command) == 0 {
		if a.Pattern != "" {
			return errors.New("pattern requires command")
		}
		return nil
	}
	if a.Command[0] == "" {
		return errors.New("command must start with an executable")
	}
	if err := a.initPattern(); err != nil {
		return err
	}
	if a.Timeout != "" {
		d, err := time.ParseDuration(a.Timeout)
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}
		a.timeout = d
	}
	return nil
}

func (a *Analyzer) initPattern() error {
	if a.Pattern == "" {
		a.pattern = DefaultPattern
		return nil
	}
	r, err := regexp.Compile(a.Pattern)
	if err != nil {
		return fmt.Errorf("compile pattern as a regular expression: %w", err)
	}
	for _, group := range []string{"line", "message"} {
		if r.SubexpIndex(group) < 0 {
			return fmt.Errorf("pattern must have the named group %q", group)
		}
	}
	a.pattern = r
	return nil
}

// IsEnabled reports whether the analyzer runs. Analyzers are enabled unless
// enabled is explicitly false.
func (a *Analyzer) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// IsCommand reports whether the analyzer runs an external linter.
func (a *Analyzer) IsCommand() bool {
	return len(a.Command) > 0
}

// Kind returns "command" or "builtin".
func (a *Analyzer) Kind() string {
	if a.IsCommand() {
		return "command"
	}
	return "builtin"
}

// CompiledPattern returns the output pattern of a command analyzer.
func (a *Analyzer) CompiledPattern() *regexp.Regexp {
	if a.pattern == nil {
		return DefaultPattern
	}
	return a.pattern
}

// TimeoutDuration returns the command timeout. Zero means no own deadline.
func (a *Analyzer) TimeoutDuration() time.Duration {
	return a.timeout
}

func getConfigPath(fs afero.Fs) (string, error) {
	for _, path := range []string{".robin.yaml", ".robin.yml", ".config/robin.yaml", ".config/robin.yml"} {
		f, err := afero.Exists(fs, path)
		if err != nil {
			return "", fmt.Errorf("check if %s exists: %w", path, err)
		}
		if f {
			return path, nil
		}
	}
	return "", nil
}

type Finder struct {
	fs afero.Fs
}

func NewFinder(fs afero.Fs) *Finder {
	return &Finder{fs: fs}
}

func (f *Finder) Find(configFilePath string) (string, error) {
	if configFilePath != "" {
		return configFilePath, nil
	}
	p, err := getConfigPath(f.fs)
	if err != nil {
		return "", err
	}
	return p, nil
}

type Reader struct {
	fs afero.Fs
}

func NewReader(fs afero.Fs) *Reader {
	return &Reader{fs: fs}
}

// Read decodes configFilePath into cfg and initializes it.
// An empty path leaves cfg as is apart from defaults.
func (r *Reader) Read(cfg *Config, configFilePath string) error {
	if configFilePath != "" {
		if err := r.decode(cfg, configFilePath); err != nil {
			return err
		}
	}
	if err := cfg.Init(); err != nil {
		return fmt.Errorf("initialize configuration: %w", err)
	}
	return nil
}

func (r *Reader) decode(cfg *Config, configFilePath string) error {
	f, err := r.fs.Open(configFilePath)
	if err != nil {
		return fmt.Errorf("open a configuration file: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode a configuration file as YAML: %w", err)
	}
	return nil
}
