package analyzer

import (
	"fmt"
	"slices"
	"sort"

	"github.com/vivant/robin/pkg/config"
)

type Factory func(cfg *config.Analyzer) Analyzer

// Registry maps built-in analyzer names to their factories.
type Registry struct {
	builtins map[string]Factory
	dir      string
}

// NewRegistry returns a registry with every built-in analyzer.
// Command analyzers run in dir.
func NewRegistry(dir string) *Registry {
	return &Registry{
		dir: dir,
		builtins: map[string]Factory{
			"trailing-whitespace": func(*config.Analyzer) Analyzer { return NewTrailingWhitespace() },
			"line-length":         func(cfg *config.Analyzer) Analyzer { return NewLineLength(cfg.MaxLineLength) },
			"todo":                func(*config.Analyzer) Analyzer { return NewTodo() },
			"final-newline":       func(*config.Analyzer) Analyzer { return NewFinalNewline() },
		},
	}
}

// Register adds or replaces a built-in analyzer.
func (r *Registry) Register(name string, factory Factory) {
	r.builtins[name] = factory
}

// Builtins returns the sorted names of the built-in analyzers.
func (r *Registry) Builtins() []string {
	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates the analyzers to run, in configuration order.
// If only is empty, enabled analyzers are used. Otherwise exactly the named
// analyzers are used, whether they are enabled or not.
func (r *Registry) Build(cfgs []*config.Analyzer, only []string) ([]Analyzer, error) {
	for _, name := range only {
		if !slices.ContainsFunc(cfgs, func(a *config.Analyzer) bool { return a.Name == name }) {
			return nil, fmt.Errorf("analyzer %q isn't configured", name)
		}
	}
	analyzers := make([]Analyzer, 0, len(cfgs))
	for _, cfg := range cfgs {
		if len(only) > 0 {
			if !slices.Contains(only, cfg.Name) {
				continue
			}
		} else if !cfg.IsEnabled() {
			continue
		}
		a, err := r.build(cfg)
		if err != nil {
			return nil, err
		}
		analyzers = append(analyzers, a)
	}
	return analyzers, nil
}

func (r *Registry) build(cfg *config.Analyzer) (Analyzer, error) {
	if cfg.IsCommand() {
		return NewCommand(cfg, r.dir), nil
	}
	factory, ok := r.builtins[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in analyzer %q: set command to run an external linter", cfg.Name)
	}
	return factory(cfg), nil
}
