package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vivant/robin/pkg/config"
	"github.com/vivant/robin/pkg/sarif"
)

const filePlaceholder = "{{file}}"

// Command runs an external linter and parses its output.
// The command line is executed directly, never through a shell.
type Command struct {
	name    string
	argv    []string
	format  string
	pattern *regexp.Regexp
	timeout time.Duration
	dir     string
}

// NewCommand creates a command analyzer from an initialized configuration.
func NewCommand(cfg *config.Analyzer, dir string) *Command {
	return &Command{
		name:    cfg.Name,
		argv:    cfg.Command,
		format:  cfg.Format,
		pattern: cfg.CompiledPattern(),
		timeout: cfg.TimeoutDuration(),
		dir:     dir,
	}
}

func (c *Command) Name() string {
	return c.name
}

// Args returns the command line for path. {{file}} is replaced with path;
// path is appended if the command has no placeholder.
func (c *Command) Args(path string) []string {
	args := make([]string, len(c.argv))
	found := false
	for i, arg := range c.argv {
		if strings.Contains(arg, filePlaceholder) {
			found = true
			arg = strings.ReplaceAll(arg, filePlaceholder, path)
		}
		args[i] = arg
	}
	if !found {
		args = append(args, path)
	}
	return args
}

func (c *Command) Run(ctx context.Context, file *File) ([]Diagnostic, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	args := c.Args(file.Path)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec
	cmd.Dir = c.dir
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("run %s: %w", args[0], err)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("run %s: %w", args[0], ctx.Err())
	}

	diags, err := c.parse(stdout.Bytes(), stderr.Bytes())
	if err != nil && exitErr == nil {
		return nil, err
	}
	if len(diags) == 0 && exitErr != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%s exited with code %d: %s", args[0], exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	}
	return filterFile(diags, file.Path), nil
}

func (c *Command) parse(stdout, stderr []byte) ([]Diagnostic, error) {
	if c.format == config.FormatSARIF {
		return parseSARIF(stdout)
	}
	diags := parseLines(c.pattern, stdout)
	return append(diags, parseLines(c.pattern, stderr)...), nil
}

func parseLines(pattern *regexp.Regexp, b []byte) []Diagnostic {
	var diags []Diagnostic
	fileIdx := pattern.SubexpIndex("file")
	lineIdx := pattern.SubexpIndex("line")
	msgIdx := pattern.SubexpIndex("message")
	scanner := bufio.NewScanner(bytes.NewReader(b))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) //nolint:mnd
	for scanner.Scan() {
		m := pattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		d := Diagnostic{Message: strings.TrimSpace(m[msgIdx])}
		if n, err := strconv.Atoi(m[lineIdx]); err == nil {
			d.Line = n
		}
		if fileIdx >= 0 {
			d.File = m[fileIdx]
		}
		diags = append(diags, d)
	}
	return diags
}

func parseSARIF(b []byte) ([]Diagnostic, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, errors.New("the linter printed no SARIF log")
	}
	report, err := sarif.Decode(b)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	var diags []Diagnostic
	for _, run := range report.Runs {
		if run == nil {
			continue
		}
		for _, result := range run.Results {
			if result == nil {
				continue
			}
			file, line := sarif.Position(result)
			msg := sarif.Text(result)
			if rule := sarif.RuleID(result); rule != "" {
				msg += " (" + rule + ")"
			}
			diags = append(diags, Diagnostic{File: file, Line: line, Message: msg})
		}
	}
	return diags, nil
}

// filterFile drops diagnostics about files other than path.
func filterFile(diags []Diagnostic, path string) []Diagnostic {
	ret := diags[:0]
	for _, d := range diags {
		if d.File == "" || sameFile(d.File, path) {
			ret = append(ret, d)
		}
	}
	return ret
}

func sameFile(a, b string) bool {
	a = filepath.Clean(a)
	b = filepath.Clean(b)
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
