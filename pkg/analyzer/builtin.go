package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

type lineFunc func(line string) (string, bool)

// lineAnalyzer reports a diagnostic for every line check matches.
type lineAnalyzer struct {
	name  string
	check lineFunc
}

func (a *lineAnalyzer) Name() string {
	return a.name
}

func (a *lineAnalyzer) Run(ctx context.Context, file *File) ([]Diagnostic, error) {
	var diags []Diagnostic
	for i, line := range file.Lines {
		if err := ctx.Err(); err != nil {
			return diags, err //nolint:wrapcheck
		}
		if msg, ok := a.check(line); ok {
			diags = append(diags, Diagnostic{Line: i + 1, Message: msg})
		}
	}
	return diags, nil
}

// NewTrailingWhitespace reports lines ending with spaces or tabs.
func NewTrailingWhitespace() Analyzer {
	return &lineAnalyzer{
		name: "trailing-whitespace",
		check: func(line string) (string, bool) {
			if line != strings.TrimRight(line, " \t") {
				return "trailing whitespace", true
			}
			return "", false
		},
	}
}

// NewLineLength reports lines wider than limit display columns.
func NewLineLength(limit int) Analyzer {
	return &lineAnalyzer{
		name: "line-length",
		check: func(line string) (string, bool) {
			if w := runewidth.StringWidth(line); w > limit {
				return fmt.Sprintf("line is %d columns long (max %d)", w, limit), true
			}
			return "", false
		},
	}
}

var todoPattern = regexp.MustCompile(`\b(TODO|FIXME|XXX)\b:?\s*(.*)$`)

// NewTodo reports TODO, FIXME and XXX markers.
func NewTodo() Analyzer {
	return &lineAnalyzer{
		name: "todo",
		check: func(line string) (string, bool) {
			m := todoPattern.FindStringSubmatch(line)
			if m == nil {
				return "", false
			}
			if text := strings.TrimSpace(m[2]); text != "" {
				return m[1] + " marker: " + text, true
			}
			return m[1] + " marker", true
		},
	}
}

type finalNewline struct{}

// NewFinalNewline reports a file whose last line isn't terminated.
func NewFinalNewline() Analyzer {
	return finalNewline{}
}

func (finalNewline) Name() string {
	return "final-newline"
}

func (finalNewline) Run(_ context.Context, file *File) ([]Diagnostic, error) {
	if len(file.Content) == 0 || file.Content[len(file.Content)-1] == '\n' {
		return nil, nil
	}
	return []Diagnostic{{Line: len(file.Lines), Message: "no newline at end of file"}}, nil
}
