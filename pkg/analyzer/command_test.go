package analyzer_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/vivant/robin/pkg/analyzer"
	"github.com/vivant/robin/pkg/config"
)

func newHelperCommand(t *testing.T, mode string, cfg *config.Analyzer) *analyzer.Command {
	t.Helper()
	if cfg == nil {
		cfg = &config.Analyzer{}
	}
	cfg.Name = "fake-" + mode
	cfg.Command = []string{os.Args[0], "lint-helper", mode, "{{file}}"}
	if err := cfg.Init(); err != nil {
		t.Fatal(err)
	}
	return analyzer.NewCommand(cfg, "")
}

func TestCommand_Args(t *testing.T) {
	t.Parallel()
	data := []struct {
		name    string
		command []string
		exp     []string
	}{
		{name: "placeholder", command: []string{"golangci-lint", "run", "{{file}}"}, exp: []string{"golangci-lint", "run", "a.go"}},
		{name: "placeholder in flag", command: []string{"ruff", "--stdin-filename={{file}}"}, exp: []string{"ruff", "--stdin-filename=a.go"}},
		{name: "appended", command: []string{"pyflakes"}, exp: []string{"pyflakes", "a.go"}},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			cfg := &config.Analyzer{Name: "x", Command: d.command}
			if err := cfg.Init(); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(d.exp, analyzer.NewCommand(cfg, "").Args("a.go")); diff != "" {
				t.Errorf("args (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommand_Run(t *testing.T) { //nolint:funlen
	t.Parallel()
	data := []struct {
		name    string
		mode    string
		format  string
		exp     []analyzer.Diagnostic
		wantErr bool
	}{
		{
			name: "line format reads stdout and stderr",
			mode: "line",
			exp: []analyzer.Diagnostic{
				{File: "a.py", Line: 3, Message: "unused variable x"},
				{File: "a.py", Line: 0, Message: "no position"},
				{File: "a.py", Line: 10, Message: "missing return"},
			},
		},
		{
			name: "clean",
			mode: "clean",
		},
		{
			name:   "sarif",
			mode:   "sarif",
			format: "sarif",
			exp: []analyzer.Diagnostic{
				{File: "a.py", Line: 2, Message: "first (R1)"},
			},
		},
		{
			name:    "crash",
			mode:    "crash",
			wantErr: true,
		},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			cmd := newHelperCommand(t, d.mode, &config.Analyzer{Format: d.format})
			got, err := cmd.Run(t.Context(), resolveString(t, "x = 1\n"))
			if d.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(d.exp, got); diff != "" {
				t.Errorf("diagnostics (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommand_Run_timeout(t *testing.T) {
	t.Parallel()
	cmd := newHelperCommand(t, "sleep", &config.Analyzer{Timeout: "100ms"})
	start := time.Now()
	if _, err := cmd.Run(t.Context(), resolveString(t, "x\n")); err == nil {
		t.Fatal("expected error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("the linter wasn't killed in time: %v", elapsed)
	}
}

func TestCommand_Run_notFound(t *testing.T) {
	t.Parallel()
	cfg := &config.Analyzer{Name: "missing", Command: []string{"robin-no-such-linter-9f2c"}}
	if err := cfg.Init(); err != nil {
		t.Fatal(err)
	}
	_, err := analyzer.NewCommand(cfg, "").Run(context.Background(), resolveString(t, "x\n"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
