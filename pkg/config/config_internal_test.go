package config

import (
	"testing"
	"time"
)

func Test_validateSchemaVersion(t *testing.T) {
	t.Parallel()
	data := []struct {
		name    string
		version int
		wantErr bool
	}{
		{name: "version 0 - omitted", version: 0, wantErr: false},
		{name: "version 1 - valid", version: 1, wantErr: false},
		{name: "version 2 - unsupported", version: 2, wantErr: true},
		{name: "negative", version: -1, wantErr: true},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			err := validateSchemaVersion(d.version)
			if d.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !d.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAnalyzer_initPattern(t *testing.T) {
	t.Parallel()
	data := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{name: "default", pattern: "", wantErr: false},
		{name: "custom", pattern: `^(?P<file>\S+) line (?P<line>\d+): (?P<message>.*)$`, wantErr: false},
		{name: "without file group", pattern: `^line (?P<line>\d+): (?P<message>.*)$`, wantErr: false},
		{name: "missing line group", pattern: `^(?P<file>\S+): (?P<message>.*)$`, wantErr: true},
		{name: "missing message group", pattern: `^(?P<file>\S+):(?P<line>\d+)$`, wantErr: true},
		{name: "invalid regexp", pattern: `[invalid`, wantErr: true},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			a := &Analyzer{Name: "x", Pattern: d.pattern}
			err := a.initPattern()
			if d.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.pattern == nil {
				t.Error("pattern wasn't compiled")
			}
		})
	}
}

func TestAssistant_Init(t *testing.T) {
	t.Parallel()
	data := []struct {
		name       string
		assistant  *Assistant
		expCommand string
		expTimeout time.Duration
		wantErr    bool
	}{
		{name: "defaults", assistant: &Assistant{}, expCommand: "aider", expTimeout: DefaultTimeout},
		{name: "custom", assistant: &Assistant{Command: "/opt/aider/bin/aider", Timeout: "90s"}, expCommand: "/opt/aider/bin/aider", expTimeout: 90 * time.Second},
		{name: "invalid timeout", assistant: &Assistant{Timeout: "soon"}, wantErr: true},
		{name: "negative timeout", assistant: &Assistant{Timeout: "-1s"}, wantErr: true},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			err := d.assistant.Init()
			if d.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.assistant.Command != d.expCommand {
				t.Errorf("Command: wanted %q, got %q", d.expCommand, d.assistant.Command)
			}
			if got := d.assistant.TimeoutDuration(); got != d.expTimeout {
				t.Errorf("TimeoutDuration: wanted %v, got %v", d.expTimeout, got)
			}
		})
	}
}
