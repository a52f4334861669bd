// Package di wires the robin commands together.
// It reads the configuration, applies flag and environment overrides, and
// builds the collector, relay, sinks and controllers each command needs.
package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/vivant/robin/pkg/analyzer"
	"github.com/vivant/robin/pkg/config"
	"github.com/vivant/robin/pkg/controller/inspect"
	"github.com/vivant/robin/pkg/relay"
	"github.com/vivant/robin/pkg/sink"
)

// Stdio is where a command writes.
type Stdio struct {
	Stdout io.Writer
	Stderr io.Writer
}

// RunInspect executes 'robin inspect'.
func RunInspect(ctx context.Context, logE *logrus.Entry, flags *Flags, stdio *Stdio) error {
	if err := flags.Apply(logE); err != nil {
		return err //nolint:wrapcheck
	}
	fs := afero.NewOsFs()

	cfg, err := ReadConfig(fs, flags.Config)
	if err != nil {
		return err
	}
	ctrl, fileSink, err := newInspectController(fs, cfg, flags, stdio)
	if err != nil {
		return err
	}
	_, inspectErr := ctrl.Inspect(ctx, logE, flags.File)
	if fileSink != nil {
		if err := fileSink.Err(); err != nil {
			return errors.Join(inspectErr, err)
		}
	}
	return inspectErr //nolint:wrapcheck
}

// ReadConfig finds and reads the configuration file.
// Defaults are used when no file is found.
func ReadConfig(fs afero.Fs, configFilePath string) (*config.Config, error) {
	cfgFinder := config.NewFinder(fs)
	cfgReader := config.NewReader(fs)
	configPath, err := cfgFinder.Find(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("find configuration file: %w", err)
	}
	cfg := &config.Config{}
	if err := cfgReader.Read(cfg, configPath); err != nil {
		return nil, fmt.Errorf("read configuration file: %w", err)
	}
	return cfg, nil
}

func newInspectController(fs afero.Fs, cfg *config.Config, flags *Flags, stdio *Stdio) (*inspect.Controller, *sink.File, error) {
	format, err := validateFormat(flags.Format)
	if err != nil {
		return nil, nil, err
	}
	analyzers, err := analyzer.NewRegistry(flags.PWD).Build(cfg.Analyzers, flags.Analyzers)
	if err != nil {
		return nil, nil, fmt.Errorf("build analyzers: %w", err)
	}
	assistant, err := mergeAssistant(cfg.Assistant, flags)
	if err != nil {
		return nil, nil, err
	}

	var snk sink.Sink = sink.NewTerminal(stdio.Stdout, stdio.Stderr, !flags.Quiet)
	var fileSink *sink.File
	if flags.Output != "" {
		fileSink = sink.NewFile(fs, flags.Output)
		snk = sink.Multi{snk, fileSink}
	}

	ctrl := inspect.New(
		analyzer.NewCollector(fs, analyzers, cfg.Concurrency),
		newRelay(assistant, flags.PWD),
		snk,
		&inspect.Param{
			DryRun:     flags.DryRun,
			Format:     format,
			MinVersion: assistant.MinVersion,
			Stdout:     stdio.Stdout,
		})
	return ctrl, fileSink, nil
}

func validateFormat(format string) (string, error) {
	switch format {
	case "":
		return inspect.FormatText, nil
	case inspect.FormatText, inspect.FormatSARIF:
		return format, nil
	default:
		return "", fmt.Errorf("format must be %s or %s: %s", inspect.FormatText, inspect.FormatSARIF, format)
	}
}

// mergeAssistant returns a copy of the assistant configuration with the flag overrides applied.
func mergeAssistant(base *config.Assistant, flags *Flags) (*config.Assistant, error) {
	a := &config.Assistant{}
	if base != nil {
		*a = *base
	}
	if flags.Assistant != "" {
		a.Command = flags.Assistant
	}
	if flags.Timeout != "" {
		a.Timeout = flags.Timeout
	}
	if err := a.Init(); err != nil {
		return nil, fmt.Errorf("initialize assistant: %w", err)
	}
	return a, nil
}

func newRelay(a *config.Assistant, pwd string) *relay.Relay {
	dir := a.WorkDir
	if dir == "" {
		dir = pwd
	}
	return relay.New(
		relay.WithPath(a.Command),
		relay.WithArgs(a.Args...),
		relay.WithWorkDir(dir),
		relay.WithEnv(a.Env),
		relay.WithTimeout(a.TimeoutDuration()),
	)
}
