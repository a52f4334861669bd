package inspect

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/suzuki-shunsuke/logrus-error/logerr"
	"github.com/vivant/robin/pkg/finding"
	"github.com/vivant/robin/pkg/relay"
	"github.com/vivant/robin/pkg/sink"
)

const (
	// ExitCodeLaunchFailure is returned when the assistant can't be started.
	ExitCodeLaunchFailure = 127

	MessageNoIssues = "No issues found in the current file."

	FormatText  = "text"
	FormatSARIF = "sarif"
)

var ErrBusy = errors.New("another inspection is in progress")

// ExitError carries the exit code robin should exit with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("the assistant exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func (e *ExitError) ExitCode() int {
	return e.Code
}

type Result struct {
	Report  finding.Report
	Session *relay.Session
}

// Inspect runs the whole pipeline for path.
// The report is empty when no analyzer found anything; in that case the
// assistant is never started.
func (c *Controller) Inspect(ctx context.Context, logE *logrus.Entry, path string) (*Result, error) {
	if !c.mu.TryLock() {
		return nil, ErrBusy
	}
	defer c.mu.Unlock()

	logE = logE.WithField("file", path)
	report, err := c.collector.Collect(ctx, logE, path)
	if err != nil {
		c.sink.Notify(sink.LevelError, "Error: "+err.Error())
		return nil, fmt.Errorf("collect findings: %w", err)
	}
	result := &Result{Report: report}

	if c.param.DryRun {
		return result, c.output(report)
	}
	if report.Empty() {
		c.sink.Notify(sink.LevelInfo, MessageNoIssues)
		return result, nil
	}
	if c.param.MinVersion != "" {
		if err := c.checkVersion(ctx, logE); err != nil {
			return result, err
		}
	}

	session, err := c.relay.Run(ctx, logE, finding.Format(report), c.sink)
	result.Session = session
	if err != nil {
		return result, c.handleRelayError(err)
	}
	if code := *session.ExitCode; code != 0 {
		logE.WithField("exit_code", code).Warn("the assistant exited with a non-zero code")
		return result, &ExitError{Code: code}
	}
	logE.Info("inspection complete")
	return result, nil
}

func (c *Controller) checkVersion(ctx context.Context, logE *logrus.Entry) error {
	v, err := c.relay.CheckVersion(ctx, c.param.MinVersion)
	if err == nil {
		logE.WithField("assistant_version", v.String()).Debug("the assistant version is supported")
		return nil
	}
	var launchErr *relay.ProcessLaunchError
	if errors.As(err, &launchErr) {
		return c.handleRelayError(err)
	}
	logerr.WithError(logE, err).Error("check the assistant version")
	c.sink.Notify(sink.LevelError, "Error: "+err.Error())
	return fmt.Errorf("check the assistant version: %w", err)
}

func (c *Controller) handleRelayError(err error) error {
	name := c.relay.Name()
	var launchErr *relay.ProcessLaunchError
	if errors.As(err, &launchErr) {
		if launchErr.NotFound() {
			c.sink.Notify(sink.LevelError, fmt.Sprintf("Error: %s command not found. Please ensure %s is installed and in your PATH.", name, name))
		} else {
			c.sink.Notify(sink.LevelError, fmt.Sprintf("Error: failed to start %s: %v", name, launchErr.Err))
		}
		return &ExitError{Code: ExitCodeLaunchFailure, Err: err}
	}
	var relayErr *relay.RelayError
	if errors.As(err, &relayErr) {
		c.sink.Notify(sink.LevelError, "Error: "+relayErr.Err.Error())
	} else {
		c.sink.Notify(sink.LevelError, "Error: "+err.Error())
	}
	return err
}
