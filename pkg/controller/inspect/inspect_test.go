package inspect_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-version"
	"github.com/sirupsen/logrus"
	"github.com/vivant/robin/pkg/analyzer"
	"github.com/vivant/robin/pkg/controller/inspect"
	"github.com/vivant/robin/pkg/finding"
	"github.com/vivant/robin/pkg/relay"
	"github.com/vivant/robin/pkg/sarif"
	"github.com/vivant/robin/pkg/sink"
)

type stubCollector struct {
	report  finding.Report
	err     error
	started chan struct{}
	block   chan struct{}
}

func (s *stubCollector) Collect(context.Context, *logrus.Entry, string) (finding.Report, error) {
	if s.block != nil {
		s.started <- struct{}{}
		<-s.block
	}
	return s.report, s.err
}

// stubRelay counts spawns and replays a canned session.
type stubRelay struct {
	spawned    atomic.Int32
	lines      []string
	exitCode   int
	err        error
	versionErr error
	input      string
}

func (s *stubRelay) Name() string {
	return "aider"
}

func (s *stubRelay) Run(_ context.Context, _ *logrus.Entry, input string, snk sink.Sink) (*relay.Session, error) {
	s.spawned.Add(1)
	s.input = input
	session := &relay.Session{State: relay.StateStreaming, Input: input}
	if s.err != nil {
		session.State = relay.StateFailed
		var launchErr *relay.ProcessLaunchError
		if !errors.As(s.err, &launchErr) {
			session.Output = s.lines
			snk.Deliver(session.Text())
		}
		return session, s.err
	}
	for _, line := range s.lines {
		session.Output = append(session.Output, line)
		snk.Progress(line)
	}
	code := s.exitCode
	session.ExitCode = &code
	session.State = relay.StateCompleted
	snk.Deliver(session.Text())
	return session, nil
}

func (s *stubRelay) CheckVersion(context.Context, string) (*version.Version, error) {
	if s.versionErr != nil {
		return nil, s.versionErr
	}
	return version.Must(version.NewVersion("0.86.1")), nil
}

func discardLog() *logrus.Entry {
	logger := logrus.New()
	logger.Out = io.Discard
	return logrus.NewEntry(logger)
}

var twoFindings = finding.Report{ //nolint:gochecknoglobals
	{File: "a.py", Line: 3, Message: "unused var", Analyzer: "pyflakes"},
	{File: "a.py", Line: 10, Message: "missing return", Analyzer: "mypy"},
}

func TestController_Inspect_emptyReport(t *testing.T) {
	t.Parallel()
	rl := &stubRelay{}
	rec := &sink.Recorder{}
	ctrl := inspect.New(&stubCollector{report: finding.Report{}}, rl, rec, &inspect.Param{})
	result, err := ctrl.Inspect(t.Context(), discardLog(), "a.py")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := rl.spawned.Load(); n != 0 {
		t.Errorf("the assistant was spawned %d times", n)
	}
	if result.Session != nil {
		t.Errorf("wanted no session, got %+v", result.Session)
	}
	exp := []sink.Notice{{Level: sink.LevelInfo, Message: inspect.MessageNoIssues}}
	if diff := cmp.Diff(exp, rec.Notices()); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}
}

func TestController_Inspect_relay(t *testing.T) {
	t.Parallel()
	rl := &stubRelay{lines: []string{"L1", "L2"}}
	rec := &sink.Recorder{}
	ctrl := inspect.New(&stubCollector{report: twoFindings}, rl, rec, &inspect.Param{})
	result, err := ctrl.Inspect(t.Context(), discardLog(), "a.py")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rl.input != "a.py:3: unused var\na.py:10: missing return" {
		t.Errorf("unexpected input: %q", rl.input)
	}
	if diff := cmp.Diff([]string{"L1", "L2"}, rec.Lines()); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if result.Session.State != relay.StateCompleted {
		t.Errorf("state: wanted completed, got %s", result.Session.State)
	}
	if len(rec.Notices()) != 0 {
		t.Errorf("unexpected notices: %v", rec.Notices())
	}
}

func TestController_Inspect_nonZeroExit(t *testing.T) {
	t.Parallel()
	rl := &stubRelay{lines: []string{"partial"}, exitCode: 2}
	ctrl := inspect.New(&stubCollector{report: twoFindings}, rl, &sink.Recorder{}, &inspect.Param{})
	_, err := ctrl.Inspect(t.Context(), discardLog(), "a.py")
	var exitErr *inspect.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("wanted *ExitError, got %v", err)
	}
	if exitErr.ExitCode() != 2 {
		t.Errorf("exit code: wanted 2, got %d", exitErr.ExitCode())
	}
}

func TestController_Inspect_launchFailure(t *testing.T) {
	t.Parallel()
	data := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "not found",
			err:     &relay.ProcessLaunchError{Path: "aider", Err: &exec.Error{Name: "aider", Err: exec.ErrNotFound}},
			message: "Error: aider command not found. Please ensure aider is installed and in your PATH.",
		},
		{
			name:    "permission denied",
			err:     &relay.ProcessLaunchError{Path: "/opt/aider", Err: errors.New("permission denied")},
			message: "Error: failed to start aider: permission denied",
		},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			rec := &sink.Recorder{}
			ctrl := inspect.New(&stubCollector{report: twoFindings}, &stubRelay{err: d.err}, rec, &inspect.Param{})
			_, err := ctrl.Inspect(t.Context(), discardLog(), "a.py")
			var exitErr *inspect.ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("wanted *ExitError, got %v", err)
			}
			if exitErr.ExitCode() != inspect.ExitCodeLaunchFailure {
				t.Errorf("exit code: wanted %d, got %d", inspect.ExitCodeLaunchFailure, exitErr.ExitCode())
			}
			exp := []sink.Notice{{Level: sink.LevelError, Message: d.message}}
			if diff := cmp.Diff(exp, rec.Notices()); diff != "" {
				t.Errorf("notices (-want +got):\n%s", diff)
			}
		})
	}
}

func TestController_Inspect_relayError(t *testing.T) {
	t.Parallel()
	rec := &sink.Recorder{}
	rl := &stubRelay{lines: []string{"half"}, err: &relay.RelayError{Err: context.DeadlineExceeded}}
	ctrl := inspect.New(&stubCollector{report: twoFindings}, rl, rec, &inspect.Param{})
	_, err := ctrl.Inspect(t.Context(), discardLog(), "a.py")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("wanted context.DeadlineExceeded, got %v", err)
	}
	if diff := cmp.Diff([]string{"half"}, rec.Delivered()); diff != "" {
		t.Errorf("partial output (-want +got):\n%s", diff)
	}
	exp := []sink.Notice{{Level: sink.LevelError, Message: "Error: " + context.DeadlineExceeded.Error()}}
	if diff := cmp.Diff(exp, rec.Notices()); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}
}

func TestController_Inspect_resolutionError(t *testing.T) {
	t.Parallel()
	rl := &stubRelay{}
	rec := &sink.Recorder{}
	resErr := &analyzer.ResolutionError{Path: "gone.py", Reason: analyzer.ReasonNotFound}
	ctrl := inspect.New(&stubCollector{err: resErr}, rl, rec, &inspect.Param{})
	_, err := ctrl.Inspect(t.Context(), discardLog(), "gone.py")
	var got *analyzer.ResolutionError
	if !errors.As(err, &got) {
		t.Fatalf("wanted *ResolutionError, got %v", err)
	}
	if rl.spawned.Load() != 0 {
		t.Error("the assistant must not be spawned")
	}
	exp := []sink.Notice{{Level: sink.LevelError, Message: "Error: file not found: gone.py"}}
	if diff := cmp.Diff(exp, rec.Notices()); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}
}

func TestController_Inspect_minVersion(t *testing.T) {
	t.Parallel()
	v := version.Must(version.NewVersion("0.20.0"))
	rl := &stubRelay{versionErr: &relay.VersionError{Version: v, Constraint: ">= 0.50.0"}}
	rec := &sink.Recorder{}
	ctrl := inspect.New(&stubCollector{report: twoFindings}, rl, rec, &inspect.Param{MinVersion: ">= 0.50.0"})
	_, err := ctrl.Inspect(t.Context(), discardLog(), "a.py")
	var versionErr *relay.VersionError
	if !errors.As(err, &versionErr) {
		t.Fatalf("wanted *VersionError, got %v", err)
	}
	if rl.spawned.Load() != 0 {
		t.Error("the assistant must not be spawned")
	}
	if len(rec.Notices()) != 1 || rec.Notices()[0].Level != sink.LevelError {
		t.Errorf("unexpected notices: %v", rec.Notices())
	}
}

func TestController_Inspect_dryRun(t *testing.T) {
	t.Parallel()
	data := []struct {
		name   string
		format string
		report finding.Report
		check  func(t *testing.T, out string, rec *sink.Recorder)
	}{
		{
			name:   "text",
			format: "text",
			report: twoFindings,
			check: func(t *testing.T, out string, _ *sink.Recorder) {
				t.Helper()
				if out != "a.py:3: unused var\na.py:10: missing return\n" {
					t.Errorf("unexpected output: %q", out)
				}
			},
		},
		{
			name:   "text empty",
			format: "text",
			report: finding.Report{},
			check: func(t *testing.T, out string, rec *sink.Recorder) {
				t.Helper()
				if out != "" {
					t.Errorf("unexpected output: %q", out)
				}
				if len(rec.Notices()) != 1 || rec.Notices()[0].Message != inspect.MessageNoIssues {
					t.Errorf("unexpected notices: %v", rec.Notices())
				}
			},
		},
		{
			name:   "sarif",
			format: "sarif",
			report: twoFindings,
			check: func(t *testing.T, out string, _ *sink.Recorder) {
				t.Helper()
				doc, err := sarif.Decode([]byte(out))
				if err != nil {
					t.Fatal(err)
				}
				results := doc.Runs[0].Results
				got := make([]string, len(results))
				for i, r := range results {
					f, l := sarif.Position(r)
					got[i] = fmt.Sprintf("%s:%d: %s [%s]", f, l, sarif.Text(r), sarif.RuleID(r))
				}
				exp := []string{"a.py:3: unused var [pyflakes]", "a.py:10: missing return [mypy]"}
				if diff := cmp.Diff(exp, got); diff != "" {
					t.Errorf("results (-want +got):\n%s", diff)
				}
				if n := len(doc.Runs[0].Tool.Driver.Rules); n != 2 {
					t.Errorf("wanted 2 rules, got %d", n)
				}
			},
		},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			rl := &stubRelay{}
			rec := &sink.Recorder{}
			stdout := &bytes.Buffer{}
			ctrl := inspect.New(&stubCollector{report: d.report}, rl, rec, &inspect.Param{DryRun: true, Format: d.format, Stdout: stdout})
			if _, err := ctrl.Inspect(t.Context(), discardLog(), "a.py"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rl.spawned.Load() != 0 {
				t.Error("dry run must not spawn the assistant")
			}
			d.check(t, stdout.String(), rec)
		})
	}
}

func TestController_Inspect_busy(t *testing.T) {
	t.Parallel()
	col := &stubCollector{
		report:  finding.Report{},
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	ctrl := inspect.New(col, &stubRelay{}, &sink.Recorder{}, &inspect.Param{})
	done := make(chan error)
	go func() {
		_, err := ctrl.Inspect(t.Context(), discardLog(), "a.py")
		done <- err
	}()
	<-col.started
	if _, err := ctrl.Inspect(t.Context(), discardLog(), "b.py"); !errors.Is(err, inspect.ErrBusy) {
		t.Errorf("wanted ErrBusy, got %v", err)
	}
	close(col.block)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
