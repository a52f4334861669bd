// Package relay runs the assistant process for one request.
//
// The formatted findings are written to the process's standard input through
// a pipe; no shell ever sees them. Standard error is merged into standard
// output and read line by line while the process runs, so every line reaches
// the sink as soon as it is printed. A session is bounded by a timeout and by
// the caller's context; when either ends the process is killed.
package relay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vivant/robin/pkg/sink"
	"golang.org/x/sync/errgroup"
)

// NoAutoCommitsFlag keeps aider from committing the changes it makes.
const NoAutoCommitsFlag = "--no-auto-commits"

const maxLineSize = 1024 * 1024

type State int

const (
	StateIdle State = iota
	StateStarting
	StateStreaming
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Session is one invocation of the assistant.
// Output only grows; ExitCode is nil until the process has exited.
type Session struct {
	State    State
	Input    string
	Output   []string
	ExitCode *int
}

// Text returns the accumulated output.
func (s *Session) Text() string {
	return strings.Join(s.Output, "\n")
}

func (s *Session) append(snk sink.Sink, line string) {
	s.Output = append(s.Output, line)
	snk.Progress(line)
}

type Relay struct {
	path    string
	args    []string
	dir     string
	env     map[string]string
	timeout time.Duration
}

type Option func(*Relay)

func WithPath(path string) Option {
	return func(r *Relay) { r.path = path }
}

// WithArgs sets arguments passed after NoAutoCommitsFlag.
func WithArgs(args ...string) Option {
	return func(r *Relay) { r.args = args }
}

func WithWorkDir(dir string) Option {
	return func(r *Relay) { r.dir = dir }
}

// WithEnv adds environment variables to the inherited environment.
func WithEnv(env map[string]string) Option {
	return func(r *Relay) { r.env = env }
}

// WithTimeout bounds a session. Zero means no deadline besides ctx.
func WithTimeout(d time.Duration) Option {
	return func(r *Relay) { r.timeout = d }
}

func New(opts ...Option) *Relay {
	r := &Relay{
		path:    "aider",
		timeout: 10 * time.Minute, //nolint:mnd
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name is the base name of the executable, used in messages.
func (r *Relay) Name() string {
	return filepath.Base(r.path)
}

func (r *Relay) Path() string {
	return r.path
}

// Args returns the arguments the assistant is started with.
func (r *Relay) Args() []string {
	return append([]string{NoAutoCommitsFlag}, r.args...)
}

func (r *Relay) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Dir = r.dir
	cmd.Env = os.Environ()
	for k, v := range r.env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	return cmd
}

// Run starts the assistant, writes input to its stdin and streams its output
// to snk. The whole output is passed to snk.Deliver before Run returns unless
// the process couldn't be started.
//
// A non-zero exit code isn't an error: a line reporting it is appended to the
// output and the session completes. Run returns a *ProcessLaunchError if the
// process can't be started and a *RelayError if streaming fails.
func (r *Relay) Run(ctx context.Context, logE *logrus.Entry, input string, snk sink.Sink) (*Session, error) {
	session := &Session{State: StateIdle, Input: input}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	// streamCtx is also cancelled when reading the output fails,
	// which kills the process.
	streamCtx, cancelStream := context.WithCancel(ctx)
	defer cancelStream()

	session.State = StateStarting
	logE.WithField("assistant", r.path).Info("starting the assistant process")
	cmd := r.command(streamCtx, r.Args()...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		session.State = StateFailed
		return session, &RelayError{Err: fmt.Errorf("create the stdin pipe: %w", err)}
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		session.State = StateFailed
		return session, &RelayError{Err: fmt.Errorf("create the output pipe: %w", err)}
	}
	defer pr.Close()
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		pw.Close()
		session.State = StateFailed
		if ctx.Err() != nil {
			return session, &RelayError{Err: ctx.Err()}
		}
		return session, &ProcessLaunchError{Path: r.path, Err: err}
	}
	// The child has its own copy; EOF arrives once it exits.
	pw.Close()
	session.State = StateStreaming

	// Unblock the reader if a descendant keeps the pipe open after a kill.
	stop := context.AfterFunc(streamCtx, func() {
		pr.Close()
	})
	defer stop()

	streamErr := r.stream(logE, cmd, stdin, pr, input, session, snk, cancelStream)
	waitErr := cmd.Wait()

	if err := r.finish(ctx, session, snk, streamErr, waitErr); err != nil {
		session.State = StateFailed
		snk.Deliver(session.Text())
		return session, &RelayError{Err: err}
	}
	session.State = StateCompleted
	snk.Deliver(session.Text())
	logE.WithField("exit_code", *session.ExitCode).Info("the assistant process finished")
	return session, nil
}

func (r *Relay) stream(logE *logrus.Entry, cmd *exec.Cmd, stdin io.WriteCloser, out io.Reader, input string, session *Session, snk sink.Sink, kill context.CancelFunc) error {
	eg := &errgroup.Group{}
	eg.Go(func() error {
		defer stdin.Close()
		if _, err := io.WriteString(stdin, input); err != nil && !isClosedPipe(err) {
			kill()
			return fmt.Errorf("write the input to %s: %w", cmd.Path, err)
		}
		return nil
	})
	eg.Go(func() error {
		scanner := bufio.NewScanner(out)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize) //nolint:mnd
		for scanner.Scan() {
			line := scanner.Text()
			logE.WithField("line", line).Debug("assistant output")
			session.append(snk, line)
		}
		if err := scanner.Err(); err != nil {
			kill()
			return fmt.Errorf("read the output: %w", err)
		}
		return nil
	})
	return eg.Wait() //nolint:wrapcheck
}

// finish reports the first cause of a failed session: the deadline or the
// caller's cancellation, then a streaming failure, then a failed wait.
func (r *Relay) finish(ctx context.Context, session *Session, snk sink.Sink, streamErr, waitErr error) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("the assistant didn't finish within %s: %w", r.timeout, err)
		}
		return err //nolint:wrapcheck
	}
	if streamErr != nil {
		return streamErr
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return fmt.Errorf("wait for the assistant: %w", waitErr)
	}
	code := 0
	if exitErr != nil {
		code = exitErr.ExitCode()
	}
	if sig, ok := signaled(exitErr); ok {
		code = signalExitBase + int(sig)
		session.ExitCode = &code
		session.append(snk, fmt.Sprintf("%s process was killed by signal %d (%s), exit code %d", r.Name(), int(sig), sig, code))
		return nil
	}
	session.ExitCode = &code
	if code != 0 {
		session.append(snk, fmt.Sprintf("%s process exited with code %d", r.Name(), code))
	}
	return nil
}

// signalExitBase follows the shell convention of 128+N for a process
// terminated by signal N.
const signalExitBase = 128

func signaled(exitErr *exec.ExitError) (syscall.Signal, bool) {
	if exitErr == nil || exitErr.ExitCode() != -1 {
		return 0, false
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0, false
	}
	return ws.Signal(), true
}

func isClosedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed)
}
