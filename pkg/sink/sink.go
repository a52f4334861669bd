// Package sink receives the output of a relay session.
// A sink has a single writer: the relay calls Progress for every line while
// the assistant runs, then Deliver once with the whole accumulated output.
// Notify carries user facing notices such as "no issues found" or launch errors.
package sink

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/afero"
)

type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

type Sink interface {
	Progress(line string)
	Deliver(output string)
	Notify(level Level, message string)
}

type colorFunc func(a ...any) string

// Terminal writes live lines and info notices to stdout and
// warnings and errors to stderr.
type Terminal struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
	live   bool
	red    colorFunc
	yellow colorFunc
}

// NewTerminal creates a Terminal. If live is false, lines are not printed as
// they arrive and the output is printed once on Deliver.
func NewTerminal(stdout, stderr io.Writer, live bool) *Terminal {
	return &Terminal{
		stdout: stdout,
		stderr: stderr,
		live:   live,
		red:    color.New(color.FgRed).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
	}
}

func (t *Terminal) Progress(line string) {
	if !t.live {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.stdout, line)
}

func (t *Terminal) Deliver(output string) {
	if t.live || output == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.stdout, output)
}

func (t *Terminal) Notify(level Level, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch level {
	case LevelError:
		fmt.Fprintln(t.stderr, t.red(message))
	case LevelWarn:
		fmt.Fprintln(t.stderr, t.yellow(message))
	default:
		fmt.Fprintln(t.stdout, message)
	}
}

// File writes the delivered output to a file.
// Deliver replaces the content; notices are appended after it.
type File struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	err     error
	written bool
}

func NewFile(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path}
}

func (f *File) Progress(string) {}

func (f *File) Deliver(output string) {
	f.write(output, false)
}

func (f *File) Notify(level Level, message string) {
	if level != LevelInfo {
		message = level.String() + " " + message
	}
	f.write(message, true)
}

func (f *File) write(s string, appendMode bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode && f.written {
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := f.fs.OpenFile(f.path, flag, 0o644) //nolint:mnd
	if err != nil {
		f.err = fmt.Errorf("open %s: %w", f.path, err)
		return
	}
	defer file.Close()
	if _, err := io.WriteString(file, s+"\n"); err != nil {
		f.err = fmt.Errorf("write output to %s: %w", f.path, err)
		return
	}
	f.written = true
}

// Err returns the last write error.
func (f *File) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Multi forwards every call to each sink in order.
type Multi []Sink

func (m Multi) Progress(line string) {
	for _, s := range m {
		s.Progress(line)
	}
}

func (m Multi) Deliver(output string) {
	for _, s := range m {
		s.Deliver(output)
	}
}

func (m Multi) Notify(level Level, message string) {
	for _, s := range m {
		s.Notify(level, message)
	}
}

// Recorder keeps everything it receives. It is used by tests and by callers
// that render the output themselves.
type Recorder struct {
	mu        sync.Mutex
	lines     []string
	delivered []string
	notices   []Notice
}

type Notice struct {
	Level   Level
	Message string
}

func (r *Recorder) Progress(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *Recorder) Deliver(output string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, output)
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Message: message})
}

func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *Recorder) Delivered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.delivered...)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}
