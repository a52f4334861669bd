package analyzer

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// File is the text of the target file split into lines.
type File struct {
	Path    string
	Name    string
	Content []byte
	Lines   []string
}

// ResolutionError means the target file can't be turned into text lines.
type ResolutionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Path, e.Err)
	}
	return e.Reason + ": " + e.Path
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

const (
	ReasonNoFile     = "no file open"
	ReasonNotFound   = "file not found"
	ReasonDirectory  = "file is a directory"
	ReasonNotText    = "document has no text representation"
	ReasonUnreadable = "file can't be read"
)

// Resolve reads path from fs.
func Resolve(afs afero.Fs, path string) (*File, error) {
	if path == "" {
		return nil, &ResolutionError{Reason: ReasonNoFile}
	}
	info, err := afs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ResolutionError{Path: path, Reason: ReasonNotFound}
		}
		return nil, &ResolutionError{Path: path, Reason: ReasonUnreadable, Err: err}
	}
	if info.IsDir() {
		return nil, &ResolutionError{Path: path, Reason: ReasonDirectory}
	}
	b, err := afero.ReadFile(afs, path)
	if err != nil {
		return nil, &ResolutionError{Path: path, Reason: ReasonUnreadable, Err: err}
	}
	if !utf8.Valid(b) {
		return nil, &ResolutionError{Path: path, Reason: ReasonNotText}
	}
	return &File{
		Path:    path,
		Name:    filepath.Base(path),
		Content: b,
		Lines:   splitLines(string(b)),
	}, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
