package relay

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/hashicorp/go-version"
)

// ProcessLaunchError means the assistant couldn't be started.
type ProcessLaunchError struct {
	Path string
	Err  error
}

func (e *ProcessLaunchError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Path, e.Err)
}

func (e *ProcessLaunchError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the executable isn't installed or isn't on PATH.
func (e *ProcessLaunchError) NotFound() bool {
	return errors.Is(e.Err, exec.ErrNotFound) || errors.Is(e.Err, fs.ErrNotExist)
}

// RelayError means the session failed after the process was started.
// The output read so far has already been delivered to the sink.
type RelayError struct {
	Err error
}

func (e *RelayError) Error() string {
	return "relay: " + e.Err.Error()
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

// VersionError means the installed assistant doesn't satisfy the configured
// version constraint.
type VersionError struct {
	Version    *version.Version
	Constraint string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("the assistant version %s doesn't satisfy %s", e.Version, e.Constraint)
}
