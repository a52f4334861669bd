package relay

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/hashicorp/go-version"
)

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z.-]+)?)`)

// CheckVersion runs "<assistant> --version" and checks the reported version
// against constraint, e.g. ">= 0.50.0".
func (r *Relay) CheckVersion(ctx context.Context, constraint string) (*version.Version, error) {
	cons, err := version.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("parse the version constraint %q: %w", constraint, err)
	}
	out, err := r.command(ctx, "--version").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &ProcessLaunchError{Path: r.path, Err: err}
		}
		return nil, fmt.Errorf("get the version of %s: %w", r.Name(), err)
	}
	v, err := ParseVersion(string(out))
	if err != nil {
		return nil, err
	}
	if !cons.Check(v) {
		return v, &VersionError{Version: v, Constraint: constraint}
	}
	return v, nil
}

// ParseVersion extracts the first version number from the output of --version.
func ParseVersion(s string) (*version.Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("no version found in %q", s)
	}
	v, err := version.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("parse the version %q: %w", m[1], err)
	}
	return v, nil
}
