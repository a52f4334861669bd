// Package analyzers implements 'robin analyzers'.
// It prints the configured analyzers, one per line, either as
// "<name>,<kind>,<enabled>,<command>" or through a Go text/template.
package analyzers

import (
	"io"

	"github.com/vivant/robin/pkg/config"
)

// Controller handles the analyzers command operations.
type Controller struct {
	cfg    *config.Config
	param  *Param
	stdout io.Writer
}

// Param contains parameters for the analyzers command.
type Param struct {
	LineTemplate string
	EnabledOnly  bool
}

// New creates a new Controller for listing analyzers.
func New(cfg *config.Config, param *Param, stdout io.Writer) *Controller {
	return &Controller{
		cfg:    cfg,
		param:  param,
		stdout: stdout,
	}
}
