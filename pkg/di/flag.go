package di

import (
	"github.com/vivant/robin/pkg/cli/flag"
)

// Flags holds all command-line flags for the inspect command.
type Flags struct {
	*flag.GlobalFlags

	Assistant string
	Timeout   string
	Format    string
	Output    string
	DryRun    bool
	Quiet     bool
	Analyzers []string

	PWD  string
	File string
}
