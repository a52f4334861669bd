// Package analyzers implements the 'robin analyzers' command.
package analyzers

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"github.com/vivant/robin/pkg/cli/flag"
	"github.com/vivant/robin/pkg/controller/analyzers"
	"github.com/vivant/robin/pkg/di"
)

type Flags struct {
	LineTemplate string
	EnabledOnly  bool
}

type runner struct {
	logE   *logrus.Entry
	stdout io.Writer
}

// New creates the analyzers command.
func New(logE *logrus.Entry, globalFlags *flag.GlobalFlags, stdout io.Writer) *cli.Command {
	r := &runner{logE: logE, stdout: stdout}
	return r.Command(globalFlags)
}

func (r *runner) Command(globalFlags *flag.GlobalFlags) *cli.Command {
	flags := &Flags{}
	return &cli.Command{
		Name:  "analyzers",
		Usage: "List the configured analyzers",
		Description: `List the analyzers in the configuration file.
If the configuration file doesn't list any, the built-in analyzers are listed.

$ robin analyzers

Output format (default CSV):
<Name>,<Kind>,<Enabled>,<Command>

Custom output format using Go template:
$ robin analyzers --template "{{.Name}} ({{.Kind}})"

Available template fields:
  Name          - Analyzer name
  Kind          - builtin or command
  Enabled       - Whether the analyzer runs by default
  Command       - Command line of an external linter
  Format        - Output format of an external linter (line or sarif)
  MaxLineLength - Limit of line-length
`,
		Action: func(context.Context, *cli.Command) error {
			return r.action(globalFlags, flags)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "template",
				Aliases:     []string{"t"},
				Usage:       "Go text/template format for each line",
				Destination: &flags.LineTemplate,
			},
			&cli.BoolFlag{
				Name:        "enabled",
				Usage:       "list only enabled analyzers",
				Destination: &flags.EnabledOnly,
			},
		},
	}
}

func (r *runner) action(globalFlags *flag.GlobalFlags, flags *Flags) error {
	if err := globalFlags.Apply(r.logE); err != nil {
		return err //nolint:wrapcheck
	}
	cfg, err := di.ReadConfig(afero.NewOsFs(), globalFlags.Config)
	if err != nil {
		return err //nolint:wrapcheck
	}
	ctrl := analyzers.New(cfg, &analyzers.Param{
		LineTemplate: flags.LineTemplate,
		EnabledOnly:  flags.EnabledOnly,
	}, r.stdout)
	return ctrl.List(r.logE) //nolint:wrapcheck
}
