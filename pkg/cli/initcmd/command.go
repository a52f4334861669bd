// Package initcmd implements the 'robin init' command.
// It writes a commented .robin.yaml so users can start from the defaults.
package initcmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"github.com/vivant/robin/pkg/cli/flag"
	"github.com/vivant/robin/pkg/controller/initcmd"
)

// New creates the init command.
func New(logE *logrus.Entry, globalFlags *flag.GlobalFlags) *cli.Command {
	r := &runner{
		logE: logE,
	}
	return r.Command(globalFlags)
}

type runner struct {
	logE *logrus.Entry
}

func (r *runner) Command(globalFlags *flag.GlobalFlags) *cli.Command {
	var path string
	return &cli.Command{
		Name:      "init",
		Usage:     "Create .robin.yaml if it doesn't exist",
		ArgsUsage: "[<configuration file path>]",
		Description: `Create .robin.yaml if it doesn't exist

$ robin init

You can also pass configuration file path.

e.g.

$ robin init .config/robin.yaml
`,
		Action: func(context.Context, *cli.Command) error {
			return r.action(globalFlags, path)
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "path",
				Destination: &path,
			},
		},
	}
}

func (r *runner) action(globalFlags *flag.GlobalFlags, configFilePath string) error {
	if err := globalFlags.Apply(r.logE); err != nil {
		return err //nolint:wrapcheck
	}
	if configFilePath == "" {
		configFilePath = globalFlags.Config
	}
	if configFilePath == "" {
		configFilePath = ".robin.yaml"
	}
	ctrl := initcmd.New(afero.NewOsFs())
	return ctrl.Init(r.logE, configFilePath) //nolint:wrapcheck
}
