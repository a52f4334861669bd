// Package inspect implements the 'robin inspect' command.
// It collects the findings of one file and relays them to the assistant.
package inspect

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/vivant/robin/pkg/cli/flag"
	"github.com/vivant/robin/pkg/di"
)

type runner struct {
	logE  *logrus.Entry
	stdio *di.Stdio
}

// New returns the inspect command.
func New(logE *logrus.Entry, globalFlags *flag.GlobalFlags, stdio *di.Stdio) *cli.Command {
	r := &runner{
		logE:  logE,
		stdio: stdio,
	}
	return r.Command(globalFlags)
}

func (r *runner) Command(globalFlags *flag.GlobalFlags) *cli.Command { //nolint:funlen
	flags := &di.Flags{GlobalFlags: globalFlags}
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Send the problems of a file to aider",
		ArgsUsage: "<file>",
		Description: `Run the configured analyzers against a file and send the problems to aider.

$ robin inspect main.go

Each problem is sent to aider's standard input as a line "<file>:<line>: <message>".
aider's output is printed as it arrives. If no problem is found, aider isn't started.

Print the problems without starting aider:

$ robin inspect --dry-run main.go
$ robin inspect --dry-run --format sarif main.go

Exit status:
  0    success, or no problem was found
  127  aider couldn't be started
  1    other errors
  Otherwise the exit status of aider.
`,
		Action: func(ctx context.Context, _ *cli.Command) error {
			return r.action(ctx, flags)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "assistant",
				Usage:       "aider executable name or path",
				Sources:     cli.EnvVars("ROBIN_ASSISTANT"),
				Destination: &flags.Assistant,
			},
			&cli.StringFlag{
				Name:        "timeout",
				Usage:       "deadline of the aider session such as 5m",
				Sources:     cli.EnvVars("ROBIN_TIMEOUT"),
				Destination: &flags.Timeout,
			},
			&cli.StringSliceFlag{
				Name:        "analyzer",
				Aliases:     []string{"a"},
				Usage:       "run only the given analyzer. This option can be repeated",
				Destination: &flags.Analyzers,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "print the problems instead of sending them to aider",
				Destination: &flags.DryRun,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format of --dry-run: text or sarif",
				Value:       "text",
				Destination: &flags.Format,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "also write aider's output to the file",
				Sources:     cli.EnvVars("ROBIN_OUTPUT"),
				Destination: &flags.Output,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "don't print aider's output as it arrives. It is printed when aider exits",
				Destination: &flags.Quiet,
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "file",
				Destination: &flags.File,
			},
		},
	}
}

func (r *runner) action(ctx context.Context, flags *di.Flags) error {
	pwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get the current directory: %w", err)
	}
	flags.PWD = pwd
	return di.RunInspect(ctx, r.logE, flags, r.stdio) //nolint:wrapcheck
}
