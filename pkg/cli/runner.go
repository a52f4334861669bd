package cli

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/suzuki-shunsuke/urfave-cli-v3-util/helpall"
	"github.com/suzuki-shunsuke/urfave-cli-v3-util/vcmd"
	"github.com/urfave/cli/v3"
	"github.com/vivant/robin/pkg/cli/analyzers"
	"github.com/vivant/robin/pkg/cli/flag"
	"github.com/vivant/robin/pkg/cli/initcmd"
	"github.com/vivant/robin/pkg/cli/inspect"
	"github.com/vivant/robin/pkg/di"
)

type Runner struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	LDFlags *LDFlags
	LogE    *logrus.Entry
}

type LDFlags struct {
	Version string
	Commit  string
	Date    string
}

func (r *Runner) Run(ctx context.Context, args ...string) error {
	gf := &flag.GlobalFlags{}
	stdio := &di.Stdio{Stdout: r.Stdout, Stderr: r.Stderr}
	cmd := &cli.Command{
		Name:      "robin",
		Usage:     "Relay static analysis findings of a file to aider",
		Version:   r.LDFlags.Version,
		Writer:    r.Stdout,
		ErrWriter: r.Stderr,
		Flags:     gf.Flags(),
		// main decides the exit code.
		ExitErrHandler:        func(context.Context, *cli.Command, error) {},
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			inspect.New(r.LogE, gf, stdio),
			initcmd.New(r.LogE, gf),
			analyzers.New(r.LogE, gf, r.Stdout),
		},
	}

	return helpall.With(vcmd.With(cmd, r.LDFlags.Commit), nil).Run(ctx, args) //nolint:wrapcheck
}
