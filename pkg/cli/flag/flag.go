// Package flag defines the flags shared by every robin command.
package flag

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/vivant/robin/pkg/log"
)

// GlobalFlags is filled by the root command before a subcommand runs.
type GlobalFlags struct {
	LogLevel string
	Config   string
	NoColor  bool
}

func (gf *GlobalFlags) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level",
			Sources:     cli.EnvVars("ROBIN_LOG_LEVEL"),
			Destination: &gf.LogLevel,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "configuration file path",
			Sources:     cli.EnvVars("ROBIN_CONFIG"),
			Destination: &gf.Config,
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "disable colored notices and logs",
			Sources:     cli.EnvVars("ROBIN_NO_COLOR", "NO_COLOR"),
			Destination: &gf.NoColor,
		},
	}
}

// Apply sets the log level and the color mode.
func (gf *GlobalFlags) Apply(logE *logrus.Entry) error {
	if err := log.Set(logE, gf.LogLevel, gf.NoColor); err != nil {
		return err //nolint:wrapcheck
	}
	if gf.NoColor {
		color.NoColor = true
	}
	return nil
}
