// Package log creates the logrus entry shared by every robin command.
// Logs are written to stderr so that stdout only carries assistant output.
package log

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/suzuki-shunsuke/logrus-util/log"
)

// New returns the root log entry tagged with the program name and version.
func New(version string) *logrus.Entry {
	logE := log.New("robin", version)
	logE.Logger.Out = os.Stderr
	return logE
}

// Set changes the level of logE's logger and turns colors off if noColor is set.
// An empty level keeps the current one.
func Set(logE *logrus.Entry, level string, noColor bool) error {
	color := "auto"
	if noColor {
		color = "never"
	}
	if err := log.Set(logE, level, color); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	return nil
}
