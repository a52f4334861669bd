// Package initcmd implements 'robin init'.
package initcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	templateConfig = `# yaml-language-server: $schema=https://raw.githubusercontent.com/vivant/robin/refs/heads/main/json-schema/robin.json
# robin - https://github.com/vivant/robin
version: 1
# concurrency: 4

# assistant:
#   command: aider
#   args:
#     - --model
#     - sonnet
#   timeout: 10m
#   min_version: ">= 0.50.0"

analyzers:
  - name: trailing-whitespace
  - name: line-length
    max_line_length: 120
  - name: todo
  - name: final-newline
# - name: golangci-lint
#   command: [golangci-lint, run, --output.text.path=stdout, "{{file}}"]
# - name: ruff
#   command: [ruff, check, --output-format=sarif, "{{file}}"]
#   format: sarif
`
	filePermission os.FileMode = 0o644
	dirPermission  os.FileMode = 0o755
)

// Controller writes the starter configuration.
type Controller struct {
	fs       afero.Fs
	template string
}

func New(fs afero.Fs) *Controller {
	return &Controller{fs: fs, template: templateConfig}
}

// Init creates a configuration file at configFilePath unless it already exists.
func (c *Controller) Init(logE *logrus.Entry, configFilePath string) error {
	logE = logE.WithField("config", configFilePath)
	f, err := afero.Exists(c.fs, configFilePath)
	if err != nil {
		return fmt.Errorf("check if a configuration file exists: %w", err)
	}
	if f {
		logE.Info("the configuration file already exists")
		return nil
	}
	if dir := filepath.Dir(configFilePath); dir != "." {
		if err := c.fs.MkdirAll(dir, dirPermission); err != nil {
			return fmt.Errorf("create a directory: %w", err)
		}
	}
	if err := afero.WriteFile(c.fs, configFilePath, []byte(c.template), filePermission); err != nil {
		return fmt.Errorf("create a configuration file: %w", err)
	}
	logE.Info("created a configuration file")
	return nil
}
