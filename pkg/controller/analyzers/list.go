package analyzers

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"
)

// Info is the data passed to the line template.
type Info struct {
	Name          string
	Kind          string
	Enabled       bool
	Command       string
	Format        string
	MaxLineLength int
}

// List outputs the analyzers in configuration order.
func (c *Controller) List(logE *logrus.Entry) error {
	tmpl, err := c.parseTemplate()
	if err != nil {
		return err
	}
	for _, a := range c.cfg.Analyzers {
		if c.param.EnabledOnly && !a.IsEnabled() {
			logE.WithField("analyzer", a.Name).Debug("skip a disabled analyzer")
			continue
		}
		info := &Info{
			Name:    a.Name,
			Kind:    a.Kind(),
			Enabled: a.IsEnabled(),
			Command: strings.Join(a.Command, " "),
			Format:  a.Format,
		}
		if !a.IsCommand() {
			info.Format = ""
			if a.Name == "line-length" {
				info.MaxLineLength = a.MaxLineLength
			}
		}
		if err := c.output(info, tmpl); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) parseTemplate() (*template.Template, error) {
	if c.param.LineTemplate == "" {
		return nil, nil //nolint:nilnil
	}
	tmpl, err := template.New("line").Parse(c.param.LineTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse line template: %w", err)
	}
	return tmpl, nil
}

func (c *Controller) output(info *Info, tmpl *template.Template) error {
	if tmpl != nil {
		if err := tmpl.Execute(c.stdout, info); err != nil {
			return fmt.Errorf("execute template: %w", err)
		}
		fmt.Fprintln(c.stdout)
		return nil
	}
	// Default CSV format: <Name>,<Kind>,<Enabled>,<Command>
	fmt.Fprintf(c.stdout, "%s,%s,%t,%s\n", info.Name, info.Kind, info.Enabled, info.Command)
	return nil
}
