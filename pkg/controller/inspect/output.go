package inspect

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/vivant/robin/pkg/finding"
	"github.com/vivant/robin/pkg/sink"
)

const sarifToolName = "robin"

// output prints the report of a dry run.
func (c *Controller) output(report finding.Report) error {
	switch c.param.Format {
	case FormatSARIF:
		return writeSARIF(c.param.Stdout, report)
	case FormatText, "":
		if report.Empty() {
			c.sink.Notify(sink.LevelInfo, MessageNoIssues)
			return nil
		}
		return writeText(c.param.Stdout, report)
	default:
		return fmt.Errorf("unknown format: %s", c.param.Format)
	}
}

func writeText(w io.Writer, report finding.Report) error {
	if _, err := fmt.Fprintln(w, finding.Format(report)); err != nil {
		return fmt.Errorf("write the report: %w", err)
	}
	return nil
}

func writeSARIF(w io.Writer, report finding.Report) error {
	doc, err := buildSARIF(report)
	if err != nil {
		return err
	}
	if err := doc.PrettyWrite(w); err != nil {
		return fmt.Errorf("encode SARIF: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

func buildSARIF(report finding.Report) (*sarif.Report, error) {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("create a SARIF report: %w", err)
	}
	run := sarif.NewRunWithInformationURI(sarifToolName, "https://github.com/vivant/robin")
	for _, f := range report {
		ruleID := f.Analyzer
		if ruleID == "" {
			ruleID = sarifToolName
		}
		run.AddRule(ruleID).WithDescription("Reported by the " + ruleID + " analyzer")
		run.CreateResultForRule(ruleID).
			WithLevel("warning").
			WithMessage(sarif.NewTextMessage(f.Message)).
			AddLocation(sarif.NewLocationWithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewSimpleArtifactLocation(f.File)).
					WithRegion(sarif.NewRegion().WithStartLine(f.Line)),
			))
	}
	doc.AddRun(run)
	return doc, nil
}
