package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/suzuki-shunsuke/logrus-error/logerr"
	"github.com/vivant/robin/pkg/finding"
	"golang.org/x/sync/errgroup"
)

// Collector runs a fixed set of analyzers against one file at a time.
type Collector struct {
	fs          afero.Fs
	analyzers   []Analyzer
	concurrency int
}

func NewCollector(fs afero.Fs, analyzers []Analyzer, concurrency int) *Collector {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Collector{
		fs:          fs,
		analyzers:   analyzers,
		concurrency: concurrency,
	}
}

// Collect resolves path and runs every analyzer against it.
// The report is ordered by analyzer, then by the analyzer's own order.
// Only a *ResolutionError or a cancelled ctx make Collect fail.
func (c *Collector) Collect(ctx context.Context, logE *logrus.Entry, path string) (finding.Report, error) {
	file, err := Resolve(c.fs, path)
	if err != nil {
		return nil, err
	}
	logE.WithField("analyzer_count", len(c.analyzers)).Info("running analyzers")

	results := make([][]Diagnostic, len(c.analyzers))
	eg := &errgroup.Group{}
	eg.SetLimit(c.concurrency)
	for i, a := range c.analyzers {
		eg.Go(func() error {
			logE := logE.WithField("analyzer", a.Name())
			diags, err := run(ctx, a, file)
			if err != nil {
				logerr.WithError(logE, err).Error("analyzer failed")
				return nil
			}
			logE.WithField("diagnostic_count", len(diags)).Debug("analyzer finished")
			results[i] = diags
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collect findings: %w", err)
	}

	report := finding.Report{}
	for i, diags := range results {
		name := c.analyzers[i].Name()
		for _, d := range diags {
			if d.Line <= 0 {
				logE.WithFields(logrus.Fields{
					"analyzer": name,
					"message":  d.Message,
				}).Debug("drop a diagnostic without position")
				continue
			}
			msg := strings.TrimSpace(d.Message)
			if msg == "" {
				logE.WithFields(logrus.Fields{
					"analyzer": name,
					"line":     d.Line,
				}).Debug("drop a diagnostic without message")
				continue
			}
			report = append(report, finding.Finding{
				File:     file.Path,
				Line:     d.Line,
				Message:  finding.OneLine(msg),
				Analyzer: name,
			})
		}
	}
	logE.WithField("finding_count", len(report)).Info("found problems")
	return report, nil
}

func run(ctx context.Context, a Analyzer, file *File) (diags []Diagnostic, err error) {
	defer func() {
		if r := recover(); r != nil {
			diags = nil
			err = fmt.Errorf("analyzer panicked: %v", r)
		}
	}()
	return a.Run(ctx, file) //nolint:wrapcheck
}
