// Package analyzer runs the configured analyzers against one file and
// collects their diagnostics into a finding.Report.
//
// Analyzers are either built in (simple line checks that need no external
// tool) or commands: external linters whose output is parsed either with a
// regular expression or as SARIF. The set is built once from the
// configuration by a Registry. The Collector isolates failures: an analyzer
// that fails or panics is logged and skipped, the others still run.
package analyzer

import "context"

// Diagnostic is what an analyzer reports. Line is 1-based; a Line <= 0 means
// the diagnostic has no position and the Collector drops it.
// File is empty when the analyzer only looks at the target file.
type Diagnostic struct {
	File    string
	Line    int
	Message string
}

type Analyzer interface {
	Name() string
	Run(ctx context.Context, file *File) ([]Diagnostic, error)
}
