// Package sarif reads positions and messages out of SARIF 2.1.0 reports.
// The report model itself is github.com/owenrumney/go-sarif/v2.
package sarif

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

// Decode parses a SARIF report.
func Decode(b []byte) (*sarif.Report, error) {
	report, err := sarif.FromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode SARIF: %w", err)
	}
	return report, nil
}

// Position returns the file path and the start line of the first physical
// location of result. line is 0 if the result has no region.
func Position(result *sarif.Result) (file string, line int) {
	for _, loc := range result.Locations {
		if loc == nil || loc.PhysicalLocation == nil {
			continue
		}
		pl := loc.PhysicalLocation
		if pl.ArtifactLocation != nil && pl.ArtifactLocation.URI != nil {
			file = URIToPath(*pl.ArtifactLocation.URI)
		}
		if pl.Region != nil && pl.Region.StartLine != nil {
			line = *pl.Region.StartLine
		}
		return file, line
	}
	return "", 0
}

// Text returns the plain text of the result message, falling back to markdown.
func Text(result *sarif.Result) string {
	if t := result.Message.Text; t != nil && *t != "" {
		return *t
	}
	if m := result.Message.Markdown; m != nil {
		return *m
	}
	return ""
}

// RuleID returns the rule id of result or "".
func RuleID(result *sarif.Result) string {
	if result.RuleID == nil {
		return ""
	}
	return *result.RuleID
}

// URIToPath converts a file URI to a path. Relative URIs are returned as is.
func URIToPath(uri string) string {
	if !strings.HasPrefix(uri, "file:") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	if u.Path != "" {
		return u.Path
	}
	return u.Opaque
}
