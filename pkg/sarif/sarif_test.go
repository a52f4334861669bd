package sarif_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vivant/robin/pkg/sarif"
)

const golangciLog = `{
  "version": "2.1.0",
  "$schema": "https://json.schemastore.org/sarif-2.1.0.json",
  "runs": [
    {
      "tool": {"driver": {"name": "golangci-lint", "rules": []}},
      "results": [
        {
          "ruleId": "errcheck",
          "level": "error",
          "message": {"text": "Error return value is not checked"},
          "locations": [
            {"physicalLocation": {"artifactLocation": {"uri": "main.go"}, "region": {"startLine": 12, "startColumn": 3}}}
          ]
        },
        {
          "ruleId": "godot",
          "message": {"markdown": "Comment should end in a **period**"},
          "locations": [
            {"physicalLocation": {"artifactLocation": {"uri": "file:///src/app/main.go"}}}
          ]
        },
        {
          "message": {"text": "no location"}
        }
      ]
    }
  ]
}`

func TestDecode(t *testing.T) {
	t.Parallel()
	report, err := sarif.Decode([]byte(golangciLog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Runs) != 1 {
		t.Fatalf("wanted 1 run, got %d", len(report.Runs))
	}
	type result struct {
		File string
		Line int
		Text string
		Rule string
	}
	got := []result{}
	for _, r := range report.Runs[0].Results {
		f, l := sarif.Position(r)
		got = append(got, result{File: f, Line: l, Text: sarif.Text(r), Rule: sarif.RuleID(r)})
	}
	exp := []result{
		{File: "main.go", Line: 12, Text: "Error return value is not checked", Rule: "errcheck"},
		{File: "/src/app/main.go", Line: 0, Text: "Comment should end in a **period**", Rule: "godot"},
		{File: "", Line: 0, Text: "no location"},
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("results (-want +got):\n%s", diff)
	}
}

func TestDecode_invalid(t *testing.T) {
	t.Parallel()
	if _, err := sarif.Decode([]byte("not json")); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestURIToPath(t *testing.T) {
	t.Parallel()
	data := []struct {
		uri string
		exp string
	}{
		{uri: "main.go", exp: "main.go"},
		{uri: "pkg/a.go", exp: "pkg/a.go"},
		{uri: "file:///home/u/a.go", exp: "/home/u/a.go"},
		{uri: "file:///home/u/with%20space.go", exp: "/home/u/with space.go"},
	}
	for _, d := range data {
		t.Run(d.uri, func(t *testing.T) {
			t.Parallel()
			if got := sarif.URIToPath(d.uri); got != d.exp {
				t.Errorf("wanted %q, got %q", d.exp, got)
			}
		})
	}
}
