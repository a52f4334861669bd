// Package finding defines the diagnostics robin collects and the plain text
// form they are relayed in.
package finding

import (
	"strconv"
	"strings"
)

// Finding is a single diagnostic with a 1-based line number.
// Analyzer names the producer and is not part of the formatted text.
type Finding struct {
	File     string
	Line     int
	Message  string
	Analyzer string
}

// placeholder replaces a message that is empty once line breaks are removed.
const placeholder = "(no message)"

// String returns "{file}:{line}: {message}".
// Line breaks in the message are folded into single spaces so that a finding
// is always one line.
func (f Finding) String() string {
	return f.File + ":" + strconv.Itoa(f.Line) + ": " + OneLine(f.Message)
}

// OneLine folds runs of whitespace that contain a line break into one space and
// trims the result.
func OneLine(msg string) string {
	if strings.ContainsAny(msg, "\r\n") {
		msg = strings.Join(strings.FieldsFunc(msg, func(r rune) bool {
			return r == '\r' || r == '\n'
		}), " ")
		msg = strings.Join(strings.Fields(msg), " ")
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return placeholder
	}
	return msg
}

// Report is an ordered list of findings. Duplicates are kept.
type Report []Finding

// Empty reports whether there is nothing to relay.
func (r Report) Empty() bool {
	return len(r) == 0
}

// Format joins the findings one per line without a trailing newline.
func Format(r Report) string {
	lines := make([]string, len(r))
	for i, f := range r {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}
