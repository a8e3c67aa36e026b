package reassemble

import (
	"regexp"
	"strings"
)

// CanonicalPrefixes mark the start of a genuine log entry.
var CanonicalPrefixes = []string{"Input", "Driver", "System Manager", "Macro"}

// NoiseToken is emitted by the diagnostics feed between entries.
const NoiseToken = "hello"

var keywordPattern = regexp.MustCompile(`(Input|Driver|System Manager|Macro|hello)`)

// Reassemble turns sanitized fragments into repaired logical lines.
func Reassemble(fragments []string) []string {
	b := NewBuilder()
	for _, line := range SplitLines(fragments) {
		b.Add(Normalize(line))
	}
	return RepairAll(b.Lines())
}

// SplitLines joins the non-empty fragments with newlines and splits the
// result into trimmed, non-blank lines. Fragment boundaries and line
// boundaries are independent: one fragment may hold several lines.
func SplitLines(fragments []string) []string {
	var lines []string
	for _, fragment := range fragments {
		if fragment == "" {
			continue
		}
		for _, line := range strings.Split(fragment, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// Normalize drops anything in front of the first recognized keyword and
// trims the result.
func Normalize(line string) string {
	if loc := keywordPattern.FindStringIndex(line); loc != nil && loc[0] > 0 {
		line = line[loc[0]:]
	}
	return strings.TrimSpace(line)
}
