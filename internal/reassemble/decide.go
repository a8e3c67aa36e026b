package reassemble

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Decision is the outcome of classifying one normalized line.
type Decision int

const (
	// Skip discards the line as noise.
	Skip Decision = iota
	// StartNew opens a new logical line.
	StartNew
	// Merge appends the line to the last logical line.
	Merge
)

// String returns the name of the decision.
func (d Decision) String() string {
	switch d {
	case Skip:
		return "skip"
	case StartNew:
		return "start"
	case Merge:
		return "merge"
	default:
		return "unknown"
	}
}

var datePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// Decide classifies a normalized line. hasPrevious reports whether at least
// one logical line already exists.
//
// Noise is always skipped. Without a full date, a line that looks like a
// continuation is merged even if it starts with a keyword. A line starting
// with a digit is never forced into a merge.
func Decide(hasPrevious bool, line string) Decision {
	if isNoise(line) {
		return Skip
	}
	if hasPrevious && forcesMerge(line) {
		return Merge
	}
	if hasCanonicalPrefix(line) || startsWithDigit(line) {
		return StartNew
	}
	if hasPrevious {
		return Merge
	}
	return StartNew
}

func isNoise(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || !hasAlphanumeric(line) {
		return true
	}
	return line == NoiseToken || isAllDigits(line)
}

// forcesMerge is the continuation override. It assumes a previous logical
// line exists.
func forcesMerge(line string) bool {
	if hasDate(line) {
		return false
	}
	return strings.HasPrefix(line, "Driver event") ||
		strings.HasPrefix(line, "Driver - Command") ||
		strings.HasPrefix(line, "System Manager") ||
		(!hasCanonicalPrefix(line) && !startsWithDigit(line))
}

func hasDate(line string) bool {
	return datePattern.MatchString(line)
}

func hasCanonicalPrefix(line string) bool {
	for _, prefix := range CanonicalPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func startsWithDigit(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsDigit(r)
}

func hasAlphanumeric(line string) bool {
	return strings.IndexFunc(line, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func isAllDigits(line string) bool {
	for _, r := range line {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return line != ""
}
