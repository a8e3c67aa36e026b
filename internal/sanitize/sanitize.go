// Package sanitize strips framing and control noise from decoded fragments.
package sanitize

import "strings"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Clean normalizes line endings to "\n" and keeps only newlines and printable
// ASCII (32 through 126). Everything else is dropped, not replaced.
func Clean(text string) string {
	normalized := lineEndings.Replace(text)

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if r == '\n' || IsPrintable(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsPrintable reports whether r is in the printable ASCII range.
func IsPrintable(r rune) bool {
	return r >= 32 && r <= 126
}
