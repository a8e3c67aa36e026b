package capture

import (
	"regexp"
	"strings"

	"github.com/bimmerbailey/shpdiag/internal/config"
)

var numberPrefix = regexp.MustCompile(`^\s*\d+\s+`)

// categoryMarkers are checked in order; the first match wins.
var categoryMarkers = []struct {
	category config.Category
	markers  []string
}{
	{config.CategoryConnect, []string{"has connected"}},
	{config.CategoryDisconnect, []string{"has disconnected"}},
	{config.CategoryDriverCommand, []string{"driver - command:"}},
	{config.CategoryMacro, []string{"macro - start", "macro - end"}},
	{config.CategoryDriverEvent, []string{"driver event:"}},
}

// Classify assigns a category to a reconstructed line. A leading sequence
// number followed by whitespace is ignored.
func Classify(line string) config.Category {
	if strings.TrimSpace(line) == "" {
		return config.CategoryDefault
	}

	content := strings.ToLower(numberPrefix.ReplaceAllString(line, ""))
	for _, c := range categoryMarkers {
		for _, marker := range c.markers {
			if strings.Contains(content, marker) {
				return c.category
			}
		}
	}
	return config.CategoryDefault
}
