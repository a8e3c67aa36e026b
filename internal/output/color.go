package output

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/bimmerbailey/shpdiag/internal/config"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorOrange = "\033[38;5;208m"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// ParseColorMode converts "auto", "always" or "never" to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode: %s", s)
	}
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// shouldColorize determines if output should be colorized based on mode and TTY detection.
func shouldColorize(mode ColorMode, w interface{}) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
		if f, ok := w.(*os.File); ok {
			return isTerminal(f)
		}
		return false
	}
	return false
}

// categoryColor returns the escape sequence for a category, or "" for the
// default color.
func categoryColor(c config.Category) string {
	switch c {
	case config.CategoryConnect:
		return colorGreen
	case config.CategoryDisconnect:
		return colorRed
	case config.CategoryDriverCommand:
		return colorGray
	case config.CategoryMacro:
		return colorOrange
	case config.CategoryDriverEvent:
		return colorYellow
	default:
		return ""
	}
}

// ColorizeLine applies the category color to an entire line.
func ColorizeLine(c config.Category, line string) string {
	color := categoryColor(c)
	if color == "" {
		return line
	}
	return color + line + colorReset
}

// FormatEntry renders an entry as "N: text" with optional coloring.
func FormatEntry(e config.Entry, colorize bool) string {
	line := fmt.Sprintf("%d: %s", e.Line, e.Text)
	if colorize {
		return ColorizeLine(e.Category, line)
	}
	return line
}
