// Package output renders reconstructed diagnostics entries and capture
// statistics. It supports text, JSON, and table formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bimmerbailey/shpdiag/internal/config"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// Writer handles writing formatted output.
type Writer struct {
	w        io.Writer
	format   Format
	colorize bool
}

// New creates a new output Writer. Text output is colorized according to mode.
func New(w io.Writer, format Format, mode ColorMode) *Writer {
	return &Writer{w: w, format: format, colorize: shouldColorize(mode, w)}
}

// WriteEntries outputs entries in the configured format.
func (wr *Writer) WriteEntries(entries []config.Entry) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(entries)
	case FormatTable:
		return wr.writeTable(entries)
	default:
		for _, e := range entries {
			if err := wr.WriteEntry(e); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteEntry writes a single entry as a numbered text line, or as one JSON
// object per line in JSON format.
func (wr *Writer) WriteEntry(e config.Entry) error {
	if wr.format == FormatJSON {
		return json.NewEncoder(wr.w).Encode(e)
	}
	_, err := fmt.Fprintln(wr.w, FormatEntry(e, wr.colorize))
	return err
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (wr *Writer) writeTable(entries []config.Entry) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tCATEGORY\tTEXT")
	fmt.Fprintln(tw, "----\t--------\t----")

	for _, e := range entries {
		text := e.Text
		if len(text) > 100 {
			text = text[:97] + "..."
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Line, e.Category, text)
	}

	return tw.Flush()
}

// CategoryCount is one row of a category breakdown.
type CategoryCount struct {
	Category config.Category `json:"category"`
	Count    int             `json:"count"`
}

// CountCategories tallies entries per category in display order, omitting
// empty categories.
func CountCategories(entries []config.Entry) []CategoryCount {
	counts := make(map[config.Category]int)
	for _, e := range entries {
		counts[e.Category]++
	}

	var out []CategoryCount
	for _, c := range config.Categories {
		if n := counts[c]; n > 0 {
			out = append(out, CategoryCount{Category: c, Count: n})
		}
	}
	return out
}

// WriteCategoryCounts writes a category breakdown as aligned text.
func (wr *Writer) WriteCategoryCounts(counts []CategoryCount) error {
	if wr.format == FormatJSON {
		return wr.WriteJSON(counts)
	}
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Category, c.Count)
	}
	return tw.Flush()
}
