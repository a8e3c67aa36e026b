package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/shpdiag/internal/capture"
	"github.com/bimmerbailey/shpdiag/internal/config"
	"github.com/bimmerbailey/shpdiag/internal/decoder"
	"github.com/bimmerbailey/shpdiag/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats [flags] <capture>...",
	Short: "Show capture statistics",
	Long: `Display a summary of each capture: raw line counts, lines that could not
be decoded, which encodings were chosen, and entries per category.

Examples:
  shpdiag stats capture.hex
  shpdiag stats --format json captures/*.hex`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// captureStats is the summary of one capture.
type captureStats struct {
	File       string                 `json:"file"`
	Entries    int                    `json:"entries"`
	Decode     capture.Stats          `json:"decode"`
	Categories []output.CategoryCount `json:"categories"`
}

func runStats(cmd *cobra.Command, args []string) error {
	files, err := config.ExpandGlobs(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dec, err := newDecoder(cfg)
	if err != nil {
		return err
	}
	wr, err := newWriter(cmd, cfg)
	if err != nil {
		return err
	}

	summaries := make([]captureStats, 0, len(files))
	for _, file := range files {
		res, err := dec.DecodeFile(file)
		if err != nil {
			return err
		}
		summaries = append(summaries, captureStats{
			File:       file,
			Entries:    len(res.Entries),
			Decode:     res.Stats,
			Categories: output.CountCategories(res.Entries),
		})
	}

	if output.ParseFormat(cfg.Format) == output.FormatJSON {
		if len(summaries) == 1 {
			return wr.WriteJSON(summaries[0])
		}
		return wr.WriteJSON(summaries)
	}

	out := cmd.OutOrStdout()
	for i, s := range summaries {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := writeStatsText(out, wr, s); err != nil {
			return err
		}
	}
	return nil
}

func writeStatsText(out io.Writer, wr *output.Writer, s captureStats) error {
	fmt.Fprintf(out, "Capture: %s\n", s.File)
	fmt.Fprintf(out, "Raw Lines: %d\n", s.Decode.RawLines)
	fmt.Fprintf(out, "Blank Lines: %d\n", s.Decode.BlankLines)
	fmt.Fprintf(out, "Hex Failures: %d\n", s.Decode.HexFailures)
	fmt.Fprintf(out, "Empty After Clean: %d\n", s.Decode.EmptyCleaned)
	fmt.Fprintf(out, "Fragments: %d\n", s.Decode.Fragments)

	encodings := make([]decoder.Encoding, 0, len(s.Decode.Encodings))
	for enc := range s.Decode.Encodings {
		encodings = append(encodings, enc)
	}
	sort.Slice(encodings, func(i, j int) bool { return encodings[i] < encodings[j] })
	fmt.Fprint(out, "Encodings:")
	for _, enc := range encodings {
		fmt.Fprintf(out, " %s=%d", enc, s.Decode.Encodings[enc])
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Entries: %d\n", s.Entries)
	fmt.Fprintf(out, "Unresolved Pages: %d\n", s.Decode.Unresolved)
	if len(s.Categories) == 0 {
		return nil
	}
	fmt.Fprintln(out, "Categories:")
	return wr.WriteCategoryCounts(s.Categories)
}
