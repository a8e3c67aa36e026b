package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/shpdiag/internal/config"
	"github.com/bimmerbailey/shpdiag/internal/output"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [flags] <capture>...",
	Short: "Decode hex captures into numbered log entries",
	Long: `Decode one or more hex captures and print the reconstructed log entries.

Each capture is decoded independently and its entries are numbered from 1.
Glob patterns are expanded.

Examples:
  shpdiag decode capture.hex
  shpdiag decode --category driver-event capture.hex
  shpdiag decode --pages project.yaml --redact --format json captures/*.hex`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().String("pages", "", "project page map (YAML) used to resolve page numbers")
	decodeCmd.Flags().Bool("redact", false, "mask addresses and credentials in entries")
	decodeCmd.Flags().StringP("category", "c", "", "only show entries of this category (connect, disconnect, driver-command, macro, driver-event, default)")
	decodeCmd.Flags().Bool("no-color", false, "disable colored output")

	_ = viper.BindPFlag("pages_file", decodeCmd.Flags().Lookup("pages"))
	_ = viper.BindPFlag("redaction.enabled", decodeCmd.Flags().Lookup("redact"))

	rootCmd.AddCommand(decodeCmd)
}

// fileEntries is the JSON shape used when several captures are decoded.
type fileEntries struct {
	File    string         `json:"file"`
	Entries []config.Entry `json:"entries"`
}

func runDecode(cmd *cobra.Command, args []string) error {
	categoryStr, _ := cmd.Flags().GetString("category")

	var (
		category    config.Category
		filterByCat bool
	)
	if categoryStr != "" {
		c, ok := config.ParseCategory(categoryStr)
		if !ok {
			return fmt.Errorf("invalid category: %s", categoryStr)
		}
		category, filterByCat = c, true
	}

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

	format := output.ParseFormat(cfg.Format)
	multiFile := len(files) > 1
	var all []fileEntries

	for i, file := range files {
		res, err := dec.DecodeFile(file)
		if err != nil {
			return err
		}

		entries := res.Entries
		if filterByCat {
			entries = filterCategory(entries, category)
		}

		if format == output.FormatJSON && multiFile {
			all = append(all, fileEntries{File: file, Entries: entries})
			continue
		}

		if multiFile && format != output.FormatJSON {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "==> %s <==\n", file)
		}
		if entries == nil {
			entries = []config.Entry{}
		}
		if err := wr.WriteEntries(entries); err != nil {
			return err
		}
	}

	if format == output.FormatJSON && multiFile {
		return wr.WriteJSON(all)
	}
	return nil
}

func filterCategory(entries []config.Entry, category config.Category) []config.Entry {
	out := make([]config.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}
