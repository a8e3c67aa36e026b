// Package capture runs raw hex captures through the decode pipeline.
//
// Each raw line is hex-decoded and decoded as text, sanitized, and the
// resulting fragments are reassembled into numbered, classified entries.
// Malformed lines never abort a run; they are counted in Stats and skipped.
package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bimmerbailey/shpdiag/internal/config"
	"github.com/bimmerbailey/shpdiag/internal/decoder"
	"github.com/bimmerbailey/shpdiag/internal/reassemble"
	"github.com/bimmerbailey/shpdiag/internal/sanitize"
)

const maxScanTokenSize = 1024 * 1024 // 1MB

// Resolver rewrites entries that reference project data.
type Resolver interface {
	Resolve(line string) (string, bool)
}

// Redactor masks sensitive values in an entry.
type Redactor interface {
	Redact(text string) string
}

// Options configures a Decoder.
type Options struct {
	Resolver Resolver           // optional page name resolver
	Redactor Redactor           // optional redaction
	Logger   logrus.FieldLogger // defaults to the standard logger
}

// Stats counts what happened to the raw lines of a capture.
type Stats struct {
	RawLines     int                      `json:"raw_lines"`
	BlankLines   int                      `json:"blank_lines"`
	HexFailures  int                      `json:"hex_failures"`
	EmptyCleaned int                      `json:"empty_after_clean"`
	Fragments    int                      `json:"fragments"`
	Encodings    map[decoder.Encoding]int `json:"encodings"`
	Unresolved   int                      `json:"unresolved"`
}

func newStats() Stats {
	return Stats{Encodings: make(map[decoder.Encoding]int)}
}

// Result is the outcome of decoding one capture.
type Result struct {
	Entries []config.Entry `json:"entries"`
	Stats   Stats          `json:"stats"`
}

// Decoder decodes hex captures into entries.
type Decoder struct {
	opts Options
	log  logrus.FieldLogger
}

// New creates a Decoder.
func New(opts Options) *Decoder {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Decoder{opts: opts, log: log}
}

// DecodeFile opens a capture file and decodes it.
func (d *Decoder) DecodeFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	res, err := d.Decode(f)
	if err != nil {
		return res, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return res, nil
}

// Decode reads raw capture lines from r until EOF and reassembles them.
func (d *Decoder) Decode(r io.Reader) (Result, error) {
	stats := newStats()
	var fragments []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanTokenSize)

	for scanner.Scan() {
		stats.RawLines++
		if fragment, ok := d.fragment(scanner.Text(), stats.RawLines, &stats); ok {
			fragments = append(fragments, fragment)
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{Stats: stats}, err
	}

	lines := reassemble.Reassemble(fragments)
	entries := make([]config.Entry, 0, len(lines))
	for _, line := range lines {
		entry := d.entry(line, len(entries)+1)
		if entry.Unresolved {
			stats.Unresolved++
		}
		entries = append(entries, entry)
	}

	d.log.WithFields(logrus.Fields{
		"raw_lines": stats.RawLines,
		"fragments": stats.Fragments,
		"entries":   len(entries),
	}).Debug("capture decoded")

	return Result{Entries: entries, Stats: stats}, nil
}

// fragment decodes and cleans one raw line. It reports false when the line
// contributes nothing.
func (d *Decoder) fragment(raw string, lineNum int, stats *Stats) (string, bool) {
	data, ok := decoder.ParseHex(raw)
	if !ok {
		if strings.TrimSpace(raw) == "" {
			stats.BlankLines++
		} else {
			stats.HexFailures++
			d.log.WithField("line", lineNum).Debug("skipping line that is not valid hex")
		}
		return "", false
	}

	text, enc := decoder.Decode(data)
	stats.Encodings[enc]++

	cleaned := sanitize.Clean(text)
	if cleaned == "" {
		stats.EmptyCleaned++
		return "", false
	}
	stats.Fragments++
	return cleaned, true
}

// entry builds a numbered entry from a repaired logical line.
func (d *Decoder) entry(line string, num int) config.Entry {
	entry := config.Entry{Line: num, Text: line}
	if d.opts.Resolver != nil {
		resolved, ok := d.opts.Resolver.Resolve(entry.Text)
		entry.Text = resolved
		entry.Unresolved = !ok
	}
	if d.opts.Redactor != nil {
		entry.Text = d.opts.Redactor.Redact(entry.Text)
	}
	entry.Category = Classify(entry.Text)
	return entry
}
