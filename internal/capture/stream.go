package capture

import (
	"github.com/bimmerbailey/shpdiag/internal/config"
	"github.com/bimmerbailey/shpdiag/internal/reassemble"
)

// Stream decodes a capture incrementally. Entries are released only once a
// later line has started a new entry, so a released entry never changes.
type Stream struct {
	d       *Decoder
	builder *reassemble.Builder
	stats   Stats
	emitted int
}

// NewStream creates a Stream that shares the Decoder's options.
func (d *Decoder) NewStream() *Stream {
	return &Stream{
		d:       d,
		builder: reassemble.NewBuilder(),
		stats:   newStats(),
	}
}

// Feed consumes one raw capture line and returns any entries it finalized.
func (s *Stream) Feed(raw string) []config.Entry {
	s.stats.RawLines++
	fragment, ok := s.d.fragment(raw, s.stats.RawLines, &s.stats)
	if !ok {
		return nil
	}
	for _, line := range reassemble.SplitLines([]string{fragment}) {
		s.builder.Add(reassemble.Normalize(line))
	}
	return s.release(s.builder.Finalized())
}

// Flush releases the open last entry. The stream should not be fed after
// Flush.
func (s *Stream) Flush() []config.Entry {
	return s.release(s.builder.Len())
}

// Stats returns the counters accumulated so far.
func (s *Stream) Stats() Stats {
	return s.stats
}

func (s *Stream) release(upto int) []config.Entry {
	if upto <= s.emitted {
		return nil
	}
	lines := s.builder.Lines()[s.emitted:upto]
	entries := make([]config.Entry, 0, len(lines))
	for _, line := range lines {
		s.emitted++
		entry := s.d.entry(reassemble.Repair(line), s.emitted)
		if entry.Unresolved {
			s.stats.Unresolved++
		}
		entries = append(entries, entry)
	}
	return entries
}
