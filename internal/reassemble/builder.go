package reassemble

import "strings"

// Builder accumulates logical lines. Only the last line is ever extended;
// every earlier line is final.
type Builder struct {
	lines []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add feeds one normalized line and reports what was done with it.
func (b *Builder) Add(line string) Decision {
	d := Decide(len(b.lines) > 0, line)
	switch d {
	case StartNew:
		b.lines = append(b.lines, line)
	case Merge:
		last := len(b.lines) - 1
		b.lines[last] = strings.TrimSpace(b.lines[last] + " " + line)
	}
	return d
}

// Len returns the number of logical lines so far.
func (b *Builder) Len() int {
	return len(b.lines)
}

// Finalized returns the number of lines that can no longer change: all but
// the last one.
func (b *Builder) Finalized() int {
	if len(b.lines) == 0 {
		return 0
	}
	return len(b.lines) - 1
}

// Lines returns a copy of the logical lines built so far, unrepaired.
func (b *Builder) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}
