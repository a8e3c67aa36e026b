// Package redact masks addresses and identifiers in decoded entries while
// keeping identical values correlated: the same address always gets the same
// placeholder within one Redactor.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Redactor replaces sensitive values with stable placeholders.
type Redactor struct {
	patterns []Pattern
	mu       sync.Mutex
	seen     map[string]string
}

// New creates a Redactor for the named patterns. With no valid names the
// default set is used.
func New(names []string) *Redactor {
	patterns := Lookup(names)
	if len(patterns) == 0 {
		patterns = Lookup(DefaultPatterns())
	}
	return &Redactor{patterns: patterns, seen: make(map[string]string)}
}

// Redact masks every pattern match in text.
func (r *Redactor) Redact(text string) string {
	for _, p := range r.patterns {
		text = p.Regex.ReplaceAllStringFunc(text, func(match string) string {
			return r.placeholder(match, p.Type)
		})
	}
	return text
}

// Placeholders returns a copy of the value to placeholder table.
func (r *Redactor) Placeholders() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]string, len(r.seen))
	for k, v := range r.seen {
		out[k] = v
	}
	return out
}

func (r *Redactor) placeholder(value, kind string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.seen[value]; ok {
		return p
	}
	sum := sha256.Sum256([]byte(value))
	p := fmt.Sprintf("[%s:%s]", kind, hex.EncodeToString(sum[:2]))
	r.seen[value] = p
	return p
}
